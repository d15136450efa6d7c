//go:build windows

package cmd

import (
	"os"
	"strconv"
	"syscall"
	"unsafe"
)

var (
	kernel32                       = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleScreenBufferInfo = kernel32.NewProc("GetConsoleScreenBufferInfo")
)

type (
	coord struct {
		X int16
		Y int16
	}
	smallRect struct {
		Left   int16
		Top    int16
		Right  int16
		Bottom int16
	}
	consoleScreenBufferInfo struct {
		Size              coord
		CursorPosition    coord
		Attributes        int16
		Window            smallRect
		MaximumWindowSize coord
	}
)

// getTerminalSize returns terminal dimensions for Windows
func getTerminalSize() (int, int) {
	if c, r, ok := terminalSizeFromEnv(); ok {
		return c, r
	}

	var csbi consoleScreenBufferInfo
	ret, _, _ := procGetConsoleScreenBufferInfo.Call(
		uintptr(syscall.Stdout),
		uintptr(unsafe.Pointer(&csbi)))
	if ret != 0 {
		width := int(csbi.Window.Right - csbi.Window.Left + 1)
		height := int(csbi.Window.Bottom - csbi.Window.Top + 1)
		if width > 0 && height > 0 {
			return width, height
		}
	}
	return 0, 0
}

// terminalSizeFromEnv reads COLUMNS and LINES when both are set.
func terminalSizeFromEnv() (int, int, bool) {
	c, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil {
		return 0, 0, false
	}
	r, err := strconv.Atoi(os.Getenv("LINES"))
	if err != nil {
		return 0, 0, false
	}
	return c, r, true
}
