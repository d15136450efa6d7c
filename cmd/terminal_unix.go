//go:build !windows

package cmd

import (
	"os"
	"strconv"
	"syscall"
	"unsafe"
)

// getTerminalSize returns terminal dimensions for Unix-like systems
func getTerminalSize() (int, int) {
	if c, r, ok := terminalSizeFromEnv(); ok {
		return c, r
	}

	type winsize struct {
		Row    uint16
		Col    uint16
		Xpixel uint16
		Ypixel uint16
	}

	ws := &winsize{}
	retCode, _, _ := syscall.Syscall(syscall.SYS_IOCTL,
		os.Stdout.Fd(),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(ws)))
	if int(retCode) == -1 {
		return 0, 0
	}
	return int(ws.Col), int(ws.Row)
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
