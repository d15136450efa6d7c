package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/clients-console/internal/bus"
	"github.com/Ashfaaq98/clients-console/internal/table"
	"github.com/Ashfaaq98/clients-console/internal/ui"
)

var (
	noTUI    bool
	forceTUI bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the client table TUI",
	Long: `Start the interactive client table.

The TUI shows category tabs, a live search box, a status filter and the
sort panel. Sort changes are saved to the preference backend and shared
with other running consoles when Redis is configured.

When the terminal cannot host the TUI the command prints the same view as
'list' instead, unless --force-tui is given.

Examples:
  # Start with TUI (default)
  clients-console serve

  # Read clients from the database and keep sorts in Redis
  clients-console serve --source db --prefs redis --redis redis://localhost:6379`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Print the client list instead of starting the TUI")
	serveCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force TUI mode even in unsupported terminals")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	// Use file logging for TUI mode to keep the terminal clean
	var logger *log.Logger
	willUseTUI := determineTUIMode()
	if willUseTUI {
		logFile := setupFileLogger()
		if logFile != nil {
			// File for all logs, stderr for errors only
			logger = log.New(io.MultiWriter(logFile, &errorFilterWriter{os.Stderr}), "[serve] ", log.LstdFlags)
			defer logFile.Close()
		} else {
			logger = log.New(os.Stderr, "[serve] ", log.LstdFlags)
		}
	} else {
		logger = log.New(os.Stderr, "[serve] ", log.LstdFlags)
	}

	logger.Println("Starting clients console")

	if willUseTUI && !forceTUI && !canInitializeTUI() && needsPseudoTTY() {
		logger.Println("No TTY available, using script command for pseudo-TTY...")
		return runWithPseudoTTY(ctx)
	}

	rt, err := openResources(config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	logger.Printf("Sort preferences backend: %s", rt.prefs.Name())

	if !willUseTUI {
		if !noTUI {
			logger.Println("TUI cannot be initialized in this terminal environment")
			logger.Printf("Terminal info: %s", getTerminalInfo())
			logger.Println("Printing the client list instead; use --force-tui to override")
		}
		criteria, ok := rt.prefs.Load(ctx)
		if !ok {
			criteria = table.Criteria{}
		}
		records, err := rt.source.ListClients(ctx)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		return renderList(cmd.OutOrStdout(), table.NewState(criteria), records, "table")
	}

	logger.Println("Connecting to change bus...")
	changeBus := bus.NewBus(config.Redis.URL, logger)
	defer changeBus.Close()

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	checkBusHealth(healthCtx, changeBus, logger)
	go monitorBusHealth(healthCtx, changeBus, logger, time.Minute)

	uiLogger := logger
	if logFile := setupUILogFile(logger); logFile != nil {
		defer logFile.Close()
		uiLogger = log.New(logFile, "[UI] ", log.LstdFlags)
		uiLogger.Printf("UI logger initialized (path=%s)", logFile.Name())
	}

	tui := ui.NewUI(ctx, rt.source, rt.prefs, changeBus, uiLogger, ui.Options{
		Theme:     config.UI.Theme,
		ExportDir: resolvePathRelativeToBase(getWorkingDir(), config.UI.ExportDir),
		Debug:     strings.EqualFold(config.Log.Level, "debug"),
	})
	logger.Printf("Terminal info: %s", getTerminalInfo())
	err = tui.Start(ctx)
	logger.Printf("Session stats: %s", ui.FormatStats(tui.GetStats()))
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Println("Clients console stopped")
	return nil
}

// checkBusHealth pings the change bus and logs the result.
func checkBusHealth(ctx context.Context, b bus.Bus, logger *log.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := b.HealthCheck(ctx); err != nil {
		logger.Printf("Change bus health check failed: %v", err)
		return false
	}
	logger.Println("Change bus healthy")
	return true
}

// monitorBusHealth repeats checkBusHealth every interval until ctx is done.
func monitorBusHealth(ctx context.Context, b bus.Bus, logger *log.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkBusHealth(ctx, b, logger)
		}
	}
}

// canInitializeTUI tests if tcell can actually be initialized
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	screen.Fini()
	return true
}

// getTerminalInfo returns detailed terminal information
func getTerminalInfo() string {
	var info []string

	term := os.Getenv("TERM")
	if term == "" {
		info = append(info, "TERM=<not set>")
	} else {
		info = append(info, fmt.Sprintf("TERM=%s", term))
	}

	if termProgram := os.Getenv("TERM_PROGRAM"); termProgram != "" {
		info = append(info, fmt.Sprintf("TERM_PROGRAM=%s", termProgram))
	}

	if width, height := getTerminalSize(); width > 0 && height > 0 {
		info = append(info, fmt.Sprintf("Size=%dx%d", width, height))
	}

	if isTerminal() {
		info = append(info, "TTY=yes")
	} else {
		info = append(info, "TTY=no")
	}

	if supportsColors() {
		info = append(info, "Colors=yes")
	} else {
		info = append(info, "Colors=no")
	}

	return strings.Join(info, ", ")
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// supportsColors checks if terminal supports colors
func supportsColors() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	for _, hint := range []string{"color", "256", "truecolor", "24bit", "xterm", "screen", "tmux", "linux", "ansi"} {
		if strings.Contains(term, hint) {
			return true
		}
	}
	return os.Getenv("COLORTERM") != ""
}

// needsPseudoTTY checks if we need to use script command for pseudo-TTY
func needsPseudoTTY() bool {
	if file, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		file.Close()
		return false
	}
	return true
}

// runWithPseudoTTY re-executes the current command line under script(1) to obtain a pseudo-TTY
func runWithPseudoTTY(ctx context.Context) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmdArgs := append(append([]string(nil), os.Args[1:]...), "--force-tui")

	quoted := make([]string, len(cmdArgs))
	for i, arg := range cmdArgs {
		quoted[i] = fmt.Sprintf(`"%s"`, arg)
	}
	fullCmd := fmt.Sprintf(`TERM=%s "%s" %s`, os.Getenv("TERM"), executable, strings.Join(quoted, " "))

	scriptCmd := exec.CommandContext(ctx, "script", "-qec", fullCmd, "/dev/null")
	scriptCmd.Stdin = os.Stdin
	scriptCmd.Stdout = os.Stdout
	scriptCmd.Stderr = os.Stderr
	scriptCmd.Env = os.Environ()
	return scriptCmd.Run()
}

// determineTUIMode determines if TUI will be used (extracted for logging setup)
func determineTUIMode() bool {
	if noTUI {
		return false
	}
	if forceTUI || canInitializeTUI() {
		return true
	}
	// A pseudo-TTY re-exec still ends in TUI mode
	return needsPseudoTTY()
}

func openLogFile(name string) *os.File {
	logDir := filepath.Join(getWorkingDir(), "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil
	}
	logFile, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}
	return logFile
}

// setupFileLogger creates a log file for TUI mode
func setupFileLogger() *os.File {
	return openLogFile("clients-console.log")
}

// setupUILogFile opens the UI log so key tracing stays off the terminal.
func setupUILogFile(logger *log.Logger) *os.File {
	f := openLogFile("clients-console-ui.log")
	if f == nil {
		logger.Printf("Warning: Could not create UI log file, UI logs go to the serve log")
	}
	return f
}

// errorFilterWriter only writes error messages to the underlying writer
type errorFilterWriter struct {
	writer io.Writer
}

func (w *errorFilterWriter) Write(p []byte) (n int, err error) {
	lc := strings.ToLower(string(p))
	if strings.Contains(lc, "error") ||
		strings.Contains(lc, "failed") ||
		strings.Contains(lc, "panic") {
		return w.writer.Write(p)
	}
	// Suppress non-error logs in TUI mode
	return len(p), nil
}
