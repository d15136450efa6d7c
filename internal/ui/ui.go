package ui

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/clients-console/internal/bus"
	"github.com/Ashfaaq98/clients-console/internal/client"
	"github.com/Ashfaaq98/clients-console/internal/prefs"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// Theme defines UI color tokens used across widgets and text tags.
type Theme struct {
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color

	TableHeader   tcell.Color
	TableHeaderBg tcell.Color
	TableRow      tcell.Color
	TableRowMuted tcell.Color
	TableZebra1   tcell.Color
	TableZebra2   tcell.Color

	StatusActive   tcell.Color
	StatusInactive tcell.Color

	// Text tag colors (for tview dynamic color markup)
	TagTextPrimary string
	TagMuted       string
	TagAccent      string
	TagSuccess     string
	TagWarning     string
	TagError       string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),

		TableHeader:   hex("#eab308"),
		TableHeaderBg: hex("#1a2332"),
		TableRow:      hex("#e6edf3"),
		TableRowMuted: hex("#94a3b8"),
		TableZebra1:   hex("#161c27"),
		TableZebra2:   hex("#121823"),

		StatusActive:   hex("#22c55e"),
		StatusInactive: hex("#8a939f"),

		TagTextPrimary: "#e6edf3",
		TagMuted:       "#8a939f",
		TagAccent:      "#2dd4bf",
		TagSuccess:     "#22c55e",
		TagWarning:     "#f59e0b",
		TagError:       "#ef4444",
	}
}

func themeLight() Theme {
	return Theme{
		Bg:          hex("#f6f8fa"),
		Surface:     hex("#ffffff"),
		Border:      hex("#d0d7de"),
		FocusBorder: hex("#1f6feb"),
		SelectionBg: hex("#e2e8f0"),
		SelectionFg: hex("#111827"),
		TextPrimary: hex("#111827"),
		TextMuted:   hex("#57606a"),

		TableHeader:   hex("#1f2937"),
		TableHeaderBg: hex("#eef2f7"),
		TableRow:      hex("#111827"),
		TableRowMuted: hex("#6b7280"),
		TableZebra1:   hex("#ffffff"),
		TableZebra2:   hex("#f6f8fa"),

		StatusActive:   hex("#15803d"),
		StatusInactive: hex("#6b7280"),

		TagTextPrimary: "#111827",
		TagMuted:       "#57606a",
		TagAccent:      "#0969da",
		TagSuccess:     "#15803d",
		TagWarning:     "#b45309",
		TagError:       "#b91c1c",
	}
}

// UI represents the client table terminal interface
type UI struct {
	app    *tview.Application
	source client.Source
	prefs  prefs.Store
	bus    bus.Bus
	logger *log.Logger
	debug  bool

	// Layout components
	root        *tview.Flex
	header      *tview.TextView
	search      *tview.InputField
	badges      *tview.TextView
	clientTable *tview.Table
	statusBar   *tview.TextView

	// State
	state   table.State
	records []client.Client
	rows    []client.Client // current view, row i+1 in the table

	// Theme state
	theme     Theme
	themeName string

	// Runtime
	running    atomic.Bool
	lastFocus  tview.Primitive
	exportDir  string
	panel      *sortPanel
	rootHandle func(*tcell.EventKey) *tcell.EventKey

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
}

// Options tune optional UI behaviour.
type Options struct {
	Theme     string
	ExportDir string
	Debug     bool
}

// NewUI builds the interface and restores the persisted sort criteria.
// Records are loaded by Start, or by Refresh when driving the UI without a terminal.
func NewUI(ctx context.Context, source client.Source, store prefs.Store, b bus.Bus, logger *log.Logger, opts Options) *UI {
	if logger == nil {
		logger = log.New(log.Writer(), "[UI] ", log.LstdFlags)
	}
	if store == nil {
		store = prefs.NewNullStore(logger)
	}
	if b == nil {
		b = bus.NewNullBus(log.New(io.Discard, "", 0))
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "exports"
	}

	uiCtx, cancel := context.WithCancel(ctx)

	ui := &UI{
		app:       tview.NewApplication(),
		source:    source,
		prefs:     store,
		bus:       b,
		logger:    logger,
		debug:     opts.Debug,
		exportDir: opts.ExportDir,
		ctx:       uiCtx,
		cancel:    cancel,
	}

	criteria, ok := store.Load(uiCtx)
	if ok {
		logger.Printf("Restored sort criteria from %s: [%s]", store.Name(), criteria)
	} else {
		criteria = table.Criteria{}
	}
	ui.state = table.NewState(criteria)

	ui.setTheme(opts.Theme)
	ui.setupLayout()
	ui.setupKeybindings()
	ui.applyTheme()
	ui.render()

	return ui
}

// Start runs the TUI until the context is cancelled or the user quits.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Println("Starting TUI application")
	// Updates queue until Run starts draining them.
	ui.running.Store(true)
	defer ui.running.Store(false)

	go func() {
		if err := ui.Refresh(ui.ctx); err != nil {
			ui.logger.Printf("Failed to load clients: %v", err)
		}
	}()

	if w, ok := ui.prefs.(prefs.Watcher); ok {
		go func() {
			err := w.Watch(ui.ctx, func(c table.Criteria) {
				ui.update(func() { ui.applyExternalCriteria(c, ui.prefs.Name()) })
			})
			if err != nil && ui.ctx.Err() == nil {
				ui.logger.Printf("Preferences watch stopped: %v", err)
			}
		}()
	}

	go func() {
		err := ui.bus.ReadCriteriaChanges(ui.ctx, func(_ context.Context, change bus.CriteriaChange) error {
			ui.update(func() { ui.applyExternalCriteria(change.Criteria, "bus:"+change.Backend) })
			return nil
		})
		if err != nil && ui.ctx.Err() == nil {
			ui.logger.Printf("Bus reader stopped: %v", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			ui.logger.Println("External context cancelled, stopping TUI")
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()

	err := ui.app.Run()
	ui.logger.Printf("app.Run() returned with error: %v", err)
	return err
}

// Stop stops the TUI application
func (ui *UI) Stop() {
	ui.logger.Println("Stopping TUI application")
	ui.cancel()
	ui.app.Stop()
}

// Refresh reloads records from the source and re-renders.
func (ui *UI) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	records, err := ui.source.ListClients(ctx)
	if err != nil {
		ui.update(func() { ui.setStatus("[%s]Error loading clients: %v[-]", ui.theme.TagError, err) })
		return fmt.Errorf("failed to list clients: %w", err)
	}
	ui.logger.Printf("Loaded %d clients", len(records))
	ui.update(func() {
		ui.records = records
		ui.render()
		ui.setStatus("[%s]Loaded %d clients[-]", ui.theme.TagSuccess, len(records))
	})
	return nil
}

// update runs fn on the UI goroutine when the app is running, inline otherwise.
func (ui *UI) update(fn func()) {
	if ui.running.Load() {
		ui.app.QueueUpdateDraw(fn)
		return
	}
	fn()
}

func (ui *UI) setupLayout() {
	ui.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	ui.search = tview.NewInputField().
		SetLabel(" Search: ").
		SetPlaceholder("name, email or id")
	ui.search.SetChangedFunc(func(text string) {
		ui.OnSearchChange(text)
	})
	ui.search.SetDoneFunc(func(key tcell.Key) {
		ui.app.SetFocus(ui.clientTable)
	})

	ui.badges = tview.NewTextView().SetDynamicColors(true)

	ui.clientTable = tview.NewTable()
	ui.clientTable.SetTitle(" Clients ")
	ui.clientTable.SetBorder(true)
	ui.clientTable.SetTitleAlign(tview.AlignLeft)
	ui.clientTable.SetSelectable(true, false)
	ui.clientTable.SetFixed(1, 0)

	ui.statusBar = tview.NewTextView()
	ui.statusBar.SetDynamicColors(true)

	ui.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.header, 1, 0, false).
		AddItem(ui.search, 1, 0, false).
		AddItem(ui.badges, 1, 0, false).
		AddItem(ui.clientTable, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)

	ui.app.SetRoot(ui.root, true)
	ui.app.SetFocus(ui.clientTable)
}

func (ui *UI) setupKeybindings() {
	handler := func(event *tcell.EventKey) *tcell.EventKey {
		// Let dialogs and the search input handle their own keys.
		if ui.isDialogActive() {
			return event
		}
		if ui.debug {
			ui.logger.Printf("Input event: Key=%v Rune=%q Mod=%v", event.Key(), event.Rune(), event.Modifiers())
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			ui.app.Stop()
			return nil
		case tcell.KeyEsc:
			ui.clearSelection()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				ui.app.Stop()
				return nil
			case '1', '2', '3':
				ui.OnTabChange(table.Tabs[event.Rune()-'1'])
				return nil
			case '[':
				ui.cycleTab(-1)
				return nil
			case ']':
				ui.cycleTab(1)
				return nil
			case '/':
				ui.app.SetFocus(ui.search)
				return nil
			case 'f':
				ui.showStatusFilterModal()
				return nil
			case 's':
				ui.showSortPanel()
				return nil
			case ' ':
				ui.toggleCurrentRow()
				return nil
			case 'a':
				ui.toggleAll()
				return nil
			case 'e':
				ui.exportSelection()
				return nil
			case 'X':
				ui.showClearFiltersModal()
				return nil
			case 'D':
				ui.confirmDeleteSelected()
				return nil
			case 'i':
				ui.showStats()
				return nil
			case 'r':
				go func() {
					if err := ui.Refresh(ui.ctx); err != nil {
						ui.logger.Printf("Refresh failed: %v", err)
					}
				}()
				return nil
			case 't':
				if ui.themeName == "light" {
					ui.setTheme("dark")
				} else {
					ui.setTheme("light")
				}
				ui.applyTheme()
				ui.render()
				return nil
			case '?', 'h':
				ui.showHelp()
				return nil
			}
		}
		return event
	}
	ui.rootHandle = handler
	ui.app.SetInputCapture(handler)
}

// isDialogActive returns true when a dialog or input is focused to bypass global shortcuts.
func (ui *UI) isDialogActive() bool {
	if ui.panel != nil {
		return true
	}
	focused := ui.app.GetFocus()
	if focused == nil {
		return false
	}
	switch focused.(type) {
	case *tview.Form,
		*tview.Modal,
		*tview.InputField,
		*tview.Button,
		*tview.List:
		return true
	}
	return false
}

// showOverlay replaces the root with p and focuses it.
func (ui *UI) showOverlay(p tview.Primitive, focus tview.Primitive) {
	ui.lastFocus = ui.app.GetFocus()
	ui.app.SetRoot(p, true)
	ui.app.SetFocus(focus)
}

// restoreMainLayout returns to the table view after a dialog closes.
func (ui *UI) restoreMainLayout() {
	ui.panel = nil
	ui.app.SetRoot(ui.root, true)
	if ui.rootHandle != nil {
		ui.app.SetInputCapture(ui.rootHandle)
	}
	target := ui.lastFocus
	if target == nil || target == ui.search {
		target = ui.clientTable
	}
	ui.app.SetFocus(target)
}

// centered wraps p in a fixed-width, fixed-height card.
func (ui *UI) centered(p tview.Primitive, width, height int) *tview.Flex {
	pad := func() *tview.Box {
		b := tview.NewBox()
		b.SetBackgroundColor(ui.theme.Bg)
		return b
	}
	row := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(pad(), 0, 1, false).
		AddItem(p, width, 0, true).
		AddItem(pad(), 0, 1, false)
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(pad(), 0, 1, false).
		AddItem(row, height, 0, true).
		AddItem(pad(), 0, 1, false)
}

// setStatus updates the status bar. Call it from the UI goroutine or before Start.
func (ui *UI) setStatus(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")
	ui.statusBar.SetText(fmt.Sprintf("[%s]%s[-] [%s]|[-] %s [%s]|[-] %s",
		ui.theme.TagMuted, timestamp,
		ui.theme.TagMuted,
		message,
		ui.theme.TagMuted,
		ui.shortcutHints()))
}

func (ui *UI) shortcutHints() string {
	type kv struct{ key, label string }
	hints := []kv{{"?", "help"}, {"/", "search"}, {"f", "status"}, {"s", "sort"}}
	if ui.state.SelectedCount() > 0 {
		hints = append(hints, kv{"e", "export"}, kv{"Esc", "clear selection"})
	} else {
		hints = append(hints, kv{"Space", "select"})
	}
	if len(ui.state.ActiveFilters()) > 0 {
		hints = append(hints, kv{"X", "dismiss filters"})
	}
	hints = append(hints, kv{"q", "quit"})

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = fmt.Sprintf("[%s]%s[-]:%s", ui.theme.TagAccent, h.key, h.label)
	}
	return strings.Join(parts, " ")
}

func (ui *UI) setTheme(name string) {
	switch name {
	case "light":
		ui.themeName = "light"
		ui.theme = themeLight()
	default:
		ui.themeName = "dark"
		ui.theme = themeDark()
	}
}

// applyTheme pushes theme colors to widgets
func (ui *UI) applyTheme() {
	ui.header.SetBackgroundColor(ui.theme.Surface)
	ui.header.SetTextColor(ui.theme.TextPrimary)

	ui.search.SetBackgroundColor(ui.theme.Surface)
	ui.search.SetLabelColor(ui.theme.TextMuted)
	ui.search.SetFieldBackgroundColor(ui.theme.Bg)
	ui.search.SetFieldTextColor(ui.theme.TextPrimary)
	ui.search.SetPlaceholderTextColor(ui.theme.TextMuted)

	ui.badges.SetBackgroundColor(ui.theme.Surface)
	ui.badges.SetTextColor(ui.theme.TextPrimary)

	ui.clientTable.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	ui.clientTable.SetBorderColor(ui.theme.FocusBorder)
	ui.clientTable.SetBackgroundColor(ui.theme.Surface)

	ui.statusBar.SetTextColor(ui.theme.TextPrimary)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)
}

func (ui *UI) showHelp() {
	text := strings.Join([]string{
		"1 2 3 / [ ]   switch tab (All, Individual, Company)",
		"/             search name, email or id",
		"f             status filter",
		"s             sort panel",
		"Space         select row",
		"a             select or deselect all visible rows",
		"Esc           clear selection",
		"e             export selected rows as JSON",
		"X             dismiss search, status or sorts",
		"D             delete selected clients (database source)",
		"r             reload clients",
		"i             session stats",
		"t             toggle theme",
		"q             quit",
	}, "\n")

	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) { ui.restoreMainLayout() })
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	ui.showOverlay(modal, modal)
}

// showStats writes GetStats to the status bar.
func (ui *UI) showStats() {
	ui.setStatus("[%s]%s[-]", ui.theme.TagAccent, FormatStats(ui.GetStats()))
}

// FormatStats renders stats as key=value pairs in key order.
func FormatStats(stats map[string]interface{}) string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, stats[k])
	}
	return strings.Join(parts, " ")
}

// GetStats returns UI statistics
func (ui *UI) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"clients_loaded":  len(ui.records),
		"clients_visible": len(ui.rows),
		"selected":        ui.state.SelectedCount(),
		"sort_criteria":   ui.state.Criteria.String(),
		"prefs_backend":   ui.prefs.Name(),
		"theme":           ui.themeName,
	}
}
