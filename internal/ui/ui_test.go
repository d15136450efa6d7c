package ui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/clients-console/internal/bus"
	"github.com/Ashfaaq98/clients-console/internal/client"
	"github.com/Ashfaaq98/clients-console/internal/prefs"
	"github.com/Ashfaaq98/clients-console/internal/store"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// recordingBus captures published changes.
type recordingBus struct {
	mu        sync.Mutex
	published []bus.CriteriaChange
}

func (b *recordingBus) Origin() string { return "test-origin" }

func (b *recordingBus) PublishCriteriaChange(ctx context.Context, change bus.CriteriaChange) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, change)
	return nil
}

func (b *recordingBus) ReadCriteriaChanges(ctx context.Context, handler bus.ChangeHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *recordingBus) HealthCheck(ctx context.Context) error { return nil }
func (b *recordingBus) Close() error { return nil }

// failingStore loads nothing and refuses every save.
type failingStore struct{}

func (failingStore) Name() string { return "failing" }
func (failingStore) Load(context.Context) (table.Criteria, bool) { return nil, false }
func (failingStore) Save(context.Context, table.Criteria) error { return errors.New("disk full") }
func (failingStore) Delete(context.Context) error { return nil }
func (failingStore) Close() error { return nil }

type errSource struct{}

func (errSource) ListClients(context.Context) ([]client.Client, error) {
	return nil, errors.New("database locked")
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestUI(t *testing.T, store prefs.Store, b bus.Bus) *UI {
	t.Helper()
	ui := NewUI(context.Background(), client.SampleSource{}, store, b, quietLogger(), Options{ExportDir: t.TempDir()})
	if err := ui.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	return ui
}

func rowIDs(ui *UI) []string {
	ids := make([]string, 0, len(ui.rows))
	for r := 1; r < ui.clientTable.GetRowCount(); r++ {
		ids = append(ids, ui.clientTable.GetCell(r, 1).Text)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewUI(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)

	if len(ui.records) != 8 {
		t.Errorf("Expected 8 clients loaded, got %d", len(ui.records))
	}
	if got := ui.clientTable.GetRowCount(); got != 9 {
		t.Errorf("Expected header plus 8 rows, got %d", got)
	}
	if ui.state.Tab != table.TabAll || ui.state.Status != table.StatusAll {
		t.Errorf("Unexpected initial state: %+v", ui.state)
	}
	if len(ui.state.Criteria) != 0 {
		t.Errorf("Expected no criteria without saved preferences, got %s", ui.state.Criteria)
	}

	stats := ui.GetStats()
	if stats["selected"] != 0 {
		t.Error("selected should be 0 initially")
	}
	if stats["prefs_backend"] != "none" {
		t.Errorf("Unexpected backend %v", stats["prefs_backend"])
	}
}

func TestNewUIRestoresSavedCriteria(t *testing.T) {
	store := prefs.NewNullStore(nil)
	saved := table.Criteria{{Field: table.FieldName, Direction: table.Asc}}
	if err := store.Save(context.Background(), saved); err != nil {
		t.Fatal(err)
	}

	ui := newTestUI(t, store, nil)
	if !ui.state.Criteria.Equal(saved) {
		t.Fatalf("Expected restored criteria %s, got %s", saved, ui.state.Criteria)
	}
	if got := ui.clientTable.GetCell(1, 2).Text; got != "Alice Johnson" {
		t.Errorf("Expected Alice Johnson first, got %q", got)
	}
	if got := ui.clientTable.GetCell(0, 2).Text; got != "Client Name ↑" {
		t.Errorf("Expected sort indicator on name header, got %q", got)
	}
}

func TestTabStatusAndSearch(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)

	ui.OnTabChange(table.TabIndividual)
	ui.OnStatusFilterChange(table.StatusActive)
	if got, want := rowIDs(ui), []string{"20", "21", "23", "27"}; !equalStrings(got, want) {
		t.Errorf("individual+active: got %v, want %v", got, want)
	}

	ui.OnTabChange(table.TabCompany)
	ui.OnStatusFilterChange(table.StatusAll)
	if got, want := rowIDs(ui), []string{"22", "24", "26"}; !equalStrings(got, want) {
		t.Errorf("company: got %v, want %v", got, want)
	}

	ui.OnSearchChange("CORP")
	if got, want := rowIDs(ui), []string{"24"}; !equalStrings(got, want) {
		t.Errorf("search: got %v, want %v", got, want)
	}

	ui.OnSearchChange("nobody")
	if got := ui.clientTable.GetCell(1, 1).Text; got != "No clients found." {
		t.Errorf("Expected empty message, got %q", got)
	}
}

func TestCycleTab(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)

	ui.cycleTab(-1)
	if ui.state.Tab != table.TabCompany {
		t.Errorf("Expected wrap to company, got %s", ui.state.Tab)
	}
	ui.cycleTab(1)
	if ui.state.Tab != table.TabAll {
		t.Errorf("Expected wrap to all, got %s", ui.state.Tab)
	}
}

func TestSortChangesAreSavedAndPublished(t *testing.T) {
	store := prefs.NewNullStore(nil)
	rb := &recordingBus{}
	ui := newTestUI(t, store, rb)

	ui.ApplySort(table.FieldID, table.Asc)
	ui.ApplySort(table.FieldName, table.Asc)
	ui.ToggleSort(table.FieldID)

	want := table.Criteria{
		{Field: table.FieldID, Direction: table.Desc},
		{Field: table.FieldName, Direction: table.Asc},
	}
	if !ui.state.Criteria.Equal(want) {
		t.Fatalf("Expected %s, got %s", want, ui.state.Criteria)
	}
	if got := ui.clientTable.GetCell(1, 1).Text; got != "27" {
		t.Errorf("Expected id 27 first, got %q", got)
	}
	if got := ui.clientTable.GetCell(0, 1).Text; got != "Client ID ↓1" {
		t.Errorf("Unexpected id header %q", got)
	}

	saved, ok := store.Load(context.Background())
	if !ok || !saved.Equal(want) {
		t.Errorf("Expected saved %s, got %s (ok=%v)", want, saved, ok)
	}
	if len(rb.published) != 3 {
		t.Fatalf("Expected 3 published changes, got %d", len(rb.published))
	}
	last := rb.published[2]
	if last.Origin != "test-origin" || last.Backend != "none" || !last.Criteria.Equal(want) {
		t.Errorf("Unexpected change %+v", last)
	}
}

func TestMoveAndRemoveSort(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)
	ui.ApplySort(table.FieldCategory, table.Asc)
	ui.ApplySort(table.FieldName, table.Desc)

	before := ui.state.Criteria.Clone()
	if err := ui.ReorderSort(table.FieldEmail, table.FieldName); !errors.Is(err, table.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
	if !ui.state.Criteria.Equal(before) {
		t.Errorf("Invalid move changed criteria: %s", ui.state.Criteria)
	}
	if err := ui.ReorderSort(table.FieldName, table.FieldName); err != nil || !ui.state.Criteria.Equal(before) {
		t.Errorf("Dropping a sort on itself should be a no-op, got %s (%v)", ui.state.Criteria, err)
	}

	if err := ui.ReorderSort(table.FieldName, table.FieldCategory); err != nil {
		t.Fatalf("ReorderSort failed: %v", err)
	}
	if ui.state.Criteria[0].Field != table.FieldName {
		t.Errorf("Expected name first after move, got %s", ui.state.Criteria)
	}

	ui.RemoveSort(table.FieldName)
	if len(ui.state.Criteria) != 1 || ui.state.Criteria[0].Field != table.FieldCategory {
		t.Errorf("Unexpected criteria after remove: %s", ui.state.Criteria)
	}

	ui.ClearSorts()
	if len(ui.state.Criteria) != 0 {
		t.Errorf("Expected no criteria after clear, got %s", ui.state.Criteria)
	}
}

func TestSortPanelRefresh(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)
	ui.panel = newSortPanel(ui)

	if got := ui.panel.options.GetItemCount(); got != 12 {
		t.Errorf("Expected 12 sort options, got %d", got)
	}
	if got := ui.panel.applied.GetItemCount(); got != 1 {
		t.Errorf("Expected placeholder item, got %d", got)
	}

	ui.ApplySort(table.FieldCreatedAt, table.Desc)
	main, _ := ui.panel.applied.GetItemText(0)
	if main != "1. Created At (Newest to Oldest)" {
		t.Errorf("Unexpected applied item %q", main)
	}

	ui.restoreMainLayout()
	if ui.panel != nil {
		t.Error("panel should be cleared when the main layout is restored")
	}
}

func TestSaveFailureKeepsInMemoryCriteria(t *testing.T) {
	rb := &recordingBus{}
	ui := newTestUI(t, failingStore{}, rb)

	ui.ApplySort(table.FieldEmail, table.Asc)
	if len(ui.state.Criteria) != 1 {
		t.Fatalf("Expected criteria to apply despite save failure, got %s", ui.state.Criteria)
	}
	if got := ui.clientTable.GetCell(1, 4).Text; got != "alice@company.com" {
		t.Errorf("Expected email sort to apply, got %q", got)
	}
	if len(rb.published) != 0 {
		t.Error("unsaved criteria should not be published")
	}
}

func TestExternalCriteriaAreNotResaved(t *testing.T) {
	rb := &recordingBus{}
	ui := newTestUI(t, prefs.NewNullStore(nil), rb)

	external := table.Criteria{{Field: table.FieldUpdatedAt, Direction: table.Desc}}
	ui.applyExternalCriteria(external, "test")

	if !ui.state.Criteria.Equal(external) {
		t.Errorf("Expected %s, got %s", external, ui.state.Criteria)
	}
	if _, ok := ui.prefs.Load(context.Background()); ok {
		t.Error("external criteria should not be saved again")
	}
	if len(rb.published) != 0 {
		t.Error("external criteria should not be republished")
	}
}

func TestSelection(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)
	header := func() string { return ui.clientTable.GetCell(0, 0).Text }

	if header() != tview.Escape("[ ]") {
		t.Errorf("Expected empty header mark, got %q", header())
	}

	ui.toggleAll()
	if ui.state.SelectedCount() != 8 || header() != tview.Escape("[x]") {
		t.Errorf("Expected all selected, got %d (%q)", ui.state.SelectedCount(), header())
	}

	ui.clientTable.Select(1, 0)
	ui.toggleCurrentRow()
	if ui.state.SelectedCount() != 7 || header() != tview.Escape("[-]") {
		t.Errorf("Expected partial selection, got %d (%q)", ui.state.SelectedCount(), header())
	}

	ui.toggleAll()
	if ui.state.SelectedCount() != 8 {
		t.Errorf("Expected select all from partial, got %d", ui.state.SelectedCount())
	}

	ui.clearSelection()
	if ui.state.SelectedCount() != 0 {
		t.Errorf("Expected selection cleared, got %d", ui.state.SelectedCount())
	}
}

func TestExportSelection(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)

	if _, n, err := ui.writeExport(time.Now()); err != nil || n != 0 {
		t.Fatalf("Expected nothing to export, got n=%d err=%v", n, err)
	}

	ui.OnTabChange(table.TabCompany)
	ui.ApplySort(table.FieldName, table.Desc)
	ui.toggleAll()

	path, n, err := ui.writeExport(time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("writeExport failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 exported clients, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exported []client.Client
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("export is not a JSON array of clients: %v", err)
	}
	names := []string{exported[0].Name, exported[1].Name, exported[2].Name}
	if want := []string{"Tech Solutions Ltd", "Corporate Inc", "Alice Johnson"}; !equalStrings(names, want) {
		t.Errorf("Expected export in view order %v, got %v", want, names)
	}
}

func TestClearFilters(t *testing.T) {
	store := prefs.NewNullStore(nil)
	ui := newTestUI(t, store, nil)

	ui.OnTabChange(table.TabIndividual)
	ui.search.SetText("email")
	ui.OnStatusFilterChange(table.StatusInactive)
	ui.ApplySort(table.FieldName, table.Asc)

	if got := len(ui.state.ActiveFilters()); got != 3 {
		t.Fatalf("Expected 3 badges, got %d", got)
	}

	ui.clearFilters()
	if ui.state.Query != "" || ui.state.Status != table.StatusAll || len(ui.state.Criteria) != 0 {
		t.Errorf("Filters not cleared: %+v", ui.state)
	}
	if ui.state.Tab != table.TabIndividual {
		t.Errorf("Tab should be kept, got %s", ui.state.Tab)
	}
	if ui.search.GetText() != "" {
		t.Error("search input should be cleared")
	}
	saved, ok := store.Load(context.Background())
	if !ok || len(saved) != 0 {
		t.Errorf("Expected cleared criteria to be saved, got %s (ok=%v)", saved, ok)
	}
}

func TestRefreshError(t *testing.T) {
	ui := NewUI(context.Background(), errSource{}, nil, nil, quietLogger(), Options{})
	if err := ui.Refresh(context.Background()); err == nil {
		t.Error("Expected refresh error")
	}
	if len(ui.records) != 0 {
		t.Errorf("Expected no records, got %d", len(ui.records))
	}
}

func TestSortPanelReorderKeys(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)
	ui.ApplySort(table.FieldCategory, table.Asc)
	ui.ApplySort(table.FieldName, table.Desc)
	ui.showSortPanel()

	ui.panel.applied.SetCurrentItem(1)
	ui.panel.appliedKeys(tcell.NewEventKey(tcell.KeyRune, 'K', tcell.ModNone))
	want := table.Criteria{
		{Field: table.FieldName, Direction: table.Desc},
		{Field: table.FieldCategory, Direction: table.Asc},
	}
	if !ui.state.Criteria.Equal(want) {
		t.Fatalf("Expected %s after moving up, got %s", want, ui.state.Criteria)
	}

	// Moving the first entry further up is ignored.
	ui.panel.applied.SetCurrentItem(0)
	ui.panel.appliedKeys(tcell.NewEventKey(tcell.KeyRune, 'K', tcell.ModNone))
	if !ui.state.Criteria.Equal(want) {
		t.Errorf("Expected criteria unchanged, got %s", ui.state.Criteria)
	}
}

func TestDismissSingleFilter(t *testing.T) {
	store := prefs.NewNullStore(nil)
	ui := newTestUI(t, store, nil)

	ui.search.SetText("email")
	ui.OnStatusFilterChange(table.StatusActive)
	ui.ApplySort(table.FieldName, table.Asc)

	ui.dismissFilter(badgeStatus)
	if ui.state.Status != table.StatusAll {
		t.Errorf("Expected status cleared, got %s", ui.state.Status)
	}
	if ui.state.Query != "email" || len(ui.state.Criteria) != 1 {
		t.Errorf("Other filters should be kept: %+v", ui.state)
	}

	ui.dismissFilter(badgeSearch)
	if ui.state.Query != "" || ui.search.GetText() != "" {
		t.Errorf("Expected search cleared, got %q", ui.state.Query)
	}
	if len(ui.state.Criteria) != 1 {
		t.Errorf("Sorts should be kept, got %s", ui.state.Criteria)
	}

	ui.dismissFilter(badgeSorts)
	if len(ui.state.Criteria) != 0 {
		t.Errorf("Expected sorts cleared, got %s", ui.state.Criteria)
	}
	saved, ok := store.Load(context.Background())
	if !ok || len(saved) != 0 {
		t.Errorf("Expected cleared sorts to be saved, got %s (ok=%v)", saved, ok)
	}
	if got := len(ui.state.ActiveFilters()); got != 0 {
		t.Errorf("Expected no badges, got %d", got)
	}
}

func TestClearFiltersModal(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)

	ui.showClearFiltersModal()
	if _, ok := ui.app.GetFocus().(*tview.Modal); ok {
		t.Error("No modal expected without active filters")
	}

	ui.OnStatusFilterChange(table.StatusInactive)
	ui.showClearFiltersModal()
	if _, ok := ui.app.GetFocus().(*tview.Modal); !ok {
		t.Fatal("Expected the dismiss modal to be focused")
	}
	if !ui.isDialogActive() {
		t.Error("Global shortcuts should be disabled while the modal is open")
	}
	ui.restoreMainLayout()
}

func TestShowStats(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)
	ui.ApplySort(table.FieldID, table.Desc)

	ui.showStats()
	text := ui.statusBar.GetText(true)
	for _, want := range []string{"clients_loaded=8", "prefs_backend=none", "sort_criteria=id:desc"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in status bar, got %q", want, text)
		}
	}

	got := FormatStats(map[string]interface{}{"b": 2, "a": "x"})
	if got != "a=x b=2" {
		t.Errorf("Unexpected FormatStats output %q", got)
	}
}

func TestDeleteSelectedClients(t *testing.T) {
	db, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if _, err := db.SaveClients(ctx, client.SampleClients()); err != nil {
		t.Fatalf("SaveClients failed: %v", err)
	}

	ui := NewUI(ctx, db, prefs.NewNullStore(nil), nil, quietLogger(), Options{})
	if err := ui.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	ui.state = ui.state.ToggleSelected("20").ToggleSelected("22")

	n, err := ui.deleteClients(ctx, []string{"20", "22"})
	if err != nil {
		t.Fatalf("deleteClients failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 deleted, got %d", n)
	}
	if len(ui.records) != 6 {
		t.Errorf("Expected 6 clients after reload, got %d", len(ui.records))
	}
	if ui.state.SelectedCount() != 0 {
		t.Errorf("Deleted rows should leave the selection, got %d selected", ui.state.SelectedCount())
	}
	count, err := db.CountClients(ctx)
	if err != nil || count != 6 {
		t.Errorf("Expected 6 clients in database, got %d (%v)", count, err)
	}
}

func TestDeleteRequiresWritableSource(t *testing.T) {
	ui := newTestUI(t, prefs.NewNullStore(nil), nil)
	ui.state = ui.state.ToggleSelected("20")

	ui.confirmDeleteSelected()
	if _, ok := ui.app.GetFocus().(*tview.Modal); ok {
		t.Error("Sample source must not offer deletion")
	}
	if !strings.Contains(ui.statusBar.GetText(true), "read-only") {
		t.Errorf("Expected read-only status, got %q", ui.statusBar.GetText(true))
	}
	if _, err := ui.deleteClients(context.Background(), []string{"20"}); err == nil {
		t.Error("Expected an error deleting from the sample source")
	}
}
