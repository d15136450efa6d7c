package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/Ashfaaq98/clients-console/internal/bus"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// OnTabChange switches the category tab.
func (ui *UI) OnTabChange(tab table.Tab) {
	if tab == ui.state.Tab {
		return
	}
	ui.state = ui.state.WithTab(tab)
	ui.render()
	ui.setStatus("[%s]Tab: %s[-]", ui.theme.TagAccent, tab.Label())
}

// OnSearchChange applies a new search query on every keystroke.
func (ui *UI) OnSearchChange(query string) {
	if query == ui.state.Query {
		return
	}
	ui.state = ui.state.WithQuery(query)
	ui.render()
}

// OnStatusFilterChange applies a status filter.
func (ui *UI) OnStatusFilterChange(status table.StatusFilter) {
	ui.state = ui.state.WithStatus(status)
	ui.render()
	ui.setStatus("[%s]Status filter: %s[-]", ui.theme.TagAccent, titleCase.String(string(status)))
}

// OnSortCriteriaChange replaces the sort criteria, re-renders, then saves
// and publishes the new list. Persistence failures keep the in-memory list.
func (ui *UI) OnSortCriteriaChange(criteria table.Criteria) {
	if err := criteria.Validate(); err != nil {
		ui.logger.Printf("Rejected sort criteria [%s]: %v", criteria, err)
		ui.setStatus("[%s]Invalid sort: %v[-]", ui.theme.TagError, err)
		return
	}
	ui.state = ui.state.WithCriteria(criteria)
	ui.render()
	if ui.panel != nil {
		ui.panel.refresh()
	}
	ui.persistCriteria(criteria)
}

func (ui *UI) persistCriteria(criteria table.Criteria) {
	ctx, cancel := context.WithTimeout(ui.ctx, 2*time.Second)
	defer cancel()

	if err := ui.prefs.Save(ctx, criteria); err != nil {
		ui.logger.Printf("Failed to save sort criteria to %s: %v", ui.prefs.Name(), err)
		ui.setStatus("[%s]Sort applied (not saved: %v)[-]", ui.theme.TagWarning, err)
		return
	}
	change := bus.CriteriaChange{
		Origin:    ui.bus.Origin(),
		Backend:   ui.prefs.Name(),
		Criteria:  criteria.Clone(),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := ui.bus.PublishCriteriaChange(ctx, change); err != nil {
		ui.logger.Printf("Failed to publish sort criteria: %v", err)
	}
	ui.setStatus("[%s]Sort: %s[-]", ui.theme.TagSuccess, describeCriteria(criteria))
}

// applyExternalCriteria adopts criteria changed by another console. It is
// neither saved nor republished.
func (ui *UI) applyExternalCriteria(criteria table.Criteria, origin string) {
	if criteria.Equal(ui.state.Criteria) {
		return
	}
	ui.logger.Printf("Applying sort criteria from %s: [%s]", origin, criteria)
	ui.state = ui.state.WithCriteria(criteria)
	ui.render()
	if ui.panel != nil {
		ui.panel.refresh()
	}
	ui.setStatus("[%s]Sort updated elsewhere: %s[-]", ui.theme.TagAccent, describeCriteria(criteria))
}

func describeCriteria(criteria table.Criteria) string {
	if len(criteria) == 0 {
		return "none"
	}
	parts := make([]string, len(criteria))
	for i, c := range criteria {
		parts[i] = fmt.Sprintf("%s (%s)", c.Field.Label(), table.DirectionLabel(c.Field, c.Direction))
	}
	return strings.Join(parts, ", ")
}

func (ui *UI) cycleTab(delta int) {
	idx := 0
	for i, t := range table.Tabs {
		if t == ui.state.Tab {
			idx = i
		}
	}
	n := len(table.Tabs)
	ui.OnTabChange(table.Tabs[((idx+delta)%n+n)%n])
}

func (ui *UI) toggleCurrentRow() {
	c, ok := ui.currentRow()
	if !ok {
		return
	}
	ui.state = ui.state.ToggleSelected(c.ID)
	ui.render()
}

func (ui *UI) toggleAll() {
	ui.state = ui.state.ToggleAll(ui.rows)
	ui.render()
	ui.setStatus("[%s]%d selected[-]", ui.theme.TagAccent, ui.state.SelectedCount())
}

func (ui *UI) clearSelection() {
	if ui.state.SelectedCount() == 0 {
		ui.setStatus("[%s]Ready[-]", ui.theme.TagAccent)
		return
	}
	ui.state = ui.state.ClearSelection()
	ui.render()
	ui.setStatus("[%s]Selection cleared[-]", ui.theme.TagAccent)
}

// clearFilters resets search, status and sorts; the cleared criteria are persisted.
func (ui *UI) clearFilters() {
	hadCriteria := len(ui.state.Criteria) > 0
	ui.state = ui.state.ClearFilters()
	if ui.search.GetText() != "" {
		ui.search.SetText("")
	}
	ui.render()
	if hadCriteria {
		ui.persistCriteria(ui.state.Criteria)
	}
	ui.setStatus("[%s]Filters cleared[-]", ui.theme.TagSuccess)
}

// filterBadge names one dismissible filter badge.
type filterBadge int

const (
	badgeSearch filterBadge = iota
	badgeStatus
	badgeSorts
)

// dismissFilter clears a single badge and leaves the others in place.
func (ui *UI) dismissFilter(b filterBadge) {
	switch b {
	case badgeSearch:
		// SetText fires the changed func, which applies the empty query.
		ui.search.SetText("")
		ui.setStatus("[%s]Search cleared[-]", ui.theme.TagSuccess)
	case badgeStatus:
		ui.OnStatusFilterChange(table.StatusAll)
	case badgeSorts:
		ui.ClearSorts()
	}
}

// showClearFiltersModal offers one button per active badge, plus All when
// more than one is active.
func (ui *UI) showClearFiltersModal() {
	type choice struct {
		label string
		apply func()
	}
	var choices []choice
	if ui.state.Query != "" {
		choices = append(choices, choice{"Search", func() { ui.dismissFilter(badgeSearch) }})
	}
	if ui.state.Status != table.StatusAll {
		choices = append(choices, choice{"Status", func() { ui.dismissFilter(badgeStatus) }})
	}
	if len(ui.state.Criteria) > 0 {
		choices = append(choices, choice{"Sorts", func() { ui.dismissFilter(badgeSorts) }})
	}
	if len(choices) == 0 {
		ui.setStatus("[%s]No filters applied[-]", ui.theme.TagMuted)
		return
	}
	if len(choices) > 1 {
		choices = append(choices, choice{"All", ui.clearFilters})
	}
	choices = append(choices, choice{"Cancel", nil})

	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.label
	}
	modal := tview.NewModal().
		SetText("Dismiss which filter?\n\n" + strings.Join(ui.state.ActiveFilters(), "\n")).
		AddButtons(labels).
		SetDoneFunc(func(buttonIndex int, _ string) {
			ui.restoreMainLayout()
			if buttonIndex >= 0 && buttonIndex < len(choices) && choices[buttonIndex].apply != nil {
				choices[buttonIndex].apply()
			}
		})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	ui.showOverlay(modal, modal)
}

func (ui *UI) showStatusFilterModal() {
	labels := make([]string, len(table.StatusFilters))
	for i, s := range table.StatusFilters {
		labels[i] = titleCase.String(string(s))
	}
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Filter by status (current: %s)", titleCase.String(string(ui.state.Status)))).
		AddButtons(labels).
		SetDoneFunc(func(buttonIndex int, _ string) {
			ui.restoreMainLayout()
			if buttonIndex >= 0 && buttonIndex < len(table.StatusFilters) {
				ui.OnStatusFilterChange(table.StatusFilters[buttonIndex])
			}
		})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	ui.showOverlay(modal, modal)
}

func (ui *UI) exportSelection() {
	path, n, err := ui.writeExport(time.Now())
	if err != nil {
		ui.logger.Printf("Export failed: %v", err)
		ui.setStatus("[%s]Export failed: %v[-]", ui.theme.TagError, err)
		return
	}
	if n == 0 {
		ui.setStatus("[%s]No rows selected. Use Space to select rows first.[-]", ui.theme.TagWarning)
		return
	}
	ui.logger.Printf("Exported %d clients to %s", n, path)
	ui.setStatus("[%s]Exported %d clients to %s[-]", ui.theme.TagSuccess, n, path)
}

// writeExport writes the selected visible rows, in view order, as a JSON array.
func (ui *UI) writeExport(now time.Time) (string, int, error) {
	selected := ui.state.SelectedIn(ui.rows)
	if len(selected) == 0 {
		return "", 0, nil
	}
	if err := os.MkdirAll(ui.exportDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create export dir: %w", err)
	}
	data, err := json.MarshalIndent(selected, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode export: %w", err)
	}
	path := filepath.Join(ui.exportDir, fmt.Sprintf("clients-%s.json", now.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write export: %w", err)
	}
	return path, len(selected), nil
}

// clientDeleter is implemented by record sources that can remove clients.
type clientDeleter interface {
	DeleteClients(ctx context.Context, ids []string) (int64, error)
}

// confirmDeleteSelected asks before deleting the selected visible rows.
func (ui *UI) confirmDeleteSelected() {
	if _, ok := ui.source.(clientDeleter); !ok {
		ui.setStatus("[%s]This client source is read-only[-]", ui.theme.TagWarning)
		return
	}
	selected := ui.state.SelectedIn(ui.rows)
	if len(selected) == 0 {
		ui.setStatus("[%s]No rows selected. Use Space to select rows first.[-]", ui.theme.TagWarning)
		return
	}
	ids := make([]string, len(selected))
	for i, c := range selected {
		ids[i] = c.ID
	}

	modal := tview.NewModal().
		SetText(fmt.Sprintf("Delete %d selected clients?\nThis cannot be undone.", len(ids))).
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(buttonIndex int, _ string) {
			ui.restoreMainLayout()
			if buttonIndex != 0 {
				return
			}
			go func() {
				if _, err := ui.deleteClients(ui.ctx, ids); err != nil {
					ui.logger.Printf("Delete failed: %v", err)
					ui.update(func() { ui.setStatus("[%s]Delete failed: %v[-]", ui.theme.TagError, err) })
				}
			}()
		})
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	ui.showOverlay(modal, modal)
}

// deleteClients removes ids from the source, drops them from the selection
// and reloads the records.
func (ui *UI) deleteClients(ctx context.Context, ids []string) (int64, error) {
	deleter, ok := ui.source.(clientDeleter)
	if !ok {
		return 0, fmt.Errorf("client source is read-only")
	}
	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	n, err := deleter.DeleteClients(dctx, ids)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("failed to delete clients: %w", err)
	}
	ui.logger.Printf("Deleted %d clients", n)

	ui.update(func() {
		next := ui.state
		for _, id := range ids {
			if next.IsSelected(id) {
				next = next.ToggleSelected(id)
			}
		}
		ui.state = next
	})
	if err := ui.Refresh(ctx); err != nil {
		return n, err
	}
	ui.update(func() { ui.setStatus("[%s]Deleted %d clients[-]", ui.theme.TagSuccess, n) })
	return n, nil
}
