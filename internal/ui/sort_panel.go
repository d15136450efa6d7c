package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

// sortPanel is the modal for building the sort criteria list. The left
// list adds a field/direction pair, the right list shows the applied
// sorts in priority order.
type sortPanel struct {
	ui      *UI
	options *tview.List
	applied *tview.List
	frame   *tview.Flex
}

type sortOption struct {
	field table.SortField
	dir   table.Direction
}

func sortOptions() []sortOption {
	out := make([]sortOption, 0, len(table.Fields)*2)
	for _, f := range table.Fields {
		out = append(out, sortOption{f, table.Asc}, sortOption{f, table.Desc})
	}
	return out
}

func newSortPanel(ui *UI) *sortPanel {
	p := &sortPanel{ui: ui}

	p.options = tview.NewList().ShowSecondaryText(false)
	p.options.SetTitle(" Add sort ")
	p.options.SetBorder(true)
	p.options.SetTitleAlign(tview.AlignLeft)

	p.applied = tview.NewList().ShowSecondaryText(false)
	p.applied.SetTitle(" Applied (priority order) ")
	p.applied.SetBorder(true)
	p.applied.SetTitleAlign(tview.AlignLeft)
	p.applied.SetInputCapture(p.appliedKeys)

	for _, l := range []*tview.List{p.options, p.applied} {
		l.SetMainTextColor(ui.theme.TextPrimary)
		l.SetSelectedTextColor(ui.theme.SelectionFg)
		l.SetSelectedBackgroundColor(ui.theme.SelectionBg)
		l.SetBackgroundColor(ui.theme.Surface)
		l.SetBorderColor(ui.theme.Border)
	}

	hint := tview.NewTextView().SetDynamicColors(true)
	hint.SetBackgroundColor(ui.theme.Surface)
	hint.SetText(fmt.Sprintf(" [%[1]s]Enter[-]:add [%[1]s]t[-]:toggle [%[1]s]x[-]:remove [%[1]s]K/J[-]:move [%[1]s]c[-]:clear [%[1]s]Tab[-]:switch [%[1]s]Esc[-]:close",
		ui.theme.TagAccent))

	lists := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(p.options, 0, 1, true).
		AddItem(p.applied, 0, 1, false)

	p.frame = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(lists, 0, 1, true).
		AddItem(hint, 1, 0, false)
	p.frame.SetBorder(true)
	p.frame.SetTitle(" Sort ")
	p.frame.SetBorderColor(ui.theme.FocusBorder)
	p.frame.SetBackgroundColor(ui.theme.Surface)
	p.frame.SetInputCapture(p.panelKeys)

	p.refresh()
	return p
}

// refresh rebuilds both lists from the current criteria, keeping the cursor.
func (p *sortPanel) refresh() {
	criteria := p.ui.state.Criteria

	optIdx := p.options.GetCurrentItem()
	p.options.Clear()
	for _, o := range sortOptions() {
		o := o
		mark := "  "
		if d, ok := criteria.Lookup(o.field); ok && d == o.dir {
			mark = "✓ "
		}
		p.options.AddItem(fmt.Sprintf("%s%s: %s", mark, o.field.Label(), table.DirectionLabel(o.field, o.dir)), "", 0, func() {
			p.ui.ApplySort(o.field, o.dir)
		})
	}
	p.options.SetCurrentItem(optIdx)

	appliedIdx := p.applied.GetCurrentItem()
	p.applied.Clear()
	if len(criteria) == 0 {
		p.applied.AddItem(fmt.Sprintf("[%s]No sorts applied[-]", p.ui.theme.TagMuted), "", 0, nil)
		return
	}
	for i, c := range criteria {
		p.applied.AddItem(fmt.Sprintf("%d. %s (%s)", i+1, c.Field.Label(), table.DirectionLabel(c.Field, c.Direction)), "", 0, nil)
	}
	if appliedIdx >= len(criteria) {
		appliedIdx = len(criteria) - 1
	}
	p.applied.SetCurrentItem(appliedIdx)
}

func (p *sortPanel) panelKeys(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyEsc:
		p.ui.restoreMainLayout()
		return nil
	case tcell.KeyTab, tcell.KeyBacktab:
		if p.ui.app.GetFocus() == p.options {
			p.ui.app.SetFocus(p.applied)
		} else {
			p.ui.app.SetFocus(p.options)
		}
		return nil
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'c':
			p.ui.ClearSorts()
			return nil
		case 'q':
			p.ui.restoreMainLayout()
			return nil
		}
	}
	return ev
}

// selectedIndex returns the criterion position under the applied-list cursor.
func (p *sortPanel) selectedIndex() (int, bool) {
	i := p.applied.GetCurrentItem()
	if i < 0 || i >= len(p.ui.state.Criteria) {
		return 0, false
	}
	return i, true
}

func (p *sortPanel) appliedKeys(ev *tcell.EventKey) *tcell.EventKey {
	i, ok := p.selectedIndex()
	// move drops the selected sort onto the one at position to.
	move := func(to int) *tcell.EventKey {
		criteria := p.ui.state.Criteria
		if !ok || to < 0 || to >= len(criteria) {
			return nil
		}
		if p.ui.ReorderSort(criteria[i].Field, criteria[to].Field) == nil {
			p.applied.SetCurrentItem(to)
		}
		return nil
	}

	switch ev.Key() {
	case tcell.KeyUp:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return move(i - 1)
		}
	case tcell.KeyDown:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return move(i + 1)
		}
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		if ok {
			p.ui.RemoveSort(p.ui.state.Criteria[i].Field)
		}
		return nil
	case tcell.KeyRune:
		switch ev.Rune() {
		case 't':
			if ok {
				p.ui.ToggleSort(p.ui.state.Criteria[i].Field)
			}
			return nil
		case 'x':
			if ok {
				p.ui.RemoveSort(p.ui.state.Criteria[i].Field)
			}
			return nil
		case 'K':
			return move(i - 1)
		case 'J':
			return move(i + 1)
		}
	}
	return ev
}

func (ui *UI) showSortPanel() {
	ui.panel = newSortPanel(ui)
	ui.showOverlay(ui.centered(ui.panel.frame, 90, 18), ui.panel.options)
}

// ApplySort adds field with dir as the lowest priority sort, replacing any
// existing entry for field.
func (ui *UI) ApplySort(field table.SortField, dir table.Direction) {
	ui.OnSortCriteriaChange(ui.state.Criteria.Set(field, dir))
}

// RemoveSort drops field from the criteria.
func (ui *UI) RemoveSort(field table.SortField) {
	ui.OnSortCriteriaChange(ui.state.Criteria.Remove(field))
}

// ToggleSort flips the direction of field.
func (ui *UI) ToggleSort(field table.SortField) {
	ui.OnSortCriteriaChange(ui.state.Criteria.Toggle(field))
}

// ReorderSort moves the sort on active to the position held by over.
// Fields without a sort leave the list untouched.
func (ui *UI) ReorderSort(active, over table.SortField) error {
	next, err := ui.state.Criteria.MoveField(active, over)
	if err != nil {
		return err
	}
	ui.OnSortCriteriaChange(next)
	return nil
}

// ClearSorts removes every sort.
func (ui *UI) ClearSorts() {
	ui.OnSortCriteriaChange(ui.state.Criteria.Clear())
}
