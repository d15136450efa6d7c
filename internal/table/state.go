package table

import (
	"fmt"

	"github.com/Ashfaaq98/clients-console/internal/client"
)

// SelectionState summarises how much of the visible set is selected.
type SelectionState int

const (
	SelectionNone SelectionState = iota
	SelectionPartial
	SelectionAll
)

// State is an immutable snapshot of the page controls. Transitions
// return a new State and never touch the receiver.
type State struct {
	Tab      Tab
	Query    string
	Status   StatusFilter
	Criteria Criteria

	selected map[string]struct{}
}

// NewState returns the initial page state with the given restored criteria.
func NewState(criteria Criteria) State {
	return State{
		Tab:      TabAll,
		Status:   StatusAll,
		Criteria: criteria.Clone(),
	}
}

func (s State) WithTab(t Tab) State {
	s.Tab = t
	return s
}

func (s State) WithQuery(q string) State {
	s.Query = q
	return s
}

func (s State) WithStatus(f StatusFilter) State {
	s.Status = f
	return s
}

func (s State) WithCriteria(c Criteria) State {
	s.Criteria = c.Clone()
	return s
}

// View filters then sorts records.
func (s State) View(records []client.Client) []client.Client {
	return Sort(Filter(records, s.Tab, s.Query, s.Status), s.Criteria)
}

// IsSelected reports whether id is in the selection set.
func (s State) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedCount returns the size of the selection set.
func (s State) SelectedCount() int {
	return len(s.selected)
}

func (s State) withSelection(ids map[string]struct{}) State {
	s.selected = ids
	return s
}

func (s State) copySelection() map[string]struct{} {
	out := make(map[string]struct{}, len(s.selected)+1)
	for id := range s.selected {
		out[id] = struct{}{}
	}
	return out
}

// ToggleSelected adds or removes id from the selection.
func (s State) ToggleSelected(id string) State {
	next := s.copySelection()
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	return s.withSelection(next)
}

// ToggleAll clears the selection when every visible row is selected,
// otherwise selects exactly the visible rows.
func (s State) ToggleAll(visible []client.Client) State {
	if s.Selection(visible) == SelectionAll {
		return s.ClearSelection()
	}
	next := make(map[string]struct{}, len(visible))
	for _, c := range visible {
		next[c.ID] = struct{}{}
	}
	return s.withSelection(next)
}

// ClearSelection empties the selection.
func (s State) ClearSelection() State {
	return s.withSelection(nil)
}

// Selection reports the header checkbox state for the visible rows.
func (s State) Selection(visible []client.Client) SelectionState {
	if len(visible) == 0 {
		return SelectionNone
	}
	n := 0
	for _, c := range visible {
		if s.IsSelected(c.ID) {
			n++
		}
	}
	switch {
	case n == 0:
		return SelectionNone
	case n == len(visible):
		return SelectionAll
	}
	return SelectionPartial
}

// SelectedIn returns the selected records from rows, in row order.
func (s State) SelectedIn(rows []client.Client) []client.Client {
	out := make([]client.Client, 0, len(s.selected))
	for _, c := range rows {
		if s.IsSelected(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// ActiveFilters returns the badge captions for non-default controls.
func (s State) ActiveFilters() []string {
	var out []string
	if s.Query != "" {
		out = append(out, "Search: "+s.Query)
	}
	if s.Status != StatusAll && s.Status != "" {
		out = append(out, "Status: "+string(s.Status))
	}
	if n := len(s.Criteria); n > 0 {
		suffix := ""
		if n > 1 {
			suffix = "s"
		}
		out = append(out, fmt.Sprintf("%d sort%s applied", n, suffix))
	}
	return out
}

// ClearFilters resets search, status and sort criteria. The tab is kept.
func (s State) ClearFilters() State {
	s.Query = ""
	s.Status = StatusAll
	s.Criteria = Criteria{}
	return s
}
