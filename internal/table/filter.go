package table

import (
	"fmt"
	"strings"

	"github.com/Ashfaaq98/clients-console/internal/client"
)

// Tab is the category tab filter.
type Tab string

const (
	TabAll        Tab = "all"
	TabIndividual Tab = "individual"
	TabCompany    Tab = "company"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabAll, TabIndividual, TabCompany}

// ParseTab parses a tab name case-insensitively.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab: %q", s)
}

// Label is the tab caption.
func (t Tab) Label() string {
	switch t {
	case TabAll:
		return "All"
	case TabIndividual:
		return "Individual"
	case TabCompany:
		return "Company"
	}
	return string(t)
}

// StatusFilter is "all" or a client status.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = StatusFilter(client.Active)
	StatusInactive StatusFilter = StatusFilter(client.Inactive)
)

// StatusFilters lists the filter choices in display order.
var StatusFilters = []StatusFilter{StatusAll, StatusActive, StatusInactive}

// ParseStatusFilter parses a status filter case-insensitively.
func ParseStatusFilter(s string) (StatusFilter, error) {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range StatusFilters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown status filter: %q", s)
}

// MatchTab reports whether c belongs to tab.
func MatchTab(c client.Client, tab Tab) bool {
	return tab == TabAll || strings.ToLower(string(c.Category)) == string(tab)
}

// MatchQuery reports whether the lowercased query occurs in the name, email or id.
func MatchQuery(c client.Client, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.ID), q)
}

// MatchStatus reports whether c passes the status filter.
func MatchStatus(c client.Client, status StatusFilter) bool {
	return status == StatusAll || StatusFilter(c.Status) == status
}

// Filter returns the records passing the tab, search and status predicates,
// in input order. The input slice is not modified.
func Filter(records []client.Client, tab Tab, query string, status StatusFilter) []client.Client {
	out := make([]client.Client, 0, len(records))
	for _, c := range records {
		if MatchTab(c, tab) && MatchQuery(c, query) && MatchStatus(c, status) {
			out = append(out, c)
		}
	}
	return out
}
