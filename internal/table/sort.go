package table

import (
	"math/big"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Ashfaaq98/clients-console/internal/client"
)

// collationTag selects the locale used for string columns.
var collationTag = language.English

// Sort returns a new slice ordered by criteria. Records tied on every
// criterion keep their input order, so an empty criteria list is the identity.
func Sort(records []client.Client, criteria Criteria) []client.Client {
	out := make([]client.Client, len(records))
	copy(out, records)
	if len(criteria) == 0 || len(out) < 2 {
		return out
	}

	// Collators keep scratch buffers; one per call keeps Sort reentrant.
	col := collate.New(collationTag)
	sort.SliceStable(out, func(i, j int) bool {
		return compare(out[i], out[j], criteria, col) < 0
	})
	return out
}

func compare(a, b client.Client, criteria Criteria, col *collate.Collator) int {
	for _, c := range criteria {
		n := compareField(a, b, c.Field, col)
		if n == 0 {
			continue
		}
		if c.Direction == Desc {
			return -n
		}
		return n
	}
	return 0
}

func compareField(a, b client.Client, f SortField, col *collate.Collator) int {
	switch f {
	case FieldName:
		return col.CompareString(a.Name, b.Name)
	case FieldEmail:
		return col.CompareString(a.Email, b.Email)
	case FieldCategory:
		return col.CompareString(string(a.Category), string(b.Category))
	case FieldID:
		return compareIDs(a.ID, b.ID, col)
	case FieldCreatedAt:
		return compareInt64(a.CreatedAt.UnixMilli(), b.CreatedAt.UnixMilli())
	case FieldUpdatedAt:
		return compareInt64(a.UpdatedAt.UnixMilli(), b.UpdatedAt.UnixMilli())
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareIDs compares ids by their leading integer value. Ids with a
// numeric prefix order before ids without one; two non-numeric ids fall
// back to collation so the order stays total.
func compareIDs(a, b string, col *collate.Collator) int {
	na, okA := leadingInt(a)
	nb, okB := leadingInt(b)
	switch {
	case okA && okB:
		return na.Cmp(nb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return col.CompareString(a, b)
}

// leadingInt parses an optional sign followed by decimal digits after
// leading whitespace, ignoring any trailing text ("12abc" is 12).
func leadingInt(s string) (*big.Int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil, false
	}
	n, ok := new(big.Int).SetString(sign+s[:end], 10)
	return n, ok
}
