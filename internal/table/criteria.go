package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField is returned when a sort field name is not recognised.
	ErrUnknownField = errors.New("unknown sort field")
	// ErrUnknownDirection is returned when a sort direction is not asc or desc.
	ErrUnknownDirection = errors.New("unknown sort direction")
	// ErrDuplicateField is returned when a criteria list names a field twice.
	ErrDuplicateField = errors.New("duplicate sort field")
	// ErrIndexOutOfRange is returned by Move for positions outside the list.
	ErrIndexOutOfRange = errors.New("criteria index out of range")
)

// SortField identifies a sortable client column.
type SortField string

const (
	FieldName      SortField = "name"
	FieldCreatedAt SortField = "createdAt"
	FieldUpdatedAt SortField = "updatedAt"
	FieldID        SortField = "id"
	FieldEmail     SortField = "email"
	// FieldCategory keeps the persisted wire name "type".
	FieldCategory SortField = "type"
)

// Fields lists every sortable field in sort panel order.
var Fields = []SortField{FieldName, FieldCreatedAt, FieldUpdatedAt, FieldID, FieldEmail, FieldCategory}

// ParseField resolves a field name case-insensitively. "category" is accepted for FieldCategory.
func ParseField(s string) (SortField, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "category" {
		return FieldCategory, nil
	}
	for _, f := range Fields {
		if strings.ToLower(string(f)) == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Label is the human readable column name.
func (f SortField) Label() string {
	switch f {
	case FieldName:
		return "Client Name"
	case FieldCreatedAt:
		return "Created At"
	case FieldUpdatedAt:
		return "Updated At"
	case FieldID:
		return "Client ID"
	case FieldEmail:
		return "Email"
	case FieldCategory:
		return "Client Type"
	}
	return string(f)
}

// IsTime reports whether the field holds a timestamp.
func (f SortField) IsTime() bool {
	return f == FieldCreatedAt || f == FieldUpdatedAt
}

func (f SortField) MarshalText() ([]byte, error) {
	if _, err := ParseField(string(f)); err != nil {
		return nil, err
	}
	return []byte(f), nil
}

func (f *SortField) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Direction is the sort order of a single criterion.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc and the long forms ascending/descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

func (d Direction) MarshalText() ([]byte, error) {
	if _, err := ParseDirection(string(d)); err != nil {
		return nil, err
	}
	return []byte(d), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirectionLabel describes a direction the way the sort panel shows it for field f.
func DirectionLabel(f SortField, d Direction) string {
	if f.IsTime() {
		if d == Asc {
			return "Oldest to Newest"
		}
		return "Newest to Oldest"
	}
	if d == Asc {
		return "A-Z"
	}
	return "Z-A"
}

// Criterion is a single (field, direction) sort instruction.
type Criterion struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

func (c Criterion) String() string {
	return string(c.Field) + ":" + string(c.Direction)
}

// ParseCriterion parses "field:dir". A missing direction means ascending.
func ParseCriterion(s string) (Criterion, error) {
	name, dir, found := strings.Cut(s, ":")
	f, err := ParseField(name)
	if err != nil {
		return Criterion{}, err
	}
	d := Asc
	if found {
		if d, err = ParseDirection(dir); err != nil {
			return Criterion{}, err
		}
	}
	return Criterion{Field: f, Direction: d}, nil
}

// Criteria is an ordered sort priority list. The first element is the
// primary key. A field appears at most once.
//
// Every mutation returns a new list; the receiver is never modified.
type Criteria []Criterion

// ParseCriteria parses a comma separated "field:dir" list, applying each entry with Set.
func ParseCriteria(s string) (Criteria, error) {
	var out Criteria
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := ParseCriterion(part)
		if err != nil {
			return nil, err
		}
		out = out.Set(c.Field, c.Direction)
	}
	return out, nil
}

func (cs Criteria) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Clone returns an independent copy.
func (cs Criteria) Clone() Criteria {
	if cs == nil {
		return nil
	}
	out := make(Criteria, len(cs))
	copy(out, cs)
	return out
}

// Index returns the position of field, or -1.
func (cs Criteria) Index(f SortField) int {
	for i, c := range cs {
		if c.Field == f {
			return i
		}
	}
	return -1
}

// Lookup returns the direction for field if it is present.
func (cs Criteria) Lookup(f SortField) (Direction, bool) {
	if i := cs.Index(f); i >= 0 {
		return cs[i].Direction, true
	}
	return "", false
}

// Set removes any entry for field and appends (field, dir) as the lowest priority.
func (cs Criteria) Set(f SortField, d Direction) Criteria {
	out := cs.Remove(f)
	return append(out, Criterion{Field: f, Direction: d})
}

// Remove drops the entry for field. Absent fields are a no-op.
func (cs Criteria) Remove(f SortField) Criteria {
	out := make(Criteria, 0, len(cs)+1)
	for _, c := range cs {
		if c.Field != f {
			out = append(out, c)
		}
	}
	return out
}

// Toggle flips the direction of field in place. Absent fields are a no-op.
func (cs Criteria) Toggle(f SortField) Criteria {
	out := cs.Clone()
	for i := range out {
		if out[i].Field == f {
			out[i].Direction = out[i].Direction.Flip()
		}
	}
	return out
}

// Move relocates the element at oldIndex to newIndex, shifting the
// elements in between. Out of range positions are rejected and the
// original list is returned.
func (cs Criteria) Move(oldIndex, newIndex int) (Criteria, error) {
	if oldIndex < 0 || oldIndex >= len(cs) || newIndex < 0 || newIndex >= len(cs) {
		return cs, fmt.Errorf("%w: move %d -> %d (len %d)", ErrIndexOutOfRange, oldIndex, newIndex, len(cs))
	}
	out := cs.Clone()
	moved := out[oldIndex]
	out = append(out[:oldIndex], out[oldIndex+1:]...)
	out = append(out[:newIndex], append(Criteria{moved}, out[newIndex:]...)...)
	return out, nil
}

// MoveField moves the entry for active to the position held by over.
func (cs Criteria) MoveField(active, over SortField) (Criteria, error) {
	if active == over {
		return cs, nil
	}
	return cs.Move(cs.Index(active), cs.Index(over))
}

// Clear returns an empty list.
func (cs Criteria) Clear() Criteria {
	return Criteria{}
}

// Validate checks enum membership and field uniqueness.
func (cs Criteria) Validate() error {
	seen := make(map[SortField]bool, len(cs))
	for _, c := range cs {
		if _, err := ParseField(string(c.Field)); err != nil {
			return err
		}
		if _, err := ParseDirection(string(c.Direction)); err != nil {
			return err
		}
		if seen[c.Field] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, c.Field)
		}
		seen[c.Field] = true
	}
	return nil
}

// Equal reports whether both lists hold the same criteria in the same order.
func (cs Criteria) Equal(other Criteria) bool {
	if len(cs) != len(other) {
		return false
	}
	for i := range cs {
		if cs[i] != other[i] {
			return false
		}
	}
	return true
}
