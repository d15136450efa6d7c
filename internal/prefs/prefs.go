// Package prefs persists the sort criteria list in a single key-value slot.
//
// Absent or malformed data is reported as "no saved criteria" and never
// surfaces as an error; save failures are returned so callers can log them,
// but in-memory state stays authoritative.
package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Ashfaaq98/clients-console/internal/store"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// Key is the fixed slot name holding the serialized criteria list.
const Key = "clientSortCriteria"

// Store is a persistence backend for the criteria list.
type Store interface {
	// Name identifies the backend in logs and bus messages.
	Name() string
	// Load returns the saved criteria, or false when nothing usable is stored.
	Load(ctx context.Context) (table.Criteria, bool)
	// Save overwrites the slot.
	Save(ctx context.Context, criteria table.Criteria) error
	// Delete forgets the slot. Deleting an absent slot is not an error.
	Delete(ctx context.Context) error
	Close() error
}

// Watcher is implemented by backends that can report changes made by other processes.
type Watcher interface {
	Watch(ctx context.Context, onChange func(table.Criteria)) error
}

// Encode serializes criteria as a JSON array. A nil list encodes as [].
func Encode(criteria table.Criteria) ([]byte, error) {
	if criteria == nil {
		criteria = table.Criteria{}
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(criteria)
}

// Decode parses and validates a serialized criteria list.
func Decode(raw []byte) (table.Criteria, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("empty criteria payload")
	}
	var criteria table.Criteria
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return nil, fmt.Errorf("failed to decode criteria: %w", err)
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if criteria == nil {
		criteria = table.Criteria{}
	}
	return criteria, nil
}

// Options selects and configures a backend.
type Options struct {
	Backend     string // file | sqlite | redis | none
	Path        string // file backend location
	RedisURL    string
	RedisPrefix string
	DB          *store.Store // sqlite backend
	Logger      *log.Logger
}

// New opens the configured backend. When it cannot be opened a NullStore is
// returned so the console keeps working with in-memory criteria.
func New(opts Options) Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	var (
		s   Store
		err error
	)
	switch backend {
	case "", "file":
		s, err = NewFileStore(opts.Path, logger)
	case "sqlite", "db":
		if opts.DB == nil {
			err = fmt.Errorf("sqlite backend requires a database")
		} else {
			s = NewSQLStore(opts.DB, logger)
		}
	case "redis":
		s, err = NewRedisStore(opts.RedisURL, opts.RedisPrefix, logger)
	case "none", "null", "memory":
		return NewNullStore(logger)
	default:
		err = fmt.Errorf("unknown prefs backend %q", opts.Backend)
	}

	if err != nil {
		logger.Printf("Preferences backend %q unavailable, keeping sort criteria in memory: %v", backend, err)
		return NewNullStore(logger)
	}
	return s
}
