package prefs

import (
	"context"
	"errors"
	"log"

	"github.com/Ashfaaq98/clients-console/internal/store"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// SQLStore keeps the criteria slot in the preferences table of the client database.
type SQLStore struct {
	db     *store.Store
	logger *log.Logger
}

func NewSQLStore(db *store.Store, logger *log.Logger) *SQLStore {
	if logger == nil {
		logger = log.New(log.Writer(), "[prefs] ", log.LstdFlags)
	}
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) Name() string { return "sqlite" }

// Close is a no-op; the database belongs to the caller.
func (s *SQLStore) Close() error { return nil }

func (s *SQLStore) Load(ctx context.Context) (table.Criteria, bool) {
	raw, err := s.db.GetPreference(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.logger.Printf("Failed to read %s: %v", Key, err)
		return nil, false
	}
	criteria, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Printf("Ignoring malformed %s: %v", Key, err)
		return nil, false
	}
	return criteria, true
}

func (s *SQLStore) Save(ctx context.Context, criteria table.Criteria) error {
	value, err := Encode(criteria)
	if err != nil {
		return err
	}
	return s.db.SetPreference(ctx, Key, string(value))
}

func (s *SQLStore) Delete(ctx context.Context) error {
	return s.db.DeletePreference(ctx, Key)
}
