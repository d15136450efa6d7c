package prefs

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

// NullStore keeps criteria in memory for the life of the process.
type NullStore struct {
	logger *log.Logger

	mu       sync.Mutex
	criteria table.Criteria
	saved    bool
}

func NewNullStore(logger *log.Logger) *NullStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &NullStore{logger: logger}
}

func (ns *NullStore) Name() string { return "none" }

func (ns *NullStore) Close() error { return nil }

func (ns *NullStore) Load(ctx context.Context) (table.Criteria, bool) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if !ns.saved {
		return nil, false
	}
	return ns.criteria.Clone(), true
}

func (ns *NullStore) Save(ctx context.Context, criteria table.Criteria) error {
	if _, err := Encode(criteria); err != nil {
		return err
	}
	ns.mu.Lock()
	ns.criteria = criteria.Clone()
	ns.saved = true
	ns.mu.Unlock()
	ns.logger.Printf("Would save %s [%s] (persistence disabled)", Key, criteria)
	return nil
}

func (ns *NullStore) Delete(ctx context.Context) error {
	ns.mu.Lock()
	ns.criteria = nil
	ns.saved = false
	ns.mu.Unlock()
	return nil
}
