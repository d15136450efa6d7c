package bus

import (
	"context"
	"io"
	"log"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

// CriteriaChange announces that a console saved a new sort criteria list
type CriteriaChange struct {
	Origin    string         `json:"origin"`
	Backend   string         `json:"backend"`
	Criteria  table.Criteria `json:"criteria"`
	Timestamp int64          `json:"timestamp"`
}

// ChangeHandler processes a criteria change published by another console
type ChangeHandler func(ctx context.Context, change CriteriaChange) error

// Bus defines the interface for change bus implementations
type Bus interface {
	// Origin is the id stamped on every message this bus publishes
	Origin() string

	// PublishCriteriaChange publishes a change to the preferences stream
	PublishCriteriaChange(ctx context.Context, change CriteriaChange) error

	// ReadCriteriaChanges blocks, delivering changes from other consoles until ctx is done
	ReadCriteriaChanges(ctx context.Context, handler ChangeHandler) error

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// NewBus creates a new bus instance based on the Redis URL
// If redisURL is empty or invalid, returns a NullBus
func NewBus(redisURL string, logger *log.Logger) Bus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if redisURL == "" {
		return NewNullBus(logger)
	}

	redisBus, err := NewRedisBus(redisURL, logger)
	if err == nil {
		return redisBus
	}

	// Fall back to null bus if Redis fails
	logger.Printf("Redis bus unavailable, falling back to null bus: %v", err)
	return NewNullBus(logger)
}
