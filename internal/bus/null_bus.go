package bus

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// NullBus is a no-op implementation of the bus interface for when Redis is disabled
type NullBus struct {
	origin string
	logger *log.Logger
}

// NewNullBus creates a new null bus instance
func NewNullBus(logger *log.Logger) *NullBus {
	if logger == nil {
		logger = log.New(log.Writer(), "[NullBus] ", log.LstdFlags)
	}

	return &NullBus{
		origin: uuid.New().String(),
		logger: logger,
	}
}

func (nb *NullBus) Origin() string {
	return nb.origin
}

// Close is a no-op for null bus
func (nb *NullBus) Close() error {
	return nil
}

// PublishCriteriaChange logs the change but doesn't actually publish it
func (nb *NullBus) PublishCriteriaChange(ctx context.Context, change CriteriaChange) error {
	nb.logger.Printf("Would publish criteria change [%s] (Redis disabled)", change.Criteria)
	return nil
}

// ReadCriteriaChanges blocks until the context is cancelled
func (nb *NullBus) ReadCriteriaChanges(ctx context.Context, handler ChangeHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

// HealthCheck always returns nil for null bus
func (nb *NullBus) HealthCheck(ctx context.Context) error {
	return nil
}
