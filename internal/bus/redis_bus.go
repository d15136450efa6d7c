package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

// PrefsStream is the Redis Stream carrying criteria changes.
const PrefsStream = "client-prefs"

// RedisBus provides Redis Streams-based change notifications between consoles
type RedisBus struct {
	client *redis.Client
	logger *log.Logger
	origin string
	block  time.Duration
}

// NewRedisBus creates a new Redis bus instance
func NewRedisBus(redisURL string, logger *log.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = log.New(log.Writer(), "[RedisBus] ", log.LstdFlags)
	}

	return &RedisBus{
		client: client,
		logger: logger,
		origin: uuid.New().String(),
		block:  time.Second,
	}, nil
}

func (rb *RedisBus) Origin() string {
	return rb.origin
}

// Close closes the Redis connection
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// HealthCheck pings Redis
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	return rb.client.Ping(ctx).Err()
}

// PublishCriteriaChange publishes a change to the preferences stream
func (rb *RedisBus) PublishCriteriaChange(ctx context.Context, change CriteriaChange) error {
	change.Origin = rb.origin
	if change.Timestamp == 0 {
		change.Timestamp = time.Now().UnixMilli()
	}
	criteriaJSON, err := json.Marshal(change.Criteria)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: PrefsStream,
		MaxLen: 100,
		Approx: true,
		Values: map[string]interface{}{
			"origin":    change.Origin,
			"backend":   change.Backend,
			"criteria":  string(criteriaJSON),
			"timestamp": change.Timestamp,
		},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish criteria change: %w", err)
	}

	rb.logger.Printf("Published criteria change [%s] as %s", change.Criteria, result.Val())
	return nil
}

// ReadCriteriaChanges delivers changes published after the call starts
func (rb *RedisBus) ReadCriteriaChanges(ctx context.Context, handler ChangeHandler) error {
	lastID := "0-0"
	latest, err := rb.client.XRevRangeN(ctx, PrefsStream, "+", "-", 1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read stream tail: %w", err)
	}
	if len(latest) > 0 {
		lastID = latest[0].ID
	}
	return rb.ReadCriteriaChangesFrom(ctx, lastID, handler)
}

// ReadCriteriaChangesFrom delivers changes with ids after lastID
func (rb *RedisBus) ReadCriteriaChangesFrom(ctx context.Context, lastID string, handler ChangeHandler) error {
	rb.logger.Printf("Starting criteria change reader on %s from %s", PrefsStream, lastID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := rb.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{PrefsStream, lastID},
			Count:   10,
			Block:   rb.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rb.logger.Printf("Error reading from stream %s: %v", PrefsStream, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				change, err := decodeChange(message.Values)
				if err != nil {
					rb.logger.Printf("Skipping malformed message %s: %v", message.ID, err)
					continue
				}
				if change.Origin == rb.origin {
					continue
				}
				if err := handler(ctx, change); err != nil {
					rb.logger.Printf("Error processing message %s: %v", message.ID, err)
				}
			}
		}
	}
}

func decodeChange(values map[string]interface{}) (CriteriaChange, error) {
	field := func(name string) string {
		if v, ok := values[name].(string); ok {
			return v
		}
		return ""
	}

	change := CriteriaChange{
		Origin:  field("origin"),
		Backend: field("backend"),
	}
	if ts := field("timestamp"); ts != "" {
		n, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return change, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		change.Timestamp = n
	}

	var criteria table.Criteria
	if err := json.Unmarshal([]byte(field("criteria")), &criteria); err != nil {
		return change, fmt.Errorf("bad criteria: %w", err)
	}
	if err := criteria.Validate(); err != nil {
		return change, err
	}
	change.Criteria = criteria
	return change, nil
}
