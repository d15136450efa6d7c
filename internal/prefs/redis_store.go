package prefs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

// DefaultRedisPrefix namespaces the criteria key in a shared Redis.
const DefaultRedisPrefix = "clients:"

// RedisStore keeps the criteria slot in a Redis string.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

// NewRedisStore connects and pings Redis before returning.
func NewRedisStore(redisURL, prefix string, logger *log.Logger) (*RedisStore, error) {
	if redisURL == "" {
		return nil, errors.New("redis url not configured")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[prefs] ", log.LstdFlags)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, key: RedisKey(prefix), logger: logger}, nil
}

// RedisKey returns the namespaced key for prefix.
func RedisKey(prefix string) string {
	return prefix + Key
}

func (rs *RedisStore) Name() string { return "redis" }

func (rs *RedisStore) Close() error { return rs.client.Close() }

func (rs *RedisStore) Load(ctx context.Context) (table.Criteria, bool) {
	raw, err := rs.client.Get(ctx, rs.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		rs.logger.Printf("Failed to read %s: %v", rs.key, err)
		return nil, false
	}
	criteria, err := Decode(raw)
	if err != nil {
		rs.logger.Printf("Ignoring malformed %s: %v", rs.key, err)
		return nil, false
	}
	return criteria, true
}

func (rs *RedisStore) Save(ctx context.Context, criteria table.Criteria) error {
	value, err := Encode(criteria)
	if err != nil {
		return err
	}
	if err := rs.client.Set(ctx, rs.key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", rs.key, err)
	}
	return nil
}

func (rs *RedisStore) Delete(ctx context.Context) error {
	if err := rs.client.Del(ctx, rs.key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", rs.key, err)
	}
	return nil
}
