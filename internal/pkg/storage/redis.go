package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/models"
)

const (
	snapshotKey  = "oddsbot:snapshot"
	cycleInfoKey = "oddsbot:last_cycle"
)

// CycleInfo summarizes the last completed cycle for the API's live view.
type CycleInfo struct {
	CompletedAt time.Time `json:"completed_at"`
	Matches     int       `json:"matches"`
	EVCount     int       `json:"ev_count"`
	ArbCount    int       `json:"arb_count"`
}

// SnapshotCache keeps the latest normalized snapshot in Redis so API reads
// don't touch Postgres on the hot path. The entry expires on its own when
// the engine stops refreshing it.
type SnapshotCache struct {
	client *redis.Client
}

func NewSnapshotCache(cfg *config.RedisConfig) (*SnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SnapshotCache{client: client}, nil
}

// StoreSnapshot replaces the cached snapshot.
func (c *SnapshotCache) StoreSnapshot(ctx context.Context, matches map[string]*models.Match, ttl time.Duration) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey, data, ttl).Err()
}

// Snapshot returns the cached snapshot, nil when none is cached.
func (c *SnapshotCache) Snapshot(ctx context.Context) (map[string]*models.Match, error) {
	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var matches map[string]*models.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return matches, nil
}

// StoreCycleInfo records when the last cycle finished and what it found.
func (c *SnapshotCache) StoreCycleInfo(ctx context.Context, info CycleInfo, ttl time.Duration) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle info: %w", err)
	}
	return c.client.Set(ctx, cycleInfoKey, data, ttl).Err()
}

// CycleInfo returns the last cycle summary, zero value when none is cached.
func (c *SnapshotCache) CycleInfo(ctx context.Context) (CycleInfo, error) {
	var info CycleInfo
	data, err := c.client.Get(ctx, cycleInfoKey).Bytes()
	if err == redis.Nil {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to get cycle info: %w", err)
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("failed to unmarshal cycle info: %w", err)
	}
	return info, nil
}

// Close closes the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
