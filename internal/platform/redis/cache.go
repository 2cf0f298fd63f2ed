// Package redis caches leaderboard snapshots in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheConnection is returned when Redis connection fails.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization is returned when serialization/deserialization fails.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// KeyLeaderboard holds the JSON snapshot of the training leaderboard.
const KeyLeaderboard = "biogames:leaderboard:training"

// DefaultTTL bounds how stale a snapshot can be if an invalidation is lost.
const DefaultTTL = 30 * time.Second

// NewClient parses a redis:// URL, connects, and pings the server.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return client, nil
}

// LeaderboardCache stores the computed leaderboard as a single JSON value
// with a TTL. Finalized or quit training games delete it.
type LeaderboardCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewLeaderboardCache creates a LeaderboardCache. A non-positive ttl uses DefaultTTL.
func NewLeaderboardCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *LeaderboardCache {
	if client == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "leaderboard_cache")),
	}
}

// snapshot is the cached representation. UserID is not part of the
// public entry JSON, so it is carried separately.
type snapshot struct {
	Entries  []cachedEntry `json:"entries"`
	CachedAt time.Time     `json:"cached_at"`
}

type cachedEntry struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	TimeTakenMS int64     `json:"time_taken_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// Get returns the cached leaderboard. hit is false when nothing is cached.
func (c *LeaderboardCache) Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, KeyLeaderboard).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	entries := make([]domain.LeaderboardEntry, len(snap.Entries))
	for i, e := range snap.Entries {
		entries[i] = domain.LeaderboardEntry{
			UserID:      e.UserID,
			Username:    e.Username,
			Score:       e.Score,
			TimeTakenMS: e.TimeTakenMS,
			Timestamp:   e.Timestamp,
		}
	}
	return entries, true, nil
}

// Set stores entries for the configured TTL.
func (c *LeaderboardCache) Set(ctx context.Context, entries []domain.LeaderboardEntry) error {
	snap := snapshot{
		Entries:  make([]cachedEntry, len(entries)),
		CachedAt: time.Now().UTC(),
	}
	for i, e := range entries {
		snap.Entries[i] = cachedEntry(e)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	if err := c.client.Set(ctx, KeyLeaderboard, data, c.ttl).Err(); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, c.logger).Debug("leaderboard cached",
		slog.Int("entries", len(entries)),
		slog.Duration("ttl", c.ttl))
	return nil
}

// Invalidate drops the cached snapshot.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, KeyLeaderboard).Err()
}
