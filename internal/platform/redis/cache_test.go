package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLeaderboardCache(client, ttl, nil), mr
}

func sampleEntries() []domain.LeaderboardEntry {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.LeaderboardEntry{
		{UserID: "u-bob", Username: "bob", Score: 95, TimeTakenMS: 150000, Timestamp: ts},
		{UserID: "u-amy", Username: "amy", Score: 80, TimeTakenMS: 90000, Timestamp: ts},
	}
}

func TestLeaderboardCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	entries, hit, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, entries)
}

func TestLeaderboardCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleEntries()))
	assert.True(t, mr.Exists(KeyLeaderboard))
	assert.Equal(t, time.Minute, mr.TTL(KeyLeaderboard))

	entries, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, sampleEntries(), entries)
}

func TestLeaderboardCache_EmptySnapshotIsAHit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []domain.LeaderboardEntry{}))

	entries, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, entries)
}

func TestLeaderboardCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleEntries()))
	mr.FastForward(11 * time.Second)

	_, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestLeaderboardCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleEntries()))
	require.NoError(t, c.Invalidate(ctx))

	_, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestLeaderboardCache_CorruptValue(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(KeyLeaderboard, "{not json"))

	_, hit, err := c.Get(context.Background())
	assert.False(t, hit)
	assert.ErrorIs(t, err, ErrCacheSerialization)
}

func TestLeaderboardCache_DefaultTTL(t *testing.T) {
	c, _ := newTestCache(t, 0)
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
