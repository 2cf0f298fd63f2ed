package service

import (
	"context"
	"log/slog"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/events"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/platform/metrics"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/store"
)

// LeaderboardCache holds the last computed leaderboard.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []domain.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

// LookupRecorder is notified of the outcome of every cache lookup, one of
// metrics.CacheHit, metrics.CacheMiss or metrics.CacheError.
type LookupRecorder interface {
	RecordLeaderboardLookup(result string)
}

// NopCache never holds anything.
type NopCache struct{}

// Get implements LeaderboardCache.
func (NopCache) Get(context.Context) ([]domain.LeaderboardEntry, bool, error) { return nil, false, nil }

// Set implements LeaderboardCache.
func (NopCache) Set(context.Context, []domain.LeaderboardEntry) error { return nil }

// Invalidate implements LeaderboardCache.
func (NopCache) Invalidate(context.Context) error { return nil }

// LeaderboardService ranks each user's best finished training game.
type LeaderboardService struct {
	store    store.LeaderboardStore
	cache    LeaderboardCache
	recorder LookupRecorder
	logger   *slog.Logger
}

// NewLeaderboardService creates a LeaderboardService. A nil cache disables
// caching and a nil recorder disables lookup metrics.
func NewLeaderboardService(
	lb store.LeaderboardStore,
	cache LeaderboardCache,
	recorder LookupRecorder,
	logger *slog.Logger,
) *LeaderboardService {
	if lb == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("leaderboard store cannot be nil")
	}
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		store:    lb,
		cache:    cache,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "leaderboard_service")),
	}
}

// Leaderboard returns one entry per user, best first. A cache failure
// falls through to the store.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entries, hit, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		log.Warn("leaderboard cache read failed", redact.Attr(err))
		s.record(metrics.CacheError)
	case hit:
		s.record(metrics.CacheHit)
		return entries, nil
	default:
		s.record(metrics.CacheMiss)
	}

	entries, err = s.store.BestTrainingSessions(ctx)
	if err != nil {
		return nil, NewServiceError("leaderboard", "failed to compute leaderboard", err)
	}
	domain.SortLeaderboard(entries)

	if err := s.cache.Set(ctx, entries); err != nil {
		log.Warn("leaderboard cache write failed", redact.Attr(err))
	}
	return entries, nil
}

// HandleEvent drops the cached leaderboard when a training game finishes.
// It implements events.EventHandler.
func (s *LeaderboardService) HandleEvent(ctx context.Context, event *events.GameEvent) error {
	if event.Mode != domain.ModeTraining {
		return nil
	}
	if event.Type != events.TypeGameFinalized && event.Type != events.TypeGameQuit {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return NewServiceError("invalidate_leaderboard", "failed to invalidate cache", err)
	}
	return nil
}

func (s *LeaderboardService) record(result string) {
	if s.recorder != nil {
		s.recorder.RecordLeaderboardLookup(result)
	}
}
