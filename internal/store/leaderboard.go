package store

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
)

// LeaderboardStore computes leaderboard rows from finished games.
type LeaderboardStore interface {
	// BestTrainingSessions returns, for every user with at least one
	// finished training game, the best such game by score descending,
	// time ascending, finish time ascending.
	BestTrainingSessions(ctx context.Context) ([]domain.LeaderboardEntry, error)
}
