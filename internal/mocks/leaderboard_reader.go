package mocks

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
)

// MockLeaderboardReader serves a fixed leaderboard for handler tests.
type MockLeaderboardReader struct {
	LeaderboardFn func(ctx context.Context) ([]domain.LeaderboardEntry, error)

	Entries      []domain.LeaderboardEntry
	DefaultError error
}

// Leaderboard returns the configured entries.
func (m *MockLeaderboardReader) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if m.LeaderboardFn != nil {
		return m.LeaderboardFn(ctx)
	}
	return m.Entries, m.DefaultError
}
