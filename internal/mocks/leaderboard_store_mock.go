package mocks

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockLeaderboardStore is a mock of store.LeaderboardStore for use with testify/mock.
type TestifyMockLeaderboardStore struct {
	mock.Mock
}

var _ store.LeaderboardStore = (*TestifyMockLeaderboardStore)(nil)

// BestTrainingSessions is a mock implementation of store.LeaderboardStore.BestTrainingSessions
func (m *TestifyMockLeaderboardStore) BestTrainingSessions(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]domain.LeaderboardEntry)
	return entries, args.Error(1)
}
