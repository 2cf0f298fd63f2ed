package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockGameStore is a mock of store.GameStore for use with testify/mock.
// WithTx returns the mock itself.
type TestifyMockGameStore struct {
	mock.Mock
}

var _ store.GameStore = (*TestifyMockGameStore)(nil)

// Create is a mock implementation of store.GameStore.Create
func (m *TestifyMockGameStore) Create(ctx context.Context, game *domain.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// GetByID is a mock implementation of store.GameStore.GetByID
func (m *TestifyMockGameStore) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if game, ok := args.Get(0).(*domain.Game); ok {
		return game, args.Error(1)
	}
	return nil, args.Error(1)
}

// CountByMode is a mock implementation of store.GameStore.CountByMode
func (m *TestifyMockGameStore) CountByMode(ctx context.Context, userID string) (domain.ModeCounts, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).(domain.ModeCounts)
	return counts, args.Error(1)
}

// LatestByMode is a mock implementation of store.GameStore.LatestByMode
func (m *TestifyMockGameStore) LatestByMode(ctx context.Context, userID string, mode domain.Mode) (*domain.Game, error) {
	args := m.Called(ctx, userID, mode)
	if game, ok := args.Get(0).(*domain.Game); ok {
		return game, args.Error(1)
	}
	return nil, args.Error(1)
}

// LockUser is a mock implementation of store.GameStore.LockUser
func (m *TestifyMockGameStore) LockUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// FinalizeIfComplete is a mock implementation of store.GameStore.FinalizeIfComplete
func (m *TestifyMockGameStore) FinalizeIfComplete(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

// FinishPartial is a mock implementation of store.GameStore.FinishPartial
func (m *TestifyMockGameStore) FinishPartial(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

// WithTx is a mock implementation of store.GameStore.WithTx
func (m *TestifyMockGameStore) WithTx(*sql.Tx) store.GameStore {
	return m
}
