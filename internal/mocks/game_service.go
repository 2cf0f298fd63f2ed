package mocks

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/service"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateGameFn func(ctx context.Context, req service.CreateGameRequest) (*domain.Game, error)
	GetResultsFn func(ctx context.Context, gameID int64) (*service.GameReport, error)
	QuitGameFn   func(ctx context.Context, gameID int64) (*domain.Game, error)
	GameCountsFn func(ctx context.Context, userID string) (domain.ModeCounts, error)

	// Default return values
	Game         *domain.Game
	Report       *service.GameReport
	Counts       domain.ModeCounts
	DefaultError error
}

var _ service.GameService = (*MockGameService)(nil)

// CreateGame implements the GameService.CreateGame method
func (m *MockGameService) CreateGame(ctx context.Context, req service.CreateGameRequest) (*domain.Game, error) {
	if m.CreateGameFn != nil {
		return m.CreateGameFn(ctx, req)
	}
	return m.Game, m.DefaultError
}

// GetResults implements the GameService.GetResults method
func (m *MockGameService) GetResults(ctx context.Context, gameID int64) (*service.GameReport, error) {
	if m.GetResultsFn != nil {
		return m.GetResultsFn(ctx, gameID)
	}
	return m.Report, m.DefaultError
}

// QuitGame implements the GameService.QuitGame method
func (m *MockGameService) QuitGame(ctx context.Context, gameID int64) (*domain.Game, error) {
	if m.QuitGameFn != nil {
		return m.QuitGameFn(ctx, gameID)
	}
	return m.Game, m.DefaultError
}

// GameCounts implements the GameService.GameCounts method
func (m *MockGameService) GameCounts(ctx context.Context, userID string) (domain.ModeCounts, error) {
	if m.GameCountsFn != nil {
		return m.GameCountsFn(ctx, userID)
	}
	return m.Counts, m.DefaultError
}
