package mocks

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/service"
)

// MockChallengeService implements service.ChallengeService for testing
type MockChallengeService struct {
	FetchContentFn func(ctx context.Context, challengeID int64) (*images.Image, error)
	SubmitFn       func(ctx context.Context, challengeID int64, guess int) (*domain.Challenge, error)
	CurrentFn      func(ctx context.Context, gameID int64, completedCount int) (*service.CurrentChallenge, error)

	DefaultError error
}

var _ service.ChallengeService = (*MockChallengeService)(nil)

// FetchContent implements the ChallengeService.FetchContent method
func (m *MockChallengeService) FetchContent(ctx context.Context, challengeID int64) (*images.Image, error) {
	if m.FetchContentFn != nil {
		return m.FetchContentFn(ctx, challengeID)
	}
	return nil, m.DefaultError
}

// Submit implements the ChallengeService.Submit method
func (m *MockChallengeService) Submit(ctx context.Context, challengeID int64, guess int) (*domain.Challenge, error) {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, challengeID, guess)
	}
	return nil, m.DefaultError
}

// Current implements the ChallengeService.Current method
func (m *MockChallengeService) Current(ctx context.Context, gameID int64, completedCount int) (*service.CurrentChallenge, error) {
	if m.CurrentFn != nil {
		return m.CurrentFn(ctx, gameID, completedCount)
	}
	return nil, m.DefaultError
}
