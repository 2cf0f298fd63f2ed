package mocks

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/service"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	RegisterFn func(ctx context.Context, userID, username string) (*domain.User, error)
	LookupFn   func(ctx context.Context, userID string) (*domain.User, error)

	User         *domain.User
	DefaultError error
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements the UserService.Register method
func (m *MockUserService) Register(ctx context.Context, userID, username string) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, userID, username)
	}
	return m.User, m.DefaultError
}

// Lookup implements the UserService.Lookup method
func (m *MockUserService) Lookup(ctx context.Context, userID string) (*domain.User, error) {
	if m.LookupFn != nil {
		return m.LookupFn(ctx, userID)
	}
	return m.User, m.DefaultError
}
