package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/store"
)

// UserService manages registrations and their display names.
type UserService interface {
	// Register records userID with username, or assigns username to an
	// existing registration that has none. A name can be assigned once.
	Register(ctx context.Context, userID, username string) (*domain.User, error)

	// Lookup returns the registration for userID. Unknown users come back
	// as a User without a username rather than as an error.
	Lookup(ctx context.Context, userID string) (*domain.User, error)
}

type userServiceImpl struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, userID, username string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID))

	name := username
	user := &domain.User{UserID: userID, Username: &name}
	err := s.users.Create(ctx, user)
	if err == nil {
		log.Info("user registered")
		return user, nil
	}
	if !errors.Is(err, store.ErrUserExists) {
		return nil, NewServiceError("register", "failed to create user", err)
	}

	assigned, err := s.users.SetUsername(ctx, userID, username)
	if err != nil {
		return nil, NewServiceError("register", "failed to assign username", err)
	}
	if !assigned {
		log.Debug("username already assigned")
		return nil, ErrUsernameAlreadySet
	}

	log.Info("username assigned to existing user")
	return s.users.GetByUserID(ctx, userID)
}

// Lookup implements UserService.Lookup
func (s *userServiceImpl) Lookup(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &domain.User{UserID: userID}, nil
		}
		return nil, NewServiceError("lookup_user", "failed to get user", err)
	}
	return user, nil
}
