package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/biogames/biogames-api/internal/config"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/store"
)

// UserResolver turns a user ID into the display name stored on a new game.
type UserResolver interface {
	Resolve(ctx context.Context, users store.UserStore, userID string) (string, error)
}

// NewUserResolver returns the resolver named by strategy, one of
// config.ResolutionStrict or config.ResolutionProvision.
func NewUserResolver(strategy string) (UserResolver, error) {
	switch strategy {
	case config.ResolutionStrict:
		return StrictResolver{}, nil
	case config.ResolutionProvision:
		return ProvisionResolver{}, nil
	default:
		return nil, domain.NewValidationError("user_resolution",
			fmt.Sprintf("unknown strategy %q", strategy), domain.ErrValidation)
	}
}

// StrictResolver requires a registered user with a display name.
type StrictResolver struct{}

// Resolve implements UserResolver.
func (StrictResolver) Resolve(ctx context.Context, users store.UserStore, userID string) (string, error) {
	u, err := users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", ErrUserNotRegistered
		}
		return "", err
	}
	if !u.HasUsername() {
		return "", ErrUsernameNotSet
	}
	return *u.Username, nil
}

// ProvisionResolver registers unknown users on the fly, using the user ID
// as display name. Registered users without a name also get their user ID.
type ProvisionResolver struct{}

// Resolve implements UserResolver.
func (ProvisionResolver) Resolve(ctx context.Context, users store.UserStore, userID string) (string, error) {
	u, err := users.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if u.HasUsername() {
			return *u.Username, nil
		}
		return userID, nil
	case errors.Is(err, store.ErrUserNotFound):
		name := userID
		err := users.Create(ctx, &domain.User{UserID: userID, Username: &name})
		if err != nil && !errors.Is(err, store.ErrUserExists) {
			return "", err
		}
		logger.FromContextOrDefault(ctx, nil).Info("provisioned user on first game",
			slog.String("user_id", userID))
		return userID, nil
	default:
		return "", err
	}
}
