package store

import (
	"context"
	"database/sql"

	"github.com/biogames/biogames-api/internal/domain"
)

// UserStore defines the interface for registered user persistence.
type UserStore interface {
	// GetByUserID retrieves a registration by its external user ID.
	// Returns ErrUserNotFound if the user is not registered.
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)

	// Create registers a user. Returns ErrUserExists if the user ID is
	// already registered.
	Create(ctx context.Context, user *domain.User) error

	// SetUsername assigns a display name if none is set yet. It reports
	// false when the user already had a name.
	// Returns ErrUserNotFound if the user is not registered.
	SetUsername(ctx context.Context, userID, username string) (bool, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
