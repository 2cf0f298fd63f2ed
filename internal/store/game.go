package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
)

// GameStore defines the interface for game persistence.
type GameStore interface {
	// Create inserts a new game and sets its ID.
	Create(ctx context.Context, game *domain.Game) error

	// GetByID retrieves a game without its challenges.
	// Returns ErrGameNotFound if the game does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Game, error)

	// CountByMode returns how many games the user has started in each mode.
	CountByMode(ctx context.Context, userID string) (domain.ModeCounts, error)

	// LatestByMode returns the most recently started game of the given mode.
	// Returns ErrGameNotFound if the user has none.
	LatestByMode(ctx context.Context, userID string, mode domain.Mode) (*domain.Game, error)

	// LockUser serializes game creation for a user until the surrounding
	// transaction ends. It must be called on a transaction-bound store.
	LockUser(ctx context.Context, userID string) error

	// FinalizeIfComplete sets score, time_taken_ms and finished_at in one
	// guarded statement, only if the game is unfinished and every challenge
	// has points. It reports whether the game was finalized by this call.
	FinalizeIfComplete(ctx context.Context, id int64, now time.Time) (bool, error)

	// FinishPartial finalizes an unfinished game from whatever challenges
	// carry both timestamps. It reports false if the game was already finished.
	FinishPartial(ctx context.Context, id int64, now time.Time) (bool, error)

	// WithTx returns a new GameStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) GameStore
}
