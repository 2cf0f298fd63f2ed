package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
)

// CorePartition selects a subset of cores by ID. With Include set, only
// the listed cores qualify; otherwise every core except the listed ones.
type CorePartition struct {
	IDs     []int64
	Include bool
}

// Submission is the single-shot write recorded when a guess is accepted.
type Submission struct {
	ChallengeID int64
	Guess       int
	Points      int
	SubmittedAt time.Time
}

// ChallengeResult pairs a challenge with the ground-truth score of its core.
type ChallengeResult struct {
	Challenge *domain.Challenge
	Truth     int
}

// ChallengeStore defines the interface for challenge persistence.
type ChallengeStore interface {
	// CreateForCore inserts one challenge for the given core.
	// Returns ErrCoreNotFound if the core does not exist.
	CreateForCore(ctx context.Context, gameID, coreID int64) (*domain.Challenge, error)

	// AllocateRandom inserts up to limit challenges for cores drawn
	// uniformly at random without replacement from partition, skipping the
	// IDs in exclude, and returns what was inserted.
	AllocateRandom(
		ctx context.Context,
		gameID int64,
		partition CorePartition,
		exclude []int64,
		limit int,
	) ([]*domain.Challenge, error)

	// GetDetail loads a challenge together with its game and core.
	// Returns ErrChallengeNotFound if the challenge does not exist.
	GetDetail(ctx context.Context, id int64) (*domain.ChallengeDetail, error)

	// ListByGame returns the game's challenges ordered by ID.
	ListByGame(ctx context.Context, gameID int64) ([]*domain.Challenge, error)

	// ListResults returns the game's challenges with their core's ground
	// truth, ordered by ID.
	ListResults(ctx context.Context, gameID int64) ([]ChallengeResult, error)

	// MarkStarted sets started_at only if it is still null. It reports
	// whether this call set it.
	MarkStarted(ctx context.Context, id int64, at time.Time) (bool, error)

	// Submit records a guess only if none has been recorded yet and returns
	// the number of rows affected.
	Submit(ctx context.Context, s Submission) (int64, error)

	// DeleteUnattempted removes the game's challenges that have no guess
	// and returns how many were deleted.
	DeleteUnattempted(ctx context.Context, gameID int64) (int64, error)

	// WithTx returns a new ChallengeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ChallengeStore
}
