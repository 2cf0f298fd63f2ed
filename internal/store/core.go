package store

import (
	"context"

	"github.com/biogames/biogames-api/internal/domain"
)

// CoreStore reads the read-only catalogue of image cores.
type CoreStore interface {
	// GetByID returns ErrCoreNotFound if the core does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Core, error)

	// RandomID returns the ID of a uniformly random core.
	// Returns ErrCoreNotFound if there are no cores.
	RandomID(ctx context.Context) (int64, error)
}
