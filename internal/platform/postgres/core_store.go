package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/store"
)

// PostgresCoreStore implements the store.CoreStore interface.
type PostgresCoreStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCoreStore creates a new PostgreSQL implementation of the CoreStore interface.
func NewPostgresCoreStore(db store.DBTX, logger *slog.Logger) *PostgresCoreStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCoreStore{
		db:     db,
		logger: logger.With(slog.String("component", "core_store")),
	}
}

var _ store.CoreStore = (*PostgresCoreStore)(nil)

// GetByID implements store.CoreStore.GetByID
func (s *PostgresCoreStore) GetByID(ctx context.Context, id int64) (*domain.Core, error) {
	var c domain.Core
	err := s.db.QueryRowContext(ctx,
		`SELECT id, score, file_name, created_at FROM her2_cores WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Score, &c.FileName, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCoreNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get core",
			redact.Attr(err),
			slog.Int64("core_id", id))
		return nil, store.NewStoreError("core", "get", "query failed", MapError(err))
	}
	return &c, nil
}

// RandomID implements store.CoreStore.RandomID
func (s *PostgresCoreStore) RandomID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM her2_cores ORDER BY random() LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrCoreNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to pick random core",
			redact.Attr(err))
		return 0, store.NewStoreError("core", "random", "query failed", MapError(err))
	}
	return id, nil
}
