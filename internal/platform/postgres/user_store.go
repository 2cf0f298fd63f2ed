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

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// GetByUserID implements store.UserStore.GetByUserID
func (s *PostgresUserStore) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		u        domain.User
		username sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, username FROM registered_users WHERE user_id = $1`,
		userID,
	).Scan(&u.ID, &u.UserID, &username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not registered", slog.String("user_id", userID))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			redact.Attr(err),
			slog.String("user_id", userID))
		return nil, store.NewStoreError("user", "get", "query failed", MapError(err))
	}
	if username.Valid {
		u.Username = &username.String
	}
	return &u, nil
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.UserID == "" {
		return store.NewStoreError("user", "create", "invalid user", errors.Join(store.ErrInvalidEntity, domain.ErrEmptyUserID))
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO registered_users (user_id, username) VALUES ($1, $2) RETURNING id`,
		user.UserID, user.Username,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user already registered", slog.String("user_id", user.UserID))
			return store.ErrUserExists
		}
		log.Error("failed to create user",
			redact.Attr(err),
			slog.String("user_id", user.UserID))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Info("user registered", slog.String("user_id", user.UserID))
	return nil
}

// SetUsername implements store.UserStore.SetUsername
func (s *PostgresUserStore) SetUsername(ctx context.Context, userID, username string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE registered_users SET username = $2 WHERE user_id = $1 AND username IS NULL`,
		userID, username)
	if err != nil {
		log.Error("failed to set username",
			redact.Attr(err),
			slog.String("user_id", userID))
		return false, store.NewStoreError("user", "set_username", "update failed", MapError(err))
	}

	n, err := rowsAffected(result, "user", "set_username")
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	// Distinguish "already named" from "not registered".
	if _, err := s.GetByUserID(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}
