package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/store"
)

// PostgresGameStore implements the store.GameStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGameStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGameStore creates a new PostgreSQL implementation of the GameStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresGameStore(db store.DBTX, logger *slog.Logger) *PostgresGameStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGameStore{
		db:     db,
		logger: logger.With(slog.String("component", "game_store")),
	}
}

// Ensure PostgresGameStore implements store.GameStore interface
var _ store.GameStore = (*PostgresGameStore)(nil)

const gameColumns = `id, user_id, username, game_type, started_at, finished_at, score, max_score, time_taken_ms`

func scanGame(row scanner) (*domain.Game, error) {
	var (
		g          domain.Game
		mode       string
		finishedAt sql.NullTime
		score      sql.NullInt64
		timeTaken  sql.NullInt64
	)
	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Username,
		&mode,
		&g.StartedAt,
		&finishedAt,
		&score,
		&g.MaxScore,
		&timeTaken,
	); err != nil {
		return nil, err
	}

	g.Mode = domain.Mode(mode)
	if finishedAt.Valid {
		t := finishedAt.Time.UTC()
		g.FinishedAt = &t
	}
	if score.Valid {
		s := int(score.Int64)
		g.Score = &s
	}
	if timeTaken.Valid {
		ms := timeTaken.Int64
		g.TimeTakenMS = &ms
	}
	g.StartedAt = g.StartedAt.UTC()
	return &g, nil
}

// Create implements store.GameStore.Create
func (s *PostgresGameStore) Create(ctx context.Context, game *domain.Game) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := game.Validate(); err != nil {
		log.Warn("game validation failed during create",
			redact.Attr(err),
			slog.String("user_id", game.UserID))
		return store.NewStoreError("game", "create", "invalid game", errors.Join(store.ErrInvalidEntity, err))
	}

	query := `
		INSERT INTO games (user_id, username, game_type, started_at, max_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		game.UserID,
		game.Username,
		string(game.Mode),
		game.StartedAt,
		game.MaxScore,
	).Scan(&game.ID)
	if err != nil {
		log.Error("failed to create game",
			redact.Attr(err),
			slog.String("user_id", game.UserID),
			slog.String("mode", string(game.Mode)))
		return store.NewStoreError("game", "create", "insert failed", MapError(err))
	}

	log.Debug("game created",
		slog.Int64("game_id", game.ID),
		slog.String("mode", string(game.Mode)))
	return nil
}

// GetByID implements store.GameStore.GetByID
func (s *PostgresGameStore) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("game not found", slog.Int64("game_id", id))
			return nil, store.ErrGameNotFound
		}
		log.Error("failed to get game by ID",
			redact.Attr(err),
			slog.Int64("game_id", id))
		return nil, store.NewStoreError("game", "get", "query failed", MapError(err))
	}
	return g, nil
}

// CountByMode implements store.GameStore.CountByMode
func (s *PostgresGameStore) CountByMode(ctx context.Context, userID string) (domain.ModeCounts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE game_type = 'pretest'),
			COUNT(*) FILTER (WHERE game_type = 'training'),
			COUNT(*) FILTER (WHERE game_type = 'posttest')
		FROM games
		WHERE user_id = $1
	`
	var counts domain.ModeCounts
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&counts.Pretest,
		&counts.Training,
		&counts.Posttest,
	); err != nil {
		log.Error("failed to count games",
			redact.Attr(err),
			slog.String("user_id", userID))
		return domain.ModeCounts{}, store.NewStoreError("game", "count", "query failed", MapError(err))
	}
	return counts, nil
}

// LatestByMode implements store.GameStore.LatestByMode
func (s *PostgresGameStore) LatestByMode(
	ctx context.Context,
	userID string,
	mode domain.Mode,
) (*domain.Game, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE user_id = $1 AND game_type = $2
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`
	g, err := scanGame(s.db.QueryRowContext(ctx, query, userID, string(mode)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGameNotFound
		}
		log.Error("failed to get latest game",
			redact.Attr(err),
			slog.String("user_id", userID),
			slog.String("mode", string(mode)))
		return nil, store.NewStoreError("game", "latest", "query failed", MapError(err))
	}
	return g, nil
}

// LockUser implements store.GameStore.LockUser
func (s *PostgresGameStore) LockUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to lock user",
			redact.Attr(err),
			slog.String("user_id", userID))
		return store.NewStoreError("game", "lock", "advisory lock failed", err)
	}
	return nil
}

// FinalizeIfComplete implements store.GameStore.FinalizeIfComplete.
// The aggregate only yields a row when every challenge has points, and
// the finished_at guard makes the update fire at most once.
func (s *PostgresGameStore) FinalizeIfComplete(ctx context.Context, id int64, now time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE games g
		SET score = agg.total,
			time_taken_ms = agg.elapsed_ms,
			finished_at = $2
		FROM (
			SELECT
				SUM(points) AS total,
				FLOOR(EXTRACT(EPOCH FROM SUM(submitted_at - started_at)) * 1000)::BIGINT AS elapsed_ms,
				COUNT(*) AS n,
				COUNT(points) AS scored
			FROM challenges
			WHERE game_id = $1
		) agg
		WHERE g.id = $1
			AND g.finished_at IS NULL
			AND agg.n > 0
			AND agg.n = agg.scored
	`
	result, err := s.db.ExecContext(ctx, query, id, now)
	if err != nil {
		log.Error("failed to finalize game",
			redact.Attr(err),
			slog.Int64("game_id", id))
		return false, store.NewStoreError("game", "finalize", "update failed", MapError(err))
	}

	n, err := rowsAffected(result, "game", "finalize")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FinishPartial implements store.GameStore.FinishPartial.
// Challenges missing either timestamp contribute NULL to the interval sum
// and are skipped by it. With no qualifying challenge both aggregates stay
// NULL, which keeps the game off the leaderboard.
func (s *PostgresGameStore) FinishPartial(ctx context.Context, id int64, now time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE games g
		SET score = agg.total,
			time_taken_ms = agg.elapsed_ms,
			finished_at = $2
		FROM (
			SELECT
				SUM(points) AS total,
				FLOOR(EXTRACT(EPOCH FROM SUM(submitted_at - started_at)) * 1000)::BIGINT AS elapsed_ms
			FROM challenges
			WHERE game_id = $1
		) agg
		WHERE g.id = $1 AND g.finished_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, id, now)
	if err != nil {
		log.Error("failed to finish game",
			redact.Attr(err),
			slog.Int64("game_id", id))
		return false, store.NewStoreError("game", "finish", "update failed", MapError(err))
	}

	n, err := rowsAffected(result, "game", "finish")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// WithTx implements store.GameStore.WithTx
func (s *PostgresGameStore) WithTx(tx *sql.Tx) store.GameStore {
	return &PostgresGameStore{
		db:     tx,
		logger: s.logger,
	}
}
