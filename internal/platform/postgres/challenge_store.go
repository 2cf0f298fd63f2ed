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

// PostgresChallengeStore implements the store.ChallengeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresChallengeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChallengeStore creates a new PostgreSQL implementation of the ChallengeStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresChallengeStore(db store.DBTX, logger *slog.Logger) *PostgresChallengeStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChallengeStore{
		db:     db,
		logger: logger.With(slog.String("component", "challenge_store")),
	}
}

// Ensure PostgresChallengeStore implements store.ChallengeStore interface
var _ store.ChallengeStore = (*PostgresChallengeStore)(nil)

const challengeColumns = `c.id, c.game_id, c.core_id, c.guess, c.started_at, c.submitted_at, c.points`

type scanner interface {
	Scan(dest ...any) error
}

// challengeRow holds the nullable columns of a challenge while scanning.
type challengeRow struct {
	c           domain.Challenge
	guess       sql.NullInt64
	startedAt   sql.NullTime
	submittedAt sql.NullTime
	points      sql.NullInt64
}

func (r *challengeRow) dest() []any {
	return []any{
		&r.c.ID,
		&r.c.GameID,
		&r.c.CoreID,
		&r.guess,
		&r.startedAt,
		&r.submittedAt,
		&r.points,
	}
}

func (r *challengeRow) challenge() *domain.Challenge {
	c := r.c
	if r.guess.Valid {
		g := int(r.guess.Int64)
		c.Guess = &g
	}
	if r.startedAt.Valid {
		t := r.startedAt.Time.UTC()
		c.StartedAt = &t
	}
	if r.submittedAt.Valid {
		t := r.submittedAt.Time.UTC()
		c.SubmittedAt = &t
	}
	if r.points.Valid {
		p := int(r.points.Int64)
		c.Points = &p
	}
	return &c
}

// CreateForCore implements store.ChallengeStore.CreateForCore
func (s *PostgresChallengeStore) CreateForCore(
	ctx context.Context,
	gameID, coreID int64,
) (*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO challenges (game_id, core_id)
		VALUES ($1, $2)
		RETURNING id, game_id, core_id
	`
	c := &domain.Challenge{}
	err := s.db.QueryRowContext(ctx, query, gameID, coreID).Scan(&c.ID, &c.GameID, &c.CoreID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("challenge references unknown core",
				slog.Int64("game_id", gameID),
				slog.Int64("core_id", coreID))
			return nil, store.ErrCoreNotFound
		}
		log.Error("failed to create challenge",
			redact.Attr(err),
			slog.Int64("game_id", gameID),
			slog.Int64("core_id", coreID))
		return nil, store.NewStoreError("challenge", "create", "insert failed", MapError(err))
	}
	return c, nil
}

// AllocateRandom implements store.ChallengeStore.AllocateRandom
func (s *PostgresChallengeStore) AllocateRandom(
	ctx context.Context,
	gameID int64,
	partition store.CorePartition,
	exclude []int64,
	limit int,
) ([]*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, nil
	}
	if exclude == nil {
		exclude = []int64{}
	}
	ids := partition.IDs
	if ids == nil {
		ids = []int64{}
	}

	query := `
		INSERT INTO challenges (game_id, core_id)
		SELECT $1, hc.id
		FROM her2_cores hc
		WHERE (hc.id = ANY($3::bigint[])) = $2
			AND NOT (hc.id = ANY($4::bigint[]))
		ORDER BY random()
		LIMIT $5
		RETURNING id, game_id, core_id
	`
	rows, err := s.db.QueryContext(ctx, query, gameID, partition.Include, ids, exclude, limit)
	if err != nil {
		log.Error("failed to allocate challenges",
			redact.Attr(err),
			slog.Int64("game_id", gameID))
		return nil, store.NewStoreError("challenge", "allocate", "insert failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Challenge
	for rows.Next() {
		c := &domain.Challenge{}
		if err := rows.Scan(&c.ID, &c.GameID, &c.CoreID); err != nil {
			return nil, store.NewStoreError("challenge", "allocate", "scan failed", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("challenge", "allocate", "row iteration failed", err)
	}

	log.Debug("challenges allocated",
		slog.Int64("game_id", gameID),
		slog.Int("requested", limit),
		slog.Int("allocated", len(out)))
	return out, nil
}

// GetDetail implements store.ChallengeStore.GetDetail
func (s *PostgresChallengeStore) GetDetail(ctx context.Context, id int64) (*domain.ChallengeDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + challengeColumns + `,
			g.id, g.user_id, g.username, g.game_type, g.started_at, g.finished_at, g.score, g.max_score, g.time_taken_ms,
			hc.id, hc.score, hc.file_name, hc.created_at
		FROM challenges c
		JOIN games g ON g.id = c.game_id
		JOIN her2_cores hc ON hc.id = c.core_id
		WHERE c.id = $1
	`
	var (
		row        challengeRow
		game       domain.Game
		mode       string
		finishedAt sql.NullTime
		score      sql.NullInt64
		timeTaken  sql.NullInt64
		core       domain.Core
	)
	dest := append(row.dest(),
		&game.ID, &game.UserID, &game.Username, &mode, &game.StartedAt,
		&finishedAt, &score, &game.MaxScore, &timeTaken,
		&core.ID, &core.Score, &core.FileName, &core.CreatedAt,
	)
	if err := s.db.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("challenge not found", slog.Int64("challenge_id", id))
			return nil, store.ErrChallengeNotFound
		}
		log.Error("failed to get challenge",
			redact.Attr(err),
			slog.Int64("challenge_id", id))
		return nil, store.NewStoreError("challenge", "get", "query failed", MapError(err))
	}

	game.Mode = domain.Mode(mode)
	if finishedAt.Valid {
		t := finishedAt.Time.UTC()
		game.FinishedAt = &t
	}
	if score.Valid {
		v := int(score.Int64)
		game.Score = &v
	}
	if timeTaken.Valid {
		v := timeTaken.Int64
		game.TimeTakenMS = &v
	}

	return &domain.ChallengeDetail{
		Challenge: row.challenge(),
		Game:      &game,
		Core:      &core,
	}, nil
}

// ListByGame implements store.ChallengeStore.ListByGame
func (s *PostgresChallengeStore) ListByGame(ctx context.Context, gameID int64) ([]*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + challengeColumns + ` FROM challenges c WHERE c.game_id = $1 ORDER BY c.id`
	rows, err := s.db.QueryContext(ctx, query, gameID)
	if err != nil {
		log.Error("failed to list challenges",
			redact.Attr(err),
			slog.Int64("game_id", gameID))
		return nil, store.NewStoreError("challenge", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Challenge
	for rows.Next() {
		var r challengeRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, store.NewStoreError("challenge", "list", "scan failed", err)
		}
		out = append(out, r.challenge())
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("challenge", "list", "row iteration failed", err)
	}
	return out, nil
}

// ListResults implements store.ChallengeStore.ListResults
func (s *PostgresChallengeStore) ListResults(ctx context.Context, gameID int64) ([]store.ChallengeResult, error) {
	query := `
		SELECT ` + challengeColumns + `, hc.score
		FROM challenges c
		JOIN her2_cores hc ON hc.id = c.core_id
		WHERE c.game_id = $1
		ORDER BY c.id
	`
	rows, err := s.db.QueryContext(ctx, query, gameID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list challenge results",
			redact.Attr(err),
			slog.Int64("game_id", gameID))
		return nil, store.NewStoreError("challenge", "results", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []store.ChallengeResult
	for rows.Next() {
		var (
			r     challengeRow
			truth int
		)
		if err := rows.Scan(append(r.dest(), &truth)...); err != nil {
			return nil, store.NewStoreError("challenge", "results", "scan failed", err)
		}
		out = append(out, store.ChallengeResult{Challenge: r.challenge(), Truth: truth})
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("challenge", "results", "row iteration failed", err)
	}
	return out, nil
}

// MarkStarted implements store.ChallengeStore.MarkStarted
func (s *PostgresChallengeStore) MarkStarted(ctx context.Context, id int64, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE challenges SET started_at = $2 WHERE id = $1 AND started_at IS NULL`,
		id, at)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark challenge started",
			redact.Attr(err),
			slog.Int64("challenge_id", id))
		return false, store.NewStoreError("challenge", "start", "update failed", MapError(err))
	}

	n, err := rowsAffected(result, "challenge", "start")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Submit implements store.ChallengeStore.Submit.
// Besides the guess IS NULL guard, rows of finished games are never touched.
func (s *PostgresChallengeStore) Submit(ctx context.Context, sub store.Submission) (int64, error) {
	query := `
		UPDATE challenges c
		SET guess = $2, points = $3, submitted_at = $4
		WHERE c.id = $1
			AND c.guess IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM games g WHERE g.id = c.game_id AND g.finished_at IS NOT NULL
			)
	`
	result, err := s.db.ExecContext(ctx, query, sub.ChallengeID, sub.Guess, sub.Points, sub.SubmittedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to submit challenge",
			redact.Attr(err),
			slog.Int64("challenge_id", sub.ChallengeID))
		return 0, store.NewStoreError("challenge", "submit", "update failed", MapError(err))
	}
	return rowsAffected(result, "challenge", "submit")
}

// DeleteUnattempted implements store.ChallengeStore.DeleteUnattempted
func (s *PostgresChallengeStore) DeleteUnattempted(ctx context.Context, gameID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM challenges WHERE game_id = $1 AND guess IS NULL`,
		gameID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete unattempted challenges",
			redact.Attr(err),
			slog.Int64("game_id", gameID))
		return 0, store.NewStoreError("challenge", "delete", "delete failed", MapError(err))
	}
	return rowsAffected(result, "challenge", "delete")
}

// WithTx implements store.ChallengeStore.WithTx
func (s *PostgresChallengeStore) WithTx(tx *sql.Tx) store.ChallengeStore {
	return &PostgresChallengeStore{
		db:     tx,
		logger: s.logger,
	}
}
