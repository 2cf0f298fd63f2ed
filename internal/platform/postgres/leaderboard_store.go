package postgres

import (
	"context"
	"log/slog"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/store"
)

// PostgresLeaderboardStore implements the store.LeaderboardStore interface.
type PostgresLeaderboardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLeaderboardStore creates a new PostgreSQL implementation of the LeaderboardStore interface.
func NewPostgresLeaderboardStore(db store.DBTX, logger *slog.Logger) *PostgresLeaderboardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLeaderboardStore{
		db:     db,
		logger: logger.With(slog.String("component", "leaderboard_store")),
	}
}

var _ store.LeaderboardStore = (*PostgresLeaderboardStore)(nil)

// BestTrainingSessions implements store.LeaderboardStore.BestTrainingSessions
func (s *PostgresLeaderboardStore) BestTrainingSessions(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, username, score, time_taken_ms, finished_at
		FROM (
			SELECT user_id, username, score, time_taken_ms, finished_at,
				ROW_NUMBER() OVER (
					PARTITION BY user_id
					ORDER BY score DESC, time_taken_ms ASC, finished_at ASC
				) AS rank
			FROM games
			WHERE game_type = 'training'
				AND finished_at IS NOT NULL
				AND score IS NOT NULL
				AND time_taken_ms IS NOT NULL
		) best
		WHERE rank = 1
		ORDER BY score DESC, time_taken_ms ASC, finished_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query leaderboard", redact.Attr(err))
		return nil, store.NewStoreError("leaderboard", "query", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score, &e.TimeTakenMS, &e.Timestamp); err != nil {
			return nil, store.NewStoreError("leaderboard", "query", "scan failed", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("leaderboard", "query", "row iteration failed", err)
	}

	log.Debug("leaderboard computed", slog.Int("entries", len(entries)))
	return entries, nil
}
