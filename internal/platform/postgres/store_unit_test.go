package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/postgres"
	"github.com/biogames/biogames-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets []int64 arguments through, as the pgx driver does.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if ids, ok := v.([]int64); ok {
		return ids, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var gameCols = []string{
	"id", "user_id", "username", "game_type", "started_at",
	"finished_at", "score", "max_score", "time_taken_ms",
}

func TestGameStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)

	game, err := domain.NewGame("user-1", "alice", domain.ModePretest, 50)
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO games`).
		WithArgs("user-1", "alice", "pretest", sqlmock.AnyArg(), 250).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	require.NoError(t, s.Create(context.Background(), game))
	assert.Equal(t, int64(17), game.ID)
}

func TestGameStore_CreateRejectsInvalid(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)

	err := s.Create(context.Background(), &domain.Game{UserID: "u", Mode: domain.ModeTraining})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrGameMaxScoreEmpty)
}

func TestGameStore_GetByID(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(10 * time.Minute)

	mock.ExpectQuery(`SELECT .* FROM games WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(gameCols).
			AddRow(int64(3), "user-1", "alice", "training", started, finished, int64(80), 100, int64(120000)))

	g, err := s.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTraining, g.Mode)
	require.NotNil(t, g.Score)
	assert.Equal(t, 80, *g.Score)
	require.NotNil(t, g.TimeTakenMS)
	assert.Equal(t, int64(120000), *g.TimeTakenMS)
	assert.True(t, g.IsFinished())
}

func TestGameStore_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)

	mock.ExpectQuery(`SELECT .* FROM games WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrGameNotFound)
}

func TestGameStore_CountByMode(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)

	mock.ExpectQuery(`COUNT\(\*\) FILTER`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"pretest", "training", "posttest"}).AddRow(1, 399, 0))

	counts, err := s.CountByMode(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeCounts{Pretest: 1, Training: 399}, counts)
}

func TestGameStore_LockUser(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)

	mock.ExpectExec(`pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.LockUser(context.Background(), "user-1"))
}

func TestGameStore_FinalizeIfComplete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"all challenges scored", 1, true},
		{"incomplete or already finished", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			s := postgres.NewPostgresGameStore(db, nil)

			mock.ExpectExec(`UPDATE games g\s+SET score = agg.total`).
				WithArgs(int64(5), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := s.FinalizeIfComplete(context.Background(), 5, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGameStore_FinalizeIfCompleteError(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresGameStore(db, nil)

	mock.ExpectExec(`UPDATE games g`).WillReturnError(errors.New("connection reset"))

	ok, err := s.FinalizeIfComplete(context.Background(), 5, time.Now())
	assert.False(t, ok)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "finalize", storeErr.Operation)
}

func TestChallengeStore_CreateForCoreUnknownCore(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)

	mock.ExpectQuery(`INSERT INTO challenges`).
		WithArgs(int64(1), int64(424242)).
		WillReturnError(newPgError("23503"))

	_, err := s.CreateForCore(context.Background(), 1, 424242)
	assert.ErrorIs(t, err, store.ErrCoreNotFound)
}

func TestChallengeStore_AllocateRandom(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)

	partition := store.CorePartition{IDs: []int64{345, 20125, 23246}, Include: true}
	mock.ExpectQuery(`INSERT INTO challenges \(game_id, core_id\)\s+SELECT`).
		WithArgs(int64(9), true, partition.IDs, []int64{}, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "game_id", "core_id"}).
			AddRow(int64(100), int64(9), int64(345)).
			AddRow(int64(101), int64(9), int64(23246)))

	got, err := s.AllocateRandom(context.Background(), 9, partition, nil, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(345), got[0].CoreID)
	assert.Equal(t, int64(23246), got[1].CoreID)
}

func TestChallengeStore_AllocateRandomZeroLimit(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)

	got, err := s.AllocateRandom(context.Background(), 9, store.CorePartition{}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChallengeStore_GetDetail(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	cols := []string{
		"c.id", "c.game_id", "c.core_id", "c.guess", "c.started_at", "c.submitted_at", "c.points",
		"g.id", "g.user_id", "g.username", "g.game_type", "g.started_at", "g.finished_at",
		"g.score", "g.max_score", "g.time_taken_ms",
		"hc.id", "hc.score", "hc.file_name", "hc.created_at",
	}
	mock.ExpectQuery(`FROM challenges c\s+JOIN games g`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(100), int64(9), int64(345), nil, started, nil, nil,
			int64(9), "user-1", "alice", "pretest", started, nil, nil, 250, nil,
			int64(345), 3, "core_345.png", started,
		))

	d, err := s.GetDetail(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, d.Challenge.IsAnswered())
	require.NotNil(t, d.Challenge.StartedAt)
	assert.Equal(t, started, *d.Challenge.StartedAt)
	assert.False(t, d.Game.IsFinished())
	assert.Equal(t, domain.ModePretest, d.Game.Mode)
	assert.Equal(t, 3, d.Core.Score)
	assert.Equal(t, "core_345.png", d.Core.FileName)
}

func TestChallengeStore_ListResults(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	submitted := started.Add(7 * time.Second)

	cols := []string{
		"c.id", "c.game_id", "c.core_id", "c.guess", "c.started_at", "c.submitted_at", "c.points", "hc.score",
	}
	mock.ExpectQuery(`FROM challenges c\s+JOIN her2_cores hc.*ORDER BY c.id`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(100), int64(9), int64(345), int64(0), started, submitted, int64(-5), 3).
			AddRow(int64(101), int64(9), int64(346), nil, nil, nil, nil, 1))

	results, err := s.ListResults(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Truth)
	require.NotNil(t, results[0].Challenge.Points)
	assert.Equal(t, -5, *results[0].Challenge.Points)
	assert.Equal(t, 7*time.Second, results[0].Challenge.Elapsed())
	assert.False(t, results[1].Challenge.IsAnswered())
}

func TestChallengeStore_Submit(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)
	now := time.Now()

	mock.ExpectExec(`UPDATE challenges c\s+SET guess = \$2.*AND c.guess IS NULL`).
		WithArgs(int64(100), 0, -5, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE challenges c`).
		WithArgs(int64(100), 1, -3, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.Submit(context.Background(), store.Submission{ChallengeID: 100, Guess: 0, Points: -5, SubmittedAt: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Submit(context.Background(), store.Submission{ChallengeID: 100, Guess: 1, Points: -3, SubmittedAt: now})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestChallengeStore_MarkStarted(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresChallengeStore(db, nil)

	mock.ExpectExec(`UPDATE challenges SET started_at = \$2 WHERE id = \$1 AND started_at IS NULL`).
		WithArgs(int64(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE challenges SET started_at`).
		WithArgs(int64(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := s.MarkStarted(context.Background(), 100, time.Now())
	require.NoError(t, err)
	assert.True(t, first)

	second, err := s.MarkStarted(context.Background(), 100, time.Now())
	require.NoError(t, err)
	assert.False(t, second)
}

func TestUserStore_SetUsername(t *testing.T) {
	t.Run("assigns once", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresUserStore(db, nil)

		mock.ExpectExec(`UPDATE registered_users SET username = \$2 WHERE user_id = \$1 AND username IS NULL`).
			WithArgs("user-1", "alice").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := s.SetUsername(context.Background(), "user-1", "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already named", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresUserStore(db, nil)

		mock.ExpectExec(`UPDATE registered_users`).
			WithArgs("user-1", "mallory").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT id, user_id, username FROM registered_users`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username"}).AddRow(int64(1), "user-1", "alice"))

		ok, err := s.SetUsername(context.Background(), "user-1", "mallory")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("not registered", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresUserStore(db, nil)

		mock.ExpectExec(`UPDATE registered_users`).
			WithArgs("ghost", "casper").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT id, user_id, username FROM registered_users`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := s.SetUsername(context.Background(), "ghost", "casper")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestUserStore_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresUserStore(db, nil)

	mock.ExpectQuery(`INSERT INTO registered_users`).
		WillReturnError(newPgError("23505"))

	err := s.Create(context.Background(), &domain.User{UserID: "user-1"})
	assert.ErrorIs(t, err, store.ErrUserExists)
}

func TestLeaderboardStore_BestTrainingSessions(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLeaderboardStore(db, nil)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "score", "time_taken_ms", "finished_at"}).
			AddRow("u-bob", "bob", 95, int64(150000), ts).
			AddRow("u-amy", "amy", 80, int64(90000), ts))

	entries, err := s.BestTrainingSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, 95, entries[0].Score)
}

func TestLeaderboardStore_Empty(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLeaderboardStore(db, nil)

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "score", "time_taken_ms", "finished_at"}))

	entries, err := s.BestTrainingSessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestCoreStore_RandomIDEmptyCatalogue(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresCoreStore(db, nil)

	mock.ExpectQuery(`SELECT id FROM her2_cores ORDER BY random\(\) LIMIT 1`).
		WillReturnError(sql.ErrNoRows)

	_, err := s.RandomID(context.Background())
	assert.ErrorIs(t, err, store.ErrCoreNotFound)
}

func TestNewStores_PanicOnNilDB(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresGameStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresChallengeStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresUserStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresCoreStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresLeaderboardStore(nil, nil) })
}
