package service_test

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biogames/biogames-api/internal/config"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/domain/eligibility"
	"github.com/biogames/biogames-api/internal/events"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/biogames/biogames-api/internal/service/allocation"
	"github.com/biogames/biogames-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = service.GameRules{
	TrainingChallenges: 20,
	TestChallenges:     50,
	MinDwell:           5 * time.Second,
}

// clock is a settable time source shared by services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubImages serves the same tiny body for every core.
type stubImages struct{}

func (stubImages) Open(context.Context, *domain.Core) (*images.Image, error) {
	return &images.Image{
		Body:        io.NopCloser(strings.NewReader("png")),
		Size:        3,
		ContentType: "image/png",
	}, nil
}

// eventLog collects emitted events.
type eventLog struct {
	mu     sync.Mutex
	events []*events.GameEvent
}

func (l *eventLog) HandleEvent(_ context.Context, e *events.GameEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) count(eventType string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// harness wires real services over an in-memory store. The sql.DB is a
// sqlmock that only has to accept the transaction boundaries.
type harness struct {
	db         *memstore.DB
	sqlDB      *sql.DB
	mock       sqlmock.Sqlmock
	clock      *clock
	events     *eventLog
	games      service.GameService
	challenges service.ChallengeService
	finalizer  *service.Finalizer
}

type harnessOption func(*service.GameServiceDeps)

func withResolver(r service.UserResolver) harnessOption {
	return func(d *service.GameServiceDeps) { d.Resolver = r }
}

func withPolicy(p eligibility.Policy) harnessOption {
	return func(d *service.GameServiceDeps) { d.Policy = p }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	h := &harness{
		db:     memstore.New(),
		sqlDB:  sqlDB,
		mock:   mock,
		clock:  newClock(),
		events: &eventLog{},
	}

	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(h.events)

	deps := service.GameServiceDeps{
		DB:         sqlDB,
		Games:      h.db.Games(),
		Challenges: h.db.Challenges(),
		Users:      h.db.Users(),
		Policy:     eligibility.NewSequentialPolicy(config.DefaultTrainingLimit),
		Resolver:   service.StrictResolver{},
		Allocator:  allocation.New(config.DefaultEvaluationCoreIDs, nil),
		Rules:      testRules,
		Emitter:    emitter,
		Now:        h.clock.Now,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.games, err = service.NewGameService(deps, nil)
	require.NoError(t, err)

	h.finalizer = service.NewFinalizer(h.db.Games(), emitter, nil)
	h.challenges, err = service.NewChallengeService(service.ChallengeServiceDeps{
		Games:      h.db.Games(),
		Challenges: h.db.Challenges(),
		Images:     stubImages{},
		Finalizer:  h.finalizer,
		MinDwell:   testRules.MinDwell,
		Now:        h.clock.Now,
	}, nil)
	require.NoError(t, err)
	return h
}

// seedCores adds the evaluation set with the given truth and n general cores.
func (h *harness) seedCores(evalTruth, general int) {
	for _, id := range config.DefaultEvaluationCoreIDs {
		h.db.AddCore(id, evalTruth)
	}
	for i := 0; i < general; i++ {
		h.db.AddCore(int64(100000+i), i%4)
	}
}

// expectTx allows n committed transactions.
func (h *harness) expectTx(n int) {
	for i := 0; i < n; i++ {
		h.mock.ExpectBegin()
		h.mock.ExpectCommit()
	}
}

// expectRollback allows one transaction that is rolled back.
func (h *harness) expectRollback() {
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
}

func (h *harness) verifyTx(t *testing.T) {
	t.Helper()
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

// play fetches and answers every challenge of game with guess after dwell.
func (h *harness) play(t *testing.T, game *domain.Game, guess int, dwell time.Duration) {
	t.Helper()
	ctx := context.Background()
	for _, c := range game.Challenges {
		img, err := h.challenges.FetchContent(ctx, c.ID)
		require.NoError(t, err)
		_ = img.Body.Close()
		h.clock.Advance(dwell)
		_, err = h.challenges.Submit(ctx, c.ID, guess)
		require.NoError(t, err)
	}
}

func isEvaluationCore(id int64) bool {
	for _, e := range config.DefaultEvaluationCoreIDs {
		if e == id {
			return true
		}
	}
	return false
}
