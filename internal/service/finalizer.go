package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/biogames/biogames-api/internal/events"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/store"
)

// Finalizer closes a game once its last challenge is scored.
type Finalizer struct {
	games   store.GameStore
	emitter events.EventEmitter
	now     func() time.Time
	logger  *slog.Logger
}

// NewFinalizer creates a Finalizer. A nil emitter discards events.
func NewFinalizer(games store.GameStore, emitter events.EventEmitter, logger *slog.Logger) *Finalizer {
	if games == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("games store cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Finalizer{
		games:   games,
		emitter: emitter,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "finalizer")),
	}
}

// TryFinalize finalizes gameID if every challenge has points. The store
// update is guarded on finished_at IS NULL, so concurrent callers finalize
// a game at most once. Failures are logged, never returned: the submission
// that triggered the call has already been recorded.
func (f *Finalizer) TryFinalize(ctx context.Context, gameID int64) bool {
	log := logger.FromContextOrDefault(ctx, f.logger).With(slog.Int64("game_id", gameID))

	finalized, err := f.games.FinalizeIfComplete(ctx, gameID, f.now())
	if err != nil {
		log.Error("failed to finalize game", redact.Attr(err))
		return false
	}
	if !finalized {
		return false
	}

	game, err := f.games.GetByID(ctx, gameID)
	if err != nil {
		log.Error("finalized game could not be reloaded", redact.Attr(err))
		return true
	}
	log.Info("game finalized",
		slog.Int("score", derefInt(game.Score)),
		slog.Int("max_score", game.MaxScore))

	if err := f.emitter.EmitEvent(ctx, events.NewGameEvent(events.TypeGameFinalized, game)); err != nil {
		log.Warn("failed to emit finalized event", redact.Attr(err))
	}
	return true
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
