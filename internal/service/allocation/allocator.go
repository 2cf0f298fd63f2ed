// Package allocation picks the cores a new game is played on.
package allocation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/store"
)

// ErrNoCoresAvailable is returned when a game would start with no challenges.
var ErrNoCoresAvailable = fmt.Errorf("%w: no cores available for this mode", domain.ErrPrecondition)

// Allocator draws distinct cores for a game. Pretest and posttest games
// draw from the evaluation set; training games from every other core.
type Allocator struct {
	evaluationIDs []int64
	logger        *slog.Logger
}

// New creates an Allocator over the given evaluation set.
func New(evaluationIDs []int64, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	ids := make([]int64, len(evaluationIDs))
	copy(ids, evaluationIDs)
	return &Allocator{
		evaluationIDs: ids,
		logger:        logger.With(slog.String("component", "core_allocator")),
	}
}

// Partition returns the subset of cores a game of the given mode draws from.
func (a *Allocator) Partition(mode domain.Mode) store.CorePartition {
	return store.CorePartition{
		IDs:     a.evaluationIDs,
		Include: mode.IsEvaluation(),
	}
}

// Allocate inserts up to count challenges for game. When initialCoreID is
// set, that core takes the first slot and is excluded from the random draw.
// The caller runs this inside the transaction that created the game so a
// failure leaves nothing behind.
func (a *Allocator) Allocate(
	ctx context.Context,
	challenges store.ChallengeStore,
	game *domain.Game,
	count int,
	initialCoreID *int64,
) ([]*domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, a.logger).With(
		slog.Int64("game_id", game.ID),
		slog.String("mode", string(game.Mode)))

	var (
		out     []*domain.Challenge
		exclude []int64
	)
	remaining := count
	if initialCoreID != nil {
		first, err := challenges.CreateForCore(ctx, game.ID, *initialCoreID)
		if err != nil {
			return nil, err
		}
		out = append(out, first)
		exclude = append(exclude, *initialCoreID)
		remaining--
	}

	drawn, err := challenges.AllocateRandom(ctx, game.ID, a.Partition(game.Mode), exclude, remaining)
	if err != nil {
		return nil, err
	}
	out = append(out, drawn...)

	if len(out) == 0 {
		log.Error("no cores available for game")
		return nil, ErrNoCoresAvailable
	}
	if len(out) < count {
		log.Warn("fewer cores available than requested",
			slog.Int("requested", count),
			slog.Int("allocated", len(out)))
	}
	return out, nil
}
