package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/biogames/biogames-api/internal/redact"
)

// InMemoryEventEmitter dispatches game events to handlers registered at
// startup. Dispatch is synchronous and happens on the caller's goroutine.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler appends handler to the dispatch list.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("registered event handler", slog.Int("handler_count", n))
}

// EmitEvent delivers event to every handler in registration order. A failing
// handler does not stop delivery; the first failure is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *GameEvent) error {
	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	log := e.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("game_id", event.GameID),
	)
	log.Debug("emitting event", slog.Int("handler_count", len(handlers)))

	var errs []error
	for i, h := range handlers {
		if err := h.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed", redact.Attr(err), slog.Int("handler_index", i))
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
