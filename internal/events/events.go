package events

import (
	"context"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/google/uuid"
)

// Game lifecycle event types.
const (
	TypeGameCreated   = "game.created"
	TypeGameFinalized = "game.finalized"
	TypeGameQuit      = "game.quit"
)

// GameEvent records a transition in a game's lifecycle.
type GameEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the TypeGame* constants
	Type string `json:"type"`

	GameID int64       `json:"game_id"`
	UserID string      `json:"user_id"`
	Mode   domain.Mode `json:"mode"`

	// Score is set for finalized and quit games.
	Score *int `json:"score,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewGameEvent creates a GameEvent of the given type for game.
func NewGameEvent(eventType string, game *domain.Game) *GameEvent {
	return &GameEvent{
		ID:        uuid.New(),
		Type:      eventType,
		GameID:    game.ID,
		UserID:    game.UserID,
		Mode:      game.Mode,
		Score:     game.Score,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *GameEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *GameEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *GameEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *GameEvent) error {
	return f(ctx, event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *GameEvent) error { return nil }
