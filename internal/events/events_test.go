package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameEvent(t *testing.T) {
	score := 42
	game := &domain.Game{ID: 7, UserID: "user-1", Mode: domain.ModeTraining, Score: &score}

	event := NewGameEvent(TypeGameFinalized, game)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeGameFinalized, event.Type)
	assert.Equal(t, int64(7), event.GameID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, domain.ModeTraining, event.Mode)
	require.NotNil(t, event.Score)
	assert.Equal(t, 42, *event.Score)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"game.finalized"`)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *GameEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *GameEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	var got *GameEvent
	var h EventHandler = HandlerFunc(func(_ context.Context, e *GameEvent) error {
		got = e
		return errors.New("boom")
	})

	event := NewGameEvent(TypeGameQuit, &domain.Game{ID: 1})
	err := h.HandleEvent(context.Background(), event)

	assert.EqualError(t, err, "boom")
	assert.Same(t, event, got)
}

func TestNopEmitter(t *testing.T) {
	var e EventEmitter = NopEmitter{}
	assert.NoError(t, e.EmitEvent(context.Background(), NewGameEvent(TypeGameCreated, &domain.Game{})))
}
