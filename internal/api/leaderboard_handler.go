package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// LeaderboardReader returns the ranked best training sessions.
type LeaderboardReader interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// LeaderboardHandler serves GET /leaderboard.
type LeaderboardHandler struct {
	reader LeaderboardReader
	logger *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(reader LeaderboardReader, logger *slog.Logger) *LeaderboardHandler {
	if reader == nil {
		panic("leaderboard reader cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardHandler{
		reader: reader,
		logger: logger.With(slog.String("component", "leaderboard_handler")),
	}
}

// Routes registers the leaderboard endpoint on r.
func (h *LeaderboardHandler) Routes(r chi.Router) {
	r.Get("/leaderboard", h.GetLeaderboard)
}

// GetLeaderboard handles GET /leaderboard
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reader.Leaderboard(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LeaderboardResponse{Entries: entries})
}
