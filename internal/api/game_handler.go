package api

import (
	"log/slog"
	"net/http"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// GameHandler handles game lifecycle requests.
type GameHandler struct {
	games      service.GameService
	challenges service.ChallengeService
	logger     *slog.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(
	games service.GameService,
	challenges service.ChallengeService,
	logger *slog.Logger,
) *GameHandler {
	if games == nil || challenges == nil {
		panic("game and challenge services cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GameHandler{
		games:      games,
		challenges: challenges,
		logger:     logger.With(slog.String("component", "game_handler")),
	}
}

// Routes registers the game endpoints on r.
func (h *GameHandler) Routes(r chi.Router) {
	r.Post("/games", h.CreateGame)
	r.Get("/games/{id}", h.GetGame)
	r.Get("/games/{id}/challenge", h.CurrentChallenge)
	r.Post("/games/{id}/quit", h.QuitGame)
}

// CreateGame handles POST /games?mode=
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateGameRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithReason(service.ReasonInvalidRequest))
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	game, err := h.games.CreateGame(r.Context(), service.CreateGameRequest{
		UserID:        req.UserID,
		Mode:          r.URL.Query().Get("mode"),
		InitialCoreID: req.InitialCoreID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create game")
		return
	}

	log.Info("game created",
		slog.Int64("game_id", game.ID),
		slog.String("mode", string(game.Mode)))
	shared.RespondWithJSON(w, r, http.StatusCreated, gameToResponse(game))
}

// GetGame handles GET /games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	report, err := h.games.GetResults(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get game results")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reportToResponse(report))
}

// CurrentChallenge handles GET /games/{id}/challenge?completed_count=N
func (h *GameHandler) CurrentChallenge(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	completed, err := getQueryInt(r, "completed_count", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cur, err := h.challenges.Current(r.Context(), gameID, completed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get current challenge")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CurrentChallengeResponse{
		ID:                  cur.ID,
		CoreID:              cur.CoreID,
		CompletedChallenges: cur.CompletedChallenges,
		TotalChallenges:     cur.TotalChallenges,
	})
}

// QuitGame handles POST /games/{id}/quit
func (h *GameHandler) QuitGame(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	gameID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	game, err := h.games.QuitGame(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to quit game")
		return
	}

	log.Info("game quit", slog.Int64("game_id", game.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, gameToResponse(game))
}
