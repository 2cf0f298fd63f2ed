package api

import (
	"log/slog"
	"net/http"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles registration and per-user lookups.
type UserHandler struct {
	users  service.UserService
	games  service.GameService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, games service.GameService, logger *slog.Logger) *UserHandler {
	if users == nil || games == nil {
		panic("user and game services cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		games:  games,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Routes registers the user endpoints on r.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/users", h.Register)
	r.Get("/users/{user_id}", h.GetUser)
	r.Get("/users/{user_id}/game-counts", h.GameCounts)
}

// Register handles POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithReason(service.ReasonInvalidRequest))
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.Register(r.Context(), req.UserID, req.Username)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register user")
		return
	}

	log.Info("username registered", slog.String("user_id", req.UserID))
	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// GetUser handles GET /users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		HandleAPIError(w, r, domain.ErrEmptyUserID, "")
		return
	}

	user, err := h.users.Lookup(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to look up user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GameCounts handles GET /users/{user_id}/game-counts
func (h *UserHandler) GameCounts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		HandleAPIError(w, r, domain.ErrEmptyUserID, "")
		return
	}

	counts, err := h.games.GameCounts(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count games")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}
