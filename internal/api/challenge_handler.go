package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// DefaultImageMaxAge is how long clients may cache core images.
const DefaultImageMaxAge = 24 * time.Hour

// ChallengeHandler serves challenge images and accepts guesses.
type ChallengeHandler struct {
	challenges   service.ChallengeService
	cacheControl string
	logger       *slog.Logger
}

// NewChallengeHandler creates a new ChallengeHandler. A zero maxAge uses
// DefaultImageMaxAge.
func NewChallengeHandler(challenges service.ChallengeService, maxAge time.Duration, logger *slog.Logger) *ChallengeHandler {
	if challenges == nil {
		panic("challenge service cannot be nil") // ALLOW-PANIC
	}
	if maxAge <= 0 {
		maxAge = DefaultImageMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChallengeHandler{
		challenges:   challenges,
		cacheControl: cacheControl(maxAge),
		logger:       logger.With(slog.String("component", "challenge_handler")),
	}
}

// Routes registers the challenge endpoints on r.
func (h *ChallengeHandler) Routes(r chi.Router) {
	r.Get("/challenges/{id}/core", h.GetCore)
	r.Post("/challenges/{id}", h.SubmitGuess)
}

// GetCore handles GET /challenges/{id}/core. Serving the image starts the
// challenge's clock.
func (h *ChallengeHandler) GetCore(w http.ResponseWriter, r *http.Request) {
	challengeID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	img, err := h.challenges.FetchContent(r.Context(), challengeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load core image")
		return
	}

	writeImage(w, r, img, h.cacheControl)
}

// SubmitGuess handles POST /challenges/{id}
func (h *ChallengeHandler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	challengeID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmitGuessRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithReason(service.ReasonInvalidRequest))
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	challenge, err := h.challenges.Submit(r.Context(), challengeID, *req.Guess)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit guess")
		return
	}

	resp := SubmitGuessResponse{ID: challenge.ID, Guess: *req.Guess}
	if challenge.Points != nil {
		resp.Points = *challenge.Points
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
