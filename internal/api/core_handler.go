package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// CoreHandler serves preview cores for the intro screen.
type CoreHandler struct {
	cores        service.CoreService
	cacheControl string
	logger       *slog.Logger
}

// NewCoreHandler creates a new CoreHandler.
func NewCoreHandler(cores service.CoreService, maxAge time.Duration, logger *slog.Logger) *CoreHandler {
	if cores == nil {
		panic("core service cannot be nil") // ALLOW-PANIC
	}
	if maxAge <= 0 {
		maxAge = DefaultImageMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CoreHandler{
		cores:        cores,
		cacheControl: cacheControl(maxAge),
		logger:       logger.With(slog.String("component", "core_handler")),
	}
}

// Routes registers the preview endpoints on r.
func (h *CoreHandler) Routes(r chi.Router) {
	r.Get("/cores/preview", h.Preview)
	r.Get("/cores/{id}/image", h.Image)
}

// Preview handles GET /cores/preview
func (h *CoreHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := h.cores.RandomCoreID(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to pick a core")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PreviewCoreResponse{CoreID: id})
}

// Image handles GET /cores/{id}/image
func (h *CoreHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	img, err := h.cores.OpenImage(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load core image")
		return
	}
	writeImage(w, r, img, h.cacheControl)
}
