package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// HealthHandler answers liveness probes, checking the database when one is
// configured.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("health check failed", redact.Attr(err))
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable,
			HealthResponse{Status: "unavailable", Database: "unreachable"})
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
