package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/go-chi/chi/v5"
)

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// getQueryInt reads a non-negative integer query parameter, returning def
// when it is absent.
func getQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer", domain.ErrValidation)
	}
	return n, nil
}

// cacheControl renders the Cache-Control value for immutable images.
func cacheControl(maxAge time.Duration) string {
	return fmt.Sprintf("public, max-age=%d, immutable", int64(maxAge/time.Second))
}

// writeImage streams img to the client and closes it.
func writeImage(w http.ResponseWriter, r *http.Request, img *images.Image, cache string) {
	defer func() {
		if err := img.Body.Close(); err != nil {
			logger.FromContextOrDefault(r.Context(), slog.Default()).
				Warn("failed to close image", redact.Attr(err))
		}
	}()

	w.Header().Set("Content-Type", img.ContentType)
	if img.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
	}
	if cache != "" {
		w.Header().Set("Cache-Control", cache)
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, img.Body); err != nil {
		// Headers are already out; all that is left is to log.
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("image stream interrupted", redact.Attr(err))
	}
}
