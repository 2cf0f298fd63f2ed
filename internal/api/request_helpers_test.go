package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithParam(key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	id, err := getPathID(requestWithParam("id", "42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "4x", "99999999999999999999"} {
		_, err := getPathID(requestWithParam("id", raw), "id")
		assert.ErrorIs(t, err, domain.ErrInvalidID, "input %q", raw)
	}
}

func TestGetQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?completed_count=7&bad=x&neg=-1", nil)

	n, err := getQueryInt(req, "completed_count", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = getQueryInt(req, "missing", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = getQueryInt(req, "bad", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = getQueryInt(req, "neg", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "public, max-age=86400, immutable", cacheControl(24*time.Hour))
	assert.Equal(t, "public, max-age=0, immutable", cacheControl(0))
}
