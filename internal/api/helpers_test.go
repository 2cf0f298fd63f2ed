package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type routable interface {
	Routes(r chi.Router)
}

// serve runs one request through a router holding only h's routes.
func serve(t *testing.T, h routable, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.Routes(r)

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req = req.WithContext(shared.WithTraceID(req.Context(), "trace-test"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

type trackingBody struct {
	*bytes.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func pngImage(data string) (*images.Image, *trackingBody) {
	body := &trackingBody{Reader: bytes.NewReader([]byte(data))}
	return &images.Image{Body: body, Size: int64(len(data)), ContentType: "image/png"}, body
}

func ptr[T any](v T) *T { return &v }
