// Package metrics provides Prometheus metrics for the game API.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/domain/scoring"
	"github.com/biogames/biogames-api/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Recorder owns the service's Prometheus collectors and their registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	gamesCreated    *prometheus.CounterVec
	gamesFinalized  *prometheus.CounterVec
	gamesQuit       *prometheus.CounterVec
	gamesDenied     *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	leaderboardHits *prometheus.CounterVec
}

// NewRecorder creates a Recorder with default configuration.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace:        "biogames",
		subsystem:        "api",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}
	r.initializeMetrics()
	return r
}

func (r *Recorder) initializeMetrics() {
	auto := promauto.With(r.registry)

	r.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	r.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   r.histogramBuckets,
		},
		[]string{"route", "method", "status_code"},
	)

	r.gamesCreated = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "games_created_total",
			Help:      "Total number of game sessions created",
		},
		[]string{"mode"},
	)

	r.gamesFinalized = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "games_finalized_total",
			Help:      "Total number of game sessions finalized after the last submission",
		},
		[]string{"mode"},
	)

	r.gamesQuit = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "games_quit_total",
			Help:      "Total number of game sessions ended early",
		},
		[]string{"mode"},
	)

	r.gamesDenied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "games_denied_total",
			Help:      "Total number of session requests rejected by the eligibility gate",
		},
		[]string{"mode"},
	)

	r.submissions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "submissions_total",
			Help:      "Total number of accepted guesses by result category",
		},
		[]string{"category"},
	)

	r.leaderboardHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      "leaderboard_cache_lookups_total",
			Help:      "Leaderboard cache lookups by outcome",
		},
		[]string{"result"},
	)
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (r *Recorder) RecordHTTPRequest(route, method string, status int, durationMs float64) {
	if r == nil {
		return
	}
	code := strconv.Itoa(status)
	r.httpRequests.WithLabelValues(route, method, code).Inc()
	r.httpRequestDuration.WithLabelValues(route, method, code).Observe(durationMs)
}

// RecordDenied counts a session request the eligibility gate rejected.
func (r *Recorder) RecordDenied(mode domain.Mode) {
	if r == nil {
		return
	}
	r.gamesDenied.WithLabelValues(string(mode)).Inc()
}

// RecordSubmission counts an accepted guess under its result category.
func (r *Recorder) RecordSubmission(points int) {
	if r == nil {
		return
	}
	category, ok := scoring.Classify(points)
	if !ok {
		category = "other"
	}
	r.submissions.WithLabelValues(string(category)).Inc()
}

// RecordLeaderboardLookup counts a cache lookup with one of CacheHit, CacheMiss or CacheError.
func (r *Recorder) RecordLeaderboardLookup(result string) {
	if r == nil {
		return
	}
	r.leaderboardHits.WithLabelValues(result).Inc()
}

// HandleEvent counts game lifecycle events. It implements events.EventHandler.
func (r *Recorder) HandleEvent(_ context.Context, event *events.GameEvent) error {
	if r == nil || event == nil {
		return nil
	}
	mode := string(event.Mode)
	switch event.Type {
	case events.TypeGameCreated:
		r.gamesCreated.WithLabelValues(mode).Inc()
	case events.TypeGameFinalized:
		r.gamesFinalized.WithLabelValues(mode).Inc()
	case events.TypeGameQuit:
		r.gamesQuit.WithLabelValues(mode).Inc()
	}
	return nil
}
