package main

import (
	"net/http"
	"time"

	"github.com/biogames/biogames-api/internal/api"
	apiMiddleware "github.com/biogames/biogames-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes groups the handlers mounted by newRouter.
type routes struct {
	games       *api.GameHandler
	challenges  *api.ChallengeHandler
	leaderboard *api.LeaderboardHandler
	users       *api.UserHandler
	cores       *api.CoreHandler
	health      *api.HealthHandler
	metrics     http.Handler
	recorder    apiMiddleware.RequestRecorder
	timeout     time.Duration
}

// setupRouter creates the API handlers from the application's services and
// mounts them.
func (app *application) setupRouter() http.Handler {
	maxAge := app.config.Images.CacheMaxAge
	return newRouter(app, routes{
		games:       api.NewGameHandler(app.gameService, app.challengeService, app.logger),
		challenges:  api.NewChallengeHandler(app.challengeService, maxAge, app.logger),
		leaderboard: api.NewLeaderboardHandler(app.leaderboardService, app.logger),
		users:       api.NewUserHandler(app.userService, app.gameService, app.logger),
		cores:       api.NewCoreHandler(app.coreService, maxAge, app.logger),
		health:      api.NewHealthHandler(app.db),
		metrics:     app.metrics.Handler(),
		recorder:    app.metrics,
		timeout:     app.config.Server.RequestTimeout,
	})
}

func newRouter(app *application, rt routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewMetricsMiddleware(rt.recorder))
	r.Use(middleware.Recoverer)

	r.Get("/health", rt.health.Health)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics)
	}

	r.Group(func(r chi.Router) {
		if rt.timeout > 0 {
			r.Use(middleware.Timeout(rt.timeout))
		}
		rt.games.Routes(r)
		rt.challenges.Routes(r)
		rt.leaderboard.Routes(r)
		rt.users.Routes(r)
		rt.cores.Routes(r)
	})

	return r
}
