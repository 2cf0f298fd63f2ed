package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/biogames/biogames-api/internal/config"
	"github.com/biogames/biogames-api/internal/events"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/platform/metrics"
	"github.com/biogames/biogames-api/internal/platform/postgres"
	"github.com/biogames/biogames-api/internal/platform/redis"
	"github.com/biogames/biogames-api/internal/redact"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/biogames/biogames-api/internal/service/allocation"
	"github.com/biogames/biogames-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	gameStore        store.GameStore
	challengeStore   store.ChallengeStore
	coreStore        store.CoreStore
	userStore        store.UserStore
	leaderboardStore store.LeaderboardStore

	// Services
	gameService        service.GameService
	challengeService   service.ChallengeService
	userService        service.UserService
	coreService        service.CoreService
	leaderboardService *service.LeaderboardService

	// Ambient
	metrics      *metrics.Recorder
	eventEmitter *events.InMemoryEventEmitter
	redisClient  *goredis.Client
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewRecorder(),
	}

	app.gameStore = postgres.NewPostgresGameStore(db, logger)
	app.challengeStore = postgres.NewPostgresChallengeStore(db, logger)
	app.coreStore = postgres.NewPostgresCoreStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.leaderboardStore = postgres.NewPostgresLeaderboardStore(db, logger)

	var cache service.LeaderboardCache
	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			// The cache is an optimization; serve from the database instead.
			logger.Warn("leaderboard cache disabled", redact.Attr(err))
		} else {
			app.redisClient = client
			cache = redis.NewLeaderboardCache(client, cfg.Redis.LeaderboardTTL, logger)
			logger.Info("leaderboard cache enabled", slog.Duration("ttl", cfg.Redis.LeaderboardTTL))
		}
	}
	app.leaderboardService = service.NewLeaderboardService(app.leaderboardStore, cache, app.metrics, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(app.metrics)
	app.eventEmitter.RegisterHandler(app.leaderboardService)

	if err := app.initServices(); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) initServices() error {
	cfg := app.config.Game

	policy, err := service.NewEligibilityPolicy(cfg)
	if err != nil {
		return fmt.Errorf("eligibility policy: %w", err)
	}
	resolver, err := service.NewUserResolver(cfg.UserResolution)
	if err != nil {
		return fmt.Errorf("user resolution: %w", err)
	}
	rules := service.RulesFromConfig(cfg)

	app.gameService, err = service.NewGameService(service.GameServiceDeps{
		DB:         app.db,
		Games:      app.gameStore,
		Challenges: app.challengeStore,
		Users:      app.userStore,
		Policy:     policy,
		Resolver:   resolver,
		Allocator:  allocation.New(cfg.EvaluationCoreIDs, app.logger),
		Rules:      rules,
		Emitter:    app.eventEmitter,
		Denials:    app.metrics,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("game service: %w", err)
	}

	imageSource := images.NewFileSource(app.config.Images.BasePath, app.logger)
	app.challengeService, err = service.NewChallengeService(service.ChallengeServiceDeps{
		Games:       app.gameStore,
		Challenges:  app.challengeStore,
		Images:      imageSource,
		Finalizer:   service.NewFinalizer(app.gameStore, app.eventEmitter, app.logger),
		MinDwell:    rules.MinDwell,
		Submissions: app.metrics,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("challenge service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.logger)
	if err != nil {
		return fmt.Errorf("user service: %w", err)
	}
	app.coreService, err = service.NewCoreService(app.coreStore, imageSource, app.logger)
	if err != nil {
		return fmt.Errorf("core service: %w", err)
	}

	app.logger.Info("services initialized",
		slog.String("eligibility_policy", cfg.EligibilityPolicy),
		slog.Int("training_limit", cfg.TrainingLimit),
		slog.Int("evaluation_cores", len(cfg.EvaluationCoreIDs)))
	return nil
}

// cleanup releases resources that outlive a request. The database is
// closed by the caller that opened it.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", redact.Attr(err))
		}
		app.redisClient = nil
	}
}
