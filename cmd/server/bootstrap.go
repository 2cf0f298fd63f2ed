package main

import (
	"fmt"
	"log/slog"

	"github.com/biogames/biogames-api/internal/config"
	"github.com/biogames/biogames-api/internal/platform/logger"
)

// bootstrap loads configuration and installs the process logger. The
// effective game rules are logged once so a misconfigured policy is visible
// at startup.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("eligibility_policy", cfg.Game.EligibilityPolicy),
		slog.String("user_resolution", cfg.Game.UserResolution),
		slog.Int("training_limit", cfg.Game.TrainingLimit),
		slog.Bool("leaderboard_cache", cfg.Redis.URL != ""))

	return cfg, log, nil
}
