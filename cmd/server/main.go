// Package main runs the biogames API server: the HER2 scoring game, its
// leaderboard, and the database migrations it depends on.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/biogames/biogames-api/internal/platform/postgres"
	"github.com/biogames/biogames-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", redact.Attr(err))
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either runs a
// single migration command or serves HTTP until SIGINT/SIGTERM.
func run(migrateCmd string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", redact.Attr(err))
		}
	}()

	if migrateCmd != "" {
		return postgres.Migrate(ctx, db, migrateCmd, logger)
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.startHTTPServer(ctx, app.setupRouter())
}
