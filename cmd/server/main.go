// Package main implements the entry point for the Roster API server,
// a collaborative task list service with realtime change notifications
// delivered over server-sent events.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/rosterly/roster-api/internal/config"
	"github.com/rosterly/roster-api/internal/platform/logger"
	"github.com/rosterly/roster-api/internal/platform/postgres"
)

// main is the entry point for the roster-api server. It initializes
// configuration, sets up logging, establishes the database connection,
// applies migrations, wires dependencies and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Establish database connection
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// Apply pending migrations before serving traffic
	if err := postgres.MigrateUp(ctx, db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Wire up application dependencies
	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Build the router and serve until shutdown
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}
