package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/rosterly/roster-api/internal/config"
	"github.com/rosterly/roster-api/internal/platform/postgres"
	"github.com/rosterly/roster-api/internal/service/auth"
	"github.com/rosterly/roster-api/internal/store"
	"github.com/rosterly/roster-api/internal/watch"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	todoStore store.TodoStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	// Change notification
	dispatcher     *watch.Dispatcher
	changeListener *postgres.ChangeListener
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.todoStore = postgres.NewPostgresTodoStore(db, logger)

	// Initialize the change notification pipeline. Local mutations publish
	// into the dispatcher directly; the listener feeds in changes made by
	// other processes via LISTEN/NOTIFY.
	app.dispatcher = watch.NewDispatcher(logger)
	app.changeListener = postgres.NewChangeListener(cfg.Database.URL, app.dispatcher, logger)

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}
