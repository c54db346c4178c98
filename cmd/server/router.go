package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rosterly/roster-api/internal/api"
	apiMiddleware "github.com/rosterly/roster-api/internal/api/middleware"
	"github.com/rosterly/roster-api/internal/stream"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	todoHandler := api.NewTodoHandler(app.todoStore, app.dispatcher, app.logger)
	userHandler := api.NewUserHandler(app.userStore, app.logger)

	streamHandler := stream.NewHandler(
		app.jwtService,
		app.dispatcher,
		app.config.Stream,
		app.logger,
	)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// The event stream authenticates from the query string or cookie
		// itself; EventSource clients cannot set an Authorization header.
		r.Get("/events", streamHandler.ServeHTTP)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Todo endpoints
			r.Get("/todos", todoHandler.ListTodos)
			r.Post("/todos", todoHandler.CreateTodo)
			r.Put("/todos/{id}", todoHandler.UpdateTodo)
			r.Delete("/todos/{id}", todoHandler.DeleteTodo)
			r.Post("/todos/{id}/move", todoHandler.MoveTodo)

			// User lookup for the assignee picker
			r.Get("/users/search", userHandler.SearchUsers)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
