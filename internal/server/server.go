// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the wiring layer, the composition root: it connects the database,
// services, handlers, and middleware, and decides which URL maps to which
// handler. main.go stays minimal (read config, call server.New, Start) and
// no business logic lives here.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB → AuthService / ComplaintService → AuthHandler / ComplaintHandler
//
// Handlers never touch the database; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/handler"
	"github.com/sakif/student-portal/internal/middleware"
	sqliteRepo "github.com/sakif/student-portal/internal/repository/sqlite"
	"github.com/sakif/student-portal/internal/service"
)

// Config holds server configuration, assembled in main from env vars.
type Config struct {
	Port   int
	DBPath string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, runs migrations, wires the
// dependency chain, and registers every route.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// ROUTE TABLE:
//
//	POST /register          → create a student account
//	POST /login             → authenticate, return the profile
//	POST /submit_complaint  → file a complaint
//	GET  /get_complaints    → list complaints (optional ?student_id=)
//
// MIDDLEWARE ORDER MATTERS; ours is:
//  1. RequestID  assigns a unique ID per request
//  2. RealIP     extracts the client IP from proxy headers
//  3. Recoverer  turns panics into 500s instead of crashing the process
//  4. CORS       the browser frontend is served from a different origin,
//     so every response carries permissive CORS headers and a preflight
//     OPTIONS on any endpoint answers 200 with no body
//  5. Logger     logs each completed request
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	s.router.Use(middleware.Logger(s.logger))

	// Wrong method and unknown path still answer with the JSON envelope.
	s.router.MethodNotAllowed(handler.MethodNotAllowed)
	s.router.NotFound(handler.NotFoundRoute)

	// The dependency chain, assembled in one place.
	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.db, passwords, s.logger)
	complaintService := service.NewComplaintService(s.db.Complaints(), s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	complaintHandler := handler.NewComplaintHandler(complaintService, s.logger)

	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/submit_complaint", complaintHandler.HandleSubmit)
	s.router.Get("/get_complaints", complaintHandler.HandleList)
}

// Handler exposes the router, mainly for tests that want to drive the full
// middleware stack with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections on SIGINT/SIGTERM
//  2. Give in-flight requests 30 seconds to finish
//  3. Close the database (deferred), flushing the WAL
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
