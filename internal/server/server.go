// Package server wires handlers, middleware and routes into the tool server and
// runs it with graceful shutdown.
//
// Routes:
//
//	GET  /healthz                  liveness
//	POST /auth/token               client credentials → bearer token (auth enabled only)
//	GET  /api/tools                tool descriptors
//	POST /api/tools/{name}         invoke a tool
//	GET  /api/invocations          invocation history
//	GET  /api/invocations/{id}     one invocation
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/sandbox-tools/internal/auth"
	"github.com/sakif/sandbox-tools/internal/handler"
	"github.com/sakif/sandbox-tools/internal/middleware"
	sqliteRepo "github.com/sakif/sandbox-tools/internal/repository/sqlite"
	"github.com/sakif/sandbox-tools/internal/service"
	"github.com/sakif/sandbox-tools/internal/tool"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string
	// JWTSecret and Clients enable bearer auth on /api when both are set.
	JWTSecret string
	Clients   auth.Clients
	// WriteTimeout must exceed the longest tool timeout.
	WriteTimeout time.Duration
}

func (c Config) authEnabled() bool {
	return c.JWTSecret != "" && len(c.Clients) > 0
}

// Server owns the router and the invocation database.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	tools  *tool.Registry
	db     *sqliteRepo.DB
}

// New opens the database and builds the router around tools.
func New(cfg Config, logger *slog.Logger, tools *tool.Registry) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		tools:  tools,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	toolService := service.NewToolService(s.tools, s.db, s.logger)
	toolHandler := handler.NewToolHandler(toolService, s.logger)

	var tokens *auth.TokenService
	if s.config.authEnabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		tokenHandler := handler.NewTokenHandler(s.config.Clients, tokens, s.logger)
		s.router.Post("/auth/token", tokenHandler.HandleToken)
	} else {
		s.logger.Warn("authentication is disabled; /api is open to anyone who can reach it")
	}

	s.router.Route("/api", func(r chi.Router) {
		if tokens != nil {
			r.Use(auth.RequireAuth(tokens))
		}
		r.Get("/tools", toolHandler.HandleList)
		r.Post("/tools/{name}", toolHandler.HandleInvoke)
		r.Get("/invocations", toolHandler.HandleListInvocations)
		r.Get("/invocations/{id}", toolHandler.HandleGetInvocation)
	})

	return nil
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests and
// closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	writeTimeout := s.config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Minute
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.config.authEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
