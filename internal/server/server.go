// Package server provides the HTTP API for Kaiwa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/faq"
	"github.com/hyperjump/kaiwa/internal/storage"
)

// Server is the HTTP server for the Kaiwa API.
type Server struct {
	router       *agent.Router
	store        *faq.Store
	archive      *storage.TranscriptStore
	config       *config.ServerConfig
	logger       *zap.Logger
	server       *http.Server
	embedderType string
	threshold    float64
}

// NewServer creates a server with the given dependencies. archive may be nil
// when transcript archival is disabled. embedderType and threshold are
// reported by the status endpoint.
func NewServer(
	router *agent.Router,
	store *faq.Store,
	archive *storage.TranscriptStore,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	embedderType string,
	threshold float64,
) *Server {
	return &Server{
		router:       router,
		store:        store,
		archive:      archive,
		config:       cfg,
		logger:       logger,
		embedderType: embedderType,
		threshold:    threshold,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/turns", s.handleTurn)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
