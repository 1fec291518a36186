// Package server provides the HTTP API for Susume.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/discover"
	"github.com/hyperjump/susume/internal/keyword"
	"github.com/hyperjump/susume/internal/recommend"
	"github.com/hyperjump/susume/internal/store"
)

// Server is the HTTP server for the Susume API.
type Server struct {
	recommender *recommend.Service
	discovery   *discover.Service
	videos      store.VideoStore
	keywords    *keyword.BleveIndex
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies. discovery and
// keywords may be nil; their routes then answer 501.
func NewServer(
	recommender *recommend.Service,
	discovery *discover.Service,
	videos store.VideoStore,
	keywords *keyword.BleveIndex,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		recommender: recommender,
		discovery:   discovery,
		videos:      videos,
		keywords:    keywords,
		config:      cfg,
		logger:      logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/recommendations/index", s.handleIndexVideo)
	r.Get("/api/v1/recommendations/similar/{video_id}", s.handleSimilar)
	r.Get("/api/v1/recommendations/search", s.handleSearchText)
	r.Post("/api/v1/recommendations/discover", s.handleDiscover)
	r.Post("/api/v1/recommendations/reindex", s.handleReindex)
	r.Get("/api/v1/recommendations/stats", s.handleStats)
	r.Delete("/api/v1/recommendations/{video_id}", s.handleRemoveVideo)

	r.Post("/api/v1/videos", s.handleUpsertVideo)
	r.Get("/api/v1/videos/search", s.handleKeywordSearch)
	r.Get("/api/v1/videos/{video_id}", s.handleGetVideo)
	r.Delete("/api/v1/videos/{video_id}", s.handleDeleteVideo)

	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
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
