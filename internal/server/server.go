// Package server provides the HTTP API for songsearch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chordme/songsearch/internal/config"
	"github.com/chordme/songsearch/internal/search"
	"github.com/chordme/songsearch/internal/storage"
)

// Server is the HTTP server for the songsearch API.
type Server struct {
	engine  *search.Engine
	storage storage.Storage
	config  *config.Config
	logger  *zap.Logger
	tokens  map[string]string // bearer token -> user ID
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, store storage.Storage, cfg *config.Config, logger *zap.Logger) *Server {
	tokens := make(map[string]string, len(cfg.Auth.Tokens))
	for _, t := range cfg.Auth.Tokens {
		tokens[t.Token] = t.UserID
	}
	return &Server{
		engine:  engine,
		storage: store,
		config:  cfg,
		logger:  logger,
		tokens:  tokens,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/songs/search", s.handleSearch)
		r.Get("/songs/suggestions", s.handleSuggestions)
		r.Get("/songs", s.handleListSongs)
		r.Post("/songs", s.handleCreateSong)
		r.Get("/songs/{id}", s.handleGetSong)
		r.Get("/songs/{id}/lyrics", s.handleGetSongLyrics)
		r.Put("/songs/{id}", s.handleUpdateSong)
		r.Delete("/songs/{id}", s.handleDeleteSong)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
