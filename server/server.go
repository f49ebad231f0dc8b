// Package server exposes an engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gordonklaus/ambient"
	"github.com/gordonklaus/ambient/audio"
	"github.com/gordonklaus/ambient/stream"
)

// Config holds server configuration
type Config struct {
	Port int
}

// Engine is the part of *ambient.Engine the server drives.
type Engine interface {
	Configure(ambient.Blueprint) error
	Start() error
	Stop() error
	Status() ambient.Status
	Analyser() *audio.Analyser
}

// Stream is the live broadcast of the engine's output.
type Stream struct {
	Broadcaster *stream.Broadcaster
	WebRTC      *stream.WebRTCHandler
}

// Server is the HTTP control API
type Server struct {
	config Config
	router *chi.Mux
	engine Engine
	stream *Stream
	logger *slog.Logger
}

// New creates a server for e.  If st is not nil, WebRTC negotiation is served
// at /offer.
func New(cfg Config, e Engine, st *Stream, logger *slog.Logger) *Server {
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		engine: e,
		stream: st,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/blueprint", s.handleBlueprint)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Get("/analysis", s.handleAnalysis)
	})

	if s.stream != nil {
		r.Handle("/offer", s.stream.WebRTC)
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	s.logger.Info("server starting", slog.Int("port", s.config.Port))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	<-done
	return nil
}
