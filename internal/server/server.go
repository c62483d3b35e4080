// Package server exposes the widget API over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/n0roo/widget-kit/internal/auth"
	"github.com/n0roo/widget-kit/internal/config"
	"github.com/n0roo/widget-kit/internal/db"
	"github.com/n0roo/widget-kit/internal/events"
	"github.com/n0roo/widget-kit/internal/widget"
)

//go:embed static/*
var staticFiles embed.FS

// Deps are the collaborators the server needs
type Deps struct {
	Config    config.Config
	Service   *widget.Service
	Validator *auth.Validator
	Database  db.Database
	Hub       *events.SSEServer
	Logger    *slog.Logger
	Version   string
}

// Server represents the API server
type Server struct {
	cfg       config.Config
	service   *widget.Service
	validator *auth.Validator
	database  db.Database
	hub       *events.SSEServer
	log       *slog.Logger
	version   string
	started   time.Time
	srv       *http.Server
}

// New creates a new server
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       deps.Config,
		service:   deps.Service,
		validator: deps.Validator,
		database:  deps.Database,
		hub:       deps.Hub,
		log:       logger,
		version:   deps.Version,
		started:   time.Now(),
	}
	s.srv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout.Std(),
		WriteTimeout: s.cfg.Server.WriteTimeout.Std(),
	}
	return s
}

// Handler builds the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Widget API
	mux.Handle("POST /api/widgets", s.requireAuth(s.handleCreateWidget))
	mux.Handle("GET /api/widgets", s.requireAuth(s.handleListWidgets))
	mux.Handle("GET /api/widgets/events", s.requireAuth(s.handleWidgetEvents))
	mux.Handle("GET /api/widgets/{widgetId}", s.requireAuth(s.handleGetWidget))
	mux.Handle("PUT /api/widgets/{widgetId}", s.requireAuth(s.handleUpdateWidget))
	mux.Handle("DELETE /api/widgets/{widgetId}", s.requireAuth(s.handleDeleteWidget))

	// Public
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/openapi.json", s.handleOpenAPIJSON)
	mux.HandleFunc("GET /api/openapi.yaml", s.handleOpenAPIYAML)
	mux.HandleFunc("GET /api/docs", s.handleDocs)

	var h http.Handler = mux
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoverMiddleware(h)
	h = s.requestIDMiddleware(h)
	return h
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Server.Port)
}

// Start listens and serves until Stop is called
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("포트 바인딩 실패: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("server started", "addr", ln.Addr().String(), "db_type", s.database.Type())
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Stop()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return s.srv.Shutdown(ctx)
}
