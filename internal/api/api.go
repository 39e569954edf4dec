// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/obra-coop/obranet/internal/approvals"
	"github.com/obra-coop/obranet/internal/authz"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/checklist"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/dashboard"
	"github.com/obra-coop/obranet/internal/documents"
	"github.com/obra-coop/obranet/internal/incidents"
	"github.com/obra-coop/obranet/internal/notify"
	"github.com/obra-coop/obranet/internal/progress"
	"github.com/obra-coop/obranet/internal/projects"
	"github.com/obra-coop/obranet/internal/report"
	"github.com/obra-coop/obranet/internal/storage"
	"github.com/obra-coop/obranet/internal/tasks"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address            string
	JWTSecret          []byte
	AccessTokenTTL     time.Duration
	LoginRatePerMinute int
	Verbose            bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.LoginRatePerMinute == 0 {
		c.LoginRatePerMinute = 10
	}
}

// Server is the HTTP API server.
type Server struct {
	config  *Config
	storage storage.Storage
	clock   clock.Clock
	blobs   blob.Store

	auth       *authz.Authorizer
	projects   *projects.Service
	tasks      *tasks.Service
	approvals  *approvals.Service
	incidents  *incidents.Service
	checklist  *checklist.Service
	progress   *progress.Service
	documents  *documents.Service
	notify     *notify.Service
	dashboard  *dashboard.Service
	renderer   report.Renderer
	httpServer *http.Server
}

// New creates a new API server and wires the service layer.
func New(cfg *Config, store storage.Storage, clk clock.Clock, blobs blob.Store) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT secret is required")
	}
	cfg.SetDefaults()

	auth := authz.New(store.Projects())
	s := &Server{
		config:    cfg,
		storage:   store,
		clock:     clk,
		blobs:     blobs,
		auth:      auth,
		projects:  projects.NewService(store, auth),
		tasks:     tasks.NewService(store, auth, clk),
		approvals: approvals.NewService(store, auth, clk),
		incidents: incidents.NewService(store, auth, clk, blobs),
		checklist: checklist.NewService(store, auth),
		progress:  progress.NewService(store, auth, clk, blobs),
		documents: documents.NewService(store, auth, blobs),
		notify:    notify.NewService(store),
		dashboard: dashboard.NewService(store, clk),
		renderer:  report.NewTextRenderer(),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	log.Printf("API server listening on %s", s.config.Address)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
