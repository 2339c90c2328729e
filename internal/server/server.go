// Package server exposes uploaded result tables over HTTP. Each upload
// becomes an isolated session; changing a session's thresholds recomputes
// its whole classification from the retained dataset.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/session"
)

// Default category colors, cosmetic only.
const (
	DefaultUpColor   = "#FF0000"
	DefaultDownColor = "#0000FF"
	DefaultNSColor   = "#808080"
)

// Colors maps categories to display colors for plot payloads.
type Colors struct {
	Upregulated    string
	Downregulated  string
	NotSignificant string
}

// DefaultColors returns the stock red/blue/grey scheme.
func DefaultColors() Colors {
	return Colors{
		Upregulated:    DefaultUpColor,
		Downregulated:  DefaultDownColor,
		NotSignificant: DefaultNSColor,
	}
}

func (c Colors) byCategory() map[classify.Category]string {
	return map[classify.Category]string{
		classify.CategoryUpregulated:    c.Upregulated,
		classify.CategoryDownregulated:  c.Downregulated,
		classify.CategoryNotSignificant: c.NotSignificant,
	}
}

// Config carries the serve-mode settings.
type Config struct {
	Thresholds classify.Thresholds
	Colors     Colors
}

// Server routes session requests to the registry.
type Server struct {
	router     *gin.Engine
	registry   *session.Registry
	thresholds classify.Thresholds
	colors     Colors
	logger     *zap.Logger
}

// New creates a server with an empty session registry.
func New(cfg Config) *Server {
	s := &Server{
		router:     gin.New(),
		registry:   session.NewRegistry(),
		thresholds: cfg.Thresholds,
		colors:     cfg.Colors,
		logger:     zap.NewNop(),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

// SetLogger sets the logger for request-level events.
func (s *Server) SetLogger(logger *zap.Logger) {
	s.logger = logger
	s.registry.SetLogger(logger)
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.PUT("/sessions/:id/thresholds", s.handleUpdateThresholds)
	api.GET("/sessions/:id/volcano", s.handleVolcano)
	api.GET("/sessions/:id/ma", s.handleMA)
	api.GET("/sessions/:id/genes", s.handleGenes)
	api.GET("/sessions/:id/genes/top", s.handleTopGenes)
	api.GET("/sessions/:id/histogram", s.handleHistogram)
	api.GET("/sessions/:id/distribution", s.handleDistribution)
	api.GET("/sessions/:id/export/csv", s.handleExportCSV)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("server listening", zap.String("addr", addr))
	defer s.registry.CloseAll()
	return s.router.Run(addr)
}
