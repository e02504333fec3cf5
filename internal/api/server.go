// Package api exposes the triage engine, drug reference, risk client and
// stores over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
	"github.com/healthai-suite/triage-server/internal/drugs"
	"github.com/healthai-suite/triage-server/internal/engine"
	"github.com/healthai-suite/triage-server/internal/feedback"
	"github.com/healthai-suite/triage-server/internal/middleware"
	"github.com/healthai-suite/triage-server/internal/repository"
	"github.com/healthai-suite/triage-server/internal/risk"
	"github.com/healthai-suite/triage-server/internal/session"
)

// HistoryStore is the audit-log surface the handlers dispatch to. It is
// satisfied by repository.HistoryRepository.
type HistoryStore interface {
	Create(ctx context.Context, record *repository.AnalysisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.AnalysisRecord, error)
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]*repository.AnalysisRecord, error)
	ListByUrgency(ctx context.Context, tier domain.UrgencyTier, limit, offset int) ([]*repository.AnalysisRecord, error)
	CountByUrgency(ctx context.Context) (map[domain.UrgencyTier]int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Dependencies carries the wired collaborators the handlers dispatch to.
// History is optional and may be nil when the audit log is disabled.
type Dependencies struct {
	Analyzer *engine.Analyzer
	Router   *engine.Router
	Drugs    *drugs.Store
	Risk     *risk.Client
	Sessions session.Store
	Feedback feedback.Store
	History  HistoryStore
}

// Server represents the HTTP server
type Server struct {
	config *domain.Config
	log    *logrus.Logger
	deps   Dependencies
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(config *domain.Config, logger *logrus.Logger, deps Dependencies) *Server {
	// Set Gin mode based on environment
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.NewRateLimiter(config.Server.RateLimit, config.Server.RateBurst).Handler())

	server := &Server{
		config: config,
		log:    logger,
		deps:   deps,
		router: router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// Websocket chat endpoint
	s.router.GET("/ws/chat", s.handleWebsocketChat)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/chat", s.handleChat)
		v1.GET("/drugs/:query", s.handleDrugLookup)
		v1.POST("/risk/predict", s.handleRiskPredict)

		v1.POST("/sessions", s.handleCreateSession)
		v1.GET("/sessions/:id/messages", s.handleGetMessages)
		v1.DELETE("/sessions/:id/messages", s.handleClearMessages)

		v1.POST("/feedback", s.handleSaveFeedback)
		v1.GET("/feedback/stats", s.handleFeedbackStats)
		v1.GET("/feedback/export", s.handleFeedbackExport)

		v1.GET("/history", s.handleListHistory)
		v1.GET("/history/stats", s.handleHistoryStats)
		v1.GET("/history/:id", s.handleGetHistory)
		v1.DELETE("/history/:id", s.handleDeleteHistory)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
