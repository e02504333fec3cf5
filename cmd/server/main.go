package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/api"
	"github.com/healthai-suite/triage-server/internal/config"
	"github.com/healthai-suite/triage-server/internal/database"
	"github.com/healthai-suite/triage-server/internal/domain"
	"github.com/healthai-suite/triage-server/internal/drugs"
	"github.com/healthai-suite/triage-server/internal/engine"
	"github.com/healthai-suite/triage-server/internal/feedback"
	"github.com/healthai-suite/triage-server/internal/repository"
	"github.com/healthai-suite/triage-server/internal/risk"
	"github.com/healthai-suite/triage-server/internal/session"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting triage server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to wire dependencies")
	}
	defer cleanup()

	server := api.NewServer(cfg, logger, deps)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// buildDependencies wires the engine, stores and clients per configuration.
// The returned cleanup closes every opened backend.
func buildDependencies(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (api.Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	analyzer := engine.NewAnalyzer(logger, cfg.Engine.CacheSize)
	drugStore := drugs.NewStore()
	router := engine.NewRouter(logger, analyzer, drugStore,
		rand.New(rand.NewSource(time.Now().UnixNano())))

	riskClient, err := risk.NewClient(cfg.Risk, logger)
	if err != nil {
		return api.Dependencies{}, cleanup, fmt.Errorf("creating risk client: %w", err)
	}

	sessions, err := newSessionStore(cfg.Sessions, logger)
	if err != nil {
		return api.Dependencies{}, cleanup, fmt.Errorf("creating session store: %w", err)
	}
	closers = append(closers, func() { sessions.Close() })

	feedbackStore, err := newFeedbackStore(cfg.Feedback)
	if err != nil {
		cleanup()
		return api.Dependencies{}, func() {}, fmt.Errorf("creating feedback store: %w", err)
	}
	closers = append(closers, func() { feedbackStore.Close() })

	// History stays a nil interface when disabled; the handlers treat nil
	// as "audit log off".
	var history api.HistoryStore
	if cfg.History.Enabled {
		db, err := database.NewConnection(ctx, cfg.History, logger)
		if err != nil {
			cleanup()
			return api.Dependencies{}, func() {}, fmt.Errorf("connecting history database: %w", err)
		}
		closers = append(closers, db.Close)

		if err := runMigrations(ctx, cfg.History, logger); err != nil {
			cleanup()
			return api.Dependencies{}, func() {}, fmt.Errorf("running migrations: %w", err)
		}

		history = repository.NewHistoryRepository(db.Pool, logger)
	}

	return api.Dependencies{
		Analyzer: analyzer,
		Router:   router,
		Drugs:    drugStore,
		Risk:     riskClient,
		Sessions: sessions,
		Feedback: feedbackStore,
		History:  history,
	}, cleanup, nil
}

func newSessionStore(cfg domain.SessionConfig, logger *logrus.Logger) (session.Store, error) {
	switch cfg.Backend {
	case "redis":
		return session.NewRedisStore(cfg.RedisURL, cfg.TTL, logger)
	default:
		return session.NewMemoryStore(logger, cfg.MaxMessages), nil
	}
}

func newFeedbackStore(cfg domain.FeedbackConfig) (feedback.Store, error) {
	switch cfg.Backend {
	case "postgres":
		return feedback.NewPostgresStoreFromURL(cfg.DatabaseURL)
	default:
		return feedback.NewSQLiteStore(cfg.SQLitePath)
	}
}

func runMigrations(ctx context.Context, cfg domain.HistoryConfig, logger *logrus.Logger) error {
	runner, err := database.NewMigrationRunner(cfg, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.Up(ctx)
}
