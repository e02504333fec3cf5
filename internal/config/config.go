package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// Manager loads and validates application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/triage-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("HEALTHAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 20)
	viper.SetDefault("server.rate_burst", 40)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	// Engine defaults
	viper.SetDefault("engine.cache_size", 256)

	// Risk model defaults
	viper.SetDefault("risk.base_url", "http://localhost:9000")
	viper.SetDefault("risk.timeout", "10s")
	viper.SetDefault("risk.rate_limit", 10)
	viper.SetDefault("risk.rate_burst", 20)
	viper.SetDefault("risk.cache_size", 256)

	// Session defaults
	viper.SetDefault("sessions.backend", "memory")
	viper.SetDefault("sessions.redis_url", "redis://localhost:6379")
	viper.SetDefault("sessions.ttl", "24h")
	viper.SetDefault("sessions.max_messages", 200)

	// Feedback defaults
	viper.SetDefault("feedback.backend", "sqlite")
	viper.SetDefault("feedback.sqlite_path", "./data/feedback.db")
	viper.SetDefault("feedback.database_url", "")

	// History defaults
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.host", "localhost")
	viper.SetDefault("history.port", 5432)
	viper.SetDefault("history.database", "triage")
	viper.SetDefault("history.username", "postgres")
	viper.SetDefault("history.password", "")
	viper.SetDefault("history.ssl_mode", "disable")
	viper.SetDefault("history.max_conns", 25)
	viper.SetDefault("history.min_conns", 5)
	viper.SetDefault("history.max_conn_lifetime", "1h")
	viper.SetDefault("history.max_conn_idle", "30m")
	viper.SetDefault("history.migrations_path", "./migrations")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetRiskConfig returns the external risk model configuration
func (m *Manager) GetRiskConfig() *domain.RiskConfig {
	return &m.config.Risk
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit <= 0 {
		return fmt.Errorf("server rate limit must be positive")
	}

	// Validate engine configuration
	if config.Engine.CacheSize < 0 {
		return fmt.Errorf("engine cache size must not be negative")
	}

	// Validate risk model configuration
	if config.Risk.BaseURL == "" {
		return fmt.Errorf("risk model base URL is required")
	}

	// Validate session configuration
	switch config.Sessions.Backend {
	case "memory":
	case "redis":
		if config.Sessions.RedisURL == "" {
			return fmt.Errorf("Redis URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session backend: %s", config.Sessions.Backend)
	}

	// Validate feedback configuration
	switch config.Feedback.Backend {
	case "sqlite":
		if config.Feedback.SQLitePath == "" {
			return fmt.Errorf("SQLite path is required for the sqlite feedback backend")
		}
	case "postgres":
		if config.Feedback.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for the postgres feedback backend")
		}
	default:
		return fmt.Errorf("invalid feedback backend: %s", config.Feedback.Backend)
	}

	// Validate history configuration
	if config.History.Enabled {
		if config.History.Host == "" {
			return fmt.Errorf("history database host is required")
		}
		if config.History.Database == "" {
			return fmt.Errorf("history database name is required")
		}
		if config.History.Username == "" {
			return fmt.Errorf("history database username is required")
		}
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
