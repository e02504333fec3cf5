package domain

import "time"

// Config is the full application configuration, populated by Viper from
// config.yaml, environment variables and defaults.
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Engine      EngineConfig   `mapstructure:"engine"`
	Risk        RiskConfig     `mapstructure:"risk"`
	Sessions    SessionConfig  `mapstructure:"sessions"`
	Feedback    FeedbackConfig `mapstructure:"feedback"`
	History     HistoryConfig  `mapstructure:"history"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// LoggingConfig holds logrus settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// EngineConfig holds settings for the symptom analysis engine.
type EngineConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// RiskConfig holds settings for the external heart-disease model client.
type RiskConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
	CacheSize int           `mapstructure:"cache_size"`
}

// SessionConfig selects the transcript store backend.
type SessionConfig struct {
	Backend     string        `mapstructure:"backend"` // "memory" or "redis"
	RedisURL    string        `mapstructure:"redis_url"`
	TTL         time.Duration `mapstructure:"ttl"`
	MaxMessages int           `mapstructure:"max_messages"`
}

// FeedbackConfig selects the feedback store backend.
type FeedbackConfig struct {
	Backend     string `mapstructure:"backend"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// HistoryConfig controls the optional PostgreSQL analysis audit log.
// Conversation transcripts are never persisted; history records hold only
// per-call analysis results.
type HistoryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Database       string        `mapstructure:"database"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"ssl_mode"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
	MaxConnLife    time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdle    time.Duration `mapstructure:"max_conn_idle"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}
