package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Sessions.Backend)
	assert.Equal(t, "sqlite", cfg.Feedback.Backend)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 256, cfg.Engine.CacheSize)
	assert.NotEmpty(t, cfg.Risk.BaseURL)
}

func TestManager_ValidateDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.NoError(t, m.Validate())
}

func TestManager_ValidateRejectsBadValues(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func()
	}{
		{"bad port", func() { m.config.Server.Port = 0 }},
		{"bad rate limit", func() { m.config.Server.RateLimit = 0 }},
		{"negative engine cache size", func() { m.config.Engine.CacheSize = -1 }},
		{"missing risk URL", func() { m.config.Risk.BaseURL = "" }},
		{"unknown session backend", func() { m.config.Sessions.Backend = "etcd" }},
		{"redis backend without URL", func() {
			m.config.Sessions.Backend = "redis"
			m.config.Sessions.RedisURL = ""
		}},
		{"unknown feedback backend", func() { m.config.Feedback.Backend = "csv" }},
		{"postgres feedback without URL", func() {
			m.config.Feedback.Backend = "postgres"
			m.config.Feedback.DatabaseURL = ""
		}},
		{"history enabled without host", func() {
			m.config.History.Enabled = true
			m.config.History.Host = ""
		}},
		{"bad log level", func() { m.config.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, m.Reload())
			tt.mutate()
			assert.Error(t, m.Validate())
		})
	}
}

func TestManager_EnvironmentModes(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	m.config.Environment = "development"
	assert.True(t, m.IsDevelopment())
	assert.False(t, m.IsProduction())

	m.config.Environment = "production"
	assert.True(t, m.IsProduction())
	assert.False(t, m.IsDevelopment())
}
