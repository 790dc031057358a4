package config_test

import (
	"testing"

	"parts-inventory/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Backend)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 0, cfg.SafetyStock)
	assert.True(t, cfg.Migrate)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PARTS_BACKEND", " Memory ")
	t.Setenv("PARTS_SAFETY_STOCK", "3")
	t.Setenv("PARTS_SEED_DEMO", "true")
	t.Setenv("PARTS_LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Backend)
	assert.Equal(t, 3, cfg.SafetyStock)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("PARTS_SAFETY_STOCK", "lots")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{Backend: config.BackendFile, DataDir: "data", LogLevel: "info", LogFormat: "text"}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"file backend", func(c *config.Config) {}, false},
		{"memory backend", func(c *config.Config) { c.Backend = config.BackendMemory; c.DataDir = "" }, false},
		{"file without dir", func(c *config.Config) { c.DataDir = " " }, true},
		{"postgres without url", func(c *config.Config) { c.Backend = config.BackendPostgres }, true},
		{"postgres with url", func(c *config.Config) {
			c.Backend = config.BackendPostgres
			c.DatabaseURL = "postgres://localhost/parts"
		}, false},
		{"unknown backend", func(c *config.Config) { c.Backend = "sqlite" }, true},
		{"negative safety stock", func(c *config.Config) { c.SafetyStock = -1 }, true},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
