// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is populated from PARTS_* environment variables.
type Config struct {
	Backend        string `envconfig:"BACKEND" default:"file"`
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	Migrate        bool   `envconfig:"MIGRATE" default:"true"`
	SafetyStock    int    `envconfig:"SAFETY_STOCK" default:"0"`
	SeedDemo       bool   `envconfig:"SEED_DEMO" default:"false"`
	ServerPort     string `envconfig:"SERVER_PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not read .env")
	}
	var cfg Config
	if err := envconfig.Process("parts", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option combinations envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("PARTS_DATA_DIR is required for the file backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("PARTS_DATABASE_URL is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown PARTS_BACKEND %q (want file, postgres or memory)", c.Backend)
	}
	if c.SafetyStock < 0 {
		return fmt.Errorf("PARTS_SAFETY_STOCK cannot be negative, got %d", c.SafetyStock)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("PARTS_LOG_LEVEL: %w", err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("unknown PARTS_LOG_FORMAT %q (want text or json)", c.LogFormat)
	}
	return nil
}

// SetupLogging applies the level and format to the package-level logrus logger.
func (c *Config) SetupLogging() {
	if strings.ToLower(c.LogFormat) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
}
