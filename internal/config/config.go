// Package config composes the root configuration from config.toml, an
// optional environment overlay, and LOOM_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/loom/pkg/database"
	"github.com/JaimeStill/loom/pkg/pagination"
	"github.com/JaimeStill/loom/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLoomEnv             = "LOOM_ENV"
	EnvLoomShutdownTimeout = "LOOM_SHUTDOWN_TIMEOUT"
	EnvLoomVersion         = "LOOM_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LOOM_DB_HOST",
	Port:            "LOOM_DB_PORT",
	Name:            "LOOM_DB_NAME",
	User:            "LOOM_DB_USER",
	Password:        "LOOM_DB_PASSWORD",
	SSLMode:         "LOOM_DB_SSL_MODE",
	MaxOpenConns:    "LOOM_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LOOM_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LOOM_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LOOM_DB_CONN_TIMEOUT",
}

var archiveEnv = &storage.Env{
	Enabled:          "LOOM_ARCHIVE_ENABLED",
	ContainerName:    "LOOM_ARCHIVE_CONTAINER_NAME",
	ConnectionString: "LOOM_ARCHIVE_CONNECTION_STRING",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "LOOM_PAGE_DEFAULT_SIZE",
	MaxPageSize:     "LOOM_PAGE_MAX_SIZE",
}

// Config is the root configuration for the Loom pipeline.
type Config struct {
	Pipeline        PipelineConfig       `toml:"pipeline"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Database        database.Config      `toml:"database"`
	Archive         storage.Config       `toml:"archive"`
	Pagination      pagination.Config    `toml:"pagination"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the LOOM_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLoomEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Agent.Merge(&overlay.Agent)
	c.Database.Merge(&overlay.Database)
	c.Archive.Merge(&overlay.Archive)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Archive.Finalize(archiveEnv); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLoomShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLoomVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLoomEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
