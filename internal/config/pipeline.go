package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/loom/internal/workflows"
	"github.com/JaimeStill/loom/pkg/formatting"
)

const (
	EnvPipelineSessionGap     = "LOOM_PIPELINE_SESSION_GAP"
	EnvPipelineBoundaryGap    = "LOOM_PIPELINE_BOUNDARY_GAP"
	EnvPipelineMaxWindowSpan  = "LOOM_PIPELINE_MAX_WINDOW_SPAN"
	EnvPipelineMaxConcurrency = "LOOM_PIPELINE_MAX_CONCURRENCY"
	EnvPipelineCatalogDir     = "LOOM_PIPELINE_CATALOG_DIR"
	EnvPipelineOnDuplicate    = "LOOM_PIPELINE_ON_DUPLICATE"
	EnvPipelineMaxBatchSize   = "LOOM_PIPELINE_MAX_BATCH_SIZE"
)

// PipelineConfig holds the extraction thresholds. Durations and sizes are
// strings in config files and parsed during validation.
type PipelineConfig struct {
	SessionGap     string `toml:"session_gap"`
	BoundaryGap    string `toml:"boundary_gap"`
	MaxWindowSpan  int    `toml:"max_window_span"`
	MaxConcurrency int    `toml:"max_concurrency"`
	CatalogDir     string `toml:"catalog_dir"`
	OnDuplicate    string `toml:"on_duplicate"`
	MaxBatchSize   string `toml:"max_batch_size"`
}

// SessionGapDuration returns SessionGap as a time.Duration.
func (c *PipelineConfig) SessionGapDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionGap)
	return d
}

// BoundaryGapDuration returns BoundaryGap as a time.Duration.
func (c *PipelineConfig) BoundaryGapDuration() time.Duration {
	d, _ := time.ParseDuration(c.BoundaryGap)
	return d
}

// MaxBatchSizeBytes returns MaxBatchSize as a byte count.
func (c *PipelineConfig) MaxBatchSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxBatchSize)
	return n
}

// DuplicatePolicy returns OnDuplicate as a workflows.DuplicatePolicy.
func (c *PipelineConfig) DuplicatePolicy() workflows.DuplicatePolicy {
	return workflows.DuplicatePolicy(c.OnDuplicate)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.SessionGap != "" {
		c.SessionGap = overlay.SessionGap
	}
	if overlay.BoundaryGap != "" {
		c.BoundaryGap = overlay.BoundaryGap
	}
	if overlay.MaxWindowSpan != 0 {
		c.MaxWindowSpan = overlay.MaxWindowSpan
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.CatalogDir != "" {
		c.CatalogDir = overlay.CatalogDir
	}
	if overlay.OnDuplicate != "" {
		c.OnDuplicate = overlay.OnDuplicate
	}
	if overlay.MaxBatchSize != "" {
		c.MaxBatchSize = overlay.MaxBatchSize
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.SessionGap == "" {
		c.SessionGap = "10m"
	}
	if c.BoundaryGap == "" {
		c.BoundaryGap = "30m"
	}
	if c.MaxWindowSpan == 0 {
		c.MaxWindowSpan = 8
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
	if c.CatalogDir == "" {
		c.CatalogDir = "tools"
	}
	if c.OnDuplicate == "" {
		c.OnDuplicate = string(workflows.PolicyDiscard)
	}
	if c.MaxBatchSize == "" {
		c.MaxBatchSize = "10MB"
	}
}

func (c *PipelineConfig) loadEnv() {
	setString := func(envVar string, target *string) {
		if v := os.Getenv(envVar); v != "" {
			*target = v
		}
	}
	setInt := func(envVar string, target *int) {
		if v := os.Getenv(envVar); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	setString(EnvPipelineSessionGap, &c.SessionGap)
	setString(EnvPipelineBoundaryGap, &c.BoundaryGap)
	setInt(EnvPipelineMaxWindowSpan, &c.MaxWindowSpan)
	setInt(EnvPipelineMaxConcurrency, &c.MaxConcurrency)
	setString(EnvPipelineCatalogDir, &c.CatalogDir)
	setString(EnvPipelineOnDuplicate, &c.OnDuplicate)
	setString(EnvPipelineMaxBatchSize, &c.MaxBatchSize)
}

func (c *PipelineConfig) validate() error {
	if _, err := time.ParseDuration(c.SessionGap); err != nil {
		return fmt.Errorf("invalid session_gap: %w", err)
	}
	if _, err := time.ParseDuration(c.BoundaryGap); err != nil {
		return fmt.Errorf("invalid boundary_gap: %w", err)
	}
	if c.MaxWindowSpan < 1 {
		return fmt.Errorf("max_window_span must be positive")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive")
	}

	switch workflows.DuplicatePolicy(c.OnDuplicate) {
	case workflows.PolicyDiscard, workflows.PolicyMerge:
	default:
		return fmt.Errorf("invalid on_duplicate: %q", c.OnDuplicate)
	}

	if _, err := formatting.ParseBytes(c.MaxBatchSize); err != nil {
		return fmt.Errorf("invalid max_batch_size: %w", err)
	}

	return nil
}
