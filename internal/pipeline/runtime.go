package pipeline

import (
	"log/slog"
	"time"

	"github.com/JaimeStill/loom/internal/catalog"
	"github.com/JaimeStill/loom/internal/prompts"
	"github.com/JaimeStill/loom/internal/workflows"
)

// Config carries the explicit pipeline thresholds. All values are passed in
// by composition code; nodes never consult ambient defaults.
type Config struct {
	// SessionGap is the inactivity gap that closes a tab session.
	SessionGap time.Duration
	// BoundaryGap is the maximum gap between adjacent sessions for the
	// boundary detector's temporal continuity predicate.
	BoundaryGap time.Duration
	// MaxWindowSpan caps how many summaries a candidate window may cover.
	MaxWindowSpan int
	// MaxConcurrency bounds capability calls issued in parallel.
	MaxConcurrency int
	// OnDuplicate selects the dedup behavior for signature collisions.
	OnDuplicate workflows.DuplicatePolicy
}

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure
// and domain systems.
type Runtime struct {
	Capability Capability
	Prompts    prompts.System
	Catalog    *catalog.Catalog
	Workflows  workflows.System
	Config     Config
	Logger     *slog.Logger
}

func workerCount(limit, n int) int {
	return max(min(limit, n), 1)
}
