package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/loom/internal/catalog"
	"github.com/JaimeStill/loom/internal/config"
	"github.com/JaimeStill/loom/internal/events"
	"github.com/JaimeStill/loom/internal/infrastructure"
	"github.com/JaimeStill/loom/internal/pipeline"
	"github.com/JaimeStill/loom/internal/prompts"
	"github.com/JaimeStill/loom/internal/workflows"
	"github.com/JaimeStill/loom/pkg/formatting"
)

func main() {
	var (
		batchPath = flag.String("batch", "", "Path to an event batch JSON file (default: stdin)")
		replayKey = flag.String("replay", "", "Archive key of a previously ingested batch to reprocess")
	)
	flag.Parse()

	if err := run(*batchPath, *replayKey); err != nil {
		log.Fatal("pipeline failed: ", err)
	}
}

func run(batchPath, replayKey string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}
	logger := infra.Logger

	logger.Info(
		"loom starting",
		"version", cfg.Version,
		"env", cfg.Env(),
	)

	if err := infra.Start(); err != nil {
		return err
	}
	infra.Lifecycle.WaitForStartup()
	defer func() {
		if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			logger.Error("shutdown incomplete", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := readBatch(ctx, infra, batchPath, replayKey)
	if err != nil {
		return err
	}

	if limit := cfg.Pipeline.MaxBatchSizeBytes(); int64(len(raw)) > limit {
		return fmt.Errorf("batch size %s exceeds limit %s",
			formatting.FormatBytes(int64(len(raw)), 1),
			cfg.Pipeline.MaxBatchSize,
		)
	}

	batch, err := events.ParseBatch(raw)
	if err != nil {
		return err
	}

	if replayKey == "" {
		archiveBatch(ctx, infra, batch, raw)
	}

	cat, err := catalog.Load(cfg.Pipeline.CatalogDir)
	if err != nil {
		return fmt.Errorf("load tool catalog: %w", err)
	}
	logger.Info("tool catalog loaded",
		"platforms", len(cat.Platforms()),
		"tools", cat.Len(),
	)

	rt := &pipeline.Runtime{
		Capability: pipeline.NewAgentCapability(cfg.Agent),
		Prompts:    prompts.New(infra.Database.Connection(), logger),
		Catalog:    cat,
		Workflows:  workflows.New(infra.Database.Connection(), logger, cfg.Pagination),
		Config: pipeline.Config{
			SessionGap:     cfg.Pipeline.SessionGapDuration(),
			BoundaryGap:    cfg.Pipeline.BoundaryGapDuration(),
			MaxWindowSpan:  cfg.Pipeline.MaxWindowSpan,
			MaxConcurrency: cfg.Pipeline.MaxConcurrency,
			OnDuplicate:    cfg.Pipeline.DuplicatePolicy(),
		},
		Logger: logger,
	}

	result, err := pipeline.Execute(ctx, rt, batch)
	if err != nil {
		return err
	}

	logger.Info("batch complete",
		"sessions", result.Sessions,
		"candidates", result.Candidates,
		"workflows", result.Workflows,
		"stored", result.Stored,
		"duplicates", result.Duplicates,
	)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

func readBatch(
	ctx context.Context,
	infra *infrastructure.Infrastructure,
	batchPath, replayKey string,
) ([]byte, error) {
	switch {
	case replayKey != "":
		if infra.Archive == nil {
			return nil, fmt.Errorf("replay requires the batch archive to be enabled")
		}
		rc, err := infra.Archive.Download(ctx, replayKey)
		if err != nil {
			return nil, fmt.Errorf("replay batch %s: %w", replayKey, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	case batchPath != "":
		return os.ReadFile(batchPath)
	default:
		return io.ReadAll(os.Stdin)
	}
}

// archiveBatch uploads the raw batch document for later replay. Archiving is
// best-effort: a failure is logged and the batch still processes.
func archiveBatch(
	ctx context.Context,
	infra *infrastructure.Infrastructure,
	batch *events.EventBatch,
	raw []byte,
) {
	if infra.Archive == nil {
		return
	}

	key := fmt.Sprintf("%s.json", batch.Time().UTC().Format("2006-01-02T15-04-05.000"))

	if err := infra.Archive.Upload(ctx, key, bytes.NewReader(raw), "application/json"); err != nil {
		infra.Logger.Warn("batch archive failed", "key", key, "error", err)
		return
	}

	infra.Logger.Info("batch archived",
		"key", key,
		"size", formatting.FormatBytes(int64(len(raw)), 1),
	)
}
