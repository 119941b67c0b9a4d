package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/JaimeStill/loom/internal/config"
	"github.com/JaimeStill/loom/internal/infrastructure"
	"github.com/JaimeStill/loom/internal/workflows"
	"github.com/JaimeStill/loom/pkg/pagination"
	"github.com/JaimeStill/loom/pkg/query"
)

func main() {
	var (
		page      = flag.Int("page", 1, "Page number")
		pageSize  = flag.Int("page-size", 0, "Page size (0 = configured default)")
		search    = flag.String("search", "", "Search workflow summaries and signatures")
		sort      = flag.String("sort", "", "Sort fields, e.g. \"-createdAt,summary\"")
		platform  = flag.String("platform", "", "Filter by signature platform")
		signature = flag.String("signature", "", "Look up one workflow by canonical signature")
	)
	flag.Parse()

	if err := run(*page, *pageSize, *search, *sort, *platform, *signature); err != nil {
		log.Fatal("workflows failed: ", err)
	}
}

func run(page, pageSize int, search, sort, platform, signature string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	if err := infra.Database.Start(infra.Lifecycle); err != nil {
		return err
	}
	infra.Lifecycle.WaitForStartup()
	defer func() {
		if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			infra.Logger.Error("shutdown incomplete", "error", err)
		}
	}()

	ctx := context.Background()
	system := workflows.New(infra.Database.Connection(), infra.Logger, cfg.Pagination)

	if signature != "" {
		record, err := system.FindBySignature(ctx, signature)
		if err != nil {
			return err
		}
		return print(record)
	}

	request := pagination.PageRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     query.ParseSortFields(sort),
	}
	if search != "" {
		request.Search = &search
	}

	filters := workflows.Filters{}
	if platform != "" {
		filters.Platform = &platform
	}

	result, err := system.List(ctx, request, filters)
	if err != nil {
		return err
	}

	return print(result)
}

func print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
