package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/JaimeStill/loom/internal/config"
	"github.com/JaimeStill/loom/internal/infrastructure"
	"github.com/JaimeStill/loom/internal/prompts"
	"github.com/JaimeStill/loom/pkg/pagination"
)

func main() {
	var (
		list         = flag.Bool("list", false, "List overrides")
		stage        = flag.String("stage", "", "Stage filter or target (summarize|classify|steps)")
		name         = flag.String("name", "", "Override name for -create")
		instructions = flag.String("instructions", "", "Instructions text or @file for -create")
		create       = flag.Bool("create", false, "Create an override for -stage")
		activate     = flag.String("activate", "", "Activate the override with the given id")
		deactivate   = flag.String("deactivate", "", "Deactivate the override with the given id")
		remove       = flag.String("delete", "", "Delete the override with the given id")
	)
	flag.Parse()

	if err := run(options{
		list:         *list,
		stage:        *stage,
		name:         *name,
		instructions: *instructions,
		create:       *create,
		activate:     *activate,
		deactivate:   *deactivate,
		remove:       *remove,
	}); err != nil {
		log.Fatal("prompts failed: ", err)
	}
}

type options struct {
	list         bool
	stage        string
	name         string
	instructions string
	create       bool
	activate     string
	deactivate   string
	remove       string
}

func run(opts options) error {
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
	store := prompts.NewStore(infra.Database.Connection(), infra.Logger, cfg.Pagination)

	switch {
	case opts.create:
		stage, err := prompts.ParseStage(opts.stage)
		if err != nil {
			return err
		}

		text, err := instructionsText(opts.instructions)
		if err != nil {
			return err
		}

		override, err := store.Create(ctx, prompts.CreateCommand{
			Name:         opts.name,
			Stage:        stage,
			Instructions: text,
		})
		if err != nil {
			return err
		}
		return print(override)

	case opts.activate != "":
		id, err := uuid.Parse(opts.activate)
		if err != nil {
			return err
		}
		override, err := store.Activate(ctx, id)
		if err != nil {
			return err
		}
		return print(override)

	case opts.deactivate != "":
		id, err := uuid.Parse(opts.deactivate)
		if err != nil {
			return err
		}
		override, err := store.Deactivate(ctx, id)
		if err != nil {
			return err
		}
		return print(override)

	case opts.remove != "":
		id, err := uuid.Parse(opts.remove)
		if err != nil {
			return err
		}
		return store.Delete(ctx, id)

	case opts.list:
		filters := prompts.Filters{}
		if opts.stage != "" {
			stage, err := prompts.ParseStage(opts.stage)
			if err != nil {
				return err
			}
			filters.Stage = &stage
		}

		result, err := store.List(ctx, pagination.PageRequest{}, filters)
		if err != nil {
			return err
		}
		return print(result)

	default:
		flag.PrintDefaults()
		return nil
	}
}

// instructionsText resolves the -instructions flag, treating @path as a file
// reference.
func instructionsText(v string) (string, error) {
	if len(v) > 1 && v[0] == '@' {
		data, err := os.ReadFile(v[1:])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return v, nil
}

func print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
