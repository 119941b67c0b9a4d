package prompts

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a database-backed prompt system. Stage instructions resolve to
// the active override record when one exists; lookup failures fall back to
// the hardcoded defaults so a prompt table outage never stalls a batch.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "prompts"),
	}
}

func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	var text string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT instructions FROM public.prompt_overrides WHERE stage = $1 AND active",
		stage,
	).Scan(&text)

	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, sql.ErrNoRows):
		return Instructions(stage)
	default:
		r.logger.Warn("prompt override lookup failed, using default",
			"stage", stage,
			"error", err,
		)
		return Instructions(stage)
	}
}

func (r *repo) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
