package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/loom/pkg/pagination"
	"github.com/JaimeStill/loom/pkg/query"
	"github.com/JaimeStill/loom/pkg/repository"
)

// CreateCommand carries the fields for a new override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description,omitempty"`
}

// UpdateCommand carries the replacement fields for an existing override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description,omitempty"`
}

// Store manages override records. Activation enforces at most one active
// override per stage.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Override], error)
	Find(ctx context.Context, id uuid.UUID) (*Override, error)
	Create(ctx context.Context, cmd CreateCommand) (*Override, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Override, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Override, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Override, error)
}

type store struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates a database-backed override store.
func NewStore(db *sql.DB, logger *slog.Logger, pageCfg pagination.Config) Store {
	return &store{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pageCfg,
	}
}

const overrideColumns = "id, name, stage, instructions, description, active"

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Override], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(projection(), defaultSort()...).
		WhereSearch(page.Search, "name", "description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count overrides: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	overrides, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanOverride)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}

	result := pagination.NewPageResult(overrides, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Override, error) {
	q, args := query.NewBuilder(projection()).BuildSingle("id", id)

	o, err := repository.QueryOne(ctx, s.db, q, args, scanOverride)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &o, nil
}

func (s *store) Create(ctx context.Context, cmd CreateCommand) (*Override, error) {
	if _, err := ParseStage(string(cmd.Stage)); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO public.prompt_overrides(id, name, stage, instructions, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + overrideColumns

	args := []any{uuid.NewString(), cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description}

	o, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Override, error) {
		return repository.QueryOne(ctx, tx, q, args, scanOverride)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("override created", "id", o.ID, "name", o.Name, "stage", o.Stage)
	return &o, nil
}

func (s *store) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Override, error) {
	q := `
		UPDATE public.prompt_overrides
		SET name = $1, instructions = $2, description = $3, updated_at = now()
		WHERE id = $4
		RETURNING ` + overrideColumns

	args := []any{cmd.Name, cmd.Instructions, cmd.Description, id}

	o, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Override, error) {
		return repository.QueryOne(ctx, tx, q, args, scanOverride)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("override updated", "id", o.ID, "name", o.Name)
	return &o, nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM public.prompt_overrides WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("override deleted", "id", id)
	return nil
}

func (s *store) Activate(ctx context.Context, id uuid.UUID) (*Override, error) {
	o, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Override, error) {
		findQ, findArgs := query.NewBuilder(projection()).BuildSingle("id", id)
		target, err := repository.QueryOne(ctx, tx, findQ, findArgs, scanOverride)
		if err != nil {
			return Override{}, err
		}

		_, err = tx.ExecContext(
			ctx,
			"UPDATE public.prompt_overrides SET active = false, updated_at = now() WHERE stage = $1 AND active",
			target.Stage,
		)
		if err != nil {
			return Override{}, fmt.Errorf("deactivate current: %w", err)
		}

		activateQ := `
			UPDATE public.prompt_overrides SET active = true, updated_at = now()
			WHERE id = $1
			RETURNING ` + overrideColumns

		return repository.QueryOne(ctx, tx, activateQ, []any{id}, scanOverride)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("override activated", "id", o.ID, "name", o.Name, "stage", o.Stage)
	return &o, nil
}

func (s *store) Deactivate(ctx context.Context, id uuid.UUID) (*Override, error) {
	q := `
		UPDATE public.prompt_overrides SET active = false, updated_at = now()
		WHERE id = $1
		RETURNING ` + overrideColumns

	o, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Override, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanOverride)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("override deactivated", "id", o.ID, "name", o.Name, "stage", o.Stage)
	return &o, nil
}
