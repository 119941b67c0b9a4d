package workflows

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/loom/pkg/pagination"
	"github.com/JaimeStill/loom/pkg/query"
	"github.com/JaimeStill/loom/pkg/repository"
)

type workflowRepo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the database-backed workflow system.
func New(db *sql.DB, logger *slog.Logger, pageCfg pagination.Config) System {
	return &workflowRepo{
		db:         db,
		logger:     logger.With("system", "workflows"),
		pagination: pageCfg,
	}
}

const insertWorkflow = `
INSERT INTO public.workflows (id, summary, steps, tool_signature)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tool_signature) DO NOTHING
RETURNING id, summary, steps, tool_signature, created_at, updated_at`

const mergeWorkflow = `
UPDATE public.workflows
SET summary = $2, steps = $3, updated_at = now()
WHERE tool_signature = $1
RETURNING id, summary, steps, tool_signature, created_at, updated_at`

func (r *workflowRepo) Save(
	ctx context.Context,
	summary string,
	steps []WorkflowStep,
	policy DuplicatePolicy,
) (Decision, *Workflow, error) {
	signature := CanonicalSignature(steps)
	if signature == "" {
		return "", nil, ErrNoToolSteps
	}

	stepsJSON, err := marshalSteps(steps)
	if err != nil {
		return "", nil, err
	}

	stored, err := repository.QueryOne(ctx, r.db, insertWorkflow, []any{
		uuid.NewString(),
		summary,
		stepsJSON,
		signature,
	}, scanWorkflow)
	if err == nil {
		r.logger.Info("workflow stored",
			"id", stored.ID,
			"signature", signature,
		)
		return DecisionStored, &stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// Conflict path: a record with this signature already exists.
	if policy == PolicyMerge {
		merged, err := repository.QueryOne(ctx, r.db, mergeWorkflow, []any{
			signature,
			summary,
			stepsJSON,
		}, scanWorkflow)
		if err == nil {
			r.logger.Info("workflow merged",
				"id", merged.ID,
				"signature", signature,
			)
			return DecisionMerged, &merged, nil
		}
		r.logger.Warn("workflow merge failed, keeping stored record",
			"signature", signature,
			"error", err,
		)
	}

	existing, err := r.FindBySignature(ctx, signature)
	if err != nil {
		return "", nil, err
	}

	r.logger.Info("duplicate workflow discarded", "signature", signature)
	return DecisionDuplicate, existing, nil
}

func (r *workflowRepo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Workflow], error) {
	page.Normalize(r.pagination)

	builder := query.NewBuilder(projection(), defaultSort()...).
		WhereSearch(page.Search, "summary", "signature").
		WhereContains("signature", filters.Platform).
		OrderByFields(page.Sort)

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	pageSQL, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	data, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanWorkflow)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(data, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *workflowRepo) FindBySignature(ctx context.Context, signature string) (*Workflow, error) {
	stmt, args := query.NewBuilder(projection()).BuildSingle("signature", signature)

	w, err := repository.QueryOne(ctx, r.db, stmt, args, scanWorkflow)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &w, nil
}
