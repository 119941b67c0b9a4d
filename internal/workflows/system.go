package workflows

import (
	"context"

	"github.com/JaimeStill/loom/pkg/pagination"
)

// Decision is the dedup outcome of a save attempt.
type Decision string

// Save decisions.
const (
	DecisionStored    Decision = "stored"
	DecisionDuplicate Decision = "duplicate"
	DecisionMerged    Decision = "merged"
)

// DuplicatePolicy selects the behavior when an incoming workflow's signature
// matches a stored record.
type DuplicatePolicy string

// Duplicate policies. Discard is the default and remains the fallback when
// a merge fails.
const (
	PolicyDiscard DuplicatePolicy = "discard"
	PolicyMerge   DuplicatePolicy = "merge"
)

// System defines the public contract for workflow domain operations.
type System interface {
	// Save persists a workflow unless a record with the same tool-set
	// signature already exists. The signature is recomputed from steps.
	// Returns the decision taken and the winning record (stored, existing,
	// or merged).
	Save(ctx context.Context, summary string, steps []WorkflowStep, policy DuplicatePolicy) (Decision, *Workflow, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Workflow], error)

	// FindBySignature returns the stored workflow with the given canonical
	// signature. Returns ErrNotFound when no record matches.
	FindBySignature(ctx context.Context, signature string) (*Workflow, error)
}
