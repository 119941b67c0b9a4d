package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/loom/internal/workflows"
)

// DedupNode returns a state node that persists surviving drafts through the
// workflow store, which enforces signature dedup. A store failure aborts the
// batch so the caller can retry it whole; the signature constraint makes the
// retry idempotent.
func DedupNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		drafts, err := stateValue[[]DraftWorkflow](s, KeyDrafts)
		if err != nil {
			return s, fmt.Errorf("dedup: %w", err)
		}

		result, err := stateValue[Result](s, KeyResult)
		if err != nil {
			return s, fmt.Errorf("dedup: %w", err)
		}

		for _, draft := range drafts {
			decision, record, err := rt.Workflows.Save(ctx, draft.Summary, draft.Steps, rt.Config.OnDuplicate)
			if err != nil {
				return s, fmt.Errorf("dedup: %w: %w", ErrStoreFailed, err)
			}

			switch decision {
			case workflows.DecisionStored:
				result.Stored++
			case workflows.DecisionMerged:
				result.Merged++
			default:
				result.Duplicates++
			}

			rt.Logger.InfoContext(ctx, "draft persisted",
				"decision", decision,
				"workflow_id", record.ID,
			)
		}

		s = s.Set(KeyResult, result)
		return s, nil
	})
}
