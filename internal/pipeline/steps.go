package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/loom/internal/catalog"
	"github.com/JaimeStill/loom/internal/prompts"
	"github.com/JaimeStill/loom/internal/workflows"
	"github.com/JaimeStill/loom/pkg/formatting"
)

type stepResponse struct {
	Role      string `json:"role"`
	Platform  string `json:"platform"`
	Operation string `json:"operation"`
}

// StepsNode returns a state node that assigns a role to every draft step
// using bounded errgroup concurrency. Tool refs are resolved against the
// catalog; an unresolvable ref or a failed capability call downgrades the
// step to browser context. Drafts left with no tool steps are discarded
// before persistence.
func StepsNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		drafts, err := stateValue[[]DraftWorkflow](s, KeyDrafts)
		if err != nil {
			return s, fmt.Errorf("steps: %w", err)
		}

		result, err := stateValue[Result](s, KeyResult)
		if err != nil {
			return s, fmt.Errorf("steps: %w", err)
		}

		kept := make([]DraftWorkflow, 0, len(drafts))

		for i := range drafts {
			if err := assignStepRoles(ctx, rt, &drafts[i]); err != nil {
				return s, fmt.Errorf("steps: %w", err)
			}

			if workflows.CanonicalSignature(drafts[i].Steps) == "" {
				rt.Logger.InfoContext(ctx, "draft discarded, no tool steps",
					"summary", drafts[i].Summary,
				)
				result.Discarded++
				continue
			}

			kept = append(kept, drafts[i])
		}

		rt.Logger.InfoContext(
			ctx, "steps node complete",
			"drafts", len(drafts),
			"kept", len(kept),
		)

		s = s.Set(KeyDrafts, kept)
		s = s.Set(KeyResult, result)
		return s, nil
	})
}

func assignStepRoles(ctx context.Context, rt *Runtime, draft *DraftWorkflow) error {
	toolsBlock := toolContext(rt.Catalog, draftText(draft))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(rt.Config.MaxConcurrency, len(draft.Steps)))

	for i := range draft.Steps {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			classifyStep(gctx, rt, draft, &draft.Steps[i], toolsBlock)
			return nil
		})
	}

	return g.Wait()
}

// classifyStep resolves one step's role. The fallback on any failure is
// browser context; a step never fails its draft.
func classifyStep(
	ctx context.Context,
	rt *Runtime,
	draft *DraftWorkflow,
	step *workflows.WorkflowStep,
	toolsBlock string,
) {
	step.Role = workflows.RoleBrowserContext
	step.Tool = nil

	downgrade := func(reason string, err error) {
		rt.Logger.WarnContext(ctx, "step downgraded to browser context",
			"step", step.Order,
			"reason", reason,
			"error", err,
		)
	}

	contextBlock := stepContext(draft, step, toolsBlock)

	prompt, err := composePrompt(ctx, rt.Prompts, prompts.StageSteps, contextBlock)
	if err != nil {
		downgrade("compose prompt", err)
		return
	}

	content, err := rt.Capability.Complete(ctx, prompt)
	if err != nil {
		downgrade("capability call", err)
		return
	}

	parsed, err := formatting.Parse[stepResponse](content)
	if err != nil {
		downgrade("parse response", err)
		return
	}

	if strings.ToLower(strings.TrimSpace(parsed.Role)) != string(workflows.RoleTool) {
		return
	}

	tool, ok := rt.Catalog.Resolve(parsed.Platform, parsed.Operation)
	if !ok {
		downgrade(fmt.Sprintf("unresolved tool ref %s:%s", parsed.Platform, parsed.Operation), nil)
		return
	}

	step.Role = workflows.RoleTool
	step.Tool = &workflows.ToolRef{
		Platform:  tool.Platform,
		Operation: tool.Operation,
	}
}

func draftText(draft *DraftWorkflow) string {
	parts := make([]string, 0, len(draft.Steps)+1)
	parts = append(parts, draft.Summary)
	for _, s := range draft.Steps {
		parts = append(parts, s.Description)
	}
	return strings.Join(parts, " ")
}

// toolContext lists the catalog operations for platforms detected in the
// draft text. Platforms outside the catalog contribute nothing, so the
// capability can only pick refs that actually resolve.
func toolContext(cat *catalog.Catalog, text string) string {
	platforms := cat.DetectPlatforms(text)
	if len(platforms) == 0 {
		return "No known tool platforms detected; classify steps as browser_context unless certain."
	}

	var sb strings.Builder
	sb.WriteString("Available tools:\n")
	for _, platform := range platforms {
		for _, tool := range cat.Tools(platform) {
			fmt.Fprintf(&sb, "- %s: %s\n", tool.Ref(), tool.Description)
		}
	}

	return sb.String()
}

func stepContext(draft *DraftWorkflow, step *workflows.WorkflowStep, toolsBlock string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Workflow: %s\n\n", draft.Summary)
	fmt.Fprintf(&sb, "Step %d: %s\n\n", step.Order, step.Description)
	sb.WriteString(toolsBlock)
	return sb.String()
}
