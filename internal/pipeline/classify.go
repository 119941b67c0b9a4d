package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/loom/internal/prompts"
	"github.com/JaimeStill/loom/internal/workflows"
	"github.com/JaimeStill/loom/pkg/formatting"
)

type classifyResponse struct {
	Classification string `json:"classification"`
	Reasoning      string `json:"reasoning"`
	Summary        string `json:"summary"`
	Steps          []struct {
		Description string `json:"description"`
	} `json:"steps"`
}

// ClassifyNode returns a state node that labels each candidate through the
// classification capability. Candidates are adjudicated sequentially in
// batch order so verdicts are attributable in the log. Only workflow-labeled
// candidates produce drafts; noise and unfinished verdicts are logged and
// dropped. Any capability failure or out-of-vocabulary response maps to
// noise, never silently to workflow.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		candidates, err := stateValue[[]WorkflowCandidate](s, KeyCandidates)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		result, err := stateValue[Result](s, KeyResult)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		drafts := make([]DraftWorkflow, 0)

		for i, candidate := range candidates {
			label, draft := classifyCandidate(ctx, rt, candidate)

			rt.Logger.InfoContext(ctx, "candidate classified",
				"candidate", i+1,
				"sessions", len(candidate.MemberSessionIDs),
				"low_confidence", candidate.LowConfidence,
				"label", label,
			)

			switch label {
			case LabelWorkflow:
				result.Workflows++
				drafts = append(drafts, draft)
			case LabelUnfinished:
				result.Unfinished++
			default:
				result.Noise++
			}
		}

		s = s.Set(KeyDrafts, drafts)
		s = s.Set(KeyResult, result)
		return s, nil
	})
}

func classifyCandidate(ctx context.Context, rt *Runtime, candidate WorkflowCandidate) (CandidateLabel, DraftWorkflow) {
	demote := func(reason string, err error) (CandidateLabel, DraftWorkflow) {
		rt.Logger.WarnContext(ctx, "candidate demoted to noise",
			"sessions", candidate.MemberSessionIDs,
			"reason", reason,
			"error", err,
		)
		return LabelNoise, DraftWorkflow{}
	}

	contextBlock, err := candidateContext(candidate)
	if err != nil {
		return demote("serialize candidate", err)
	}

	prompt, err := composePrompt(ctx, rt.Prompts, prompts.StageClassify, contextBlock)
	if err != nil {
		return demote("compose prompt", err)
	}

	content, err := rt.Capability.Complete(ctx, prompt)
	if err != nil {
		return demote("capability call", err)
	}

	parsed, err := formatting.Parse[classifyResponse](content)
	if err != nil {
		return demote("parse response", err)
	}

	label := CandidateLabel(strings.ToLower(strings.TrimSpace(parsed.Classification)))

	switch label {
	case LabelNoise, LabelUnfinished:
		return label, DraftWorkflow{}
	case LabelWorkflow:
		if len(parsed.Steps) == 0 {
			return demote("workflow verdict without steps", nil)
		}
		return LabelWorkflow, buildDraft(candidate, parsed)
	default:
		return demote(fmt.Sprintf("out-of-vocabulary label %q", parsed.Classification), nil)
	}
}

func buildDraft(candidate WorkflowCandidate, parsed classifyResponse) DraftWorkflow {
	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		parts := make([]string, 0, len(candidate.Summaries))
		for _, s := range candidate.Summaries {
			if s.ActivitySummary != "" {
				parts = append(parts, s.ActivitySummary)
			}
		}
		summary = strings.Join(parts, " ")
	}

	steps := make([]workflows.WorkflowStep, len(parsed.Steps))
	for i, s := range parsed.Steps {
		steps[i] = workflows.WorkflowStep{
			Order:       i + 1,
			Description: s.Description,
		}
	}

	return DraftWorkflow{
		Summary: summary,
		Steps:   steps,
	}
}

func candidateContext(candidate WorkflowCandidate) (string, error) {
	payload, err := json.MarshalIndent(candidate.Summaries, "", "  ")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate spans %d session(s) from %s to %s.\n",
		len(candidate.MemberSessionIDs),
		formatTs(candidate.StartTs),
		formatTs(candidate.EndTs),
	)
	if candidate.LowConfidence {
		sb.WriteString("This is a single-session candidate; judge it strictly.\n")
	}
	sb.WriteString("\nSession summaries:\n\n")
	sb.Write(payload)

	return sb.String(), nil
}
