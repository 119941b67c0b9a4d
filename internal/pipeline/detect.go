package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/loom/internal/catalog"
)

const minSharedTokens = 2

// DetectNode returns a state node that runs the expanding-window boundary
// scan over the batch's ordered summaries.
func DetectNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		summaries, err := stateValue[[]TabSessionSummary](s, KeySummaries)
		if err != nil {
			return s, fmt.Errorf("detect: %w", err)
		}

		candidates := DetectCandidates(
			rt.Catalog,
			summaries,
			rt.Config.BoundaryGap,
			rt.Config.MaxWindowSpan,
		)

		rt.Logger.InfoContext(
			ctx, "detect node complete",
			"summaries", len(summaries),
			"candidates", len(candidates),
		)

		result, err := stateValue[Result](s, KeyResult)
		if err != nil {
			return s, fmt.Errorf("detect: %w", err)
		}
		result.Candidates = len(candidates)

		s = s.Set(KeyCandidates, candidates)
		s = s.Set(KeyResult, result)
		return s, nil
	})
}

// DetectCandidates performs a greedy, one-pass, left-to-right expanding
// window scan. A window starts at the first unconsumed summary and grows
// while the continuity predicate holds and the span cap is not reached.
// Every summary lands in exactly one candidate; single-summary windows are
// emitted as low-confidence candidates for the classifier to adjudicate.
func DetectCandidates(
	cat *catalog.Catalog,
	summaries []TabSessionSummary,
	gap time.Duration,
	maxSpan int,
) []WorkflowCandidate {
	if maxSpan < 1 {
		maxSpan = 1
	}

	candidates := make([]WorkflowCandidate, 0)

	i := 0
	for i < len(summaries) {
		j := i + 1
		for j < len(summaries) && j-i < maxSpan && continues(cat, summaries[j-1], summaries[j], gap) {
			j++
		}

		members := make([]TabSessionSummary, j-i)
		copy(members, summaries[i:j])

		ids := make([]string, len(members))
		for k, m := range members {
			ids[k] = m.SessionID
		}

		candidates = append(candidates, WorkflowCandidate{
			StartTs:          members[0].StartTs,
			EndTs:            members[len(members)-1].EndTs,
			MemberSessionIDs: ids,
			Summaries:        members,
			LowConfidence:    len(members) == 1,
		})

		i = j
	}

	return candidates
}

// continues is the boundary continuity predicate: temporal proximity always,
// plus topical continuity when both summaries carry narrative content.
// Degraded summaries fall back to temporal proximity alone rather than
// guessing intent from empty narratives.
func continues(cat *catalog.Catalog, prev, next TabSessionSummary, gap time.Duration) bool {
	if next.StartTs-prev.EndTs > gap.Milliseconds() {
		return false
	}

	if prev.Degraded || next.Degraded {
		return true
	}

	return topicalContinuity(cat, prev, next)
}

func topicalContinuity(cat *catalog.Catalog, prev, next TabSessionSummary) bool {
	if prev.BaseURL != "" && prev.BaseURL == next.BaseURL {
		return true
	}

	if sharesPlatform(cat, summaryText(prev), summaryText(next)) {
		return true
	}

	return sharedTokens(summaryText(prev), summaryText(next)) >= minSharedTokens
}

func sharesPlatform(cat *catalog.Catalog, a, b string) bool {
	platforms := make(map[string]struct{})
	for _, p := range cat.DetectPlatforms(a) {
		platforms[p] = struct{}{}
	}

	for _, p := range cat.DetectPlatforms(b) {
		if _, ok := platforms[p]; ok {
			return true
		}
	}

	return false
}

func sharedTokens(a, b string) int {
	seen := make(map[string]struct{})
	for _, tok := range tokenize(a) {
		seen[tok] = struct{}{}
	}

	shared := 0
	counted := make(map[string]struct{})
	for _, tok := range tokenize(b) {
		if _, ok := seen[tok]; !ok {
			continue
		}
		if _, ok := counted[tok]; ok {
			continue
		}
		counted[tok] = struct{}{}
		shared++
	}

	return shared
}

// tokenize splits lowercased text on non-alphanumeric runes, keeping only
// tokens long enough to carry topical signal.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 3 {
			tokens = append(tokens, f)
		}
	}

	return tokens
}

func summaryText(s TabSessionSummary) string {
	return strings.Join([]string{s.Title, s.ViewportSummary, s.ActivitySummary}, " ")
}
