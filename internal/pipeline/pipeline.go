package pipeline

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/loom/internal/events"
)

// Execute runs the extraction pipeline for a single batch. It validates the
// batch, builds the state graph (group → summarize → detect → classify →
// steps? → dedup), executes it, and extracts the batch result from the final
// state.
func Execute(ctx context.Context, rt *Runtime, batch *events.EventBatch) (*Result, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyBatch, batch)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("loom-extract")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("group", GroupNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("summarize", SummarizeNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("detect", DetectNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", ClassifyNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("steps", StepsNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("dedup", DedupNode(rt)); err != nil {
		return nil, err
	}

	// group → summarize → detect → classify (unconditional)
	if err := graph.AddEdge("group", "summarize", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("summarize", "detect", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("detect", "classify", nil); err != nil {
		return nil, err
	}

	// classify → steps (when any candidate was accepted as a workflow)
	if err := graph.AddEdge("classify", "steps", hasDrafts); err != nil {
		return nil, err
	}

	// classify → dedup (nothing to assign roles for)
	if err := graph.AddEdge("classify", "dedup", state.Not(hasDrafts)); err != nil {
		return nil, err
	}

	// steps → dedup (unconditional)
	if err := graph.AddEdge("steps", "dedup", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("group"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("dedup"); err != nil {
		return nil, err
	}

	return graph, nil
}

func hasDrafts(s state.State) bool {
	drafts, err := stateValue[[]DraftWorkflow](s, KeyDrafts)
	if err != nil {
		return false
	}
	return len(drafts) > 0
}

func extractResult(s state.State) (*Result, error) {
	result, err := stateValue[Result](s, KeyResult)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// stateValue extracts a typed value from the state bag.
func stateValue[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s is not %T", key, zero)
	}

	return typed, nil
}
