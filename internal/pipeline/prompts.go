package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/loom/internal/prompts"
)

// composePrompt builds a capability prompt by combining tunable instructions,
// the immutable response specification, and a stage-specific context block.
func composePrompt(
	ctx context.Context,
	ps prompts.System,
	stage prompts.Stage,
	contextBlock string,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	if contextBlock != "" {
		sb.WriteString("\n\n")
		sb.WriteString(contextBlock)
	}

	return sb.String(), nil
}
