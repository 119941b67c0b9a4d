package prompts_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/JaimeStill/loom/internal/prompts"
)

func TestParseStage(t *testing.T) {
	t.Run("valid stages", func(t *testing.T) {
		for _, stage := range prompts.Stages() {
			got, err := prompts.ParseStage(string(stage))
			if err != nil {
				t.Errorf("ParseStage(%q) error: %v", stage, err)
			}
			if got != stage {
				t.Errorf("ParseStage(%q) = %q", stage, got)
			}
		}
	})

	t.Run("invalid stage", func(t *testing.T) {
		_, err := prompts.ParseStage("enhance")
		if !errors.Is(err, prompts.ErrInvalidStage) {
			t.Errorf("error = %v, want ErrInvalidStage", err)
		}
	})
}

func TestStageUnmarshal(t *testing.T) {
	t.Run("known value", func(t *testing.T) {
		var s prompts.Stage
		if err := json.Unmarshal([]byte(`"classify"`), &s); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if s != prompts.StageClassify {
			t.Errorf("Stage = %q, want classify", s)
		}
	})

	t.Run("unknown value rejected", func(t *testing.T) {
		var s prompts.Stage
		err := json.Unmarshal([]byte(`"transmogrify"`), &s)
		if !errors.Is(err, prompts.ErrInvalidStage) {
			t.Errorf("error = %v, want ErrInvalidStage", err)
		}
	})
}

func TestDefaults(t *testing.T) {
	for _, stage := range prompts.Stages() {
		instructions, err := prompts.Instructions(stage)
		if err != nil {
			t.Errorf("Instructions(%q) error: %v", stage, err)
		}
		if instructions == "" {
			t.Errorf("Instructions(%q) is empty", stage)
		}

		spec, err := prompts.Spec(stage)
		if err != nil {
			t.Errorf("Spec(%q) error: %v", stage, err)
		}
		if spec == "" {
			t.Errorf("Spec(%q) is empty", stage)
		}
	}
}

func TestStatic(t *testing.T) {
	system := prompts.Static()

	instructions, err := system.Instructions(t.Context(), prompts.StageSummarize)
	if err != nil {
		t.Fatalf("Instructions error: %v", err)
	}

	fallback, _ := prompts.Instructions(prompts.StageSummarize)
	if instructions != fallback {
		t.Error("Static Instructions should match package defaults")
	}
}
