// Package prompts implements prompt composition for the pipeline's
// classification stages. Each stage pairs tunable instructions (overridable
// through named, activatable database records) with an immutable response
// specification that pins the capability's output vocabulary.
package prompts

import (
	"encoding/json"
	"slices"
)

// Stage represents a pipeline stage that sends prompts to the
// classification capability.
type Stage string

// Valid capability stages.
const (
	StageSummarize Stage = "summarize"
	StageClassify  Stage = "classify"
	StageSteps     Stage = "steps"
)

var stages = []Stage{
	StageSummarize,
	StageClassify,
	StageSteps,
}

// Stages returns the list of valid capability stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Stage(raw)
	if !slices.Contains(stages, v) {
		return ErrInvalidStage
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known capability stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
