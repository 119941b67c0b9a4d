package prompts

import "errors"

// Sentinel errors for prompt operations.
var (
	ErrInvalidStage = errors.New("invalid stage")
	ErrNotFound     = errors.New("prompt override not found")
	ErrDuplicate    = errors.New("prompt override already exists")
)
