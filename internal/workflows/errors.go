package workflows

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrNotFound    = errors.New("workflow not found")
	ErrDuplicate   = errors.New("workflow already exists")
	ErrNoToolSteps = errors.New("workflow has no tool steps")
)
