package pipeline

import "errors"

// Sentinel errors for pipeline stages. Capability failures inside summarize,
// classify, and steps degrade in place; these surface only for structural
// failures that abort the batch.
var (
	ErrGroupFailed = errors.New("session grouping failed")
	ErrStoreFailed = errors.New("workflow store failed")
)
