package events

import "errors"

// ErrMalformedBatch indicates a batch failed structural validation.
// Malformed batches are rejected whole; no pipeline stage runs.
var ErrMalformedBatch = errors.New("malformed event batch")
