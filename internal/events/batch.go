package events

import (
	"encoding/json"
	"fmt"
)

// ParseBatch decodes and validates a raw batch document.
// A batch failing structural validation is rejected before any stage runs.
func ParseBatch(data []byte) (*EventBatch, error) {
	var batch EventBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBatch, err)
	}

	if err := batch.Validate(); err != nil {
		return nil, err
	}

	return &batch, nil
}

// Validate checks the structural invariants of a batch: a batch timestamp,
// at least one event, and per-event id, type, timestamp, and tab id.
func (b *EventBatch) Validate() error {
	if b.Timestamp <= 0 {
		return fmt.Errorf("%w: missing batch timestamp", ErrMalformedBatch)
	}
	if len(b.Events) == 0 {
		return fmt.Errorf("%w: batch contains no events", ErrMalformedBatch)
	}

	for i, e := range b.Events {
		if err := e.validate(); err != nil {
			return fmt.Errorf("%w: event %d: %w", ErrMalformedBatch, i, err)
		}
	}

	return nil
}

func (e InteractionEvent) validate() error {
	if e.ID == "" {
		return fmt.Errorf("missing id")
	}
	if e.Type == "" {
		return fmt.Errorf("missing type")
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("missing timestamp")
	}
	if e.TabID < 0 {
		return fmt.Errorf("invalid tab id: %d", e.TabID)
	}
	return nil
}
