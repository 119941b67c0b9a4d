package prompts

import "github.com/google/uuid"

// Override represents a named instruction override for a capability stage.
// At most one override per stage is active; the effective instructions for
// a stage are the active override or the hardcoded default.
type Override struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}
