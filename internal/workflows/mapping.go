package workflows

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/loom/pkg/query"
	"github.com/JaimeStill/loom/pkg/repository"
)

// Filters narrows workflow list queries.
type Filters struct {
	// Platform matches workflows whose signature references the platform.
	Platform *string `json:"platform,omitempty"`
}

func projection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "workflows", "w").
		Project("id", "id").
		Project("summary", "summary").
		Project("steps", "steps").
		Project("tool_signature", "signature").
		Project("created_at", "createdAt").
		Project("updated_at", "updatedAt")
}

func defaultSort() []query.SortField {
	return []query.SortField{
		{Field: "createdAt", Descending: true},
	}
}

func scanWorkflow(s repository.Scanner) (Workflow, error) {
	var (
		w         Workflow
		id        string
		stepsJSON []byte
		signature string
	)

	if err := s.Scan(
		&id,
		&w.Summary,
		&stepsJSON,
		&signature,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return Workflow{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Workflow{}, err
	}
	w.ID = parsed

	if err := json.Unmarshal(stepsJSON, &w.Steps); err != nil {
		return Workflow{}, err
	}

	if signature != "" {
		w.Signature = strings.Split(signature, ",")
	}

	return w, nil
}

func marshalSteps(steps []WorkflowStep) ([]byte, error) {
	normalized := make([]WorkflowStep, len(steps))
	copy(normalized, steps)
	for i := range normalized {
		normalized[i].Order = i + 1
	}
	return json.Marshal(normalized)
}
