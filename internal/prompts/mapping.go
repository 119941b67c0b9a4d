package prompts

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/loom/pkg/query"
	"github.com/JaimeStill/loom/pkg/repository"
)

// Filters narrows override list queries.
type Filters struct {
	Stage  *Stage `json:"stage,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(qb *query.Builder) {
	if f.Stage != nil {
		qb.WhereEquals("stage", string(*f.Stage))
	}
	if f.Active != nil {
		qb.WhereEquals("active", *f.Active)
	}
}

func projection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "prompt_overrides", "p").
		Project("id", "id").
		Project("name", "name").
		Project("stage", "stage").
		Project("instructions", "instructions").
		Project("description", "description").
		Project("active", "active")
}

func defaultSort() []query.SortField {
	return []query.SortField{
		{Field: "stage"},
		{Field: "name"},
	}
}

func scanOverride(s repository.Scanner) (Override, error) {
	var (
		o  Override
		id string
	)

	if err := s.Scan(
		&id,
		&o.Name,
		&o.Stage,
		&o.Instructions,
		&o.Description,
		&o.Active,
	); err != nil {
		return Override{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Override{}, err
	}
	o.ID = parsed

	return o, nil
}
