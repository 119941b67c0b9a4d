// Package workflows implements the workflow domain: the extracted workflow
// entity, its derived tool-set signature, and the Postgres-backed store that
// enforces signature-based dedup.
package workflows

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StepRole classifies a workflow step as acting through an external tool
// or gathering context in the browser.
type StepRole string

// Valid step roles.
const (
	RoleTool           StepRole = "tool"
	RoleBrowserContext StepRole = "browser_context"
)

// ToolRef identifies an entry in the external tool catalog.
// Refs are looked up, never invented; an unresolvable ref downgrades its
// step to browser_context before it reaches this package.
type ToolRef struct {
	Platform  string `json:"platform"`
	Operation string `json:"operation"`
}

// String returns the canonical platform:operation form.
func (t ToolRef) String() string {
	return t.Platform + ":" + t.Operation
}

// WorkflowStep is one ordered step of an extracted workflow.
// Tool is set only for tool-role steps.
type WorkflowStep struct {
	Order       int      `json:"order"`
	Description string   `json:"description"`
	Role        StepRole `json:"role"`
	Tool        *ToolRef `json:"tool,omitempty"`
}

// Workflow is a stored, deduplicated workflow record.
type Workflow struct {
	ID        uuid.UUID      `json:"id"`
	Summary   string         `json:"summary"`
	Steps     []WorkflowStep `json:"steps"`
	Signature []string       `json:"signature"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Signature derives the tool-set signature from a step sequence: the sorted
// set of distinct tool refs across tool-role steps. It is a pure function of
// the steps and must be recomputed whenever steps change, never cached stale.
func Signature(steps []WorkflowStep) []string {
	seen := make(map[string]struct{})
	for _, s := range steps {
		if s.Role != RoleTool || s.Tool == nil {
			continue
		}
		seen[s.Tool.String()] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// CanonicalSignature joins the derived signature into the single comparable
// form used as the dedup key. Order-independent by construction: two
// workflows using the same distinct tools produce the same canonical
// signature regardless of step order or count.
func CanonicalSignature(steps []WorkflowStep) string {
	return strings.Join(Signature(steps), ",")
}
