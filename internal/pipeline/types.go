// Package pipeline implements the workflow extraction pipeline as a state
// graph: group → summarize → detect → classify → steps → dedup. Each node
// reads its input from the state bag, performs one stage, and writes its
// output for the next node. No stage mutates a later stage's output.
package pipeline

import (
	"github.com/JaimeStill/loom/internal/events"
	"github.com/JaimeStill/loom/internal/workflows"
)

// State bag keys shared across pipeline nodes.
const (
	KeyBatch      = "batch"
	KeySessions   = "sessions"
	KeySummaries  = "summaries"
	KeyCandidates = "candidates"
	KeyDrafts     = "drafts"
	KeyResult     = "result"
)

// TabSession is a contiguous run of events in one tab sharing a base URL.
// Sessions close on base URL change, on an inactivity gap, or when the tab
// is removed.
type TabSession struct {
	ID       string                    `json:"id"`
	TabID    int                       `json:"tabId"`
	WindowID int                       `json:"windowId"`
	BaseURL  string                    `json:"baseUrl"`
	Title    string                    `json:"title,omitempty"`
	StartTs  int64                     `json:"startTs"`
	EndTs    int64                     `json:"endTs"`
	Events   []events.InteractionEvent `json:"events"`
}

// TabSessionSummary is the condensed narrative of a session produced by the
// classification capability. Degraded summaries carry empty narrative fields
// and participate in boundary detection on temporal continuity alone.
type TabSessionSummary struct {
	SessionID       string `json:"sessionId"`
	TabID           int    `json:"tabId"`
	BaseURL         string `json:"baseUrl"`
	Title           string `json:"title,omitempty"`
	StartTs         int64  `json:"startTs"`
	EndTs           int64  `json:"endTs"`
	ViewportSummary string `json:"viewport_summary"`
	ActivitySummary string `json:"activity_summary"`
	Degraded        bool   `json:"degraded,omitempty"`
}

// CandidateLabel is the classification verdict for a workflow candidate.
type CandidateLabel string

// Candidate labels. Anything the capability returns outside this vocabulary
// maps to LabelNoise.
const (
	LabelWorkflow   CandidateLabel = "workflow"
	LabelNoise      CandidateLabel = "noise"
	LabelUnfinished CandidateLabel = "unfinished"
)

// WorkflowCandidate is a contiguous run of session summaries proposed as a
// possible workflow. Transient; exists only between boundary detection and
// classification.
type WorkflowCandidate struct {
	StartTs          int64               `json:"startTs"`
	EndTs            int64               `json:"endTs"`
	MemberSessionIDs []string            `json:"memberSessionIds"`
	Summaries        []TabSessionSummary `json:"summaries"`
	LowConfidence    bool                `json:"lowConfidence,omitempty"`
}

// DraftWorkflow is a classified workflow awaiting step-role assignment
// and persistence.
type DraftWorkflow struct {
	Summary string                   `json:"summary"`
	Steps   []workflows.WorkflowStep `json:"steps"`
}

// Result reports what a batch produced at each stage.
type Result struct {
	Sessions   int `json:"sessions"`
	Degraded   int `json:"degraded"`
	Candidates int `json:"candidates"`
	Workflows  int `json:"workflows"`
	Noise      int `json:"noise"`
	Unfinished int `json:"unfinished"`
	Discarded  int `json:"discarded"`
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Merged     int `json:"merged"`
}
