// Package events defines the browser interaction event types ingested by the
// pipeline and the structural validation applied before any stage runs.
package events

import "time"

// Event types emitted by the browser capture layer. The capture layer is an
// external collaborator; unknown types are carried through as plain activity.
const (
	TypePageLoad   = "page-load"
	TypeTabSwitch  = "tab-switch"
	TypeTabRemoval = "tab-removal"
	TypeClick      = "click"
	TypeInput      = "type"
	TypeCopy       = "copy"
	TypePaste      = "paste"
	TypeHighlight  = "highlight"
	TypeScroll     = "scroll"
)

// InteractionEvent is a single timestamped browser interaction.
// Immutable once ingested. Payload is an open mapping whose shape depends
// on Type and is forwarded unmodified into session context for summarization.
type InteractionEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	TabID     int            `json:"tabId"`
	WindowID  int            `json:"windowId"`
	URL       string         `json:"url,omitempty"`
	Title     string         `json:"title,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Time returns the event timestamp as a time.Time.
// Timestamps are epoch milliseconds as emitted by the capture layer.
func (e InteractionEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Markdown returns the page markdown carried in a page-load payload,
// or an empty string when absent.
func (e InteractionEvent) Markdown() string {
	if e.Payload == nil {
		return ""
	}
	md, _ := e.Payload["markdown"].(string)
	return md
}

// EventBatch is the unit of ingestion and of pipeline invocation.
// Events within a batch are ordered by timestamp only, not globally across tabs.
type EventBatch struct {
	Events    []InteractionEvent `json:"events"`
	Timestamp int64              `json:"timestamp"`
}

// Time returns the batch timestamp as a time.Time.
func (b *EventBatch) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}
