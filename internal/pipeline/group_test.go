package pipeline_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/JaimeStill/loom/internal/events"
	"github.com/JaimeStill/loom/internal/pipeline"
)

const baseTs = int64(1700000000000)

func ev(id string, eventType string, offset time.Duration, tabID int, url string) events.InteractionEvent {
	return events.InteractionEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: baseTs + offset.Milliseconds(),
		TabID:     tabID,
		WindowID:  1,
		URL:       url,
	}
}

func batchOf(evs ...events.InteractionEvent) *events.EventBatch {
	return &events.EventBatch{
		Events:    evs,
		Timestamp: baseTs + time.Hour.Milliseconds(),
	}
}

func TestGroupSessions(t *testing.T) {
	gap := 10 * time.Minute

	t.Run("single session per tab and base url", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypeClick, time.Minute, 1, "https://app.slack.com/client"),
			ev("e3", events.TypeInput, 2*time.Minute, 1, "https://app.slack.com/client"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(sessions))
		}
		if len(sessions[0].Events) != 3 {
			t.Errorf("events = %d, want 3", len(sessions[0].Events))
		}
		if sessions[0].BaseURL != "https://app.slack.com/client" {
			t.Errorf("BaseURL = %q", sessions[0].BaseURL)
		}
	})

	t.Run("query string does not split a session", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://example.com/board?view=kanban"),
			ev("e2", events.TypePageLoad, time.Minute, 1, "https://example.com/board?view=list"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(sessions))
		}
	})

	t.Run("base url change breaks session", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypePageLoad, time.Minute, 1, "https://example.atlassian.net/browse"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 2 {
			t.Fatalf("sessions = %d, want 2", len(sessions))
		}
	})

	t.Run("inactivity gap breaks session", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypeClick, 11*time.Minute, 1, "https://app.slack.com/client"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 2 {
			t.Fatalf("sessions = %d, want 2", len(sessions))
		}
	})

	t.Run("tab removal closes session", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypeTabRemoval, time.Minute, 1, ""),
			ev("e3", events.TypePageLoad, 2*time.Minute, 1, "https://app.slack.com/client"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 2 {
			t.Fatalf("sessions = %d, want 2", len(sessions))
		}
	})

	t.Run("urlless events attach to the open session", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypeCopy, time.Minute, 1, ""),
			ev("e3", events.TypeScroll, 2*time.Minute, 1, ""),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(sessions))
		}
		if len(sessions[0].Events) != 3 {
			t.Errorf("events = %d, want 3", len(sessions[0].Events))
		}
	})

	t.Run("urlless events without session context are dropped", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypeScroll, 0, 1, ""),
			ev("e2", events.TypePageLoad, time.Minute, 1, "https://app.slack.com/client"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(sessions))
		}
		if len(sessions[0].Events) != 1 {
			t.Errorf("events = %d, want 1 (orphan dropped)", len(sessions[0].Events))
		}
	})

	t.Run("tabs are independent", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypePageLoad, time.Minute, 2, "https://example.atlassian.net/browse"),
			ev("e3", events.TypeClick, 2*time.Minute, 1, "https://app.slack.com/client"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 2 {
			t.Fatalf("sessions = %d, want 2", len(sessions))
		}
		for _, s := range sessions {
			for _, e := range s.Events {
				if e.TabID != s.TabID {
					t.Errorf("event %s in session %s crosses tabs", e.ID, s.ID)
				}
			}
		}
	})

	t.Run("every eligible event lands in exactly one session", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
			ev("e2", events.TypeClick, time.Minute, 1, "https://app.slack.com/client"),
			ev("e3", events.TypePageLoad, 2*time.Minute, 1, "https://example.atlassian.net/browse"),
			ev("e4", events.TypePageLoad, 3*time.Minute, 2, "https://mail.google.com/mail"),
			ev("e5", events.TypeInput, 4*time.Minute, 2, ""),
		)

		sessions := pipeline.GroupSessions(batch, gap)

		seen := make(map[string]int)
		for _, s := range sessions {
			for _, e := range s.Events {
				seen[e.ID]++
			}
		}

		for _, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
			if seen[id] != 1 {
				t.Errorf("event %s appears %d times, want 1", id, seen[id])
			}
		}
	})

	t.Run("deterministic ids and ordering", func(t *testing.T) {
		batch := batchOf(
			ev("e1", events.TypePageLoad, 0, 3, "https://app.slack.com/client"),
			ev("e2", events.TypePageLoad, time.Minute, 3, "https://example.atlassian.net/browse"),
		)

		first := pipeline.GroupSessions(batch, gap)
		second := pipeline.GroupSessions(batch, gap)

		if len(first) != 2 || len(second) != 2 {
			t.Fatalf("sessions = %d/%d, want 2/2", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Errorf("session %d id differs across runs: %s vs %s", i, first[i].ID, second[i].ID)
			}
		}
		if first[0].ID != "3-01" || first[1].ID != "3-02" {
			t.Errorf("ids = %s, %s", first[0].ID, first[1].ID)
		}
		if first[0].StartTs > first[1].StartTs {
			t.Error("sessions not ordered by start timestamp")
		}
	})

	t.Run("unsorted input is ordered before grouping", func(t *testing.T) {
		batch := batchOf(
			ev("e2", events.TypeClick, time.Minute, 1, "https://app.slack.com/client"),
			ev("e1", events.TypePageLoad, 0, 1, "https://app.slack.com/client"),
		)

		sessions := pipeline.GroupSessions(batch, gap)
		if len(sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(sessions))
		}
		if sessions[0].Events[0].ID != "e1" {
			t.Errorf("first event = %s, want e1", sessions[0].Events[0].ID)
		}
	})
}

func TestGroupSessionsScale(t *testing.T) {
	var evs []events.InteractionEvent
	for i := range 50 {
		evs = append(evs, ev(
			fmt.Sprintf("e%03d", i),
			events.TypeClick,
			time.Duration(i)*time.Second,
			i%5,
			fmt.Sprintf("https://example.com/tab%d", i%5),
		))
	}

	sessions := pipeline.GroupSessions(batchOf(evs...), 10*time.Minute)
	if len(sessions) != 5 {
		t.Fatalf("sessions = %d, want 5", len(sessions))
	}

	total := 0
	for _, s := range sessions {
		total += len(s.Events)
	}
	if total != 50 {
		t.Errorf("total events = %d, want 50", total)
	}
}
