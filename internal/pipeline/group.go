package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/loom/internal/events"
)

// GroupNode returns a state node that partitions the batch's events into
// per-tab sessions and seeds the batch result.
func GroupNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		batch, err := extractBatch(s)
		if err != nil {
			return s, fmt.Errorf("group: %w", err)
		}

		sessions := GroupSessions(batch, rt.Config.SessionGap)

		rt.Logger.InfoContext(
			ctx, "group node complete",
			"events", len(batch.Events),
			"sessions", len(sessions),
		)

		s = s.Set(KeySessions, sessions)
		s = s.Set(KeyResult, Result{Sessions: len(sessions)})
		return s, nil
	})
}

func extractBatch(s state.State) (*events.EventBatch, error) {
	val, ok := s.Get(KeyBatch)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in state", ErrGroupFailed, KeyBatch)
	}

	batch, ok := val.(*events.EventBatch)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not *events.EventBatch", ErrGroupFailed, KeyBatch)
	}

	return batch, nil
}

// GroupSessions partitions a batch's events into per-tab sessions. Every
// event lands in at most one session; events without a URL attach to the
// tab's open session or are dropped when no session context exists. Session
// IDs are deterministic per tab and ordinal, so re-running the same batch
// yields identical sessions.
func GroupSessions(batch *events.EventBatch, gap time.Duration) []TabSession {
	ordered := make([]events.InteractionEvent, len(batch.Events))
	copy(ordered, batch.Events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp != ordered[j].Timestamp {
			return ordered[i].Timestamp < ordered[j].Timestamp
		}
		return ordered[i].ID < ordered[j].ID
	})

	open := make(map[int]*TabSession)
	ordinals := make(map[int]int)
	var closed []TabSession

	closeSession := func(tabID int) {
		if session := open[tabID]; session != nil {
			closed = append(closed, *session)
			delete(open, tabID)
		}
	}

	for _, ev := range ordered {
		current := open[ev.TabID]

		if ev.Type == events.TypeTabRemoval {
			if current != nil {
				appendEvent(current, ev)
			}
			closeSession(ev.TabID)
			continue
		}

		base := baseURL(ev.URL)

		if current != nil && breaksSession(current, ev, base, gap) {
			closeSession(ev.TabID)
			current = nil
		}

		if current == nil {
			if base == "" {
				// No session context to attach to.
				continue
			}
			ordinals[ev.TabID]++
			current = &TabSession{
				ID:       fmt.Sprintf("%d-%02d", ev.TabID, ordinals[ev.TabID]),
				TabID:    ev.TabID,
				WindowID: ev.WindowID,
				BaseURL:  base,
				StartTs:  ev.Timestamp,
				EndTs:    ev.Timestamp,
			}
			open[ev.TabID] = current
		}

		appendEvent(current, ev)
	}

	for tabID := range open {
		closeSession(tabID)
	}

	sort.Slice(closed, func(i, j int) bool {
		if closed[i].StartTs != closed[j].StartTs {
			return closed[i].StartTs < closed[j].StartTs
		}
		return closed[i].ID < closed[j].ID
	})

	return closed
}

func appendEvent(session *TabSession, ev events.InteractionEvent) {
	session.Events = append(session.Events, ev)
	session.EndTs = ev.Timestamp
	if session.Title == "" && ev.Title != "" {
		session.Title = ev.Title
	}
}

func breaksSession(session *TabSession, ev events.InteractionEvent, base string, gap time.Duration) bool {
	if ev.Time().Sub(time.UnixMilli(session.EndTs)) > gap {
		return true
	}

	switch ev.Type {
	case events.TypePageLoad, events.TypeTabSwitch:
		return base != "" && base != session.BaseURL
	}

	return false
}

// baseURL strips query and fragment, keeping scheme, host, and path.
// Unparseable URLs are used as-is so odd capture output still groups.
func baseURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
