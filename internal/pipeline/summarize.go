package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/loom/internal/events"
	"github.com/JaimeStill/loom/internal/prompts"
	"github.com/JaimeStill/loom/pkg/formatting"
)

const maxMarkdownChars = 4000

type summarizeResponse struct {
	ViewportSummary string `json:"viewport_summary"`
	ActivitySummary string `json:"activity_summary"`
}

// SummarizeNode returns a state node that condenses each session into a
// narrative summary using bounded errgroup concurrency. A capability failure
// degrades that one session's summary; it never fails the batch.
func SummarizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sessions, err := stateValue[[]TabSession](s, KeySessions)
		if err != nil {
			return s, fmt.Errorf("summarize: %w", err)
		}

		summaries, err := summarizeSessions(ctx, rt, sessions)
		if err != nil {
			return s, fmt.Errorf("summarize: %w", err)
		}

		degraded := 0
		for _, summary := range summaries {
			if summary.Degraded {
				degraded++
			}
		}

		rt.Logger.InfoContext(
			ctx, "summarize node complete",
			"sessions", len(sessions),
			"degraded", degraded,
		)

		result, err := stateValue[Result](s, KeyResult)
		if err != nil {
			return s, fmt.Errorf("summarize: %w", err)
		}
		result.Degraded = degraded

		s = s.Set(KeySummaries, summaries)
		s = s.Set(KeyResult, result)
		return s, nil
	})
}

func summarizeSessions(ctx context.Context, rt *Runtime, sessions []TabSession) ([]TabSessionSummary, error) {
	summaries := make([]TabSessionSummary, len(sessions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(rt.Config.MaxConcurrency, len(sessions)))

	for i := range sessions {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			summaries[i] = summarizeSession(gctx, rt, sessions[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func summarizeSession(ctx context.Context, rt *Runtime, session TabSession) TabSessionSummary {
	summary := TabSessionSummary{
		SessionID: session.ID,
		TabID:     session.TabID,
		BaseURL:   session.BaseURL,
		Title:     session.Title,
		StartTs:   session.StartTs,
		EndTs:     session.EndTs,
	}

	degrade := func(reason string, err error) TabSessionSummary {
		rt.Logger.WarnContext(ctx, "session summary degraded",
			"session_id", session.ID,
			"reason", reason,
			"error", err,
		)
		summary.Degraded = true
		return summary
	}

	prompt, err := composePrompt(ctx, rt.Prompts, prompts.StageSummarize, sessionContext(session))
	if err != nil {
		return degrade("compose prompt", err)
	}

	content, err := rt.Capability.Complete(ctx, prompt)
	if err != nil {
		return degrade("capability call", err)
	}

	parsed, err := formatting.Parse[summarizeResponse](content)
	if err != nil {
		return degrade("parse response", err)
	}

	summary.ViewportSummary = parsed.ViewportSummary
	summary.ActivitySummary = parsed.ActivitySummary
	return summary
}

// sessionContext renders a session as a markdown context block: page content
// from the most recent page load carrying markdown, then the activity log.
// Events without a URL inherit the session's page context implicitly by
// membership.
func sessionContext(session TabSession) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Session %s\n", session.ID)
	fmt.Fprintf(&sb, "URL: %s\n", session.BaseURL)
	if session.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", session.Title)
	}
	fmt.Fprintf(&sb, "Duration: %s to %s\n",
		formatTs(session.StartTs),
		formatTs(session.EndTs),
	)

	if md := sessionMarkdown(session); md != "" {
		sb.WriteString("\n### Page content\n\n")
		sb.WriteString(md)
		sb.WriteString("\n")
	}

	sb.WriteString("\n### Activity\n\n")
	for _, ev := range session.Events {
		sb.WriteString(eventLine(ev))
		sb.WriteString("\n")
	}

	return sb.String()
}

// sessionMarkdown backfills page content from the latest page load that
// captured markdown, truncated to keep prompts bounded.
func sessionMarkdown(session TabSession) string {
	var md string
	for _, ev := range session.Events {
		if ev.Type == events.TypePageLoad {
			if m := ev.Markdown(); m != "" {
				md = m
			}
		}
	}

	if len(md) > maxMarkdownChars {
		cut := maxMarkdownChars
		for cut > 0 && !utf8.RuneStart(md[cut]) {
			cut--
		}
		md = md[:cut]
	}
	return md
}

func eventLine(ev events.InteractionEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- [%s] %s", formatTs(ev.Timestamp), ev.Type)

	for _, key := range []string{"selector", "text", "value"} {
		if v, ok := ev.Payload[key].(string); ok && v != "" {
			fmt.Fprintf(&sb, " %s=%q", key, v)
		}
	}

	return sb.String()
}

func formatTs(ts int64) string {
	return time.UnixMilli(ts).UTC().Format("15:04:05")
}
