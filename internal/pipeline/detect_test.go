package pipeline_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/loom/internal/catalog"
	"github.com/JaimeStill/loom/internal/pipeline"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Tool{
		{Platform: "jira", Operation: "create_issue", Description: "Create a Jira issue"},
		{Platform: "slack", Operation: "send_message", Description: "Send a Slack message"},
	})
}

func summary(id string, start, end time.Duration, baseURL, activity string) pipeline.TabSessionSummary {
	return pipeline.TabSessionSummary{
		SessionID:       id,
		TabID:           1,
		BaseURL:         baseURL,
		StartTs:         baseTs + start.Milliseconds(),
		EndTs:           baseTs + end.Milliseconds(),
		ActivitySummary: activity,
	}
}

func degradedSummary(id string, start, end time.Duration) pipeline.TabSessionSummary {
	return pipeline.TabSessionSummary{
		SessionID: id,
		TabID:     1,
		BaseURL:   "https://example.com/app",
		StartTs:   baseTs + start.Milliseconds(),
		EndTs:     baseTs + end.Milliseconds(),
		Degraded:  true,
	}
}

func TestDetectCandidates(t *testing.T) {
	cat := testCatalog()
	gap := 30 * time.Minute

	t.Run("empty input yields no candidates", func(t *testing.T) {
		got := pipeline.DetectCandidates(cat, nil, gap, 8)
		if len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("single summary is a low confidence candidate", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://app.slack.com/client", "messaging"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
		if !got[0].LowConfidence {
			t.Error("single-summary candidate should be low confidence")
		}
	})

	t.Run("same base url keeps the window growing", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://app.slack.com/client", "reading a thread"),
			summary("1-02", 2*time.Minute, 3*time.Minute, "https://app.slack.com/client", "replying"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
		if got[0].LowConfidence {
			t.Error("multi-summary candidate should not be low confidence")
		}
	})

	t.Run("temporal gap closes the window", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://app.slack.com/client", "messaging"),
			summary("1-02", 2*time.Hour, 2*time.Hour+time.Minute, "https://app.slack.com/client", "messaging"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 2 {
			t.Fatalf("candidates = %d, want 2", len(got))
		}
	})

	t.Run("shared platform mention bridges base urls", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://app.slack.com/client", "copied a bug report from slack"),
			summary("2-01", 2*time.Minute, 3*time.Minute, "https://example.atlassian.net/browse", "created a slack-reported issue"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
		if len(got[0].MemberSessionIDs) != 2 {
			t.Errorf("members = %v", got[0].MemberSessionIDs)
		}
	})

	t.Run("shared tokens bridge unrelated urls", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://docs.example.com", "reading the quarterly budget report"),
			summary("2-01", 2*time.Minute, 3*time.Minute, "https://sheets.example.com", "updating budget figures in the quarterly sheet"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
	})

	t.Run("topically unrelated summaries split", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://news.example.com", "skimming headlines"),
			summary("2-01", 2*time.Minute, 3*time.Minute, "https://recipes.example.org", "browsing dinner ideas"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 2 {
			t.Fatalf("candidates = %d, want 2", len(got))
		}
	})

	t.Run("max span closes the window", func(t *testing.T) {
		var summaries []pipeline.TabSessionSummary
		for i := range 5 {
			start := time.Duration(i) * time.Minute
			summaries = append(summaries, summary(
				"1-0"+string(rune('1'+i)),
				start, start+30*time.Second,
				"https://app.slack.com/client",
				"messaging",
			))
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 2)
		if len(got) != 3 {
			t.Fatalf("candidates = %d, want 3 (spans 2+2+1)", len(got))
		}
		if len(got[0].MemberSessionIDs) != 2 || len(got[2].MemberSessionIDs) != 1 {
			t.Errorf("spans = %d, %d, %d",
				len(got[0].MemberSessionIDs),
				len(got[1].MemberSessionIDs),
				len(got[2].MemberSessionIDs),
			)
		}
	})

	t.Run("degraded summaries continue on temporal proximity alone", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://app.slack.com/client", "messaging"),
			degradedSummary("1-02", 2*time.Minute, 3*time.Minute),
			summary("1-03", 4*time.Minute, 5*time.Minute, "https://app.slack.com/client", "messaging"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
	})

	t.Run("no overlap and full coverage", func(t *testing.T) {
		summaries := []pipeline.TabSessionSummary{
			summary("1-01", 0, time.Minute, "https://app.slack.com/client", "messaging"),
			summary("1-02", 2*time.Minute, 3*time.Minute, "https://app.slack.com/client", "messaging"),
			summary("2-01", 2*time.Hour, 2*time.Hour+time.Minute, "https://news.example.com", "skimming headlines"),
			summary("3-01", 3*time.Hour, 3*time.Hour+time.Minute, "https://recipes.example.org", "browsing dinner ideas"),
		}

		got := pipeline.DetectCandidates(cat, summaries, gap, 8)

		seen := make(map[string]int)
		for _, c := range got {
			for _, id := range c.MemberSessionIDs {
				seen[id]++
			}
		}

		for _, s := range summaries {
			if seen[s.SessionID] != 1 {
				t.Errorf("session %s appears in %d candidates, want 1", s.SessionID, seen[s.SessionID])
			}
		}
	})
}
