package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/loom/pkg/formatting"
)

type verdict struct {
	Classification string `json:"classification"`
	Summary        string `json:"summary"`
}

func TestParse(t *testing.T) {
	t.Run("direct JSON", func(t *testing.T) {
		got, err := formatting.Parse[verdict](`{"classification":"workflow","summary":"filed a ticket"}`)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Classification != "workflow" || got.Summary != "filed a ticket" {
			t.Errorf("Parse = %+v", got)
		}
	})

	t.Run("direct JSON with whitespace", func(t *testing.T) {
		got, err := formatting.Parse[verdict](`  {"classification":"noise","summary":""}  `)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Classification != "noise" {
			t.Errorf("Classification = %q, want noise", got.Classification)
		}
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		input := "```json\n{\"classification\":\"unfinished\",\"summary\":\"drafting\"}\n```"
		got, err := formatting.Parse[verdict](input)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Classification != "unfinished" {
			t.Errorf("Classification = %q, want unfinished", got.Classification)
		}
	})

	t.Run("markdown fenced without language tag", func(t *testing.T) {
		input := "```\n{\"classification\":\"workflow\",\"summary\":\"x\"}\n```"
		got, err := formatting.Parse[verdict](input)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Classification != "workflow" {
			t.Errorf("Classification = %q, want workflow", got.Classification)
		}
	})

	t.Run("markdown fenced with surrounding text", func(t *testing.T) {
		input := "Here is my verdict:\n```json\n{\"classification\":\"workflow\",\"summary\":\"y\"}\n```\nDone."
		got, err := formatting.Parse[verdict](input)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Summary != "y" {
			t.Errorf("Summary = %q, want y", got.Summary)
		}
	})

	t.Run("invalid content returns ErrParseFailed", func(t *testing.T) {
		_, err := formatting.Parse[verdict]("the user seems to be working")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("empty string returns ErrParseFailed", func(t *testing.T) {
		_, err := formatting.Parse[verdict]("")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("parses into slice type", func(t *testing.T) {
		got, err := formatting.Parse[[]string](`["a","b"]`)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if len(got) != 2 || got[1] != "b" {
			t.Errorf("got = %v, want [a b]", got)
		}
	})
}
