package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/loom/pkg/query"
)

func workflowProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "workflows", "w").
		Project("id", "id").
		Project("summary", "summary").
		Project("tool_signature", "signature").
		Project("created_at", "createdAt")
}

func TestProjectionMap(t *testing.T) {
	p := workflowProjection()

	if got := p.From(); got != "public.workflows w" {
		t.Errorf("From = %q", got)
	}
	if got := p.Column("signature"); got != "w.tool_signature" {
		t.Errorf("Column(signature) = %q", got)
	}
	if got := p.Column("unmapped"); got != "unmapped" {
		t.Errorf("Column(unmapped) = %q, want passthrough", got)
	}
	if got := p.Columns(); got != "w.id, w.summary, w.tool_signature, w.created_at" {
		t.Errorf("Columns = %q", got)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty", "", nil},
		{"single ascending", "summary", []query.SortField{{Field: "summary"}}},
		{"single descending", "-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{
			"mixed with spaces",
			"summary, -createdAt",
			[]query.SortField{
				{Field: "summary"},
				{Field: "createdAt", Descending: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	t.Run("build with default sort", func(t *testing.T) {
		sql, args := query.NewBuilder(
			workflowProjection(),
			query.SortField{Field: "createdAt", Descending: true},
		).Build()

		want := "SELECT w.id, w.summary, w.tool_signature, w.created_at FROM public.workflows w ORDER BY w.created_at DESC"
		if sql != want {
			t.Errorf("Build sql = %q, want %q", sql, want)
		}
		if len(args) != 0 {
			t.Errorf("Build args = %v, want none", args)
		}
	})

	t.Run("where equals numbers parameters", func(t *testing.T) {
		search := "jira"
		sql, args := query.NewBuilder(workflowProjection()).
			WhereContains("signature", &search).
			WhereEquals("summary", "x").
			BuildCount()

		want := "SELECT COUNT(*) FROM public.workflows w WHERE w.tool_signature ILIKE $1 AND w.summary = $2"
		if sql != want {
			t.Errorf("BuildCount sql = %q, want %q", sql, want)
		}
		if len(args) != 2 || args[0] != "%jira%" || args[1] != "x" {
			t.Errorf("BuildCount args = %v", args)
		}
	})

	t.Run("nil filters are no-ops", func(t *testing.T) {
		sql, args := query.NewBuilder(workflowProjection()).
			WhereContains("signature", nil).
			WhereEquals("summary", (*string)(nil)).
			WhereSearch(nil, "summary").
			BuildCount()

		if sql != "SELECT COUNT(*) FROM public.workflows w" {
			t.Errorf("BuildCount sql = %q, want no WHERE clause", sql)
		}
		if len(args) != 0 {
			t.Errorf("BuildCount args = %v, want none", args)
		}
	})

	t.Run("search spans fields with OR", func(t *testing.T) {
		search := "slack"
		sql, args := query.NewBuilder(workflowProjection()).
			WhereSearch(&search, "summary", "signature").
			BuildCount()

		want := "SELECT COUNT(*) FROM public.workflows w WHERE (w.summary ILIKE $1 OR w.tool_signature ILIKE $2)"
		if sql != want {
			t.Errorf("BuildCount sql = %q, want %q", sql, want)
		}
		if len(args) != 2 {
			t.Errorf("BuildCount args = %v, want 2", args)
		}
	})

	t.Run("build page appends limit and offset", func(t *testing.T) {
		sql, _ := query.NewBuilder(
			workflowProjection(),
			query.SortField{Field: "createdAt", Descending: true},
		).BuildPage(3, 10)

		want := "SELECT w.id, w.summary, w.tool_signature, w.created_at FROM public.workflows w ORDER BY w.created_at DESC LIMIT 10 OFFSET 20"
		if sql != want {
			t.Errorf("BuildPage sql = %q, want %q", sql, want)
		}
	})

	t.Run("build single by unique field", func(t *testing.T) {
		sql, args := query.NewBuilder(workflowProjection()).BuildSingle("signature", "jira:create_issue")

		want := "SELECT w.id, w.summary, w.tool_signature, w.created_at FROM public.workflows w WHERE w.tool_signature = $1"
		if sql != want {
			t.Errorf("BuildSingle sql = %q, want %q", sql, want)
		}
		if len(args) != 1 || args[0] != "jira:create_issue" {
			t.Errorf("BuildSingle args = %v", args)
		}
	})

	t.Run("explicit sort overrides default", func(t *testing.T) {
		sql, _ := query.NewBuilder(
			workflowProjection(),
			query.SortField{Field: "createdAt", Descending: true},
		).OrderByFields([]query.SortField{{Field: "summary"}}).Build()

		want := "SELECT w.id, w.summary, w.tool_signature, w.created_at FROM public.workflows w ORDER BY w.summary ASC"
		if sql != want {
			t.Errorf("Build sql = %q, want %q", sql, want)
		}
	})
}
