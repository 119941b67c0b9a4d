package pagination_test

import (
	"encoding/json"
	"testing"

	"github.com/JaimeStill/loom/pkg/pagination"
)

func TestPageRequestNormalize(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

	tests := []struct {
		name         string
		request      pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", pagination.PageRequest{}, 1, 20},
		{"negative page clamps", pagination.PageRequest{Page: -2, PageSize: 10}, 1, 10},
		{"oversized page size clamps", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid values pass through", pagination.PageRequest{Page: 3, PageSize: 50}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.request.Normalize(cfg)
			if tt.request.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.request.Page, tt.wantPage)
			}
			if tt.request.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.request.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	r := pagination.PageRequest{Page: 4, PageSize: 25}
	if got := r.Offset(); got != 75 {
		t.Errorf("Offset = %d, want 75", got)
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	t.Run("from string", func(t *testing.T) {
		var r pagination.PageRequest
		if err := json.Unmarshal([]byte(`{"sort":"-createdAt,summary"}`), &r); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if len(r.Sort) != 2 || !r.Sort[0].Descending || r.Sort[0].Field != "createdAt" {
			t.Errorf("Sort = %+v", r.Sort)
		}
	})

	t.Run("from array", func(t *testing.T) {
		var r pagination.PageRequest
		if err := json.Unmarshal([]byte(`{"sort":[{"Field":"summary","Descending":true}]}`), &r); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if len(r.Sort) != 1 || r.Sort[0].Field != "summary" {
			t.Errorf("Sort = %+v", r.Sort)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	t.Run("partial last page rounds up", func(t *testing.T) {
		result := pagination.NewPageResult([]string{"a", "b"}, 45, 1, 20)
		if result.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", result.TotalPages)
		}
	})

	t.Run("empty data never returns nil", func(t *testing.T) {
		result := pagination.NewPageResult[string](nil, 0, 1, 20)
		if result.Data == nil {
			t.Error("Data is nil, want empty slice")
		}
		if result.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1", result.TotalPages)
		}
	})
}
