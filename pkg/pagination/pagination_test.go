package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/intake/pkg/pagination"
)

func TestFinalizeDefaults(t *testing.T) {
	var cfg pagination.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.DefaultPageSize != 25 || cfg.MaxPageSize != 200 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestFinalizeEnvOverride(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")

	var cfg pagination.Config
	err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE"})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.DefaultPageSize != 50 {
		t.Errorf("DefaultPageSize = %d, want 50", cfg.DefaultPageSize)
	}
}

func TestFinalizeRejectsDefaultAboveMax(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 300, MaxPageSize: 100}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected validation error")
	}
}

func TestFromQuery(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 25, MaxPageSize: 100}

	tests := []struct {
		name    string
		query   string
		page    int
		size    int
		search  string
		sortLen int
	}{
		{"empty", "", 1, 25, "", 0},
		{"explicit", "page=2&page_size=10", 2, 10, "", 0},
		{"clamped", "page=-4&page_size=1000", 1, 100, "", 0},
		{"search and sort", "search=title&sort=name,-uploaded_at", 1, 25, "title", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.FromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.size {
				t.Errorf("page = %d size = %d, want %d %d", req.Page, req.PageSize, tt.page, tt.size)
			}

			var search string
			if req.Search != nil {
				search = *req.Search
			}
			if search != tt.search {
				t.Errorf("search = %q, want %q", search, tt.search)
			}

			if len(req.Sort) != tt.sortLen {
				t.Errorf("sort = %v, want %d fields", req.Sort, tt.sortLen)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name  string
		total int
		size  int
		pages int
	}{
		{"empty", 0, 10, 1},
		{"exact", 20, 10, 2},
		{"remainder", 21, 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pagination.NewPageResult[string](nil, tt.total, 1, tt.size)
			if r.TotalPages != tt.pages {
				t.Errorf("TotalPages = %d, want %d", r.TotalPages, tt.pages)
			}
			if r.Data == nil {
				t.Error("Data is nil")
			}
		})
	}
}
