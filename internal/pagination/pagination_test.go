package pagination

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        PageRequest
		wantPage  int
		wantLimit int
	}{
		{"defaults", PageRequest{}, 1, DefaultLimit},
		{"negative_page", PageRequest{Page: -3, Limit: 5}, 1, 5},
		{"zero_limit", PageRequest{Page: 2, Limit: 0}, 2, DefaultLimit},
		{"negative_limit", PageRequest{Page: 2, Limit: -1}, 2, DefaultLimit},
		{"limit_clamped", PageRequest{Page: 1, Limit: 5000}, 1, MaxLimit},
		{"untouched", PageRequest{Page: 4, Limit: 25}, 4, 25},
		{"huge_page_clamped", PageRequest{Page: math.MaxInt, Limit: 100}, MaxPage, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Normalize()
			if req.Page != tt.wantPage || req.Limit != tt.wantLimit {
				t.Errorf("Normalize() = {%d %d}, want {%d %d}", req.Page, req.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, Limit: 10}
	if got := req.Offset(); got != 20 {
		t.Errorf("Offset() = %d, want 20", got)
	}
}

func TestOffset_NeverNegative(t *testing.T) {
	for _, page := range []int{math.MaxInt, math.MaxInt / 50, math.MaxInt32} {
		req := PageRequest{Page: page, Limit: 1000}
		req.Normalize()
		if got := req.Offset(); got < 0 || got > math.MaxInt32 {
			t.Errorf("page %d: Offset() = %d, want within [0, MaxInt32]", page, got)
		}
	}
}

func TestNewPageResponse(t *testing.T) {
	t.Run("computes_pages", func(t *testing.T) {
		resp := NewPageResponse([]int{1, 2, 3}, 1, 3, 7)
		if resp.Pagination.Pages != 3 {
			t.Errorf("expected 3 pages, got %d", resp.Pagination.Pages)
		}
		if resp.Pagination.Total != 7 {
			t.Errorf("expected total 7, got %d", resp.Pagination.Total)
		}
	})

	t.Run("exact_multiple", func(t *testing.T) {
		resp := NewPageResponse([]int{1, 2}, 2, 2, 4)
		if resp.Pagination.Pages != 2 {
			t.Errorf("expected 2 pages, got %d", resp.Pagination.Pages)
		}
	})

	t.Run("empty", func(t *testing.T) {
		resp := NewPageResponse[int](nil, 1, 10, 0)
		if resp.Items == nil {
			t.Error("expected non-nil empty items")
		}
		if resp.Pagination.Pages != 0 {
			t.Errorf("expected 0 pages, got %d", resp.Pagination.Pages)
		}
	})
}
