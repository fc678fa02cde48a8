package handlers

import "testing"

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, pageSize, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("empty params must use defaults: %v", err)
	}
	if page != 1 || pageSize != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", page, pageSize)
	}
}

func TestParsePaginationParamsRejectsInvalid(t *testing.T) {
	for _, pair := range [][2]string{{"0", "10"}, {"-1", "10"}, {"x", "10"}, {"1", "0"}, {"1", "abc"}} {
		if _, _, err := parsePaginationParams(pair[0], pair[1]); err == nil {
			t.Fatalf("expected error for page=%q pageSize=%q", pair[0], pair[1])
		}
	}
}

func TestParsePaginationParamsCapsPageSize(t *testing.T) {
	_, pageSize, err := parsePaginationParams("2", "5000")
	if err != nil {
		t.Fatal(err)
	}
	if pageSize != maxPageSize {
		t.Fatalf("expected pageSize capped at %d, got %d", maxPageSize, pageSize)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, pageSize, want int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 20, 5},
	}
	for _, tt := range cases {
		if got := totalPages(tt.total, tt.pageSize); got != tt.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}
