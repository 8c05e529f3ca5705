package utils

import (
	"slices"
	"testing"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "counts runes not bytes",
			input:  "résumé scoring",
			limit:  6,
			expect: "résumé...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "collapses blanks", input: "  Senior \t\t Go   engineer  ", expect: "Senior Go engineer"},
		{name: "keeps single newlines", input: "Skills:\r\n\n\n  Go, SQL\n", expect: "Skills:\nGo, SQL"},
		{name: "drops control characters", input: "py\x00th\x07on", expect: "python"},
		{name: "drops invalid utf8", input: "go\xff\xfelang", expect: "golang"},
		{name: "keeps unicode letters", input: "Résumé · Zoë", expect: "Résumé · Zoë"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CleanText(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestCompactList(t *testing.T) {
	got := CompactList([]string{"  one ", "", "   ", "two", "three"}, 2)
	if !slices.Equal(got, []string{"one", "two"}) {
		t.Fatalf("unexpected list %q", got)
	}

	if got := CompactList(nil, 10); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}

	if got := CompactList([]string{"a", "b", "c"}, 0); len(got) != 3 {
		t.Fatalf("expected unlimited list, got %q", got)
	}
}
