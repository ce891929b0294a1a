package model

import "testing"

func TestTokenReportEmpty(t *testing.T) {
	if !(TokenReport{}).Empty() {
		t.Fatal("zero report should be empty")
	}
	if (TokenReport{NumLines: 3}).Empty() {
		t.Fatal("report with a line count is not empty")
	}
	if (TokenReport{Identifiers: []string{"a"}}).Empty() {
		t.Fatal("report with identifiers is not empty")
	}
}

func TestIndexCounts(t *testing.T) {
	idx := &Index{
		Root: "/proj",
		Scores: map[string]map[string]int{
			"a.ts": {"run": 2, "stop": 0},
			"b.ts": {},
		},
		Callers: map[string]map[string][]string{
			"a.ts": {"run": {"b.ts", "c.ts"}},
			"b.ts": {},
		},
	}

	if got := idx.FileCount(); got != 2 {
		t.Fatalf("FileCount = %d, want 2", got)
	}
	if got := idx.TokenCount(); got != 2 {
		t.Fatalf("TokenCount = %d, want 2", got)
	}
	if got := idx.Score("a.ts", "run"); got != 2 {
		t.Fatalf("Score = %d, want 2", got)
	}
	if got := idx.Score("a.ts", "missing"); got != 0 {
		t.Fatalf("Score for unknown token = %d, want 0", got)
	}
	if got := len(idx.CallersOf("a.ts", "run")); got != 2 {
		t.Fatalf("CallersOf = %d entries, want 2", got)
	}
}

func TestIndexNilSafety(t *testing.T) {
	var idx *Index
	if idx.FileCount() != 0 || idx.TokenCount() != 0 {
		t.Fatal("nil index should count zero")
	}
	if idx.Score("a.ts", "run") != 0 {
		t.Fatal("nil index should score zero")
	}
	if idx.CallersOf("a.ts", "run") != nil {
		t.Fatal("nil index should have no callers")
	}
}
