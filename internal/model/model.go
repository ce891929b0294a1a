// Package model defines the token report and score index types shared by the
// extractor, aggregator, and CLI report builders.
package model

// TokenReport holds the tokens extracted from a single source file.
// Identifiers and Calls keep first-seen capture order with duplicates removed.
type TokenReport struct {
	NumLines    int      `json:"num_lines"`
	Identifiers []string `json:"identifiers,omitempty"`
	Calls       []string `json:"calls,omitempty"`
}

// Empty reports whether the report carries no data. Every per-file failure
// mode (unsupported language, unreadable content, grammar load, parse, query)
// collapses to this one shape.
func (r TokenReport) Empty() bool {
	return r.NumLines == 0 && len(r.Identifiers) == 0 && len(r.Calls) == 0
}

// Index is the cross-file token score index. Scores maps every requested file
// to a score per identifier defined in it; Callers maps a file's identifier to
// the sorted list of other files whose call sites reference it. A token with
// no callers keeps a zero score in Scores and has no Callers entry.
type Index struct {
	Root    string                         `json:"root"`
	Scores  map[string]map[string]int      `json:"token_scores"`
	Callers map[string]map[string][]string `json:"token_callers"`
}

func (idx *Index) FileCount() int {
	if idx == nil {
		return 0
	}
	return len(idx.Scores)
}

func (idx *Index) TokenCount() int {
	if idx == nil {
		return 0
	}

	total := 0
	for _, scores := range idx.Scores {
		total += len(scores)
	}
	return total
}

// Score returns the caller count recorded for token in file, or zero.
func (idx *Index) Score(file, token string) int {
	if idx == nil {
		return 0
	}
	return idx.Scores[file][token]
}

// CallersOf returns the files calling token defined in file. The returned
// slice is the index's own; callers must not mutate it.
func (idx *Index) CallersOf(file, token string) []string {
	if idx == nil {
		return nil
	}
	return idx.Callers[file][token]
}
