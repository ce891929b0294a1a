// Package rank builds reader-facing reports over a token score index: the
// highest-scored tokens across the file set, and the callers of one token.
package rank

import (
	"fmt"
	"sort"
	"strings"

	"tokmap/internal/model"
)

type Options struct {
	File     string
	MinScore int
	Top      int
}

type TokenEntry struct {
	File    string   `json:"file"`
	Token   string   `json:"token"`
	Score   int      `json:"score"`
	Callers []string `json:"callers,omitempty"`
}

type Report struct {
	Root        string       `json:"root"`
	TotalTokens int          `json:"total_tokens"`
	ShownTokens int          `json:"shown_tokens"`
	Entries     []TokenEntry `json:"entries,omitempty"`
}

// TopTokens ranks every scored token, highest caller count first, ties broken
// by file then token so repeated runs agree byte for byte.
func TopTokens(idx *model.Index, opts Options) (Report, error) {
	if idx == nil {
		return Report{}, fmt.Errorf("index is nil")
	}
	if opts.MinScore < 0 {
		opts.MinScore = 0
	}
	if opts.Top <= 0 {
		opts.Top = 50
	}
	fileFilter := strings.TrimSpace(opts.File)

	entries := make([]TokenEntry, 0, 64)
	total := 0
	for file, scores := range idx.Scores {
		total += len(scores)
		if fileFilter != "" && file != fileFilter {
			continue
		}
		for token, score := range scores {
			if score < opts.MinScore {
				continue
			}
			entries = append(entries, TokenEntry{
				File:    file,
				Token:   token,
				Score:   score,
				Callers: idx.CallersOf(file, token),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].File != entries[j].File {
			return entries[i].File < entries[j].File
		}
		return entries[i].Token < entries[j].Token
	})

	if opts.Top < len(entries) {
		entries = entries[:opts.Top]
	}

	return Report{
		Root:        idx.Root,
		TotalTokens: total,
		ShownTokens: len(entries),
		Entries:     entries,
	}, nil
}

type CallersOptions struct {
	Token string
	File  string
}

type CallersReport struct {
	Root        string       `json:"root"`
	Token       string       `json:"token"`
	Definitions []TokenEntry `json:"definitions,omitempty"`
}

// Callers lists every file defining the named token together with the files
// calling it, zero-caller definitions included.
func Callers(idx *model.Index, opts CallersOptions) (CallersReport, error) {
	if idx == nil {
		return CallersReport{}, fmt.Errorf("index is nil")
	}
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return CallersReport{}, fmt.Errorf("token is required")
	}
	fileFilter := strings.TrimSpace(opts.File)

	definingFiles := make([]string, 0, 8)
	for file, scores := range idx.Scores {
		if fileFilter != "" && file != fileFilter {
			continue
		}
		if _, defined := scores[token]; defined {
			definingFiles = append(definingFiles, file)
		}
	}
	sort.Strings(definingFiles)

	report := CallersReport{Root: idx.Root, Token: token}
	for _, file := range definingFiles {
		report.Definitions = append(report.Definitions, TokenEntry{
			File:    file,
			Token:   token,
			Score:   idx.Score(file, token),
			Callers: idx.CallersOf(file, token),
		})
	}
	return report, nil
}
