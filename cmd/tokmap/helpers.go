package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tokmap/internal/files"
	"tokmap/internal/ignore"
	"tokmap/internal/model"
	"tokmap/internal/tokenindex"
)

func emitJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newScanner(target string) *files.Scanner {
	scanner := files.NewScanner()
	if matcher := loadIgnoreMatcher(target); matcher != nil {
		scanner.SetIgnore(matcher)
	}
	return scanner
}

func loadIgnoreMatcher(target string) *ignore.Matcher {
	base := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		base = filepath.Dir(target)
	}
	matcher, err := ignore.Load(filepath.Join(base, ignore.FileName))
	if err != nil {
		return nil
	}
	return matcher
}

func buildTokenIndex(ctx context.Context, aggregator *tokenindex.Aggregator, target string) (*model.Index, []string, error) {
	root, paths, err := newScanner(target).Scan(target)
	if err != nil {
		return nil, nil, err
	}
	idx := aggregator.Aggregate(ctx, root, paths, files.Provider(root))
	return idx, paths, nil
}

func printIndexSummary(idx *model.Index, fileCount int) {
	scored := 0
	for _, scores := range idx.Scores {
		for _, score := range scores {
			if score > 0 {
				scored++
			}
		}
	}
	fmt.Printf("indexed: files=%d tokens=%d cross-file=%d root=%s\n",
		fileCount, idx.TokenCount(), scored, idx.Root)
}
