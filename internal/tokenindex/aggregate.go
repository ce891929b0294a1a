// Package tokenindex folds per-file token reports into a cross-file score
// index with a who-calls-this map.
package tokenindex

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"tokmap/internal/extract"
	"tokmap/internal/grammar"
	"tokmap/internal/model"
)

// Aggregator drives the token extractor over a file set and ranks the result.
type Aggregator struct {
	extractor *extract.Extractor
}

func New(extractor *extract.Extractor) *Aggregator {
	if extractor == nil {
		extractor = extract.New(grammar.NewLoader())
	}
	return &Aggregator{extractor: extractor}
}

// Aggregate builds the token score index for the given file set. Every
// requested path appears in the output, with an empty entry when its report
// is empty; per-file failures degrade rather than abort, so Aggregate itself
// never fails. Output is deterministic for a fixed input.
func (a *Aggregator) Aggregate(ctx context.Context, root string, paths []string, provider extract.SourceProvider) *model.Index {
	return BuildIndex(root, paths, a.Reports(ctx, paths, provider))
}

// Reports extracts a token report per path. Extraction runs on a bounded
// worker pool; parses for one grammar are serialized by the loaded grammar
// itself, so workers only overlap across languages.
func (a *Aggregator) Reports(ctx context.Context, paths []string, provider extract.SourceProvider) map[string]model.TokenReport {
	reports := make(map[string]model.TokenReport, len(paths))
	if len(paths) == 0 {
		return reports
	}

	ordered := uniquePaths(paths)
	results := make([]model.TokenReport, len(ordered))
	workers := workerCount(len(ordered))

	taskCh := make(chan int, len(ordered))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				path := ordered[idx]
				results[idx] = a.extractor.Extract(ctx, path, grammar.Lookup(path), provider)
			}
		}()
	}

	for i := range ordered {
		taskCh <- i
	}
	close(taskCh)
	wg.Wait()

	for i, path := range ordered {
		reports[path] = results[i]
	}
	return reports
}

// BuildIndex computes scores and caller lists from finished reports. A token
// scores the number of distinct other files whose call sites name it; a file
// is never its own caller, and zero-score identifiers stay in the score map.
func BuildIndex(root string, paths []string, reports map[string]model.TokenReport) *model.Index {
	index := &model.Index{
		Root:    root,
		Scores:  make(map[string]map[string]int, len(paths)),
		Callers: make(map[string]map[string][]string, len(paths)),
	}

	ordered := uniquePaths(paths)

	// Caller lists come out sorted and distinct because files are visited
	// in path order and each file's calls are already deduplicated.
	sortedPaths := append([]string(nil), ordered...)
	sort.Strings(sortedPaths)
	callersByToken := map[string][]string{}
	for _, path := range sortedPaths {
		for _, token := range reports[path].Calls {
			list := callersByToken[token]
			if n := len(list); n > 0 && list[n-1] == path {
				continue
			}
			callersByToken[token] = append(list, path)
		}
	}

	for _, path := range ordered {
		report := reports[path]
		scores := make(map[string]int, len(report.Identifiers))
		callers := make(map[string][]string, len(report.Identifiers))
		for _, token := range report.Identifiers {
			var others []string
			for _, caller := range callersByToken[token] {
				if caller == path {
					continue
				}
				others = append(others, caller)
			}
			scores[token] = len(others)
			if len(others) > 0 {
				callers[token] = others
			}
		}
		index.Scores[path] = scores
		index.Callers[path] = callers
	}

	return index
}

func uniquePaths(paths []string) []string {
	ordered := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if _, exists := seen[path]; exists {
			continue
		}
		seen[path] = struct{}{}
		ordered = append(ordered, path)
	}
	return ordered
}

func workerCount(taskCount int) int {
	if taskCount <= 0 {
		return 0
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > taskCount {
		workers = taskCount
	}
	return workers
}
