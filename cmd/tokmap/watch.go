package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"tokmap/internal/files"
	"tokmap/internal/ignore"
	"tokmap/internal/model"
	"tokmap/internal/tokenindex"
)

const reportCacheSize = 4096

// rebuilder rebuilds the token index for a target, reusing cached per-file
// reports when a file's size and mtime are unchanged since the last build.
type rebuilder struct {
	scanner    *files.Scanner
	aggregator *tokenindex.Aggregator
	cache      *lru.Cache[string, cachedReport]
}

type cachedReport struct {
	SizeBytes       int64
	ModTimeUnixNano int64
	Report          model.TokenReport
}

func newRebuilder(scanner *files.Scanner, aggregator *tokenindex.Aggregator) (*rebuilder, error) {
	cache, err := lru.New[string, cachedReport](reportCacheSize)
	if err != nil {
		return nil, err
	}
	return &rebuilder{
		scanner:    scanner,
		aggregator: aggregator,
		cache:      cache,
	}, nil
}

// Invalidate drops cached reports for changed absolute paths. Cache keys are
// root-relative, so a key matches only on a whole path-segment suffix. Paths
// that do not map into the cache are ignored; a directory event simply misses.
func (r *rebuilder) Invalidate(changedAbsPaths []string) {
	for _, path := range changedAbsPaths {
		slashPath := filepath.ToSlash(path)
		for _, key := range r.cache.Keys() {
			if slashPath == key || strings.HasSuffix(slashPath, "/"+key) {
				r.cache.Remove(key)
			}
		}
	}
}

func (r *rebuilder) Build(ctx context.Context, target string) (*model.Index, int, error) {
	root, paths, err := r.scanner.Scan(target)
	if err != nil {
		return nil, 0, err
	}

	reports := make(map[string]model.TokenReport, len(paths))
	misses := make([]string, 0, len(paths))
	statByPath := make(map[string]os.FileInfo, len(paths))
	for _, relPath := range paths {
		absPath := filepath.Join(root, filepath.FromSlash(relPath))
		info, statErr := os.Stat(absPath)
		if statErr == nil {
			statByPath[relPath] = info
			if cached, ok := r.cache.Get(relPath); ok &&
				cached.SizeBytes == info.Size() &&
				cached.ModTimeUnixNano == info.ModTime().UnixNano() {
				reports[relPath] = cached.Report
				continue
			}
		}
		misses = append(misses, relPath)
	}

	fresh := r.aggregator.Reports(ctx, misses, files.Provider(root))
	for relPath, report := range fresh {
		reports[relPath] = report
		if info, ok := statByPath[relPath]; ok {
			r.cache.Add(relPath, cachedReport{
				SizeBytes:       info.Size(),
				ModTimeUnixNano: info.ModTime().UnixNano(),
				Report:          report,
			})
		}
	}

	return tokenindex.BuildIndex(root, paths, reports), len(paths), nil
}

func watchWithFSNotify(ctx context.Context, target string, debounce time.Duration, scanner *files.Scanner, onChange func(changedPaths []string)) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	absTarget = filepath.Clean(absTarget)

	root := absTarget
	if info, statErr := os.Stat(absTarget); statErr == nil && !info.IsDir() {
		root = filepath.Dir(absTarget)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	matcher := scanner.Ignore()
	if err := addWatchRecursive(watcher, root, root, matcher); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := false
	pendingPaths := map[string]bool{}

	resetDebounce := func(path string) {
		if path != "" {
			pendingPaths[path] = true
		}
		if pending {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			eventPath := filepath.Clean(event.Name)
			if shouldIgnoreWatchPath(eventPath, root, matcher) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, eventPath, root, matcher)
				}
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Chmod) == 0 {
				continue
			}
			resetDebounce(eventPath)
		case <-timer.C:
			if pending {
				pending = false
				changed := make([]string, 0, len(pendingPaths))
				for path := range pendingPaths {
					changed = append(changed, path)
				}
				sort.Strings(changed)
				pendingPaths = map[string]bool{}
				onChange(changed)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, dir string, projectRoot string, matcher *ignore.Matcher) error {
	dir = filepath.Clean(dir)
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if shouldSkipWatchDir(projectRoot, path, entry.Name(), matcher) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func shouldSkipWatchDir(root, path, name string, matcher *ignore.Matcher) bool {
	if path == root {
		return false
	}

	if name == ".git" || name == ".hg" || name == ".svn" || name == "node_modules" || name == "vendor" {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	if matcher != nil {
		if relPath, err := filepath.Rel(root, path); err == nil {
			if matcher.Match(filepath.ToSlash(relPath), true) {
				return true
			}
		}
	}
	return false
}

func shouldIgnoreWatchPath(path, root string, matcher *ignore.Matcher) bool {
	base := filepath.Base(path)
	if base == ".DS_Store" || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") || strings.HasPrefix(base, ".#") {
		return true
	}
	if matcher != nil {
		if relPath, err := filepath.Rel(root, path); err == nil {
			if matcher.Match(filepath.ToSlash(relPath), false) {
				return true
			}
		}
	}
	return false
}
