// Package files discovers the source files under a project root that the
// grammar registry can parse, and provides their content to the aggregator.
package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tokmap/internal/extract"
	"tokmap/internal/grammar"
	"tokmap/internal/ignore"
)

// Scanner walks a project tree collecting candidate source files. VCS
// metadata, vendor trees, and hidden directories are always skipped; an
// optional ignore matcher prunes further.
type Scanner struct {
	ignore *ignore.Matcher
}

func NewScanner() *Scanner {
	return &Scanner{}
}

// SetIgnore configures a .tokmapignore-style matcher applied during Scan.
func (s *Scanner) SetIgnore(m *ignore.Matcher) {
	s.ignore = m
}

// Ignore returns the configured matcher, or nil when none is set.
func (s *Scanner) Ignore() *ignore.Matcher {
	return s.ignore
}

// Scan resolves target to a project root and returns the recognized source
// files as sorted, slash-separated paths relative to that root. A file
// target yields its own directory as root and at most one path.
func (s *Scanner) Scan(target string) (string, []string, error) {
	if strings.TrimSpace(target) == "" {
		target = "."
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", nil, err
	}
	absTarget = filepath.Clean(absTarget)

	info, err := os.Stat(absTarget)
	if err != nil {
		return "", nil, err
	}

	if !info.IsDir() {
		root := filepath.Dir(absTarget)
		if grammar.Lookup(absTarget) == nil {
			return root, nil, nil
		}
		return root, []string{filepath.Base(absTarget)}, nil
	}

	paths, err := s.collect(absTarget)
	if err != nil {
		return "", nil, err
	}
	return absTarget, paths, nil
}

func (s *Scanner) collect(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is empty")
	}

	paths := make([]string, 0, 128)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if path == root {
				return nil
			}
			name := entry.Name()
			if name == ".git" || name == ".hg" || name == ".svn" || name == "node_modules" || name == "vendor" {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.ignore != nil && s.ignore.Match(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.ignore != nil && s.ignore.Match(relPath, false) {
			return nil
		}
		if grammar.Lookup(path) == nil {
			return nil
		}
		paths = append(paths, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Provider returns a SourceProvider that reads root-relative paths from disk.
// Unreadable files report as unavailable rather than failing the caller.
func Provider(root string) extract.SourceProvider {
	return func(path string) ([]byte, bool) {
		full := path
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, filepath.FromSlash(path))
		}
		content, err := os.ReadFile(full)
		if err != nil {
			return nil, false
		}
		return content, true
	}
}
