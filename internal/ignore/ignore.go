// Package ignore filters scan paths with gitignore-style patterns read from
// a project's .tokmapignore file.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the per-project ignore file the scanner looks for.
const FileName = ".tokmapignore"

type rule struct {
	glob     string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher evaluates slash-separated root-relative paths against a rule list.
// Later rules win, so a negated rule can re-include an earlier match.
type Matcher struct {
	rules []rule
}

// Load reads rules from an ignore file, one pattern per line.
func Load(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return Parse(lines), nil
}

// Parse builds a Matcher from raw pattern lines. Blank lines and #-comments
// are dropped; "!" negates, a trailing "/" restricts to directories, and a
// leading "/" anchors the pattern to the project root.
func Parse(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		r := rule{}
		if strings.HasPrefix(text, "!") {
			r.negated = true
			text = text[1:]
		}
		if strings.HasSuffix(text, "/") {
			r.dirOnly = true
			text = strings.TrimSuffix(text, "/")
		}
		if strings.HasPrefix(text, "/") {
			r.anchored = true
			text = text[1:]
		}
		if text == "" {
			continue
		}

		r.glob = text
		m.rules = append(m.rules, r)
	}
	return m
}

// Match reports whether path should be skipped. The path must be
// slash-separated and relative to the project root; isDir marks directories.
func (m *Matcher) Match(path string, isDir bool) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}

	path = filepath.ToSlash(path)
	skipped := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.matches(path) {
			skipped = !r.negated
		}
	}
	return skipped
}

func (r rule) matches(path string) bool {
	if r.anchored || strings.Contains(r.glob, "/") {
		matched, _ := filepath.Match(r.glob, path)
		return matched
	}

	// Unanchored patterns without a slash apply to any path component.
	for _, part := range strings.Split(path, "/") {
		if matched, _ := filepath.Match(r.glob, part); matched {
			return true
		}
	}
	return false
}
