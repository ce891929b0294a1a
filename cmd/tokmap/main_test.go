package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tokmap/internal/ignore"
	"tokmap/internal/tokenindex"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestBuildTokenIndexEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	writeProjectFile(t, tmpDir, "math.ts", "export function add(a: number, b: number): number {\n  return a + b;\n}\n")
	writeProjectFile(t, tmpDir, "app.ts", "import { add } from \"./math\";\n\nexport function run(): number {\n  return add(1, 2);\n}\n")

	idx, paths, err := buildTokenIndex(context.Background(), newAggregator(), tmpDir)
	if err != nil {
		t.Fatalf("buildTokenIndex returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 entries", paths)
	}
	if idx.Score("math.ts", "add") != 1 {
		t.Fatalf("Score(math.ts, add) = %d, want 1", idx.Score("math.ts", "add"))
	}
}

func TestBuildTokenIndexReadsIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeProjectFile(t, tmpDir, ignore.FileName, "skip.ts\n")
	writeProjectFile(t, tmpDir, "keep.ts", "export function keep() {}\n")
	writeProjectFile(t, tmpDir, "skip.ts", "export function hidden() {}\n")

	_, paths, err := buildTokenIndex(context.Background(), newAggregator(), tmpDir)
	if err != nil {
		t.Fatalf("buildTokenIndex returned error: %v", err)
	}
	if len(paths) != 1 || paths[0] != "keep.ts" {
		t.Fatalf("paths = %v, want [keep.ts]", paths)
	}
}

func TestRebuilderReusesUnchangedReports(t *testing.T) {
	tmpDir := t.TempDir()
	writeProjectFile(t, tmpDir, "math.ts", "export function add() {}\n")

	rb, err := newRebuilder(newScanner(tmpDir), tokenindex.New(nil))
	if err != nil {
		t.Fatalf("newRebuilder returned error: %v", err)
	}

	first, fileCount, err := rb.Build(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if fileCount != 1 {
		t.Fatalf("fileCount = %d, want 1", fileCount)
	}
	if _, ok := rb.cache.Get("math.ts"); !ok {
		t.Fatal("expected math.ts report to be cached after a build")
	}

	second, _, err := rb.Build(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("second Build returned error: %v", err)
	}
	if second.Score("math.ts", "add") != first.Score("math.ts", "add") {
		t.Fatal("cached rebuild disagrees with the first build")
	}

	rb.Invalidate([]string{filepath.Join(tmpDir, "math.ts")})
	if _, ok := rb.cache.Get("math.ts"); ok {
		t.Fatal("Invalidate should drop the cached report")
	}

	if _, _, err := rb.Build(context.Background(), tmpDir); err != nil {
		t.Fatalf("Build after Invalidate returned error: %v", err)
	}
}

func TestInvalidateMatchesWholePathSegments(t *testing.T) {
	tmpDir := t.TempDir()
	writeProjectFile(t, tmpDir, "math.ts", "export function add() {}\n")
	writeProjectFile(t, tmpDir, "submath.ts", "export function sub() {}\n")

	rb, err := newRebuilder(newScanner(tmpDir), tokenindex.New(nil))
	if err != nil {
		t.Fatalf("newRebuilder returned error: %v", err)
	}
	if _, _, err := rb.Build(context.Background(), tmpDir); err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	rb.Invalidate([]string{filepath.Join(tmpDir, "submath.ts")})
	if _, ok := rb.cache.Get("submath.ts"); ok {
		t.Fatal("changed file should be evicted")
	}
	if _, ok := rb.cache.Get("math.ts"); !ok {
		t.Fatal("a file whose name is a suffix of the changed one must stay cached")
	}
}

func TestShouldSkipWatchDir(t *testing.T) {
	root := string(filepath.Separator) + "proj"
	cases := []struct {
		path string
		name string
		want bool
	}{
		{root, "proj", false},
		{filepath.Join(root, "src"), "src", false},
		{filepath.Join(root, ".git"), ".git", true},
		{filepath.Join(root, ".cache"), ".cache", true},
		{filepath.Join(root, "node_modules"), "node_modules", true},
		{filepath.Join(root, "vendor"), "vendor", true},
	}
	for _, tc := range cases {
		if got := shouldSkipWatchDir(root, tc.path, tc.name, nil); got != tc.want {
			t.Fatalf("shouldSkipWatchDir(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	matcher := ignore.Parse([]string{"dist/"})
	if !shouldSkipWatchDir(root, filepath.Join(root, "dist"), "dist", matcher) {
		t.Fatal("ignore-matched directory should be skipped")
	}
}

func TestShouldIgnoreWatchPath(t *testing.T) {
	root := string(filepath.Separator) + "proj"
	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "src", "app.ts"), false},
		{filepath.Join(root, ".DS_Store"), true},
		{filepath.Join(root, "src", "app.ts.swp"), true},
		{filepath.Join(root, "src", ".#app.ts"), true},
	}
	for _, tc := range cases {
		if got := shouldIgnoreWatchPath(tc.path, root, nil); got != tc.want {
			t.Fatalf("shouldIgnoreWatchPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	matcher := ignore.Parse([]string{"*.gen.ts"})
	if !shouldIgnoreWatchPath(filepath.Join(root, "api.gen.ts"), root, matcher) {
		t.Fatal("ignore-matched file should be dropped from watch events")
	}
}
