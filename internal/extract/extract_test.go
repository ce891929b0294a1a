package extract

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tokmap/internal/grammar"
)

func writeBrokenQuery(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("((("), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func mapProvider(files map[string]string) SourceProvider {
	return func(path string) ([]byte, bool) {
		content, ok := files[path]
		if !ok {
			return nil, false
		}
		return []byte(content), true
	}
}

func TestExtractGoSource(t *testing.T) {
	source := `package demo

func Add(a, b int) int {
	return a + b
}

func Double(n int) int {
	return Add(n, n)
}

type Pair struct {
	Left  int
	Right int
}
`
	extractor := New(nil)
	provider := mapProvider(map[string]string{"demo.go": source})

	report := extractor.Extract(context.Background(), "demo.go", grammar.Lookup("demo.go"), provider)

	if report.NumLines != 15 {
		t.Fatalf("NumLines = %d, want 15", report.NumLines)
	}
	wantIdents := []string{"Add", "Double", "Pair"}
	if !reflect.DeepEqual(report.Identifiers, wantIdents) {
		t.Fatalf("Identifiers = %v, want %v", report.Identifiers, wantIdents)
	}
	wantCalls := []string{"Add"}
	if !reflect.DeepEqual(report.Calls, wantCalls) {
		t.Fatalf("Calls = %v, want %v", report.Calls, wantCalls)
	}
}

func TestExtractTypeScriptSource(t *testing.T) {
	source := `export function add(a: number, b: number): number {
  return a + b;
}

export function run(): number {
  return add(add(1, 2), 3);
}
`
	extractor := New(nil)
	provider := mapProvider(map[string]string{"math.ts": source})

	report := extractor.Extract(context.Background(), "math.ts", grammar.Lookup("math.ts"), provider)

	wantIdents := []string{"add", "run"}
	if !reflect.DeepEqual(report.Identifiers, wantIdents) {
		t.Fatalf("Identifiers = %v, want %v", report.Identifiers, wantIdents)
	}
	// Both call sites name add; the report keeps one entry.
	wantCalls := []string{"add"}
	if !reflect.DeepEqual(report.Calls, wantCalls) {
		t.Fatalf("Calls = %v, want %v", report.Calls, wantCalls)
	}
}

func TestExtractPythonSource(t *testing.T) {
	source := `def greet(name):
    return "hi " + name


class Greeter:
    def run(self):
        return greet("world")
`
	extractor := New(nil)
	provider := mapProvider(map[string]string{"app.py": source})

	report := extractor.Extract(context.Background(), "app.py", grammar.Lookup("app.py"), provider)

	wantIdents := []string{"greet", "Greeter", "run"}
	if !reflect.DeepEqual(report.Identifiers, wantIdents) {
		t.Fatalf("Identifiers = %v, want %v", report.Identifiers, wantIdents)
	}
	wantCalls := []string{"greet"}
	if !reflect.DeepEqual(report.Calls, wantCalls) {
		t.Fatalf("Calls = %v, want %v", report.Calls, wantCalls)
	}
}

func TestExtractMissingContent(t *testing.T) {
	extractor := New(nil)
	provider := mapProvider(map[string]string{})

	report := extractor.Extract(context.Background(), "gone.go", grammar.Lookup("gone.go"), provider)
	if !report.Empty() {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestExtractNilDescriptorSkipsProvider(t *testing.T) {
	extractor := New(nil)
	providerCalled := false
	provider := func(path string) ([]byte, bool) {
		providerCalled = true
		return nil, false
	}

	report := extractor.Extract(context.Background(), "notes.txt", grammar.Lookup("notes.txt"), provider)
	if !report.Empty() {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if providerCalled {
		t.Fatal("provider should not run for unsupported files")
	}
}

func TestExtractNilProvider(t *testing.T) {
	extractor := New(nil)
	report := extractor.Extract(context.Background(), "demo.go", grammar.Lookup("demo.go"), nil)
	if !report.Empty() {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	extractor := New(nil)
	provider := mapProvider(map[string]string{"empty.go": ""})

	report := extractor.Extract(context.Background(), "empty.go", grammar.Lookup("empty.go"), provider)
	if report.NumLines != 1 {
		t.Fatalf("NumLines = %d, want 1", report.NumLines)
	}
	if len(report.Identifiers) != 0 || len(report.Calls) != 0 {
		t.Fatalf("expected no tokens, got %+v", report)
	}
}

func TestExtractNoTrailingNewline(t *testing.T) {
	extractor := New(nil)
	provider := mapProvider(map[string]string{"one.go": "package demo"})

	report := extractor.Extract(context.Background(), "one.go", grammar.Lookup("one.go"), provider)
	if report.NumLines != 1 {
		t.Fatalf("NumLines = %d, want 1", report.NumLines)
	}
}

func TestExtractGrammarLoadFailure(t *testing.T) {
	tmpDir := t.TempDir()
	loader := grammar.NewLoader()
	loader.SetGrammarDir(tmpDir)

	// A broken override query fails the load before the embedded fallback
	// is considered.
	writeBrokenQuery(t, tmpDir, "rust.scm")

	extractor := New(loader)
	provider := mapProvider(map[string]string{"lib.rs": "fn main() {}"})

	report := extractor.Extract(context.Background(), "lib.rs", grammar.Lookup("lib.rs"), provider)
	if !report.Empty() {
		t.Fatalf("expected empty report on load failure, got %+v", report)
	}
}
