package grammar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/singleflight"
)

// GrammarDirEnv names the only environment variable this package reads: an
// alternate directory searched for capture-query overrides.
const GrammarDirEnv = "TOKMAP_GRAMMAR_DIR"

// Loaded is a ready-to-use parser and compiled capture query for one grammar.
// A Loaded is created at most once per grammar ID and lives for the lifetime
// of its Loader.
type Loaded struct {
	GrammarID string
	Language  *sitter.Language
	Parser    *sitter.Parser
	Query     *sitter.Query

	// Tree-sitter parsers keep mutable per-parse state, so parses on a
	// single Loaded are serialized. Different grammars parse concurrently.
	mu sync.Mutex
}

// Parse parses source text with the grammar's parser.
func (l *Loaded) Parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Parser.ParseCtx(ctx, nil, content)
}

// LoadError reports that a grammar's parser/query pair could not be built.
// Tried lists every query path probed before giving up.
type LoadError struct {
	GrammarID string
	Tried     []string
	Err       error
}

func (e *LoadError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("load grammar %s: %v", e.GrammarID, e.Err)
	}
	return fmt.Sprintf("load grammar %s: %v (tried %s)", e.GrammarID, e.Err, strings.Join(e.Tried, ", "))
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader builds and caches Loaded grammars. The zero value is not usable;
// construct with NewLoader and share one instance per process.
type Loader struct {
	mu          sync.Mutex
	overrideDir string
	cache       map[string]*Loaded
	group       singleflight.Group
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Loaded)}
}

// SetGrammarDir sets the directory searched first for capture-query assets.
// Empty means no override. Takes effect for grammars not yet loaded.
func (ld *Loader) SetGrammarDir(dir string) {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.overrideDir = strings.TrimSpace(dir)
}

func (ld *Loader) GrammarDir() string {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.overrideDir
}

// Load returns the cached Loaded for grammarID, building it on first use.
// Concurrent first loads of the same grammar collapse into a single build.
// Failures are *LoadError and are not cached: a later call retries.
func (ld *Loader) Load(grammarID string) (*Loaded, error) {
	ld.mu.Lock()
	if loaded, ok := ld.cache[grammarID]; ok {
		ld.mu.Unlock()
		return loaded, nil
	}
	overrideDir := ld.overrideDir
	ld.mu.Unlock()

	value, err, _ := ld.group.Do(grammarID, func() (any, error) {
		ld.mu.Lock()
		if loaded, ok := ld.cache[grammarID]; ok {
			ld.mu.Unlock()
			return loaded, nil
		}
		ld.mu.Unlock()

		loaded, err := buildLoaded(grammarID, overrideDir)
		if err != nil {
			return nil, err
		}

		ld.mu.Lock()
		ld.cache[grammarID] = loaded
		ld.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Loaded), nil
}

// ResetCache drops every cached grammar. Test isolation only.
func (ld *Loader) ResetCache() {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.cache = make(map[string]*Loaded)
}

func buildLoaded(grammarID, overrideDir string) (*Loaded, error) {
	desc := ByGrammarID(grammarID)
	if desc == nil {
		return nil, &LoadError{GrammarID: grammarID, Err: fmt.Errorf("grammar is not registered")}
	}

	queryText, tried, err := resolveQuery(desc, overrideDir)
	if err != nil {
		return nil, &LoadError{GrammarID: grammarID, Tried: tried, Err: err}
	}

	language := desc.Language()
	if language == nil {
		return nil, &LoadError{GrammarID: grammarID, Tried: tried, Err: fmt.Errorf("language constructor returned nil")}
	}

	query, err := sitter.NewQuery([]byte(queryText), language)
	if err != nil {
		return nil, &LoadError{GrammarID: grammarID, Tried: tried, Err: fmt.Errorf("compile capture query: %w", err)}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(language)

	return &Loaded{
		GrammarID: grammarID,
		Language:  language,
		Parser:    parser,
		Query:     query,
	}, nil
}

// resolveQuery finds the capture-query text for a descriptor. Search order:
// the loader's override directory, the TOKMAP_GRAMMAR_DIR directory, the
// conventional install-relative directories, then the embedded asset. The
// first existing file wins; a file that exists but cannot be read fails the
// load rather than falling through.
func resolveQuery(desc *Descriptor, overrideDir string) (string, []string, error) {
	dirs := make([]string, 0, 5)
	if overrideDir != "" {
		dirs = append(dirs, overrideDir)
	}
	if envDir := strings.TrimSpace(os.Getenv(GrammarDirEnv)); envDir != "" {
		dirs = append(dirs, envDir)
	}
	dirs = append(dirs, conventionalDirs()...)

	asset := desc.Name + ".scm"
	tried := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		candidate := filepath.Join(dir, asset)
		tried = append(tried, candidate)
		data, err := os.ReadFile(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", tried, err
		}
		return string(data), tried, nil
	}

	text, err := builtinQuery(desc.Name)
	if err != nil {
		return "", tried, fmt.Errorf("no capture query for %s: %w", desc.Name, err)
	}
	return text, tried, nil
}

func conventionalDirs() []string {
	dirs := make([]string, 0, 3)
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs,
			filepath.Join(filepath.Dir(exeDir), "grammars"),
			filepath.Join(exeDir, "grammars"),
		)
	}
	dirs = append(dirs, filepath.Join("build", "grammars"))
	return dirs
}
