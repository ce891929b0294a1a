// Package grammar maps file extensions to tree-sitter language descriptors
// and lazily loads parser/query pairs for them.
package grammar

import (
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Descriptor describes one supported language: the extensions it owns, the
// grammar it parses with, and the capture-query asset name. Descriptors are
// defined once at init and never mutated.
type Descriptor struct {
	Name       string
	GrammarID  string
	Extensions []string
	Language   func() *sitter.Language
}

var descriptors = []*Descriptor{
	{Name: "typescript", GrammarID: "tree-sitter-typescript", Extensions: []string{".ts"}, Language: typescript.GetLanguage},
	{Name: "tsx", GrammarID: "tree-sitter-tsx", Extensions: []string{".tsx"}, Language: tsx.GetLanguage},
	{Name: "javascript", GrammarID: "tree-sitter-javascript", Extensions: []string{".js", ".jsx"}, Language: javascript.GetLanguage},
	{Name: "python", GrammarID: "tree-sitter-python", Extensions: []string{".py"}, Language: python.GetLanguage},
	{Name: "java", GrammarID: "tree-sitter-java", Extensions: []string{".java"}, Language: java.GetLanguage},
	{Name: "csharp", GrammarID: "tree-sitter-c-sharp", Extensions: []string{".cs"}, Language: csharp.GetLanguage},
	{Name: "cpp", GrammarID: "tree-sitter-cpp", Extensions: []string{".cpp", ".hpp"}, Language: cpp.GetLanguage},
	{Name: "rust", GrammarID: "tree-sitter-rust", Extensions: []string{".rs"}, Language: rust.GetLanguage},
	{Name: "ruby", GrammarID: "tree-sitter-ruby", Extensions: []string{".rb"}, Language: ruby.GetLanguage},
	{Name: "go", GrammarID: "tree-sitter-go", Extensions: []string{".go"}, Language: golang.GetLanguage},
}

// Lookup returns the descriptor owning the file's extension, or nil for
// extension-less and unrecognized files. Matching is an exact case-sensitive
// comparison against the final suffix; no two descriptors share an extension,
// so first match by table order wins. Safe for concurrent use.
func Lookup(path string) *Descriptor {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil
	}
	for _, desc := range descriptors {
		for _, candidate := range desc.Extensions {
			if candidate == ext {
				return desc
			}
		}
	}
	return nil
}

// ByGrammarID returns the descriptor registered under the given grammar ID.
func ByGrammarID(grammarID string) *Descriptor {
	for _, desc := range descriptors {
		if desc.GrammarID == grammarID {
			return desc
		}
	}
	return nil
}

// All returns the registered descriptors in table order.
func All() []*Descriptor {
	return append([]*Descriptor(nil), descriptors...)
}
