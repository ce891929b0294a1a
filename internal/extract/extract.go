// Package extract turns a single source file into a deduplicated token
// report by running its language's capture query over the parsed tree.
package extract

import (
	"bytes"
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"tokmap/internal/grammar"
	"tokmap/internal/model"
)

// SourceProvider resolves a file path to its content. Returning ok=false
// means the content is unavailable; the file then reports no tokens.
type SourceProvider func(path string) ([]byte, bool)

// Extractor produces token reports using grammars from a shared loader.
type Extractor struct {
	loader *grammar.Loader
}

func New(loader *grammar.Loader) *Extractor {
	if loader == nil {
		loader = grammar.NewLoader()
	}
	return &Extractor{loader: loader}
}

// Loader exposes the extractor's grammar loader.
func (e *Extractor) Loader() *grammar.Loader {
	return e.loader
}

// Extract builds the token report for one file. A registry miss, unavailable
// content, grammar load failure, or parse failure all degrade to the same
// empty report; one broken language never aborts processing of other files.
func (e *Extractor) Extract(ctx context.Context, path string, desc *grammar.Descriptor, provider SourceProvider) model.TokenReport {
	if desc == nil || provider == nil {
		return model.TokenReport{}
	}

	content, ok := provider(path)
	if !ok {
		return model.TokenReport{}
	}

	loaded, err := e.loader.Load(desc.GrammarID)
	if err != nil {
		return model.TokenReport{}
	}

	tree, err := loaded.Parse(ctx, content)
	if err != nil || tree == nil {
		return model.TokenReport{}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return model.TokenReport{}
	}

	report := model.TokenReport{NumLines: countLines(content)}
	seenIdentifiers := map[string]struct{}{}
	seenCalls := map[string]struct{}{}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(loaded.Query, root)

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, content)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			text := strings.TrimSpace(capture.Node.Content(content))
			if text == "" {
				continue
			}

			// Queries may tag extra node kinds; only the two known
			// capture names contribute tokens.
			switch loaded.Query.CaptureNameForId(capture.Index) {
			case "identifier":
				if _, exists := seenIdentifiers[text]; exists {
					continue
				}
				seenIdentifiers[text] = struct{}{}
				report.Identifiers = append(report.Identifiers, text)
			case "call.identifier":
				if _, exists := seenCalls[text]; exists {
					continue
				}
				seenCalls[text] = struct{}{}
				report.Calls = append(report.Calls, text)
			}
		}
	}

	return report
}

// countLines counts newline characters plus one, so content without a
// trailing newline still counts its last line.
func countLines(content []byte) int {
	return bytes.Count(content, []byte("\n")) + 1
}
