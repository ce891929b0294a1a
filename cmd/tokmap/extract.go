package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tokmap/internal/extract"
	"tokmap/internal/grammar"
)

func newExtractCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the token report for a single source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			loader := grammar.NewLoader()
			loader.SetGrammarDir(grammarDirFlag)
			extractor := extract.New(loader)

			provider := func(p string) ([]byte, bool) {
				content, err := os.ReadFile(p)
				if err != nil {
					return nil, false
				}
				return content, true
			}

			report := extractor.Extract(cmd.Context(), path, grammar.Lookup(path), provider)

			if jsonOutput {
				return emitJSON(report)
			}
			fmt.Printf("lines: %d\n", report.NumLines)
			fmt.Printf("identifiers (%d): %s\n", len(report.Identifiers), strings.Join(report.Identifiers, ", "))
			fmt.Printf("calls (%d): %s\n", len(report.Calls), strings.Join(report.Calls, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON")
	return cmd
}
