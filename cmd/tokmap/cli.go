package main

import (
	"github.com/spf13/cobra"

	"tokmap/internal/extract"
	"tokmap/internal/grammar"
	"tokmap/internal/tokenindex"
)

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

var grammarDirFlag string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tokmap",
		Short:         "Cross-language source-code token index",
		Long:          "tokmap parses project files into symbol and call-site tokens with tree-sitter grammars and ranks them by how many other files call them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&grammarDirFlag, "grammar-dir", "", "directory searched first for capture-query overrides")

	root.AddCommand(
		newIndexCmd(),
		newTopCmd(),
		newCallersCmd(),
		newExtractCmd(),
		newLangsCmd(),
	)
	return root
}

func newAggregator() *tokenindex.Aggregator {
	loader := grammar.NewLoader()
	loader.SetGrammarDir(grammarDirFlag)
	return tokenindex.New(extract.New(loader))
}
