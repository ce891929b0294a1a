package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokmap/internal/rank"
)

func newTopCmd() *cobra.Command {
	var file string
	var minScore int
	var top int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "top [path]",
		Short: "Rank indexed tokens by distinct cross-file callers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			idx, _, err := buildTokenIndex(cmd.Context(), newAggregator(), target)
			if err != nil {
				return err
			}

			report, err := rank.TopTokens(idx, rank.Options{
				File:     file,
				MinScore: minScore,
				Top:      top,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return emitJSON(report)
			}
			for _, entry := range report.Entries {
				fmt.Printf("%4d  %-30s %s\n", entry.Score, entry.Token, entry.File)
			}
			fmt.Printf("shown %d of %d tokens\n", report.ShownTokens, report.TotalTokens)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "restrict to tokens defined in one file (root-relative)")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "hide tokens below this caller count")
	cmd.Flags().IntVar(&top, "top", 50, "maximum tokens to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON")
	return cmd
}
