package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokmap/internal/rank"
)

func newCallersCmd() *cobra.Command {
	var file string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "callers <token> [path]",
		Short: "List the files calling a defined token",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			target := "."
			if len(args) == 2 {
				target = args[1]
			}

			idx, _, err := buildTokenIndex(cmd.Context(), newAggregator(), target)
			if err != nil {
				return err
			}

			report, err := rank.Callers(idx, rank.CallersOptions{Token: token, File: file})
			if err != nil {
				return err
			}

			if len(report.Definitions) == 0 {
				return exitCodeError{code: 2, err: fmt.Errorf("token %q is not defined in any indexed file", token)}
			}
			if jsonOutput {
				return emitJSON(report)
			}
			for _, definition := range report.Definitions {
				fmt.Printf("%s (score %d)\n", definition.File, definition.Score)
				for _, caller := range definition.Callers {
					fmt.Printf("  <- %s\n", caller)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "restrict to the definition in one file (root-relative)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON")
	return cmd
}
