package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tokmap/internal/grammar"
)

func newLangsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "langs",
		Short: "List supported languages and their extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type langInfo struct {
				Name       string   `json:"name"`
				GrammarID  string   `json:"grammar_id"`
				Extensions []string `json:"extensions"`
			}

			infos := make([]langInfo, 0, 16)
			for _, desc := range grammar.All() {
				infos = append(infos, langInfo{
					Name:       desc.Name,
					GrammarID:  desc.GrammarID,
					Extensions: desc.Extensions,
				})
			}

			if jsonOutput {
				return emitJSON(infos)
			}
			for _, info := range infos {
				fmt.Printf("%-12s %-24s %s\n", info.Name, info.GrammarID, strings.Join(info.Extensions, " "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the list as JSON")
	return cmd
}
