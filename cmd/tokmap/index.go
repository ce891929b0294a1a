package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var jsonOutput bool
	var watch bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build the cross-file token index for a project tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debounce <= 0 {
				return fmt.Errorf("debounce must be > 0")
			}

			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			aggregator := newAggregator()

			if !watch {
				idx, paths, err := buildTokenIndex(cmd.Context(), aggregator, target)
				if err != nil {
					return err
				}
				if jsonOutput {
					return emitJSON(idx)
				}
				printIndexSummary(idx, len(paths))
				return nil
			}

			rebuilder, err := newRebuilder(newScanner(target), aggregator)
			if err != nil {
				return err
			}

			idx, fileCount, err := rebuilder.Build(cmd.Context(), target)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := emitJSON(idx); err != nil {
					return err
				}
			} else {
				printIndexSummary(idx, fileCount)
			}

			fmt.Printf("watching: target=%s debounce=%s\n", target, debounce)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			onChange := func(changed []string) {
				rebuilder.Invalidate(changed)
				next, nextCount, buildErr := rebuilder.Build(ctx, target)
				if buildErr != nil {
					fmt.Fprintf(os.Stderr, "watch build error: %v\n", buildErr)
					return
				}
				if jsonOutput {
					if err := emitJSON(next); err != nil {
						fmt.Fprintf(os.Stderr, "watch json error: %v\n", err)
					}
					return
				}
				printIndexSummary(next, nextCount)
			}

			if err := watchWithFSNotify(ctx, target, debounce, rebuilder.scanner, onChange); err != nil {
				return err
			}
			fmt.Println("watch: stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the full index as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild the index on file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "quiet period before a watch rebuild")
	return cmd
}
