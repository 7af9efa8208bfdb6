package main

import (
	"fmt"

	"github.com/halvik/cryo/pkg/cryo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <dump>",
		Short: "Tally per-kind counts and byte shares",
		Long: `The stats command scans a dump and reports, per value kind, how many
occurrences the stream holds and how many bytes they occupy.

Example:
  cryoctl stats world.cryo
  cryoctl stats world.cryo --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	path := args[0]
	printVerbose("Opening dump: %s\n", path)

	stats, err := cryo.Stats(path)
	if err != nil {
		return fmt.Errorf("failed to scan dump: %w", err)
	}
	if jsonOut {
		return printJSON(stats)
	}

	printInfo("\n%-12s %8s %10s\n", "KIND", "COUNT", "BYTES")
	for _, st := range stats {
		printInfo("%-12s %8d %10d\n", st.Kind, st.Count, st.Bytes)
	}
	return nil
}
