package main

import (
	"fmt"

	"github.com/halvik/cryo/pkg/cryo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <dump>",
		Short: "Validate a dump header and report basic metadata",
		Long: `The info command validates a cryo dump file and displays basic
metadata: format version, scalar widths, compression, and sizes.

Example:
  cryoctl info world.cryo
  cryoctl info world.cryo --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	path := args[0]
	printVerbose("Opening dump: %s\n", path)

	info, err := cryo.Info(path)
	if err != nil {
		return fmt.Errorf("failed to get dump info: %w", err)
	}
	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nDump Information:\n")
	printInfo("  Version:      %d\n", info.Version)
	printInfo("  Int width:    %d bytes\n", info.IntWidth)
	printInfo("  Size width:   %d bytes\n", info.SizeWidth)
	printInfo("  Number width: %d bytes\n", info.NumberWidth)
	printInfo("  Compression:  %s\n", info.Compression)
	printInfo("  Payload size: %d bytes\n", info.PayloadSize)
	printInfo("  File size:    %d bytes\n", info.FileSize)
	return nil
}
