package main

import (
	"fmt"
	"os"

	"github.com/halvik/cryo/internal/writer"
	"github.com/halvik/cryo/pkg/cryo"
	"github.com/halvik/cryo/pkg/types"
	"github.com/spf13/cobra"
)

var repackCompression string

func init() {
	cmd := newRepackCmd()
	cmd.Flags().
		StringVarP(&repackCompression, "compression", "c", "zstd", "Target compression (none, zstd, s2)")
	rootCmd.AddCommand(cmd)
}

func newRepackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repack <dump> <out>",
		Short: "Rewrap a dump between compression containers",
		Long: `The repack command converts a dump between the raw and compressed file
containers without decoding any values.

Example:
  cryoctl repack world.cryo world.cryz
  cryoctl repack world.cryz world.cryo -c none`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepack(args)
		},
	}
	return cmd
}

func runRepack(args []string) error {
	src, dst := args[0], args[1]
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}
	raw, from, err := cryo.Decode(data)
	if err != nil {
		return err
	}
	printVerbose("Source container: %s (%d bytes)\n", from, len(data))

	enc, err := cryo.Encode(raw, types.Compression(repackCompression))
	if err != nil {
		return err
	}
	fw := &writer.FileWriter{Path: dst}
	if err := fw.WriteDump(enc); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	printInfo("Repacked %s (%s, %d bytes) -> %s (%s, %d bytes)\n",
		src, from, len(data), dst, repackCompression, len(enc))
	return nil
}
