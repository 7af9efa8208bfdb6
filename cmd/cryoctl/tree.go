package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/halvik/cryo/internal/mmfile"
	"github.com/halvik/cryo/internal/scan"
	"github.com/halvik/cryo/pkg/cryo"
	"github.com/spf13/cobra"
)

var (
	treeDepth int
	treeASCII bool
)

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 4, "Maximum depth")
	cmd.Flags().BoolVar(&treeASCII, "ascii", false, "ASCII-only characters")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <dump>",
		Short: "Display the persisted object graph as a tree",
		Long: `The tree command renders the structural scan of a dump as a tree:
every value occurrence with its kind label and reference id. Byte
offsets and lengths are not shown.

Example:
  cryoctl tree world.cryo
  cryoctl tree world.cryo --depth 2 --ascii`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
	return cmd
}

func runTree(args []string) error {
	path := args[0]
	printVerbose("Opening dump: %s\n", path)

	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("failed to open dump: %w", err)
	}
	defer cleanup()
	raw, _, err := cryo.Decode(data)
	if err != nil {
		return err
	}
	res, err := scan.Scan(raw)
	if err != nil {
		return fmt.Errorf("failed to scan dump: %w", err)
	}

	mid, leaf, bar := "├── ", "└── ", "│   "
	if treeASCII {
		mid, leaf, bar = "|-- ", "`-- ", "|   "
	}
	var render func(n *scan.Node, prefix string, last bool, depth int)
	render = func(n *scan.Node, prefix string, last bool, depth int) {
		branch := mid
		if last {
			branch = leaf
		}
		if depth == 0 {
			branch = ""
		}
		line := n.Label
		if n.ID != 0 {
			line += fmt.Sprintf("  #%d", n.ID)
		}
		fmt.Fprintf(os.Stdout, "%s%s%s\n", prefix, branch, line)
		if depth >= treeDepth {
			if len(n.Kids) > 0 {
				fmt.Fprintf(os.Stdout, "%s%s…\n", childPrefix(prefix, branch, bar, depth), leaf)
			}
			return
		}
		cp := childPrefix(prefix, branch, bar, depth)
		for i, k := range n.Kids {
			render(k, cp, i == len(n.Kids)-1, depth+1)
		}
	}
	render(res.Root, "", true, 0)
	return nil
}

func childPrefix(prefix, branch, bar string, depth int) string {
	if depth == 0 {
		return ""
	}
	if strings.HasPrefix(branch, "└") || strings.HasPrefix(branch, "`") {
		return prefix + "    "
	}
	return prefix + bar
}
