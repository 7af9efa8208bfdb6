package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	switch args[0] {
	case "--help", "-h":
		printHelp()
		os.Exit(0)
	case "--version", "-v":
		fmt.Printf("cryoexplorer %s\n", version)
		os.Exit(0)
	}

	dumpPath := args[0]
	if _, err := os.Stat(dumpPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: dump file not found: %s\n", dumpPath)
		os.Exit(1)
	}

	m, err := NewModel(dumpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: cryoexplorer <dump-file>\n")
	fmt.Fprintf(os.Stderr, "Try 'cryoexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("cryoexplorer - Interactive browser for cryo dump files")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  cryoexplorer <dump-file>")
	fmt.Println()
	fmt.Println("KEYS:")
	fmt.Println("  up/k, down/j   move cursor")
	fmt.Println("  enter/space    expand or collapse the selected node")
	fmt.Println("  g / G          jump to top / bottom")
	fmt.Println("  q              quit")
}
