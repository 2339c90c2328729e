// Package main provides the rnaseq-viz command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	// Parse global flags first
	flag.Parse()

	if showVersion {
		fmt.Printf("rnaseq-viz version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	// Check for subcommand
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(args[1:])
	case "export":
		return runExport(args[1:])
	case "serve":
		return runServe(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `rnaseq-viz - DESeq2 differential expression explorer

Usage:
  rnaseq-viz [options] <command> [arguments]

Commands:
  analyze     Classify genes in a DESeq2 results table
  export      Export classified genes as CSV
  serve       Serve result tables over an HTTP API
  config      Manage rnaseq-viz configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Classify a results table with the default thresholds
  rnaseq-viz analyze results.tsv

  # Tighter significance cutoff, CSV output
  rnaseq-viz analyze --padj 0.01 -f csv -o classified.csv results.tsv

  # Keep the classified rows in a DuckDB file
  rnaseq-viz analyze --save results.duckdb results.tsv

  # Export only the significant genes
  rnaseq-viz export --category significant results.tsv

  # Serve the HTTP API
  rnaseq-viz serve --addr :8080

For more information on a command, use:
  rnaseq-viz <command> --help
`)
}
