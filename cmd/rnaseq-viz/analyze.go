package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
	"github.com/AammarTufail/rnaseq-viz/internal/duckdb"
	"github.com/AammarTufail/rnaseq-viz/internal/output"
	"github.com/AammarTufail/rnaseq-viz/internal/summary"
)

func runAnalyze(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)

	defaults := configThresholds()

	var (
		padjCutoff      float64
		upCutoff        float64
		downCutoff      float64
		delimiterName   string
		outputFormat    string
		outputFile      string
		significantOnly bool
		saveFile        string
	)

	fs.Float64Var(&padjCutoff, "padj", defaults.PadjCutoff, "Adjusted p-value cutoff (significant when padj <= cutoff)")
	fs.Float64Var(&upCutoff, "up-lfc", defaults.UpLFCCutoff, "Upregulation log2 fold change cutoff")
	fs.Float64Var(&downCutoff, "down-lfc", defaults.DownLFCCutoff, "Downregulation log2 fold change cutoff")
	fs.StringVar(&delimiterName, "delimiter", configDelimiter(), "Input delimiter: auto, tab, comma")
	fs.StringVar(&outputFormat, "f", "table", "Output format: table, csv")
	fs.StringVar(&outputFormat, "output-format", "table", "Output format: table, csv")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.BoolVar(&significantOnly, "significant-only", false, "Only write up- and downregulated genes")
	fs.StringVar(&saveFile, "save", "", "Save classified rows to a DuckDB file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Classify genes in a DESeq2 results table.

Every gene is labeled Upregulated, Downregulated or "Not significant" from
its adjusted p-value and log2 fold change. Genes without an adjusted p-value
are never significant.

Usage:
  rnaseq-viz analyze [options] <input-file>

Arguments:
  <input-file>  DESeq2 results table, tab- or comma-separated, optionally
                gzipped (use '-' for stdin)

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  rnaseq-viz analyze results.tsv
  rnaseq-viz analyze --padj 0.01 --up-lfc 2 --down-lfc -2 results.tsv
  rnaseq-viz analyze -f csv -o classified.csv results.csv.gz
  rnaseq-viz analyze --significant-only --save results.duckdb results.tsv
  cat results.tsv | rnaseq-viz analyze -
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: input file argument required\n\n")
		fs.Usage()
		return ExitUsage
	}

	thresholds := classify.Thresholds{
		PadjCutoff:    padjCutoff,
		UpLFCCutoff:   upCutoff,
		DownLFCCutoff: downCutoff,
	}
	if err := thresholds.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	delimiter, err := parseDelimiter(delimiterName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	inputPath := fs.Arg(0)
	parser, err := deseq.NewParser(inputPath, delimiter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
		}
		return ExitError
	}
	defer parser.Close()

	// Create output writer
	var out *os.File
	if outputFile == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	var rowWriter classify.ResultWriter
	switch outputFormat {
	case "table":
		rowWriter = output.NewTableWriter(out)
	case "csv":
		rowWriter = output.NewCSVWriter(out)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", outputFormat)
		return ExitError
	}
	if significantOnly {
		rowWriter = output.NewFilterWriter(rowWriter, summary.ScopeSignificant.Keep)
	}

	// The aggregator rides along with the row output so the summary comes
	// from the same single pass over the input.
	aggregator := summary.NewAggregator(thresholds)
	writer := classify.NewMultiWriter(aggregator, rowWriter)

	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}

	classifier := classify.New(thresholds)
	if err := classifier.ClassifyAll(parser, writer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	if n := parser.UnparsableCells(); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d unparsable numeric cells treated as missing\n", n)
	}

	res := aggregator.Result()
	fmt.Fprintf(os.Stderr, "Classified %d genes: %d upregulated, %d downregulated, %d not significant\n",
		res.Counts.Total, res.Counts.Upregulated, res.Counts.Downregulated, res.Counts.NotSignificant)

	if saveFile != "" {
		store, err := duckdb.Open(saveFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening results store: %v\n", err)
			return ExitError
		}
		defer store.Close()

		if err := store.ReplaceResults(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving results: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Saved %d classified rows to %s\n", res.Counts.Total, saveFile)
	}

	return ExitSuccess
}

// parseDelimiter maps the --delimiter flag to a parser delimiter rune.
// "auto" (or empty) sniffs tab versus comma from the header line.
func parseDelimiter(name string) (rune, error) {
	switch name {
	case "", "auto":
		return 0, nil
	case "tab", "\t":
		return '\t', nil
	case "comma", ",":
		return ',', nil
	default:
		return 0, fmt.Errorf("unknown delimiter %q (want auto, tab or comma)", name)
	}
}
