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

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	defaults := configThresholds()

	var (
		category      string
		padjCutoff    float64
		upCutoff      float64
		downCutoff    float64
		delimiterName string
		outputFile    string
		fromDB        string
	)

	fs.StringVar(&category, "category", "significant", "Genes to export: all, up, down, significant")
	fs.Float64Var(&padjCutoff, "padj", defaults.PadjCutoff, "Adjusted p-value cutoff (significant when padj <= cutoff)")
	fs.Float64Var(&upCutoff, "up-lfc", defaults.UpLFCCutoff, "Upregulation log2 fold change cutoff")
	fs.Float64Var(&downCutoff, "down-lfc", defaults.DownLFCCutoff, "Downregulation log2 fold change cutoff")
	fs.StringVar(&delimiterName, "delimiter", configDelimiter(), "Input delimiter: auto, tab, comma")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&fromDB, "from-db", "", "Read a saved DuckDB results store instead of a results table")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Export classified genes as CSV.

Columns: identifier, geneName, locusTag, log2FoldChange, adjustedPValue,
Category. Missing values serialize as NA.

Usage:
  rnaseq-viz export [options] <input-file>
  rnaseq-viz export --from-db <results.duckdb> [options]

Arguments:
  <input-file>  DESeq2 results table (use '-' for stdin); omitted with --from-db

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  rnaseq-viz export results.tsv > significant.csv
  rnaseq-viz export --category up -o upregulated.csv results.tsv
  rnaseq-viz export --category all --padj 0.01 results.tsv
  rnaseq-viz export --from-db results.duckdb --category down
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	scope, err := summary.ParseScope(category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

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
	csvWriter := output.NewCSVWriter(out)

	if fromDB != "" {
		if fs.NArg() > 0 {
			fmt.Fprintf(os.Stderr, "Error: cannot combine --from-db with an input file\n\n")
			fs.Usage()
			return ExitUsage
		}
		return exportFromStore(fromDB, scope, csvWriter)
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

	parser, err := deseq.NewParser(fs.Arg(0), delimiter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
		}
		return ExitError
	}
	defer parser.Close()

	aggregator := summary.NewAggregator(thresholds)
	writer := classify.NewMultiWriter(aggregator,
		output.NewFilterWriter(csvWriter, scope.Keep))

	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}

	classifier := classify.New(thresholds)
	if err := classifier.ClassifyAll(parser, writer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	res := aggregator.Result()
	fmt.Fprintf(os.Stderr, "Classified %d genes: %d upregulated, %d downregulated, %d not significant\n",
		res.Counts.Total, res.Counts.Upregulated, res.Counts.Downregulated, res.Counts.NotSignificant)

	return ExitSuccess
}

// exportFromStore writes the rows of a previously saved results store,
// skipping reclassification entirely.
func exportFromStore(path string, scope summary.Scope, w *output.CSVWriter) int {
	store, err := duckdb.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results store: %v\n", err)
		return ExitError
	}
	defer store.Close()

	counts, err := store.CategoryCounts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading results store: %v\n", err)
		return ExitError
	}

	rows, err := store.ExportRows(scope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading results store: %v\n", err)
		return ExitError
	}

	if err := w.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}
	for _, row := range rows {
		if err := w.Write(row.Record(), row.Category); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing row: %v\n", err)
			return ExitError
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Exported %d of %d stored genes (%d upregulated, %d downregulated)\n",
		len(rows), counts.Total, counts.Upregulated, counts.Downregulated)

	return ExitSuccess
}
