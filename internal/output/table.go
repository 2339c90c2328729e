// Package output provides classified result formatters.
package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// TableWriter writes classified records in tab-delimited form for terminal
// display and piping.
type TableWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTableWriter creates a new tab-delimited writer.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#identifier",
			"geneName",
			"locusTag",
			"log2FoldChange",
			"padj",
			"negLog10Padj",
			"category",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TableWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single classified record.
func (tw *TableWriter) Write(r *deseq.GeneRecord, cat classify.Category) error {
	geneName := r.GeneName
	if geneName == "" {
		geneName = "-"
	}

	locusTag := r.LocusTag
	if locusTag == "" {
		locusTag = "-"
	}

	values := []string{
		r.Identifier,
		geneName,
		locusTag,
		formatFloat(r.Log2FoldChange),
		formatFloat(r.AdjustedPValue),
		formatFloat(r.NegLog10Padj()),
		string(cat),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TableWriter) Flush() error {
	return tw.w.Flush()
}

// formatFloat renders a float for output; missing values become NA.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
