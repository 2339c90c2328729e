package output

import (
	"encoding/csv"
	"io"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// ExportColumns is the fixed CSV export header.
var ExportColumns = []string{
	"identifier",
	"geneName",
	"locusTag",
	"log2FoldChange",
	"adjustedPValue",
	"Category",
}

// CSVWriter writes classified records as CSV in the export column layout.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a new CSV export writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the export header row.
func (cw *CSVWriter) WriteHeader() error {
	return cw.w.Write(ExportColumns)
}

// Write writes a single classified record.
func (cw *CSVWriter) Write(r *deseq.GeneRecord, cat classify.Category) error {
	return cw.w.Write([]string{
		r.Identifier,
		r.GeneName,
		r.LocusTag,
		formatFloat(r.Log2FoldChange),
		formatFloat(r.AdjustedPValue),
		string(cat),
	})
}

// Flush flushes buffered rows and reports any write error.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
