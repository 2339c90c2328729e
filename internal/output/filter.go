package output

import (
	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// FilterWriter forwards only records whose category passes keep, so a
// streaming classification run can emit a filtered view while a full
// aggregation runs alongside it.
type FilterWriter struct {
	inner classify.ResultWriter
	keep  func(classify.Category) bool
}

// NewFilterWriter wraps a writer with a category predicate.
func NewFilterWriter(inner classify.ResultWriter, keep func(classify.Category) bool) *FilterWriter {
	return &FilterWriter{inner: inner, keep: keep}
}

// WriteHeader writes the inner writer's header.
func (f *FilterWriter) WriteHeader() error {
	return f.inner.WriteHeader()
}

// Write forwards the record when its category passes the predicate.
func (f *FilterWriter) Write(r *deseq.GeneRecord, cat classify.Category) error {
	if !f.keep(cat) {
		return nil
	}
	return f.inner.Write(r, cat)
}

// Flush flushes the inner writer.
func (f *FilterWriter) Flush() error {
	return f.inner.Flush()
}
