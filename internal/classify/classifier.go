// Package classify assigns significance categories to gene records by
// applying adjusted p-value and fold-change thresholds.
package classify

import (
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"

	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// Classify returns the category for a single record under the given
// thresholds. Rules apply in order, first match wins:
//
//  1. adjusted p-value missing or above the cutoff: not significant
//  2. log2 fold change at or above the up cutoff: upregulated
//  3. log2 fold change at or below the down cutoff: downregulated
//  4. otherwise: not significant
//
// Both fold-change comparisons are inclusive, as is the p-value cutoff.
// Crossed cutoffs (down above up) are not rejected here; the rule order
// alone decides.
func Classify(r *deseq.GeneRecord, t Thresholds) Category {
	if math.IsNaN(r.AdjustedPValue) || r.AdjustedPValue > t.PadjCutoff {
		return CategoryNotSignificant
	}
	if r.Log2FoldChange >= t.UpLFCCutoff {
		return CategoryUpregulated
	}
	if r.Log2FoldChange <= t.DownLFCCutoff {
		return CategoryDownregulated
	}
	return CategoryNotSignificant
}

// Classifier classifies gene records under a fixed set of thresholds.
type Classifier struct {
	thresholds Thresholds
	logger     *zap.Logger
}

// New creates a classifier with the given thresholds.
func New(t Thresholds) *Classifier {
	return &Classifier{
		thresholds: t,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and warning messages.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Thresholds returns the cutoffs the classifier applies.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify returns the category for a single record.
func (c *Classifier) Classify(r *deseq.GeneRecord) Category {
	return Classify(r, c.thresholds)
}

// ClassifyAll classifies every record from a parser and hands each record
// with its category to the writer in input order.
// The parser can be any type that implements deseq.RecordParser.
func (c *Classifier) ClassifyAll(parser deseq.RecordParser, writer ResultWriter) error {
	items := make(chan WorkItem, 2*runtime.NumCPU())
	var parseErr error
	recordCount := 0

	go func() {
		defer close(items)
		seq := 0
		for {
			rec, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read record: %w", err)
				return
			}
			if rec == nil {
				return
			}
			recordCount++
			items <- WorkItem{Seq: seq, Record: rec}
			seq++
		}
	}()

	results := c.ParallelClassify(items, 0)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if err := writer.Write(r.Record, r.Category); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}

	if recordCount == 0 {
		c.logger.Info("0 records processed")
	}

	return writer.Flush()
}

// ResultWriter defines the interface for consuming classified records.
type ResultWriter interface {
	WriteHeader() error
	Write(r *deseq.GeneRecord, cat Category) error
	Flush() error
}

// MultiWriter fans classified records out to several writers in order.
type MultiWriter struct {
	writers []ResultWriter
}

// NewMultiWriter creates a writer that duplicates every call to each of
// the given writers.
func NewMultiWriter(writers ...ResultWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteHeader writes the header on every writer.
func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// Write hands the classified record to every writer.
func (m *MultiWriter) Write(r *deseq.GeneRecord, cat Category) error {
	for _, w := range m.writers {
		if err := w.Write(r, cat); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer.
func (m *MultiWriter) Flush() error {
	for _, w := range m.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
