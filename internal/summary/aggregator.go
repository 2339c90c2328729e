// Package summary aggregates classified gene records into counts, ordered
// subsets, and plot-ready series.
package summary

import (
	"runtime"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// Aggregator accumulates classified records in input order. It implements
// classify.ResultWriter so it can sit directly behind ClassifyAll, alone or
// fanned out next to an output writer.
type Aggregator struct {
	thresholds classify.Thresholds
	records    []*deseq.GeneRecord
	categories []classify.Category
}

// NewAggregator creates an empty aggregator. Aggregators are single-use:
// one per classification run, never reused across threshold changes.
func NewAggregator(t classify.Thresholds) *Aggregator {
	return &Aggregator{thresholds: t}
}

// WriteHeader is a no-op; the aggregator has no output stream.
func (a *Aggregator) WriteHeader() error {
	return nil
}

// Write records one classified gene.
func (a *Aggregator) Write(r *deseq.GeneRecord, cat classify.Category) error {
	a.records = append(a.records, r)
	a.categories = append(a.categories, cat)
	return nil
}

// Flush is a no-op; the aggregator has no output stream.
func (a *Aggregator) Flush() error {
	return nil
}

// Result builds the summary from everything written so far.
func (a *Aggregator) Result() *Result {
	return newResult(a.thresholds, a.records, a.categories)
}

// Compute classifies an entire dataset and aggregates the outcome.
// Every call is an independent from-scratch computation; recomputing with
// different thresholds never reuses prior state.
func Compute(ds *deseq.Dataset, t classify.Thresholds) *Result {
	c := classify.New(t)
	agg := NewAggregator(t)

	items := make(chan classify.WorkItem, 2*runtime.NumCPU())
	go func() {
		defer close(items)
		for i, rec := range ds.Records {
			items <- classify.WorkItem{Seq: i, Record: rec}
		}
	}()

	results := c.ParallelClassify(items, 0)

	// Aggregator writes never fail, so collection cannot error.
	_ = classify.OrderedCollect(results, func(r classify.WorkResult) error {
		return agg.Write(r.Record, r.Category)
	})

	res := agg.Result()
	res.CountColumns = ds.CountColumns
	res.HasBaseMean = ds.HasBaseMean
	return res
}
