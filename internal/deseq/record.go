package deseq

import "math"

// Floors applied before log transforms so zero values stay plottable.
const (
	padjFloor     = 1e-300
	baseMeanFloor = 1e-10
)

// GeneRecord is one row of a differential expression results table.
// Numeric fields use NaN to mean missing or unparsable.
type GeneRecord struct {
	Identifier     string
	GeneName       string
	LocusTag       string
	Log2FoldChange float64
	AdjustedPValue float64
	BaseMean       float64
	AttributesRaw  string
	Counts         []float64
}

// NegLog10Padj returns -log10 of the adjusted p-value, the volcano plot
// y coordinate. Values at or below zero are floored to 1e-300 before the
// transform. Returns NaN when the adjusted p-value is missing.
func (r *GeneRecord) NegLog10Padj() float64 {
	p := r.AdjustedPValue
	if math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 {
		p = padjFloor
	}
	return -math.Log10(p)
}

// Log10BaseMean returns log10 of the mean normalized expression, the MA
// plot x coordinate. Values at or below zero are floored to 1e-10 before
// the transform. Returns NaN when no baseMean value is present.
func (r *GeneRecord) Log10BaseMean() float64 {
	b := r.BaseMean
	if math.IsNaN(b) {
		return math.NaN()
	}
	if b <= 0 {
		b = baseMeanFloor
	}
	return math.Log10(b)
}

// Dataset holds every record parsed from one results table. A dataset is
// replaced wholesale when a new table is loaded, never mutated in place.
type Dataset struct {
	Records         []*GeneRecord
	CountColumns    []string
	HasBaseMean     bool
	UnparsableCells int
}
