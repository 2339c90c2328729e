package summary

import (
	"math"
	"sort"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// DefaultHistogramBins is the default bin count for the p-value histogram.
const DefaultHistogramBins = 50

// Point is one plotted gene. X and Y are always finite; records missing a
// coordinate are omitted from the series.
type Point struct {
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Category   classify.Category `json:"category"`
	Identifier string            `json:"identifier"`
	GeneName   string            `json:"gene_name,omitempty"`
	LocusTag   string            `json:"locus_tag,omitempty"`
}

// VolcanoPoints returns the volcano plot series: x is the log2 fold change
// and y is -log10 of the adjusted p-value.
func (r *Result) VolcanoPoints() []Point {
	points := make([]Point, 0, len(r.Records))
	for i, rec := range r.Records {
		x := rec.Log2FoldChange
		y := rec.NegLog10Padj()
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		points = append(points, Point{
			X:          x,
			Y:          y,
			Category:   r.Categories[i],
			Identifier: rec.Identifier,
			GeneName:   rec.GeneName,
			LocusTag:   rec.LocusTag,
		})
	}
	return points
}

// MAPoints returns the MA plot series: x is log10 of the mean normalized
// expression and y is the log2 fold change.
func (r *Result) MAPoints() []Point {
	points := make([]Point, 0, len(r.Records))
	for i, rec := range r.Records {
		x := rec.Log10BaseMean()
		y := rec.Log2FoldChange
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		points = append(points, Point{
			X:          x,
			Y:          y,
			Category:   r.Categories[i],
			Identifier: rec.Identifier,
			GeneName:   rec.GeneName,
			LocusTag:   rec.LocusTag,
		})
	}
	return points
}

// HistogramBin is one bar of the adjusted p-value histogram.
type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// PadjHistogram counts adjusted p-values into equal-width bins over [0, 1].
// Missing and out-of-range values are skipped. bins <= 0 uses
// DefaultHistogramBins.
func (r *Result) PadjHistogram(bins int) []HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	out := make([]HistogramBin, bins)
	width := 1.0 / float64(bins)
	for i := range out {
		out[i].Start = float64(i) * width
		out[i].End = float64(i+1) * width
	}

	for _, rec := range r.Records {
		p := rec.AdjustedPValue
		if math.IsNaN(p) || p < 0 || p > 1 {
			continue
		}
		idx := int(p / width)
		// p == 1 lands in the last bin.
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}

	return out
}

// Quartiles is a five-number summary of a category's log2 fold changes.
type Quartiles struct {
	Category classify.Category `json:"category"`
	N        int               `json:"n"`
	Min      float64           `json:"min"`
	Q1       float64           `json:"q1"`
	Median   float64           `json:"median"`
	Q3       float64           `json:"q3"`
	Max      float64           `json:"max"`
}

// LFCDistribution returns per-category five-number summaries of the finite
// log2 fold changes, in display category order. Categories with no finite
// values are omitted.
func (r *Result) LFCDistribution() []Quartiles {
	byCat := make(map[classify.Category][]float64)
	for i, rec := range r.Records {
		v := rec.Log2FoldChange
		if math.IsNaN(v) {
			continue
		}
		byCat[r.Categories[i]] = append(byCat[r.Categories[i]], v)
	}

	var out []Quartiles
	for _, cat := range classify.Categories() {
		vals := byCat[cat]
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		out = append(out, Quartiles{
			Category: cat,
			N:        len(vals),
			Min:      vals[0],
			Q1:       quantile(vals, 0.25),
			Median:   quantile(vals, 0.5),
			Q3:       quantile(vals, 0.75),
			Max:      vals[len(vals)-1],
		})
	}
	return out
}

// quantile computes the linearly interpolated q-quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// TopByPadj returns the n records with the smallest adjusted p-values,
// for the expression heatmap over the sample count columns. Records with
// missing padj are excluded; ties keep input order. n <= 0 returns all
// eligible records.
func (r *Result) TopByPadj(n int) []*deseq.GeneRecord {
	var eligible []*deseq.GeneRecord
	for _, rec := range r.Records {
		if !math.IsNaN(rec.AdjustedPValue) {
			eligible = append(eligible, rec)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].AdjustedPValue < eligible[j].AdjustedPValue
	})

	if n > 0 && n < len(eligible) {
		eligible = eligible[:n]
	}
	return eligible
}
