package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
)

func TestResult_VolcanoPoints(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 2.0, 0.01),
		mkrec("b", -1.5, 0),           // zero padj is floored, not dropped
		mkrec("c", 3.0, math.NaN()),   // missing y
		mkrec("d", math.NaN(), 0.001), // missing x
	)

	res := Compute(ds, classify.DefaultThresholds())
	points := res.VolcanoPoints()
	require.Len(t, points, 2)

	assert.Equal(t, "a", points[0].Identifier)
	assert.InDelta(t, 2.0, points[0].X, 1e-9)
	assert.InDelta(t, 2.0, points[0].Y, 1e-9)
	assert.Equal(t, classify.CategoryUpregulated, points[0].Category)

	assert.Equal(t, "b", points[1].Identifier)
	assert.InDelta(t, 300.0, points[1].Y, 1e-9)
	assert.Equal(t, classify.CategoryDownregulated, points[1].Category)
}

func TestResult_MAPoints(t *testing.T) {
	a := mkrec("a", 2.0, 0.01)
	a.BaseMean = 100
	b := mkrec("b", -1.5, 0.01)
	b.BaseMean = 0 // floored to 1e-10 before log10
	c := mkrec("c", 1.0, 0.01)
	c.BaseMean = math.NaN() // no baseMean column

	res := Compute(datasetOf(a, b, c), classify.DefaultThresholds())
	points := res.MAPoints()
	require.Len(t, points, 2)

	assert.InDelta(t, 2.0, points[0].X, 1e-9)
	assert.InDelta(t, 2.0, points[0].Y, 1e-9)
	assert.InDelta(t, -10.0, points[1].X, 1e-9)
}

func TestResult_PadjHistogram(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 0, 0.0),
		mkrec("b", 0, 0.5),
		mkrec("c", 0, 0.999),
		mkrec("d", 0, 1.0), // upper edge lands in the last bin
		mkrec("e", 0, math.NaN()),
	)
	res := Compute(ds, classify.DefaultThresholds())

	bins := res.PadjHistogram(10)
	require.Len(t, bins, 10)

	assert.InDelta(t, 0.0, bins[0].Start, 1e-9)
	assert.InDelta(t, 0.1, bins[0].End, 1e-9)
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, 1, bins[5].Count)
	assert.Equal(t, 2, bins[9].Count)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 4, total, "NaN padj never lands in a bin")
}

func TestResult_PadjHistogram_DefaultBins(t *testing.T) {
	res := Compute(datasetOf(mkrec("a", 0, 0.5)), classify.DefaultThresholds())
	assert.Len(t, res.PadjHistogram(0), DefaultHistogramBins)
}

func TestResult_LFCDistribution(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 1.0, 0.001),
		mkrec("b", 2.0, 0.001),
		mkrec("c", 3.0, 0.001),
		mkrec("d", 4.0, 0.001),
		mkrec("e", 5.0, 0.001),
		mkrec("f", -2.0, 0.001),
		mkrec("g", 0.1, 0.9),
		mkrec("h", math.NaN(), 0.9),
	)
	res := Compute(ds, classify.DefaultThresholds())

	dist := res.LFCDistribution()
	require.Len(t, dist, 3)

	up := dist[0]
	assert.Equal(t, classify.CategoryUpregulated, up.Category)
	assert.Equal(t, 5, up.N)
	assert.InDelta(t, 1.0, up.Min, 1e-9)
	assert.InDelta(t, 2.0, up.Q1, 1e-9)
	assert.InDelta(t, 3.0, up.Median, 1e-9)
	assert.InDelta(t, 4.0, up.Q3, 1e-9)
	assert.InDelta(t, 5.0, up.Max, 1e-9)

	down := dist[1]
	assert.Equal(t, classify.CategoryDownregulated, down.Category)
	assert.Equal(t, 1, down.N)
	assert.InDelta(t, -2.0, down.Median, 1e-9)

	// NaN fold change is excluded from the not-significant spread
	ns := dist[2]
	assert.Equal(t, classify.CategoryNotSignificant, ns.Category)
	assert.Equal(t, 1, ns.N)
}

func TestQuantile_Interpolation(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(vals, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(vals, 0.5), 1e-9)
	assert.InDelta(t, 3.25, quantile(vals, 0.75), 1e-9)
}

func TestResult_TopByPadj(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 0, 0.3),
		mkrec("b", 0, 0.1),
		mkrec("c", 0, math.NaN()),
		mkrec("d", 0, 0.2),
		mkrec("e", 0, 0.1),
	)
	res := Compute(ds, classify.DefaultThresholds())

	top := res.TopByPadj(3)
	require.Len(t, top, 3)
	// Equal padj keeps input order: b before e
	assert.Equal(t, "b", top[0].Identifier)
	assert.Equal(t, "e", top[1].Identifier)
	assert.Equal(t, "d", top[2].Identifier)

	// n <= 0 returns every record with a padj value
	assert.Len(t, res.TopByPadj(0), 4)

	// n beyond the eligible count is not an error
	assert.Len(t, res.TopByPadj(100), 4)
}
