package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

func mkrec(id string, lfc, padj float64) *deseq.GeneRecord {
	return &deseq.GeneRecord{Identifier: id, Log2FoldChange: lfc, AdjustedPValue: padj}
}

func datasetOf(recs ...*deseq.GeneRecord) *deseq.Dataset {
	return &deseq.Dataset{Records: recs}
}

func TestAggregator_WriterContract(t *testing.T) {
	agg := NewAggregator(classify.DefaultThresholds())

	require.NoError(t, agg.WriteHeader())
	require.NoError(t, agg.Write(mkrec("a", 2.0, 0.001), classify.CategoryUpregulated))
	require.NoError(t, agg.Write(mkrec("b", 0.1, 0.9), classify.CategoryNotSignificant))
	require.NoError(t, agg.Flush())

	res := agg.Result()
	assert.Equal(t, 2, res.Counts.Total)
	assert.Equal(t, 1, res.Counts.Upregulated)
	assert.Equal(t, 1, res.Counts.NotSignificant)
}

func TestCompute_CountsPartition(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 2.5, 3.4e-15),
		mkrec("b", -1.8, 9.1e-12),
		mkrec("c", 0.5, 0.2),
		mkrec("d", 1.2, 0.04),
		mkrec("e", -3.0, 0.01),
		mkrec("f", 4.0, math.NaN()),
		mkrec("g", 0.0, 0.5),
		mkrec("h", 1.0, 0.05),
		mkrec("i", -0.9, 0.001),
	)

	thresholds := []classify.Thresholds{
		classify.DefaultThresholds(),
		{PadjCutoff: 0.2, UpLFCCutoff: 0.5, DownLFCCutoff: -0.5},
		{PadjCutoff: 1.0, UpLFCCutoff: 3.0, DownLFCCutoff: -3.0},
		{PadjCutoff: 0.001, UpLFCCutoff: 0.0, DownLFCCutoff: 0.0},
	}

	for _, th := range thresholds {
		res := Compute(ds, th)
		c := res.Counts
		assert.Equal(t, len(ds.Records), c.Total)
		assert.Equal(t, c.Total, c.Upregulated+c.Downregulated+c.NotSignificant,
			"category counts must partition the total for %+v", th)
		assert.Len(t, res.Upregulated, c.Upregulated)
		assert.Len(t, res.Downregulated, c.Downregulated)
	}
}

func TestCompute_DefaultThresholdCounts(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 2.5, 3.4e-15),
		mkrec("b", -1.8, 9.1e-12),
		mkrec("c", 0.5, 0.2),
		mkrec("d", 1.0, 0.05), // both boundaries inclusive
		mkrec("e", 4.0, math.NaN()),
	)

	res := Compute(ds, classify.DefaultThresholds())
	assert.Equal(t, 5, res.Counts.Total)
	assert.Equal(t, 2, res.Counts.Upregulated)
	assert.Equal(t, 1, res.Counts.Downregulated)
	assert.Equal(t, 2, res.Counts.NotSignificant)
}

func TestResult_UpregulatedOrdering(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 1.2, 0.001),
		mkrec("b", 3.5, 0.001),
		mkrec("c", 2.0, 0.001),
	)

	res := Compute(ds, classify.DefaultThresholds())
	require.Len(t, res.Upregulated, 3)

	// Strongest upregulation first
	assert.Equal(t, "b", res.Upregulated[0].Identifier)
	assert.Equal(t, "c", res.Upregulated[1].Identifier)
	assert.Equal(t, "a", res.Upregulated[2].Identifier)
}

func TestResult_DownregulatedOrdering(t *testing.T) {
	ds := datasetOf(
		mkrec("a", -1.2, 0.001),
		mkrec("b", -3.5, 0.001),
		mkrec("c", -2.0, 0.001),
	)

	res := Compute(ds, classify.DefaultThresholds())
	require.Len(t, res.Downregulated, 3)

	// Most negative first
	assert.Equal(t, "b", res.Downregulated[0].Identifier)
	assert.Equal(t, "c", res.Downregulated[1].Identifier)
	assert.Equal(t, "a", res.Downregulated[2].Identifier)
}

func TestResult_EqualFoldChangesKeepInputOrder(t *testing.T) {
	ds := datasetOf(
		mkrec("first", 2.0, 0.001),
		mkrec("second", 2.0, 0.001),
		mkrec("third", 2.0, 0.001),
	)

	res := Compute(ds, classify.DefaultThresholds())
	require.Len(t, res.Upregulated, 3)
	assert.Equal(t, "first", res.Upregulated[0].Identifier)
	assert.Equal(t, "second", res.Upregulated[1].Identifier)
	assert.Equal(t, "third", res.Upregulated[2].Identifier)
}

func TestCompute_RecomputeEqualsFreshComputation(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 2.5, 3.4e-15),
		mkrec("b", -1.8, 9.1e-12),
		mkrec("c", 0.5, 0.2),
		mkrec("d", 4.0, math.NaN()),
	)

	loose := classify.Thresholds{PadjCutoff: 0.5, UpLFCCutoff: 0.4, DownLFCCutoff: -0.4}

	first := Compute(ds, classify.DefaultThresholds())
	// Interleave a different threshold set, then repeat the original.
	_ = Compute(ds, loose)
	again := Compute(ds, classify.DefaultThresholds())

	assert.Equal(t, first.Counts, again.Counts)
	assert.Equal(t, first.Categories, again.Categories)
}

func TestCompute_EmptyDataset(t *testing.T) {
	res := Compute(datasetOf(), classify.DefaultThresholds())
	assert.Equal(t, Counts{}, res.Counts)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.VolcanoPoints())
}

func TestResult_Subset(t *testing.T) {
	ds := datasetOf(
		mkrec("a", 2.5, 0.001),
		mkrec("b", -1.8, 0.001),
		mkrec("c", 0.5, 0.2),
		mkrec("d", 3.0, 0.001),
	)
	res := Compute(ds, classify.DefaultThresholds())

	recs, cats := res.Subset(ScopeAll)
	assert.Len(t, recs, 4)
	assert.Len(t, cats, 4)

	recs, _ = res.Subset(ScopeSignificant)
	require.Len(t, recs, 3)
	// Input order, not fold-change order
	assert.Equal(t, "a", recs[0].Identifier)
	assert.Equal(t, "b", recs[1].Identifier)
	assert.Equal(t, "d", recs[2].Identifier)

	recs, cats = res.Subset(ScopeUpregulated)
	require.Len(t, recs, 2)
	assert.Equal(t, classify.CategoryUpregulated, cats[0])

	recs, _ = res.Subset(ScopeDownregulated)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].Identifier)
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{
		"all":           ScopeAll,
		"significant":   ScopeSignificant,
		"sig":           ScopeSignificant,
		"UP":            ScopeUpregulated,
		"downregulated": ScopeDownregulated,
	} {
		got, err := ParseScope(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseScope("everything")
	assert.Error(t, err)
}
