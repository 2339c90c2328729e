package session

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
	"github.com/AammarTufail/rnaseq-viz/internal/duckdb"
	"github.com/AammarTufail/rnaseq-viz/internal/summary"
)

func testDataset() *deseq.Dataset {
	rec := func(id, gene string, lfc, padj float64) *deseq.GeneRecord {
		return &deseq.GeneRecord{Identifier: id, GeneName: gene, Log2FoldChange: lfc, AdjustedPValue: padj}
	}
	return &deseq.Dataset{
		Records: []*deseq.GeneRecord{
			rec("PA0001", "dnaA", 2.5, 3.4e-15),
			rec("PA0002", "dnaN", -1.8, 9.1e-12),
			rec("PA0003", "recF", 0.5, 0.2),
			rec("PA0004", "gyrB", 3.1, math.NaN()),
		},
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(testDataset(), "results.tsv", classify.DefaultThresholds())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	s := newTestSession(t)

	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "results.tsv", s.Filename)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, 4, s.RecordCount())

	res := s.Result()
	assert.Equal(t, 4, res.Counts.Total)
	assert.Equal(t, 1, res.Counts.Upregulated)
	assert.Equal(t, 1, res.Counts.Downregulated)
	assert.Equal(t, 2, res.Counts.NotSignificant)
}

func TestNewRejectsInvalidThresholds(t *testing.T) {
	_, err := New(testDataset(), "x.tsv", classify.Thresholds{PadjCutoff: 0, UpLFCCutoff: 1, DownLFCCutoff: -1})
	require.Error(t, err)

	_, err = New(testDataset(), "x.tsv", classify.Thresholds{PadjCutoff: 0.05, UpLFCCutoff: 1, DownLFCCutoff: 0.5})
	require.Error(t, err)
}

func TestRecompute(t *testing.T) {
	s := newTestSession(t)

	loose := classify.Thresholds{PadjCutoff: 0.5, UpLFCCutoff: 0.4, DownLFCCutoff: -0.4}
	res, err := s.Recompute(loose)
	require.NoError(t, err)

	// recF (lfc 0.5, padj 0.2) now clears both cutoffs.
	assert.Equal(t, 2, res.Counts.Upregulated)
	assert.Equal(t, loose, s.Thresholds())

	// The stored rows follow the new classification.
	rows, err := s.Genes(duckdb.Filter{Category: classify.CategoryUpregulated})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PA0001", rows[0].Identifier)
	assert.Equal(t, "PA0003", rows[1].Identifier)
}

func TestRecomputeMatchesFreshSession(t *testing.T) {
	strict := classify.Thresholds{PadjCutoff: 0.01, UpLFCCutoff: 2.0, DownLFCCutoff: -2.0}

	recycled := newTestSession(t)
	_, err := recycled.Recompute(classify.Thresholds{PadjCutoff: 1.0, UpLFCCutoff: 0.1, DownLFCCutoff: -0.1})
	require.NoError(t, err)
	got, err := recycled.Recompute(strict)
	require.NoError(t, err)

	fresh, err := New(testDataset(), "results.tsv", strict)
	require.NoError(t, err)
	t.Cleanup(func() { fresh.Close() })

	assert.Equal(t, fresh.Result().Counts, got.Counts)
	assert.Equal(t, fresh.Result().Categories, got.Categories)
}

func TestRecomputeRejectsInvalidThresholds(t *testing.T) {
	s := newTestSession(t)
	before := s.Thresholds()

	_, err := s.Recompute(classify.Thresholds{PadjCutoff: 1.5, UpLFCCutoff: 1, DownLFCCutoff: -1})
	require.Error(t, err)
	assert.Equal(t, before, s.Thresholds(), "failed recompute must not change the session")
}

func TestExport(t *testing.T) {
	s := newTestSession(t)

	rows, err := s.Export(summary.ScopeSignificant)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PA0001", rows[0].Identifier)
	assert.Equal(t, "PA0002", rows[1].Identifier)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	s1 := newTestSession(t)
	s2 := newTestSession(t)
	r.Add(s1)
	r.Add(s2)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(s1.ID)
	require.True(t, ok)
	assert.Same(t, s1, got)

	_, ok = r.Get(uuid.New())
	assert.False(t, ok)

	assert.True(t, r.Delete(s1.ID))
	assert.False(t, r.Delete(s1.ID))
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get(s1.ID)
	assert.False(t, ok)
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	r := NewRegistry()
	s1 := newTestSession(t)
	s2 := newTestSession(t)
	r.Add(s1)
	r.Add(s2)

	_, err := s1.Recompute(classify.Thresholds{PadjCutoff: 1.0, UpLFCCutoff: 0.1, DownLFCCutoff: -0.1})
	require.NoError(t, err)

	assert.Equal(t, classify.DefaultThresholds(), s2.Thresholds())
	assert.Equal(t, 1, s2.Result().Counts.Upregulated)
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry()
	s1 := newTestSession(t)
	r.Add(s1)

	r.CloseAll()
	assert.Equal(t, 0, r.Len())
}
