package output

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

func TestCSVWriter_ExportShape(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(&deseq.GeneRecord{
		Identifier:     "PA0001",
		GeneName:       "dnaA",
		LocusTag:       "PA0001",
		Log2FoldChange: 2.5,
		AdjustedPValue: 3.4e-15,
	}, classify.CategoryUpregulated))
	require.NoError(t, w.Write(&deseq.GeneRecord{
		Identifier:     "PA0004",
		Log2FoldChange: 3.1,
		AdjustedPValue: math.NaN(),
	}, classify.CategoryNotSignificant))
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ExportColumns, rows[0])

	assert.Equal(t, "PA0001", rows[1][0])
	assert.Equal(t, "dnaA", rows[1][1])
	assert.Equal(t, "2.5", rows[1][3])
	assert.Equal(t, "3.4e-15", rows[1][4])
	assert.Equal(t, "Upregulated", rows[1][5])

	// Empty derived fields stay empty strings; missing padj exports as NA
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "NA", rows[2][4])
	assert.Equal(t, "Not significant", rows[2][5])
}

func TestFilterWriter(t *testing.T) {
	var buf bytes.Buffer
	inner := NewCSVWriter(&buf)
	scope := func(cat classify.Category) bool {
		return cat != classify.CategoryNotSignificant
	}
	w := NewFilterWriter(inner, scope)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(&deseq.GeneRecord{Identifier: "keep"}, classify.CategoryUpregulated))
	require.NoError(t, w.Write(&deseq.GeneRecord{Identifier: "drop"}, classify.CategoryNotSignificant))
	require.NoError(t, w.Write(&deseq.GeneRecord{Identifier: "also"}, classify.CategoryDownregulated))
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus the two kept records")
	assert.Equal(t, "keep", rows[1][0])
	assert.Equal(t, "also", rows[2][0])
}
