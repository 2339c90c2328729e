package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
)

// Counts holds the per-category tallies for one classification run.
// The three category counts always sum to Total.
type Counts struct {
	Total          int `json:"total"`
	Upregulated    int `json:"upregulated"`
	Downregulated  int `json:"downregulated"`
	NotSignificant int `json:"not_significant"`
}

// Result is the complete outcome of classifying one dataset under one set
// of thresholds. Records and Categories are parallel slices in input order.
type Result struct {
	Thresholds classify.Thresholds
	Counts     Counts

	Records    []*deseq.GeneRecord
	Categories []classify.Category

	// Upregulated is ordered by log2 fold change descending, Downregulated
	// ascending (strongest regulation first); ties keep input order.
	Upregulated   []*deseq.GeneRecord
	Downregulated []*deseq.GeneRecord

	CountColumns []string
	HasBaseMean  bool
}

func newResult(t classify.Thresholds, records []*deseq.GeneRecord, categories []classify.Category) *Result {
	res := &Result{
		Thresholds: t,
		Records:    records,
		Categories: categories,
	}
	res.Counts.Total = len(records)

	for i, cat := range categories {
		switch cat {
		case classify.CategoryUpregulated:
			res.Counts.Upregulated++
			res.Upregulated = append(res.Upregulated, records[i])
		case classify.CategoryDownregulated:
			res.Counts.Downregulated++
			res.Downregulated = append(res.Downregulated, records[i])
		default:
			res.Counts.NotSignificant++
		}
	}

	// Stable sorts so equal fold changes keep their input order.
	sort.SliceStable(res.Upregulated, func(i, j int) bool {
		return res.Upregulated[i].Log2FoldChange > res.Upregulated[j].Log2FoldChange
	})
	sort.SliceStable(res.Downregulated, func(i, j int) bool {
		return res.Downregulated[i].Log2FoldChange < res.Downregulated[j].Log2FoldChange
	})

	return res
}

// Scope selects which classified records an export covers.
type Scope string

// Export scopes.
const (
	ScopeAll           Scope = "all"
	ScopeSignificant   Scope = "significant"
	ScopeUpregulated   Scope = "up"
	ScopeDownregulated Scope = "down"
)

// ParseScope maps a user-supplied scope name to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return ScopeAll, nil
	case "significant", "sig":
		return ScopeSignificant, nil
	case "up", "upregulated":
		return ScopeUpregulated, nil
	case "down", "downregulated":
		return ScopeDownregulated, nil
	}
	return "", fmt.Errorf("unknown export scope %q", s)
}

// Keep reports whether a category is inside the scope.
func (s Scope) Keep(cat classify.Category) bool {
	switch s {
	case ScopeSignificant:
		return cat != classify.CategoryNotSignificant
	case ScopeUpregulated:
		return cat == classify.CategoryUpregulated
	case ScopeDownregulated:
		return cat == classify.CategoryDownregulated
	default:
		return true
	}
}

// Subset returns the records in scope with their categories, in input order.
func (r *Result) Subset(scope Scope) ([]*deseq.GeneRecord, []classify.Category) {
	var recs []*deseq.GeneRecord
	var cats []classify.Category
	for i, rec := range r.Records {
		if !scope.Keep(r.Categories[i]) {
			continue
		}
		recs = append(recs, rec)
		cats = append(cats, r.Categories[i])
	}
	return recs, cats
}
