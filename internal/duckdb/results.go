package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
	"github.com/AammarTufail/rnaseq-viz/internal/summary"
)

// Sort keys accepted by QueryGenes.
const (
	SortByPadj           = "padj"
	SortByLog2FoldChange = "log2FoldChange"
)

// GeneRow is one stored gene result. Numeric fields are nil when the source
// value was missing, which also serializes as JSON null.
type GeneRow struct {
	RowNum         int64             `json:"-"`
	Identifier     string            `json:"identifier"`
	GeneName       string            `json:"gene_name"`
	LocusTag       string            `json:"locus_tag"`
	Log2FoldChange *float64          `json:"log2_fold_change"`
	Padj           *float64          `json:"padj"`
	NegLog10Padj   *float64          `json:"neg_log10_padj"`
	BaseMean       *float64          `json:"base_mean"`
	Category       classify.Category `json:"category"`
}

// Record converts a stored row back to a gene record.
func (g *GeneRow) Record() *deseq.GeneRecord {
	return &deseq.GeneRecord{
		Identifier:     g.Identifier,
		GeneName:       g.GeneName,
		LocusTag:       g.LocusTag,
		Log2FoldChange: deref(g.Log2FoldChange),
		AdjustedPValue: deref(g.Padj),
		BaseMean:       deref(g.BaseMean),
	}
}

// Filter narrows and orders a gene table query.
type Filter struct {
	// Category restricts rows to one category; empty means all rows.
	Category classify.Category
	// Search is a case-insensitive substring match on the gene name.
	Search string
	// SortBy is SortByPadj or SortByLog2FoldChange; empty keeps input order.
	// Missing values always sort last. Ties resolve to input order.
	SortBy     string
	Descending bool
	// Limit caps the row count; 0 means no cap. Offset applies with Limit.
	Limit  int
	Offset int
}

// ReplaceResults replaces the stored table with the outcome of one
// classification run. The previous result set is dropped wholesale,
// mirroring how a new upload or threshold change recomputes everything.
func (s *Store) ReplaceResults(res *summary.Result) error {
	if _, err := s.db.Exec("DELETE FROM gene_results"); err != nil {
		return fmt.Errorf("clear gene results: %w", err)
	}
	if len(res.Records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "gene_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, rec := range res.Records {
		if err := appender.AppendRow(
			int64(i),
			rec.Identifier,
			rec.GeneName,
			rec.LocusTag,
			nullable(rec.Log2FoldChange),
			nullable(rec.AdjustedPValue),
			nullable(rec.NegLog10Padj()),
			nullable(rec.BaseMean),
			string(res.Categories[i]),
		); err != nil {
			return fmt.Errorf("append gene result: %w", err)
		}
	}

	return appender.Flush()
}

// CategoryCounts returns the stored per-category tallies.
func (s *Store) CategoryCounts() (summary.Counts, error) {
	rows, err := s.db.Query("SELECT category, COUNT(*) FROM gene_results GROUP BY category")
	if err != nil {
		return summary.Counts{}, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	var c summary.Counts
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return summary.Counts{}, fmt.Errorf("scan category count: %w", err)
		}
		switch classify.Category(cat) {
		case classify.CategoryUpregulated:
			c.Upregulated = n
		case classify.CategoryDownregulated:
			c.Downregulated = n
		case classify.CategoryNotSignificant:
			c.NotSignificant = n
		}
		c.Total += n
	}
	if err := rows.Err(); err != nil {
		return summary.Counts{}, fmt.Errorf("iterate category counts: %w", err)
	}
	return c, nil
}

// QueryGenes returns stored rows matching the filter.
func (s *Store) QueryGenes(f Filter) ([]GeneRow, error) {
	query := selectGeneRows
	var conds []string
	var args []any

	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Search != "" {
		conds = append(conds, "contains(lower(gene_name), lower(?))")
		args = append(args, f.Search)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	order, err := orderClause(f.SortBy, f.Descending)
	if err != nil {
		return nil, err
	}
	query += order

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	return scanGeneRows(rows)
}

// ExportRows returns the stored rows in scope, in original input order.
func (s *Store) ExportRows(scope summary.Scope) ([]GeneRow, error) {
	query := selectGeneRows
	var args []any

	switch scope {
	case summary.ScopeSignificant:
		query += " WHERE category <> ?"
		args = append(args, string(classify.CategoryNotSignificant))
	case summary.ScopeUpregulated:
		query += " WHERE category = ?"
		args = append(args, string(classify.CategoryUpregulated))
	case summary.ScopeDownregulated:
		query += " WHERE category = ?"
		args = append(args, string(classify.CategoryDownregulated))
	}
	query += " ORDER BY row_num"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	return scanGeneRows(rows)
}

const selectGeneRows = `SELECT row_num, identifier, gene_name, locus_tag,
	log2_fold_change, padj, neg_log10_padj, base_mean, category
	FROM gene_results`

func orderClause(sortBy string, descending bool) (string, error) {
	var col string
	switch sortBy {
	case "":
		return " ORDER BY row_num", nil
	case SortByPadj:
		col = "padj"
	case SortByLog2FoldChange:
		col = "log2_fold_change"
	default:
		return "", fmt.Errorf("unknown sort key %q", sortBy)
	}

	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, row_num", col, dir), nil
}

// scanGeneRows scans query rows into GeneRow slices.
func scanGeneRows(rows *sql.Rows) ([]GeneRow, error) {
	var out []GeneRow
	for rows.Next() {
		var g GeneRow
		var lfc, padj, neg, baseMean sql.NullFloat64
		if err := rows.Scan(
			&g.RowNum, &g.Identifier, &g.GeneName, &g.LocusTag,
			&lfc, &padj, &neg, &baseMean, &g.Category,
		); err != nil {
			return nil, fmt.Errorf("scan gene row: %w", err)
		}
		g.Log2FoldChange = toPtr(lfc)
		g.Padj = toPtr(padj)
		g.NegLog10Padj = toPtr(neg)
		g.BaseMean = toPtr(baseMean)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene rows: %w", err)
	}
	return out, nil
}

// nullable maps NaN to SQL NULL for appending.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func toPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func deref(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
