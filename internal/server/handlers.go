package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
	"github.com/AammarTufail/rnaseq-viz/internal/duckdb"
	"github.com/AammarTufail/rnaseq-viz/internal/output"
	"github.com/AammarTufail/rnaseq-viz/internal/session"
	"github.com/AammarTufail/rnaseq-viz/internal/summary"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleCreateSession accepts a result table as a multipart "file" field or
// as the raw request body, classifies it under the query-param thresholds
// (falling back to the configured defaults) and registers a new session.
func (s *Server) handleCreateSession(c *gin.Context) {
	t, err := s.thresholdsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := "upload"
	var parser *deseq.Parser
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
			return
		}
		defer file.Close()
		if header.Filename != "" {
			filename = header.Filename
		}
		parser, err = deseq.NewParserFromReader(file, 0)
	} else {
		parser, err = deseq.NewParserFromReader(c.Request.Body, 0)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ds, err := parser.ReadAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := session.New(ds, filename, t)
	if err != nil {
		s.logger.Error("create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.registry.Add(sess)

	c.JSON(http.StatusCreated, sessionPayload(sess))
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionPayload(sess))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || !s.registry.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleUpdateThresholds reclassifies the session's dataset from scratch
// under the posted thresholds.
func (s *Server) handleUpdateThresholds(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var t classify.Thresholds
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thresholds payload"})
		return
	}

	if _, err := sess.Recompute(t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionPayload(sess))
}

func (s *Server) handleVolcano(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	res := sess.Result()
	c.JSON(http.StatusOK, gin.H{
		"points":     res.VolcanoPoints(),
		"colors":     s.colors.byCategory(),
		"thresholds": res.Thresholds,
	})
}

func (s *Server) handleMA(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	res := sess.Result()
	if !res.HasBaseMean {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset has no baseMean column"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"points": res.MAPoints(),
		"colors": s.colors.byCategory(),
	})
}

func (s *Server) handleGenes(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := sess.Genes(f)
	if err != nil {
		s.logger.Error("query genes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"genes": rows,
		"count": len(rows),
	})
}

func (s *Server) handleTopGenes(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	n := 20
	if v := c.Query("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid n %q", v)})
			return
		}
		n = parsed
	}

	res := sess.Result()
	top := res.TopByPadj(n)
	genes := make([]topGene, 0, len(top))
	for _, rec := range top {
		genes = append(genes, newTopGene(rec))
	}
	c.JSON(http.StatusOK, gin.H{
		"genes":         genes,
		"count_columns": res.CountColumns,
	})
}

func (s *Server) handleHistogram(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	bins := summary.DefaultHistogramBins
	if v := c.Query("bins"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid bins %q", v)})
			return
		}
		bins = parsed
	}

	c.JSON(http.StatusOK, gin.H{"bins": sess.Result().PadjHistogram(bins)})
}

func (s *Server) handleDistribution(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": sess.Result().LFCDistribution()})
}

// handleExportCSV streams the stored rows of a scope as a CSV attachment.
func (s *Server) handleExportCSV(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	scope := summary.ScopeAll
	if v := c.Query("category"); v != "" {
		parsed, err := summary.ParseScope(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		scope = parsed
	}

	rows, err := sess.Export(scope)
	if err != nil {
		s.logger.Error("export csv", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(scope)+"_genes.csv"))
	w := output.NewCSVWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	for _, row := range rows {
		if err := w.Write(row.Record(), row.Category); err != nil {
			return
		}
	}
	if err := w.Flush(); err != nil {
		s.logger.Error("flush csv export", zap.Error(err))
	}
}

// lookupSession resolves the :id path parameter. On failure it writes the
// 404 response and returns ok=false.
func (s *Server) lookupSession(c *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	sess, ok := s.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) thresholdsFromQuery(c *gin.Context) (classify.Thresholds, error) {
	t := s.thresholds
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"padj", &t.PadjCutoff},
		{"up_lfc", &t.UpLFCCutoff},
		{"down_lfc", &t.DownLFCCutoff},
	} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return t, fmt.Errorf("invalid %s %q", p.name, v)
		}
		*p.dst = f
	}
	return t, t.Validate()
}

func filterFromQuery(c *gin.Context) (duckdb.Filter, error) {
	var f duckdb.Filter

	if v := c.Query("category"); v != "" {
		cat, err := classify.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = cat
	}
	f.Search = c.Query("search")

	switch v := c.Query("sort"); v {
	case "", duckdb.SortByPadj, duckdb.SortByLog2FoldChange:
		f.SortBy = v
	default:
		return f, fmt.Errorf("unknown sort key %q", v)
	}

	switch v := c.Query("order"); v {
	case "", "asc":
	case "desc":
		f.Descending = true
	default:
		return f, fmt.Errorf("unknown sort order %q", v)
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &f.Limit},
		{"offset", &f.Offset},
	} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return f, fmt.Errorf("invalid %s %q", p.name, v)
		}
		*p.dst = parsed
	}

	return f, nil
}

// sessionPayload is the shared body for session creation, retrieval and
// threshold updates.
func sessionPayload(sess *session.Session) gin.H {
	res := sess.Result()
	return gin.H{
		"session_id":    sess.ID.String(),
		"filename":      sess.Filename,
		"created_at":    sess.CreatedAt,
		"thresholds":    res.Thresholds,
		"summary":       res.Counts,
		"has_base_mean": res.HasBaseMean,
		"count_columns": res.CountColumns,
	}
}

// topGene is the JSON shape for the top-genes endpoint. Count cells can be
// missing, so they marshal as nulls rather than NaNs.
type topGene struct {
	Identifier     string     `json:"identifier"`
	GeneName       string     `json:"gene_name,omitempty"`
	LocusTag       string     `json:"locus_tag,omitempty"`
	Log2FoldChange *float64   `json:"log2_fold_change"`
	Padj           *float64   `json:"padj"`
	Counts         []*float64 `json:"counts"`
}

func newTopGene(rec *deseq.GeneRecord) topGene {
	counts := make([]*float64, len(rec.Counts))
	for i, v := range rec.Counts {
		counts[i] = fptr(v)
	}
	return topGene{
		Identifier:     rec.Identifier,
		GeneName:       rec.GeneName,
		LocusTag:       rec.LocusTag,
		Log2FoldChange: fptr(rec.Log2FoldChange),
		Padj:           fptr(rec.AdjustedPValue),
		Counts:         counts,
	}
}

func fptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
