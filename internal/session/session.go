// Package session manages uploaded result tables and their classifications
// for the HTTP API. Each session keeps the parsed dataset in memory and
// mirrors the classified rows into a DuckDB store for querying.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AammarTufail/rnaseq-viz/internal/classify"
	"github.com/AammarTufail/rnaseq-viz/internal/deseq"
	"github.com/AammarTufail/rnaseq-viz/internal/duckdb"
	"github.com/AammarTufail/rnaseq-viz/internal/summary"
)

// Session holds one uploaded dataset and its current classification.
// The dataset is immutable after creation; only the thresholds (and with
// them the derived result) change over a session's lifetime.
type Session struct {
	ID        uuid.UUID
	Filename  string
	CreatedAt time.Time

	mu      sync.RWMutex
	dataset *deseq.Dataset
	result  *summary.Result
	store   *duckdb.Store
}

// New classifies the dataset under the given thresholds and backs the
// session with an in-memory DuckDB store.
func New(ds *deseq.Dataset, filename string, t classify.Thresholds) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	store, err := duckdb.Open("")
	if err != nil {
		return nil, err
	}

	res := summary.Compute(ds, t)
	if err := store.ReplaceResults(res); err != nil {
		store.Close()
		return nil, fmt.Errorf("persist results: %w", err)
	}

	return &Session{
		ID:        uuid.New(),
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
		dataset:   ds,
		result:    res,
		store:     store,
	}, nil
}

// Result returns the current classification result.
func (s *Session) Result() *summary.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Thresholds returns the thresholds the current result was computed under.
func (s *Session) Thresholds() classify.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.Thresholds
}

// RecordCount returns the number of rows in the underlying dataset.
func (s *Session) RecordCount() int {
	return len(s.dataset.Records)
}

// Recompute reclassifies the retained dataset from scratch under new
// thresholds and replaces the stored rows wholesale.
func (s *Session) Recompute(t classify.Thresholds) (*summary.Result, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	res := summary.Compute(s.dataset, t)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.ReplaceResults(res); err != nil {
		return nil, fmt.Errorf("persist results: %w", err)
	}
	s.result = res
	return res, nil
}

// Genes queries the session's stored rows.
func (s *Session) Genes(f duckdb.Filter) ([]duckdb.GeneRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.QueryGenes(f)
}

// Export returns the stored rows for a scope in input order.
func (s *Session) Export(scope summary.Scope) ([]duckdb.GeneRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ExportRows(scope)
}

// Close releases the session's store.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}
