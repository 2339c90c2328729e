// Package duckdb persists classified gene results in DuckDB so analyses can
// be saved, re-queried, and served without reparsing the source table.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding one classified result set.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist. row_num preserves the
// input order of the source table so queries can reproduce it.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS gene_results (
		row_num BIGINT,
		identifier VARCHAR,
		gene_name VARCHAR,
		locus_tag VARCHAR,
		log2_fold_change DOUBLE,
		padj DOUBLE,
		neg_log10_padj DOUBLE,
		base_mean DOUBLE,
		category VARCHAR,
		PRIMARY KEY (row_num)
	)`)
	return err
}
