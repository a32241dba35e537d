// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists decoded reference records in SQLite and serves
// full-text and structured queries over them.
// Implements: prd004-store (R1-R4).
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refextract/pkg/types"
)

const dbFile = "refextract.db"

// Store manages the record database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// Open opens or creates the record database at cfg.IndexDir/refextract.db,
// creating the schema when missing (R1.2, R1.3).
func Open(cfg types.StoreConfig) (*Store, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = "index"
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, indexDir: indexDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT,
			created_at TEXT,
			extracted INTEGER,
			failed INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			run_id TEXT NOT NULL REFERENCES runs(id),
			raw TEXT NOT NULL,
			fields TEXT NOT NULL,
			fields_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(raw, fields_text, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, raw, fields_text) VALUES (new.rowid, new.raw, new.fields_text);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, raw, fields_text) VALUES('delete', old.rowid, old.raw, old.fields_text);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, raw, fields_text) VALUES('delete', old.rowid, old.raw, old.fields_text);
				INSERT INTO records_fts(rowid, raw, fields_text) VALUES (new.rowid, new.raw, new.fields_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from one ingestion run.
type IngestSummary struct {
	Stored   int
	Replaced int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Replaced
}

// IngestFile reads an extraction result YAML file and ingests its records.
func (s *Store) IngestFile(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading result %s: %w", path, err)
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return IngestSummary{}, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return s.IngestResult(ctx, &result, w)
}

// IngestResult stores one extraction run and its records in a single
// transaction. A record whose raw text was stored before is replaced and
// re-attributed to the new run (R2.1, R2.2).
func (s *Store) IngestResult(ctx context.Context, result *types.ExtractionResult, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, model, created_at, extracted, failed)
		 VALUES (?, ?, ?, ?, ?)`,
		result.RunID, result.Model, time.Now().UTC().Format(time.RFC3339),
		len(result.Records), len(result.Errors),
	)
	if err != nil {
		return summary, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (id, run_id, raw, fields, fields_text)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range result.Records {
		id := recordID(rec.Raw)

		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM records WHERE id = ?`, id,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking record %s: %w", id, err)
		}

		fieldsJSON, err := json.Marshal(rec.Fields)
		if err != nil {
			return summary, fmt.Errorf("marshaling fields for %s: %w", id, err)
		}

		if _, err := stmt.ExecContext(ctx,
			id, result.RunID, rec.Raw, string(fieldsJSON), fieldsText(rec),
		); err != nil {
			return summary, fmt.Errorf("inserting record %s: %w", id, err)
		}

		if exists > 0 {
			summary.Replaced++
		} else {
			summary.Stored++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "run %s: stored %d, replaced %d\n", result.RunID, summary.Stored, summary.Replaced)
	return summary, nil
}

// recordID derives a stable identifier from the raw reference text, so
// re-extracting the same reference replaces rather than duplicates it.
// First 12 hex characters of SHA-256(raw).
func recordID(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h)[:12]
}

// fieldsText flattens a record's extracted values for full-text indexing.
func fieldsText(rec types.Record) string {
	parts := make([]string, 0, len(rec.Fields))
	for _, fv := range rec.Fields {
		parts = append(parts, fv.Text)
	}
	return strings.Join(parts, " ")
}
