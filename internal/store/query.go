// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/refextract/pkg/types"
)

// QueryOptions holds parameters for record queries (R3).
type QueryOptions struct {
	// Query is the FTS5 full-text search string matched against the raw
	// reference and its extracted field values (R3.1).
	Query string

	// Field keeps only records where this field was extracted (R3.2).
	Field types.Field

	// RunID filters by extraction run (R3.3).
	RunID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Field == "" && q.RunID == ""
}

// StoredRecord is a decoded record with its storage identity.
type StoredRecord struct {
	ID    string `json:"id" yaml:"id"`
	RunID string `json:"run_id" yaml:"run_id"`
	types.Record
}

// Retrieve queries stored records with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries are sorted by raw text (R3.4).
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]StoredRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.id, r.run_id, r.raw, r.fields
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.id, r.run_id, r.raw, r.fields
			FROM records r
			WHERE 1=1`)
	}

	if opts.Field != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.fields) WHERE json_extract(value, '$.field') = ?)`)
		args = append(args, string(opts.Field))
	}

	if opts.RunID != "" {
		qb.WriteString(` AND r.run_id = ?`)
		args = append(args, opts.RunID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.raw`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var results []StoredRecord
	for rows.Next() {
		var (
			sr         StoredRecord
			fieldsJSON sql.NullString
		)
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.Raw, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if fieldsJSON.Valid {
			json.Unmarshal([]byte(fieldsJSON.String), &sr.Fields)
		}
		results = append(results, sr)
	}

	return results, rows.Err()
}
