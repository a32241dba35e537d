// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refextract/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{IndexDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(runID string) *types.ExtractionResult {
	return &types.ExtractionResult{
		RunID: runID,
		Model: "model.yaml",
		Records: []types.Record{
			{
				Raw: "Rakishev B.R. Open Cast Mining in Kazakhstan Under Market Conditions. 2008.",
				Fields: []types.FieldValue{
					{Field: types.FieldAuthor, Text: "Rakishev B . R ."},
					{Field: types.FieldTitle, Text: "Open Cast Mining in Kazakhstan Under Market Conditions ."},
					{Field: types.FieldDate, Text: "2008 ."},
				},
			},
			{
				Raw: "Pivovarova T. Rock leaching processes. Mining Journal 2011.",
				Fields: []types.FieldValue{
					{Field: types.FieldAuthor, Text: "Pivovarova T ."},
					{Field: types.FieldTitle, Text: "Rock leaching processes ."},
					{Field: types.FieldJournal, Text: "Mining Journal"},
					{Field: types.FieldDate, Text: "2011 ."},
				},
			},
		},
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{IndexDir: dir})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err, "database file missing")

	// Reopening an existing database must not fail on schema creation.
	s2, err := Open(types.StoreConfig{IndexDir: dir})
	require.NoError(t, err)
	s2.Close()
}

func TestIngestResult(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	summary, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stored)
	assert.Equal(t, 0, summary.Replaced)
	assert.Equal(t, 2, summary.Total())
}

// Re-ingesting the same raw references replaces the stored records and
// re-attributes them to the new run.
func TestIngestResultReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)

	summary, err := s.IngestResult(ctx, testResult("run-2"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stored)
	assert.Equal(t, 2, summary.Replaced)

	records, err := s.Retrieve(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "run-2", rec.RunID)
	}
}

func TestIngestFile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	data, err := yaml.Marshal(testResult("run-file"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "result.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	summary, err := s.IngestFile(ctx, path, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stored)
}

func TestRetrieveFullText(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)

	records, err := s.Retrieve(ctx, QueryOptions{Query: "Kazakhstan"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Raw, "Rakishev")

	// Extracted field values are indexed too, not just the raw text.
	records, err = s.Retrieve(ctx, QueryOptions{Query: "leaching"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got, ok := records[0].Get(types.FieldJournal)
	require.True(t, ok)
	assert.Equal(t, "Mining Journal", got)
}

func TestRetrieveFieldFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)

	records, err := s.Retrieve(ctx, QueryOptions{Field: types.FieldJournal})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Raw, "Pivovarova")

	records, err = s.Retrieve(ctx, QueryOptions{Field: types.FieldAuthor})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRetrieveRunFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)

	other := &types.ExtractionResult{
		RunID: "run-other",
		Records: []types.Record{
			{Raw: "Smith J. Ore body modelling. 1999.", Fields: []types.FieldValue{
				{Field: types.FieldAuthor, Text: "Smith J ."},
			}},
		},
	}
	_, err = s.IngestResult(ctx, other, io.Discard)
	require.NoError(t, err)

	records, err := s.Retrieve(ctx, QueryOptions{RunID: "run-other"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Raw, "Smith")
}

func TestRetrieveLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)

	records, err := s.Retrieve(ctx, QueryOptions{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExportRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.IngestResult(ctx, testResult("run-1"), io.Discard)
	require.NoError(t, err)

	require.NoError(t, s.ExportYAML(ctx, QueryOptions{}))
	data, err := os.ReadFile(filepath.Join(s.indexDir, "export.yaml"))
	require.NoError(t, err)
	var fromYAML []StoredRecord
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Len(t, fromYAML, 2)

	require.NoError(t, s.ExportJSON(ctx, QueryOptions{}))
	data, err = os.ReadFile(filepath.Join(s.indexDir, "export.json"))
	require.NoError(t, err)
	var fromJSON []StoredRecord
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Len(t, fromJSON, 2)

	assert.Equal(t, fromYAML[0].Raw, fromJSON[0].Raw)
}

func TestRecordIDStable(t *testing.T) {
	a := recordID("Smith J. Ore body modelling. 1999.")
	b := recordID("Smith J. Ore body modelling. 1999.")
	c := recordID("different reference")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
}
