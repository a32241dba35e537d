// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hmm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/refextract/pkg/types"
)

func TestParseTagged(t *testing.T) {
	ex, err := ParseTagged(0, "<author>Pivovarova T.</author> <date>2011</date>")
	if err != nil {
		t.Fatal(err)
	}

	wantStates := []types.State{
		{Field: types.FieldAuthor, Phase: types.PhaseStart},
		{Field: types.FieldAuthor, Phase: types.PhaseRest},
		{Field: types.FieldAuthor, Phase: types.PhaseRest},
		{Field: types.FieldDate, Phase: types.PhaseStart},
	}
	wantTexts := []string{"Pivovarova", "T", ".", "2011"}

	if len(ex.Tokens) != len(wantTexts) {
		t.Fatalf("got %d tokens, want %d", len(ex.Tokens), len(wantTexts))
	}
	for i := range wantTexts {
		if ex.Tokens[i].Text != wantTexts[i] {
			t.Errorf("token[%d] = %q, want %q", i, ex.Tokens[i].Text, wantTexts[i])
		}
		if ex.States[i] != wantStates[i] {
			t.Errorf("state[%d] = %s, want %s", i, ex.States[i], wantStates[i])
		}
	}
}

func TestParseTaggedErrors(t *testing.T) {
	tests := []struct {
		name   string
		tagged string
	}{
		{"unknown field", "<editor>Smith J.</editor>"},
		{"unbalanced tag", "<author>Smith J."},
		{"unterminated tag", "<author"},
		{"text outside tag", "Smith J. <date>2011</date>"},
		{"empty span", "<author> </author> <date>2011</date>"},
		{"no spans", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTagged(3, tt.tagged)
			var annErr *AnnotationError
			if !errors.As(err, &annErr) {
				t.Fatalf("ParseTagged(%q) error = %v, want AnnotationError", tt.tagged, err)
			}
			if annErr.Example != 3 {
				t.Errorf("error names example %d, want 3", annErr.Example)
			}
		})
	}
}

func TestLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	content := `examples:
  - "<author>Rakishev B.R.</author> <date>2008</date>"
  - "<author>Smith J.</author> <title>Ore body modelling.</title>"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	examples, err := LoadCorpus(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 2 {
		t.Fatalf("got %d examples, want 2", len(examples))
	}
	if examples[0].States[0].Field != types.FieldAuthor {
		t.Errorf("first state field = %s, want author", examples[0].States[0].Field)
	}
}

func TestLoadCorpusEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	if err := os.WriteFile(path, []byte("examples: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCorpus(path); err == nil {
		t.Error("LoadCorpus accepted an empty corpus")
	}
}
