// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hmm

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/pdiddy/refextract/internal/symbol"
	"github.com/pdiddy/refextract/pkg/types"
)

// fullCorpus covers every field in both phases, so training succeeds on
// the whole 20-state space.
var fullCorpus = []string{
	"<author>Rakishev B.R.</author> <title>Open Cast Mining in Kazakhstan Under Market Conditions.</title> <journal>//The 21st World Mining Congress & Expo</journal> <date>2008.</date>",
	"<author>Pivovarova T.</author> <title>Rock leaching processes.</title> <journal>Mining Journal</journal> <volume>vol. 12</volume> <number>no. 4</number> <pages>pp. 115 - 120</pages> <date>2011.</date>",
	"<author>Smith J.</author> <title>Ore body modelling.</title> <location>Almaty :</location> <publisher>Nauka Press ,</publisher> <date>1999.</date>",
	"<author>Ivanov A.A.</author> <title>Deep mining methods.</title> <url>www.miningcongress.org</url> <date>2005.</date>",
}

func loadFullCorpus(t *testing.T) []TaggedExample {
	t.Helper()
	examples := make([]TaggedExample, len(fullCorpus))
	for i, tagged := range fullCorpus {
		ex, err := ParseTagged(i, tagged)
		if err != nil {
			t.Fatalf("corpus example %d: %v", i, err)
		}
		examples[i] = ex
	}
	return examples
}

func trainFull(t *testing.T) *Params {
	t.Helper()
	params, err := Train(loadFullCorpus(t), symbol.Default(), DefaultSmoothing)
	if err != nil {
		t.Fatal(err)
	}
	return params
}

func sumRow[K comparable](row map[K]float64) float64 {
	total := 0.0
	for _, v := range row {
		total += v
	}
	return total
}

// Every distribution sums to 1 after normalization and smoothing, and no
// entry inside the declared universe is a literal zero.
func TestTrainNormalizationInvariant(t *testing.T) {
	params := trainFull(t)

	const tol = 1e-9

	if got := sumRow(params.Start); math.Abs(got-1) > tol {
		t.Errorf("start probabilities sum to %g, want 1", got)
	}

	for _, st := range types.States {
		name := st.String()

		trow := params.Transition[name]
		if got := sumRow(trow); math.Abs(got-1) > tol {
			t.Errorf("transition row %s sums to %g, want 1", name, got)
		}
		for to, p := range trow {
			if p <= 0 {
				t.Errorf("transition %s -> %s = %g after smoothing", name, to, p)
			}
		}

		erow := params.Emission[name]
		if got := sumRow(erow); math.Abs(got-1) > tol {
			t.Errorf("emission row %s sums to %g, want 1", name, got)
		}
		for sym, p := range erow {
			if p <= 0 {
				t.Errorf("emission %s / %s = %g after smoothing", name, sym, p)
			}
		}
	}
}

func TestTrainRecordsCatalog(t *testing.T) {
	params := trainFull(t)
	cat := symbol.Default()

	if params.CatalogFingerprint != cat.Fingerprint() {
		t.Errorf("catalog fingerprint = %s, want %s", params.CatalogFingerprint, cat.Fingerprint())
	}
	if len(params.Symbols) != len(cat.Symbols()) {
		t.Errorf("symbol universe has %d entries, want %d", len(params.Symbols), len(cat.Symbols()))
	}
}

// A state with zero training examples cannot be normalized; the error
// must name it.
func TestTrainInsufficientData(t *testing.T) {
	ex, err := ParseTagged(0, "<author>Smith J.</author> <date>2008</date>")
	if err != nil {
		t.Fatal(err)
	}

	_, err = Train([]TaggedExample{ex}, symbol.Default(), DefaultSmoothing)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Train error = %v, want InsufficientDataError", err)
	}
	if !insufficient.State.Field.Valid() {
		t.Errorf("error names invalid state %s", insufficient.State)
	}
}

// An unmatched token is fatal for training: the catalog is incomplete.
func TestTrainUnmatchedTokenFatal(t *testing.T) {
	narrow, err := symbol.New("narrow", []symbol.Entry{{Name: "word", Pattern: `\p{L}+`}})
	if err != nil {
		t.Fatal(err)
	}

	ex, err := ParseTagged(0, "<author>Smith</author> <date>2008</date>")
	if err != nil {
		t.Fatal(err)
	}

	_, err = Train([]TaggedExample{ex}, narrow, DefaultSmoothing)
	var unmatched *symbol.UnmatchedTokenError
	if !errors.As(err, &unmatched) {
		t.Fatalf("Train error = %v, want UnmatchedTokenError", err)
	}
	if unmatched.Token.Text != "2008" {
		t.Errorf("error carries token %q, want 2008", unmatched.Token.Text)
	}
}

// Smoothing conserves probability mass exactly.
func TestSmoothConservation(t *testing.T) {
	tests := []struct {
		name string
		dist []float64
	}{
		{"one zero", []float64{0.5, 0.5, 0}},
		{"many zeros", []float64{1, 0, 0, 0, 0}},
		{"no zeros", []float64{0.25, 0.25, 0.5}},
		{"all zeros", []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := 0.0
			for _, v := range tt.dist {
				before += v
			}

			smooth(tt.dist, 1e-5)

			after := 0.0
			for _, v := range tt.dist {
				after += v
			}
			if math.Abs(after-before) > 1e-12 {
				t.Errorf("mass changed from %g to %g", before, after)
			}
		})
	}
}

func TestNormalizeUniformOnZeroRow(t *testing.T) {
	row := normalize([]float64{0, 0, 0, 0})
	for i, v := range row {
		if v != 0.25 {
			t.Errorf("row[%d] = %g, want 0.25", i, v)
		}
	}
}

// A written then reloaded model must decode identically: same state
// sequence for the same symbols.
func TestParamsRoundTrip(t *testing.T) {
	params := trainFull(t)
	path := filepath.Join(t.TempDir(), "model.yaml")

	if err := params.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	m1, err := params.Compile()
	if err != nil {
		t.Fatal(err)
	}
	m2, err := loaded.Compile()
	if err != nil {
		t.Fatal(err)
	}

	symbols := []types.Symbol{"titleWord", "initial", "dot", "fourDigit", "dot"}
	s1, err := m1.Decode(symbols)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := m2.Decode(symbols)
	if err != nil {
		t.Fatal(err)
	}

	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("decode diverged at %d: %s != %s", i, s1[i], s2[i])
		}
	}
}
