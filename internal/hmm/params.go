// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hmm holds the hidden Markov model behind the extractor: trained
// probability tables, the training procedure with additive smoothing, and
// the Viterbi decoder.
// Implements: prd003-training (R1-R4), prd001-extraction (R2, R3).
package hmm

import (
	"fmt"
	"math"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refextract/pkg/types"
)

// Params is the persisted probability snapshot produced by training.
// Tables are keyed by state and symbol name so the file is readable and
// diffable. Immutable once loaded; all concurrent decodes share one copy.
type Params struct {
	// CatalogName and CatalogFingerprint identify the symbol catalog
	// the model was trained against. Decoding refuses a mismatched
	// catalog: the state and symbol spaces are coupled to it.
	CatalogName        string `yaml:"catalog_name" json:"catalog_name"`
	CatalogFingerprint string `yaml:"catalog_fingerprint" json:"catalog_fingerprint"`

	// Symbols is the symbol universe at training time, in catalog order,
	// with the reserved catch-all last.
	Symbols []types.Symbol `yaml:"symbols" json:"symbols"`

	// Start maps state name to start probability. Sums to 1.
	Start map[string]float64 `yaml:"start" json:"start"`

	// Transition maps source state name to a distribution over target
	// state names. Each row sums to 1.
	Transition map[string]map[string]float64 `yaml:"transition" json:"transition"`

	// Emission maps state name to a distribution over symbol names.
	// Each row sums to 1.
	Emission map[string]map[types.Symbol]float64 `yaml:"emission" json:"emission"`
}

// Load reads model parameters from a YAML file and validates them.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	var p Params
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &p, nil
}

// WriteFile serializes the parameters to YAML at path. Round-trips
// losslessly: a written then reloaded model decodes identically.
func (p *Params) WriteFile(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// distTolerance is the accepted drift of a distribution's total from 1.
const distTolerance = 1e-6

// Validate checks that every state key parses, every table row is a
// distribution over known states/symbols, and each row sums to 1 within
// tolerance.
func (p *Params) Validate() error {
	if len(p.Symbols) == 0 {
		return fmt.Errorf("no symbols declared")
	}
	symKnown := make(map[types.Symbol]bool, len(p.Symbols))
	for _, s := range p.Symbols {
		symKnown[s] = true
	}
	if !symKnown[types.SymbolOther] {
		return fmt.Errorf("symbol universe missing reserved %q", types.SymbolOther)
	}

	if err := checkSum("start", p.Start); err != nil {
		return err
	}
	for name := range p.Start {
		if _, err := types.ParseState(name); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}

	for from, row := range p.Transition {
		if _, err := types.ParseState(from); err != nil {
			return fmt.Errorf("transition: %w", err)
		}
		for to := range row {
			if _, err := types.ParseState(to); err != nil {
				return fmt.Errorf("transition from %s: %w", from, err)
			}
		}
		if err := checkSum("transition from "+from, row); err != nil {
			return err
		}
	}

	for name, row := range p.Emission {
		if _, err := types.ParseState(name); err != nil {
			return fmt.Errorf("emission: %w", err)
		}
		for sym := range row {
			if !symKnown[sym] {
				return fmt.Errorf("emission from %s: unknown symbol %q", name, sym)
			}
		}
		sums := make(map[string]float64, len(row))
		for sym, v := range row {
			sums[string(sym)] = v
		}
		if err := checkSum("emission from "+name, sums); err != nil {
			return err
		}
	}

	return nil
}

func checkSum(what string, dist map[string]float64) error {
	if len(dist) == 0 {
		return fmt.Errorf("%s: empty distribution", what)
	}
	total := 0.0
	for key, v := range dist {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%s: probability %g for %q out of [0,1]", what, v, key)
		}
		total += v
	}
	if math.Abs(total-1) > distTolerance {
		return fmt.Errorf("%s: probabilities sum to %g, want 1", what, total)
	}
	return nil
}
