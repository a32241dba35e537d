// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hmm

import (
	"fmt"

	"github.com/pdiddy/refextract/internal/symbol"
	"github.com/pdiddy/refextract/pkg/types"
)

// DefaultSmoothing is the additive smoothing constant assigned to
// zero-count events when the caller does not configure one.
const DefaultSmoothing = 1e-5

// InsufficientDataError reports a state that never appears in the
// training corpus. Its emission and transition rows have a zero total
// and cannot be normalized; the corpus must cover every state.
type InsufficientDataError struct {
	State types.State
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("state %s never appears in the training corpus", e.State)
}

// Train derives model parameters from a tagged corpus. It is a pure
// reduction over the examples: symbolize each token strictly, accumulate
// start/transition/emission counts, normalize each row, then smooth
// zero-count events with the constant c (R1-R4).
//
// Symbolization is strict here: a token no catalog pattern matches means
// the catalog is incomplete, and training halts with the offending token.
func Train(examples []TaggedExample, cat *symbol.Catalog, c float64) (*Params, error) {
	if c <= 0 {
		c = DefaultSmoothing
	}

	states := types.States
	symbols := cat.Symbols()

	symIdx := make(map[types.Symbol]int, len(symbols))
	for i, s := range symbols {
		symIdx[s] = i
	}

	q := len(states)
	startCount := make([]float64, q)
	transCount := newMatrix(q, q)
	emitCount := newMatrix(q, len(symbols))

	for i, ex := range examples {
		if len(ex.Tokens) != len(ex.States) {
			return nil, fmt.Errorf("example %d: %d tokens but %d states", i, len(ex.Tokens), len(ex.States))
		}

		syms, err := symbol.SymbolizeAll(ex.Tokens, cat)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}

		prev := -1
		for t, st := range ex.States {
			si := types.StateIndex(st)
			if si < 0 {
				return nil, fmt.Errorf("example %d: unknown state %s", i, st)
			}
			emitCount[si][symIdx[syms[t]]]++
			if t == 0 {
				startCount[si]++
			} else {
				transCount[prev][si]++
			}
			prev = si
		}
	}

	// Every state must be observed at least once; a zero emission row
	// cannot be normalized (R3.2).
	for si, row := range emitCount {
		if rowTotal(row) == 0 {
			return nil, &InsufficientDataError{State: states[si]}
		}
	}

	start := normalize(startCount)
	smooth(start, c)

	trans := make([][]float64, q)
	emit := make([][]float64, q)
	for si := range states {
		trans[si] = normalize(transCount[si])
		smooth(trans[si], c)
		emit[si] = normalize(emitCount[si])
		smooth(emit[si], c)
	}

	p := &Params{
		CatalogName:        cat.Name(),
		CatalogFingerprint: cat.Fingerprint(),
		Symbols:            symbols,
		Start:              make(map[string]float64, q),
		Transition:         make(map[string]map[string]float64, q),
		Emission:           make(map[string]map[types.Symbol]float64, q),
	}
	for si, st := range states {
		name := st.String()
		p.Start[name] = start[si]

		row := make(map[string]float64, q)
		for ti, to := range states {
			row[to.String()] = trans[si][ti]
		}
		p.Transition[name] = row

		erow := make(map[types.Symbol]float64, len(symbols))
		for yi, sym := range symbols {
			erow[sym] = emit[si][yi]
		}
		p.Emission[name] = erow
	}

	return p, nil
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func rowTotal(row []float64) float64 {
	total := 0.0
	for _, v := range row {
		total += v
	}
	return total
}

// normalize divides a count row by its total. An all-zero row becomes
// uniform: it belongs to a state that is observed but never in this role
// (e.g. only ever the last token, so no outgoing transitions), and a
// uniform row is the least-commitment distribution for it.
func normalize(row []float64) []float64 {
	out := make([]float64, len(row))
	total := rowTotal(row)
	if total == 0 {
		for i := range out {
			out[i] = 1 / float64(len(row))
		}
		return out
	}
	for i, v := range row {
		out[i] = v / total
	}
	return out
}

// smooth replaces each zero probability with the constant c and subtracts
// Z*c/NZ from every non-zero probability, where Z and NZ are the zero and
// non-zero event counts. Probability mass is conserved: the row still
// sums to 1, and the decoder never meets a literal zero for an event
// inside the declared state/symbol universe (R4).
func smooth(dist []float64, c float64) {
	zero, nonzero := 0, 0
	for _, v := range dist {
		if v == 0 {
			zero++
		} else {
			nonzero++
		}
	}
	if zero == 0 || nonzero == 0 {
		return
	}

	tax := float64(zero) * c / float64(nonzero)
	for i, v := range dist {
		if v == 0 {
			dist[i] = c
		} else {
			dist[i] = v - tax
		}
	}
}
