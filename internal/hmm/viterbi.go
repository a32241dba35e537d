// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hmm

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/refextract/pkg/types"
)

// ErrEmptyInput is returned by Decode for an empty symbol sequence.
// Fatal for that call; the caller decides whether to skip or abort
// the batch.
var ErrEmptyInput = errors.New("empty symbol sequence")

// Model is the compiled, decode-ready form of Params: dense log-space
// matrices indexed by the canonical state ordering. Compiling once and
// sharing the result read-only keeps concurrent decodes lock-free.
type Model struct {
	states   []types.State
	symIdx   map[types.Symbol]int
	otherIdx int

	start []float64   // log start probability per state
	trans [][]float64 // log transition probability [from][to]
	emit  [][]float64 // log emission probability [state][symbol]
}

// Compile turns validated parameters into a Model. The model's state
// space is the set of states present in the start table, kept in the
// canonical ordering; each must also have transition and emission rows.
func (p *Params) Compile() (*Model, error) {
	states := make([]types.State, 0, len(types.States))
	for _, st := range types.States {
		if _, ok := p.Start[st.String()]; ok {
			states = append(states, st)
		}
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("start: no known states")
	}
	q := len(states)

	m := &Model{
		states:   states,
		symIdx:   make(map[types.Symbol]int, len(p.Symbols)),
		otherIdx: -1,
		start:    make([]float64, q),
		trans:    make([][]float64, q),
		emit:     make([][]float64, q),
	}

	for i, sym := range p.Symbols {
		m.symIdx[sym] = i
		if sym == types.SymbolOther {
			m.otherIdx = i
		}
	}
	if m.otherIdx < 0 {
		return nil, fmt.Errorf("symbol universe missing reserved %q", types.SymbolOther)
	}

	for si, st := range states {
		name := st.String()

		sp, ok := p.Start[name]
		if !ok {
			return nil, fmt.Errorf("start: missing state %s", name)
		}
		m.start[si] = logProb(sp)

		trow, ok := p.Transition[name]
		if !ok {
			return nil, fmt.Errorf("transition: missing state %s", name)
		}
		m.trans[si] = make([]float64, q)
		for ti, to := range states {
			tp, ok := trow[to.String()]
			if !ok {
				return nil, fmt.Errorf("transition %s -> %s: missing entry", name, to)
			}
			m.trans[si][ti] = logProb(tp)
		}

		erow, ok := p.Emission[name]
		if !ok {
			return nil, fmt.Errorf("emission: missing state %s", name)
		}
		m.emit[si] = make([]float64, len(p.Symbols))
		for yi, sym := range p.Symbols {
			ep, ok := erow[sym]
			if !ok {
				return nil, fmt.Errorf("emission %s / %s: missing entry", name, sym)
			}
			m.emit[si][yi] = logProb(ep)
		}
	}

	return m, nil
}

// logProb maps a probability to log space. A structural zero becomes
// -Inf, which propagates correctly through max/argmax.
func logProb(p float64) float64 {
	if p == 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// symbolIndex maps a symbol to its emission column. A symbol outside the
// trained universe falls back to the catch-all column, mirroring the
// decode-time symbolizer policy.
func (m *Model) symbolIndex(sym types.Symbol) int {
	if i, ok := m.symIdx[sym]; ok {
		return i
	}
	return m.otherIdx
}

// Decode computes the exact maximum-likelihood state sequence for the
// observed symbols (standard Viterbi, no pruning). Probabilities are
// summed in log space to avoid underflow on long references. Ties pick
// the predecessor with the lowest canonical state index, so output is
// reproducible. O(T*Q^2) time, O(T*Q) space.
func (m *Model) Decode(symbols []types.Symbol) ([]types.State, error) {
	n := len(symbols)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	q := len(m.states)

	delta := make([][]float64, n)
	back := make([][]int, n)
	for t := range delta {
		delta[t] = make([]float64, q)
		back[t] = make([]int, q)
	}

	y0 := m.symbolIndex(symbols[0])
	for s := 0; s < q; s++ {
		delta[0][s] = m.start[s] + m.emit[s][y0]
	}

	for t := 1; t < n; t++ {
		yt := m.symbolIndex(symbols[t])
		for s := 0; s < q; s++ {
			best := math.Inf(-1)
			bestPrev := 0
			for prev := 0; prev < q; prev++ {
				score := delta[t-1][prev] + m.trans[prev][s]
				// Strict > keeps the lowest-index predecessor on ties.
				if score > best {
					best = score
					bestPrev = prev
				}
			}
			delta[t][s] = best + m.emit[s][yt]
			back[t][s] = bestPrev
		}
	}

	last := 0
	bestFinal := math.Inf(-1)
	for s := 0; s < q; s++ {
		if delta[n-1][s] > bestFinal {
			bestFinal = delta[n-1][s]
			last = s
		}
	}

	path := make([]types.State, n)
	path[n-1] = m.states[last]
	for t := n - 1; t > 0; t-- {
		last = back[t][last]
		path[t-1] = m.states[last]
	}

	return path, nil
}
