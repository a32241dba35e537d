// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the reference extraction
// pipeline: tokens, symbols, hidden states, and decoded records.
package types

import (
	"fmt"
	"strings"
)

// Field is a bibliographic field recoverable from a reference string.
// Per prd001-extraction R1.1.
type Field string

const (
	FieldAuthor    Field = "author"
	FieldTitle     Field = "title"
	FieldDate      Field = "date"
	FieldPages     Field = "pages"
	FieldVolume    Field = "volume"
	FieldJournal   Field = "journal"
	FieldNumber    Field = "number"
	FieldURL       Field = "url"
	FieldPublisher Field = "publisher"
	FieldLocation  Field = "location"
)

// Fields lists every Field in its canonical order. The order is load-bearing:
// it fixes the State indexing used by the decoder's tie-break rule.
var Fields = []Field{
	FieldAuthor,
	FieldTitle,
	FieldDate,
	FieldPages,
	FieldVolume,
	FieldJournal,
	FieldNumber,
	FieldURL,
	FieldPublisher,
	FieldLocation,
}

// Valid reports whether f is one of the declared fields.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Phase distinguishes the first token of a field span from the remainder.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseRest  Phase = "rest"
)

// State is a hidden label assigned to each token by the decoder: which
// field the token belongs to, and whether it opens the field's span.
// States are never observed directly. Per prd001-extraction R1.2.
type State struct {
	Field Field `json:"field" yaml:"field"`
	Phase Phase `json:"phase" yaml:"phase"`
}

// String renders the state in the "field-phase" form used as a map key in
// the persisted model tables (e.g. "author-start").
func (s State) String() string {
	return string(s.Field) + "-" + string(s.Phase)
}

// ParseState parses the "field-phase" form produced by State.String.
func ParseState(s string) (State, error) {
	i := strings.LastIndex(s, "-")
	if i < 0 {
		return State{}, fmt.Errorf("malformed state %q: want field-phase", s)
	}
	st := State{Field: Field(s[:i]), Phase: Phase(s[i+1:])}
	if !st.Field.Valid() || (st.Phase != PhaseStart && st.Phase != PhaseRest) {
		return State{}, fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}

// States lists every State in its canonical order: fields in declared
// order, start before rest. Index positions are the decoder's tie-break
// ordering, so this slice must never be reordered.
var States = buildStates()

func buildStates() []State {
	out := make([]State, 0, 2*len(Fields))
	for _, f := range Fields {
		out = append(out, State{Field: f, Phase: PhaseStart})
		out = append(out, State{Field: f, Phase: PhaseRest})
	}
	return out
}

// StateIndex returns the canonical index of s, or -1 if s is not a
// declared state.
func StateIndex(s State) int {
	for i, known := range States {
		if known == s {
			return i
		}
	}
	return -1
}

// Symbol names an observable token category from the symbol catalog
// (e.g. "comma", "fourDigit", "upperWord").
type Symbol string

// SymbolOther is the reserved catch-all symbol. It has no pattern in the
// catalog; the symbolizer falls back to it at decode time when no declared
// pattern matches, so decoding never aborts on an unexpected token.
const SymbolOther Symbol = "other"

// Token is an atomic lexical unit of a reference string: a word or a
// single punctuation mark. Offsets are byte positions into the original
// input. Immutable once created.
type Token struct {
	// Text is the token's original text.
	Text string `json:"text" yaml:"text"`

	// Start is the byte offset of the token's first byte in the input.
	Start int `json:"start" yaml:"start"`

	// End is the byte offset one past the token's last byte.
	End int `json:"end" yaml:"end"`
}
