// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"

	"github.com/pdiddy/refextract/pkg/types"
)

// Assemble groups the parallel token/state sequences into the final
// record. Maximal runs of consecutive states sharing one field collapse
// into a single span regardless of phase; a field change starts a new
// span, including a rest state of a different field right after another
// field, which signals an ambiguous decode. Span tokens are joined with
// single spaces. A field that recurs in non-adjacent spans keeps only the
// last span's text (last-write-wins). Per prd001-extraction R4.1-R4.3.
func Assemble(tokens []types.Token, states []types.State) (types.Record, error) {
	if len(tokens) != len(states) {
		return types.Record{}, fmt.Errorf("assemble: %d tokens but %d states", len(tokens), len(states))
	}

	var rec types.Record
	var span []string
	var field types.Field

	flush := func() {
		if len(span) > 0 {
			rec.Set(field, strings.Join(span, " "))
			span = nil
		}
	}

	for i, tok := range tokens {
		if states[i].Field != field {
			flush()
			field = states[i].Field
		}
		span = append(span, tok.Text)
	}
	flush()

	return rec, nil
}
