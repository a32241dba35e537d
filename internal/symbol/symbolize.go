// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package symbol

import (
	"fmt"

	"github.com/pdiddy/refextract/pkg/types"
)

// UnmatchedTokenError reports a token no catalog pattern matches. During
// training this is fatal: the corpus is expected to be fully covered by
// the catalog. Decoding uses SymbolizeLoose instead and never sees it.
type UnmatchedTokenError struct {
	Token types.Token
}

func (e *UnmatchedTokenError) Error() string {
	return fmt.Sprintf("no symbol pattern matches token %q at offset %d", e.Token.Text, e.Token.Start)
}

// Symbolize maps one token to the first catalog symbol whose pattern
// matches its full text. Returns *UnmatchedTokenError when nothing
// matches (R3.1, R3.2).
func Symbolize(tok types.Token, cat *Catalog) (types.Symbol, error) {
	if sym, ok := cat.Match(tok.Text); ok {
		return sym, nil
	}
	return "", &UnmatchedTokenError{Token: tok}
}

// SymbolizeLoose maps one token to a symbol, falling back to the reserved
// catch-all when no pattern matches. Used at decode time so one odd token
// in a batch never aborts the pipeline (R3.3).
func SymbolizeLoose(tok types.Token, cat *Catalog) types.Symbol {
	if sym, ok := cat.Match(tok.Text); ok {
		return sym
	}
	return types.SymbolOther
}

// SymbolizeAll maps a token sequence to its symbol sequence, same length
// and order. Strict: the first unmatched token fails the whole call.
func SymbolizeAll(tokens []types.Token, cat *Catalog) ([]types.Symbol, error) {
	symbols := make([]types.Symbol, len(tokens))
	for i, tok := range tokens {
		sym, err := Symbolize(tok, cat)
		if err != nil {
			return nil, err
		}
		symbols[i] = sym
	}
	return symbols, nil
}

// SymbolizeAllLoose maps a token sequence to symbols with the catch-all
// fallback for unmatched tokens.
func SymbolizeAllLoose(tokens []types.Token, cat *Catalog) []types.Symbol {
	symbols := make([]types.Symbol, len(tokens))
	for i, tok := range tokens {
		symbols[i] = SymbolizeLoose(tok, cat)
	}
	return symbols
}
