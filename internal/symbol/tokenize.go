// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package symbol

import (
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/refextract/pkg/types"
)

// punctuation is the fixed set of characters emitted as their own
// one-character tokens even when adjacent to a word: "Poland," yields
// "Poland" and ",".
var punctuation = map[rune]bool{
	',': true, '.': true, '-': true, '—': true, '–': true,
	':': true, ';': true, '?': true, '"': true,
	'(': true, ')': true, '[': true, ']': true,
	'«': true, '»': true, '/': true, '_': true,
	'*': true, '&': true, '^': true, '%': true,
	'\'': true, '№': true,
}

// Tokenize splits a reference string into word and punctuation tokens.
// Runs of whitespace separate tokens; each punctuation character becomes
// a one-character token. Byte offsets into the input are retained. Empty
// or whitespace-only input yields an empty sequence, not an error.
// Pure function of its input (R2.1-R2.3).
func Tokenize(text string) []types.Token {
	var tokens []types.Token
	wordStart := -1

	flush := func(end int) {
		if wordStart >= 0 {
			tokens = append(tokens, types.Token{
				Text:  text[wordStart:end],
				Start: wordStart,
				End:   end,
			})
			wordStart = -1
		}
	}

	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case punctuation[r]:
			flush(i)
			end := i + utf8.RuneLen(r)
			tokens = append(tokens, types.Token{
				Text:  text[i:end],
				Start: i,
				End:   end,
			})
		default:
			if wordStart < 0 {
				wordStart = i
			}
		}
	}
	flush(len(text))

	return tokens
}
