// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package symbol

import (
	"strings"
	"testing"

	"github.com/pdiddy/refextract/pkg/types"
)

func tokenTexts(tokens []types.Token) []string {
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	return texts
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "words only",
			text: "Open Cast Mining",
			want: []string{"Open", "Cast", "Mining"},
		},
		{
			name: "punctuation adjacent to word",
			text: "Poland,",
			want: []string{"Poland", ","},
		},
		{
			name: "initials",
			text: "Rakishev B.R.",
			want: []string{"Rakishev", "B", ".", "R", "."},
		},
		{
			name: "slashes and ampersand",
			text: "//The Congress & Expo",
			want: []string{"/", "/", "The", "Congress", "&", "Expo"},
		},
		{
			name: "guillemets",
			text: "«Недра»",
			want: []string{"«", "Недра", "»"},
		},
		{
			name: "page range",
			text: "pp. 115-120",
			want: []string{"pp", ".", "115", "-", "120"},
		},
		{
			name: "collapsing whitespace",
			text: "  a \t b \n c  ",
			want: []string{"a", "b", "c"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \t\n ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenTexts(Tokenize(tt.text))
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeOffsets(t *testing.T) {
	text := "Expo 2008."
	tokens := Tokenize(text)
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	for i, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("token[%d]: offsets [%d,%d) yield %q, want %q",
				i, tok.Start, tok.End, text[tok.Start:tok.End], tok.Text)
		}
	}
}

// Re-tokenizing the space-joined token texts reproduces the same token
// sequence: tokenization is stable modulo whitespace collapsing.
func TestTokenizeIdempotent(t *testing.T) {
	inputs := []string{
		"Rakishev B.R. Open Cast Mining in Kazakhstan Under Market Conditions. //The 21st World Mining Congress & Expo 2008.",
		"Pivovarova T. «Недра», Москва: pp. 115-120",
		"a,b;c(d)e",
	}

	for _, text := range inputs {
		first := tokenTexts(Tokenize(text))
		second := tokenTexts(Tokenize(strings.Join(first, " ")))
		if strings.Join(first, "\x00") != strings.Join(second, "\x00") {
			t.Errorf("re-tokenizing %q: got %v, want %v", text, second, first)
		}
	}
}
