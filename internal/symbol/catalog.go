// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package symbol implements the observable side of the extraction model:
// tokenizing reference strings and mapping tokens to named symbol classes
// from an ordered catalog.
// Implements: prd002-catalog (R1-R3).
package symbol

import (
	"crypto/sha256"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refextract/pkg/types"
)

// Entry is one named symbol class with its matching pattern.
type Entry struct {
	// Name identifies the symbol class (e.g. "comma", "fourDigit").
	Name types.Symbol `yaml:"name"`

	// Pattern is the anchored regular expression a token's full text
	// must match.
	Pattern string `yaml:"pattern"`
}

// Catalog is a fixed, ordered sequence of symbol classes. Matching tries
// patterns in declaration order and the first match wins: more specific
// patterns must precede more general ones (fourDigit before digit). The
// linear scan is deliberate, ordering encodes specificity precedence.
type Catalog struct {
	name     string
	entries  []Entry
	compiled []*regexp.Regexp
}

// catalogFile is the on-disk YAML form of a catalog.
type catalogFile struct {
	Name    string  `yaml:"name"`
	Symbols []Entry `yaml:"symbols"`
}

// New builds a catalog from an ordered list of entries. Every pattern is
// compiled with full-match anchoring. The reserved name "other" may not
// be declared; it is always appended implicitly as the pattern-less
// catch-all (R1.3).
func New(name string, entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog %q: no symbols declared", name)
	}

	seen := make(map[types.Symbol]bool, len(entries))
	compiled := make([]*regexp.Regexp, len(entries))

	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog %q: symbol %d has no name", name, i)
		}
		if e.Name == types.SymbolOther {
			return nil, fmt.Errorf("catalog %q: symbol name %q is reserved", name, types.SymbolOther)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("catalog %q: duplicate symbol %q", name, e.Name)
		}
		seen[e.Name] = true

		re, err := regexp.Compile(anchor(e.Pattern))
		if err != nil {
			return nil, fmt.Errorf("catalog %q: symbol %q: %w", name, e.Name, err)
		}
		compiled[i] = re
	}

	return &Catalog{name: name, entries: entries, compiled: compiled}, nil
}

// anchor wraps a pattern so it must match the token's full text.
func anchor(pattern string) string {
	return `\A(?:` + pattern + `)\z`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	name := cf.Name
	if name == "" {
		name = path
	}
	return New(name, cf.Symbols)
}

// Name returns the catalog's declared name.
func (c *Catalog) Name() string { return c.name }

// Symbols returns every symbol name in declaration order, with the
// reserved catch-all appended last. This is the symbol universe the
// trainer and decoder operate over.
func (c *Catalog) Symbols() []types.Symbol {
	out := make([]types.Symbol, 0, len(c.entries)+1)
	for _, e := range c.entries {
		out = append(out, e.Name)
	}
	return append(out, types.SymbolOther)
}

// Match returns the first symbol whose pattern matches the full text,
// in declaration order.
func (c *Catalog) Match(text string) (types.Symbol, bool) {
	for i, re := range c.compiled {
		if re.MatchString(text) {
			return c.entries[i].Name, true
		}
	}
	return "", false
}

// Fingerprint returns a short digest of the catalog's name, symbol names,
// and patterns. Trained model parameters record it so decoding can refuse
// a model trained against a different catalog: the state and symbol
// spaces are coupled to the catalog version.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(c.name))
	for _, e := range c.entries {
		h.Write([]byte(e.Name))
		h.Write([]byte{0})
		h.Write([]byte(e.Pattern))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// WriteFile serializes the catalog to YAML at path.
func (c *Catalog) WriteFile(path string) error {
	data, err := yaml.Marshal(catalogFile{Name: c.name, Symbols: c.entries})
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// defaultEntries is the built-in catalog. Order is significant:
// punctuation first, then domain keywords (English and Russian), then
// digit patterns from specific to general, then case-pattern words.
var defaultEntries = []Entry{
	{Name: "comma", Pattern: `,`},
	{Name: "dot", Pattern: `\.`},
	{Name: "dash", Pattern: `[-–—]`},
	{Name: "colon", Pattern: `:`},
	{Name: "semicolon", Pattern: `;`},
	{Name: "question", Pattern: `\?`},
	{Name: "quote", Pattern: `["«»']`},
	{Name: "lparen", Pattern: `\(`},
	{Name: "rparen", Pattern: `\)`},
	{Name: "lbracket", Pattern: `\[`},
	{Name: "rbracket", Pattern: `\]`},
	{Name: "slash", Pattern: `/`},
	{Name: "punct", Pattern: `[_*&^%#+=~|<>]`},
	{Name: "pagesKeyword", Pattern: `p|pp|pages|Pages|с|стр`},
	{Name: "volumeKeyword", Pattern: `v|vol|Vol|volume|Volume|т|том|Том`},
	{Name: "numberKeyword", Pattern: `no|No|num|number|Number|iss|issue|Issue|№`},
	{Name: "fourDigit", Pattern: `\d{4}`},
	{Name: "digit", Pattern: `\d+`},
	{Name: "ordinal", Pattern: `\d+(?:st|nd|rd|th)`},
	{Name: "initial", Pattern: `\p{Lu}`},
	{Name: "upperWord", Pattern: `\p{Lu}[\p{Lu}\d]+`},
	{Name: "titleWord", Pattern: `\p{Lu}[\p{Ll}\d]+`},
	{Name: "lowerWord", Pattern: `\p{Ll}[\p{Ll}\d]*`},
	{Name: "word", Pattern: `[\p{L}\p{N}]+`},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New("default-v1", defaultEntries)
	if err != nil {
		// The built-in table is covered by tests; a compile failure
		// here is a programming error.
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Describe renders the catalog as an aligned text table for the CLI.
func (c *Catalog) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "catalog %s (fingerprint %s)\n", c.name, c.Fingerprint())
	for i, e := range c.entries {
		fmt.Fprintf(&b, "%3d  %-14s  %s\n", i, e.Name, e.Pattern)
	}
	fmt.Fprintf(&b, "%3d  %-14s  (reserved catch-all)\n", len(c.entries), types.SymbolOther)
	return b.String()
}
