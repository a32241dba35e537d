// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hmm

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refextract/internal/symbol"
	"github.com/pdiddy/refextract/pkg/types"
)

// TaggedExample is one manually annotated reference: parallel token and
// state sequences. Used only during training and discarded afterwards.
type TaggedExample struct {
	Tokens []types.Token
	States []types.State
}

// AnnotationError reports malformed field markup in a training example:
// an unknown tag, an unbalanced tag, or text outside any tag. Fatal for
// training; names the example and the offending location.
type AnnotationError struct {
	Example int    // zero-based index into the corpus
	Offset  int    // byte offset into the example's tagged text
	Reason  string // what is wrong at that location
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("example %d, offset %d: %s", e.Example, e.Offset, e.Reason)
}

// corpusFile is the on-disk YAML form of a training corpus: one tagged
// reference string per entry, with field spans marked as
// <field>text</field>.
type corpusFile struct {
	Examples []string `yaml:"examples"`
}

// LoadCorpus reads a tagged corpus YAML file and converts each entry into
// parallel token/state sequences. The first token of every tagged span is
// labeled {field, start}; the remainder {field, rest}.
func LoadCorpus(path string) ([]TaggedExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	var cf corpusFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	if len(cf.Examples) == 0 {
		return nil, fmt.Errorf("corpus %s: no examples", path)
	}

	examples := make([]TaggedExample, 0, len(cf.Examples))
	for i, tagged := range cf.Examples {
		ex, err := ParseTagged(i, tagged)
		if err != nil {
			return nil, err
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

// ParseTagged converts one tagged reference string into a TaggedExample.
// exampleIdx is only used in error reporting.
func ParseTagged(exampleIdx int, tagged string) (TaggedExample, error) {
	var ex TaggedExample
	pos := 0

	for pos < len(tagged) {
		// Skip whitespace between spans.
		rest := tagged[pos:]
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		pos += len(rest) - len(trimmed)
		if pos >= len(tagged) {
			break
		}

		if tagged[pos] != '<' {
			return ex, &AnnotationError{exampleIdx, pos, "text outside any field tag"}
		}

		gt := strings.IndexByte(tagged[pos:], '>')
		if gt < 0 {
			return ex, &AnnotationError{exampleIdx, pos, "unterminated tag"}
		}
		field := types.Field(tagged[pos+1 : pos+gt])
		if !field.Valid() {
			return ex, &AnnotationError{exampleIdx, pos, fmt.Sprintf("unknown field tag %q", string(field))}
		}
		spanStart := pos + gt + 1

		closing := "</" + string(field) + ">"
		end := strings.Index(tagged[spanStart:], closing)
		if end < 0 {
			return ex, &AnnotationError{exampleIdx, pos, fmt.Sprintf("unbalanced tag <%s>", string(field))}
		}

		span := tagged[spanStart : spanStart+end]
		tokens := symbol.Tokenize(span)
		if len(tokens) == 0 {
			return ex, &AnnotationError{exampleIdx, spanStart, fmt.Sprintf("empty <%s> span", string(field))}
		}

		for j, tok := range tokens {
			// Re-base offsets onto the tagged string.
			tok.Start += spanStart
			tok.End += spanStart
			ex.Tokens = append(ex.Tokens, tok)

			phase := types.PhaseRest
			if j == 0 {
				phase = types.PhaseStart
			}
			ex.States = append(ex.States, types.State{Field: field, Phase: phase})
		}

		pos = spanStart + end + len(closing)
	}

	if len(ex.Tokens) == 0 {
		return ex, &AnnotationError{exampleIdx, 0, "no tagged spans"}
	}
	return ex, nil
}
