// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FieldValue is one extracted field with its reconstructed text.
type FieldValue struct {
	// Field names the bibliographic field.
	Field Field `json:"field" yaml:"field"`

	// Text is the field's token texts joined with single spaces.
	Text string `json:"text" yaml:"text"`
}

// Record is the structured result of decoding one reference string: an
// ordered mapping from field to extracted text. Field order is the order
// of first appearance in the input. Created fresh per input, immutable
// once returned. Per prd001-extraction R4.
type Record struct {
	// Raw is the original reference string the record was decoded from.
	Raw string `json:"raw" yaml:"raw"`

	// Fields holds the extracted values in first-appearance order.
	Fields []FieldValue `json:"fields" yaml:"fields"`
}

// Get returns the extracted text for a field and whether it was present.
func (r *Record) Get(f Field) (string, bool) {
	for _, fv := range r.Fields {
		if fv.Field == f {
			return fv.Text, true
		}
	}
	return "", false
}

// Set records text for a field. A field seen before keeps its original
// position but takes the new text; later spans for a recurring field
// replace earlier ones (last-write-wins).
func (r *Record) Set(f Field, text string) {
	for i := range r.Fields {
		if r.Fields[i].Field == f {
			r.Fields[i].Text = text
			return
		}
	}
	r.Fields = append(r.Fields, FieldValue{Field: f, Text: text})
}

// ExtractionResult holds the output of a batch extraction run, suitable
// for YAML serialization and store ingestion. Per prd004-store R1.1.
type ExtractionResult struct {
	// RunID is a ULID identifying the extraction run that produced
	// these records.
	RunID string `json:"run_id" yaml:"run_id"`

	// Model is the path or name of the model parameters used.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Records contains one entry per successfully decoded input line,
	// in input order.
	Records []Record `json:"records" yaml:"records"`

	// Errors records per-line failures as "line N: message" strings.
	// A failed line never aborts the batch.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}
