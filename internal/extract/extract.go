// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs the reference extraction pipeline: tokenize the
// raw string, symbolize against the catalog, Viterbi-decode the hidden
// field states, and assemble the structured record.
// Implements: prd001-extraction (R1-R5).
package extract

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/refextract/internal/hmm"
	"github.com/pdiddy/refextract/internal/symbol"
	"github.com/pdiddy/refextract/pkg/types"
)

// Extractor decodes raw reference strings into structured records. It is
// safe for concurrent use: the catalog and compiled model are read-only
// after construction.
type Extractor struct {
	cat   *symbol.Catalog
	model *hmm.Model
}

// New builds an extractor from a catalog and trained parameters. The
// parameters must have been trained against this exact catalog; a
// fingerprint mismatch means the state/symbol spaces no longer line up
// and is refused (R5.3).
func New(cat *symbol.Catalog, params *hmm.Params) (*Extractor, error) {
	if params.CatalogFingerprint != cat.Fingerprint() {
		return nil, fmt.Errorf("model was trained against catalog %s (fingerprint %s), current catalog %s has fingerprint %s",
			params.CatalogName, params.CatalogFingerprint, cat.Name(), cat.Fingerprint())
	}
	model, err := params.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling model: %w", err)
	}
	return &Extractor{cat: cat, model: model}, nil
}

// Extract decodes a single reference string. Unmatched tokens fall back
// to the reserved catch-all symbol, so one odd token never aborts the
// call; an empty or whitespace-only input fails with hmm.ErrEmptyInput.
func (e *Extractor) Extract(raw string) (types.Record, error) {
	tokens := symbol.Tokenize(raw)
	if len(tokens) == 0 {
		return types.Record{}, fmt.Errorf("reference %q: %w", raw, hmm.ErrEmptyInput)
	}

	symbols := symbol.SymbolizeAllLoose(tokens, e.cat)

	states, err := e.model.Decode(symbols)
	if err != nil {
		return types.Record{}, fmt.Errorf("decoding reference: %w", err)
	}

	rec, err := Assemble(tokens, states)
	if err != nil {
		return types.Record{}, err
	}
	rec.Raw = raw
	return rec, nil
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Failed    int
}

// Total returns the number of input lines processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed
}

// HasFailures reports whether any line failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractBatch decodes many reference strings, partitioning them across
// workers. Decoding is pure and CPU-bound and the model is shared
// read-only, so workers need no locking beyond handing out line indices.
// Results keep input order. A failed line is reported to w, recorded in
// the result's Errors, and never aborts the batch.
func (e *Extractor) ExtractBatch(ctx context.Context, lines []string, workers int, w io.Writer) (*types.ExtractionResult, BatchSummary) {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(lines) {
		workers = len(lines)
	}

	records := make([]*types.Record, len(lines))
	errs := make([]error, len(lines))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := e.Extract(lines[i])
				if err != nil {
					errs[i] = err
					continue
				}
				records[i] = &rec
			}
		}()
	}

feed:
	for i := range lines {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	result := &types.ExtractionResult{RunID: newRunID()}
	var summary BatchSummary

	for i := range lines {
		switch {
		case records[i] != nil:
			result.Records = append(result.Records, *records[i])
			summary.Extracted++
		case errs[i] != nil:
			fmt.Fprintf(w, "failed  line %d: %v\n", i+1, errs[i])
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", i+1, errs[i]))
			summary.Failed++
		default:
			// Cancelled before this line was handed out.
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", i+1, ctx.Err()))
			summary.Failed++
		}
	}

	fmt.Fprintf(w, "\nextracted: %d, failed: %d\n", summary.Extracted, summary.Failed)
	return result, summary
}

// newRunID returns a ULID identifying one extraction run.
func newRunID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
