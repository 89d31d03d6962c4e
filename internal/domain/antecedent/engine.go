// Package antecedent answers, for a target document, how many of its phrases
// of each length were already used by an earlier document of another author.
package antecedent

import (
	"context"

	"github.com/RoaringBitmap/roaring"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/phrase"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Analyzer is the query surface consumed by the batch coordinator.
type Analyzer interface {
	Analyze(ctx context.Context, documentID string) ([]Result, error)
}

// Options configures an Engine.
type Options struct {
	Filters []CrossFilter

	// EmitEmptyLengths emits a row with undefined fractions for every corpus
	// length the target has no phrases of. By default such lengths are skipped.
	EmitEmptyLengths bool
}

// Engine evaluates targets against a shared, read-only index. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	idx       *phrase.Index
	baseline  phrase.BaselineSet
	filters   []CrossFilter
	emitEmpty bool
	schema    Schema
}

// NewEngine validates the filter list and returns an Engine.
func NewEngine(idx *phrase.Index, baseline phrase.BaselineSet, opts Options) (*Engine, error) {
	if idx == nil {
		return nil, errors.InvalidParam("phrase index is required")
	}
	seen := make(map[string]bool, len(opts.Filters))
	for _, f := range opts.Filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		col := f.Column()
		if seen[col] {
			return nil, errors.Validation("duplicate cross-filter column").WithDetail("column=" + col)
		}
		seen[col] = true
	}
	filters := make([]CrossFilter, len(opts.Filters))
	copy(filters, opts.Filters)
	return &Engine{
		idx:       idx,
		baseline:  baseline,
		filters:   filters,
		emitEmpty: opts.EmitEmptyLengths,
		schema:    NewSchema(filters),
	}, nil
}

// Schema returns the column layout of the rows this engine produces.
func (e *Engine) Schema() Schema { return e.schema }

// Index returns the index the engine queries.
func (e *Engine) Index() *phrase.Index { return e.idx }

// target resolves id and computes the documents that may supply antecedents:
// strictly older, by another author.
func (e *Engine) target(id string) (*corpus.Document, *roaring.Bitmap, error) {
	doc, ok := e.idx.Document(id)
	if !ok {
		return nil, nil, errors.UnknownDocument(id)
	}
	eligible := e.idx.DocsBefore(doc.Year)
	eligible.AndNot(e.idx.DocsByAuthor(doc.Author))
	if ord, ok := e.idx.Ordinal(id); ok {
		eligible.Remove(ord)
	}
	return doc, eligible, nil
}

// Analyze returns one row per phrase length for documentID, in canonical
// length order. Counts are of distinct phrase texts.
func (e *Engine) Analyze(ctx context.Context, documentID string) ([]Result, error) {
	doc, eligible, err := e.target(documentID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*roaring.Bitmap, len(e.filters))
	for i, f := range e.filters {
		filtered[i] = roaring.And(eligible, f.documents(e.idx, doc))
	}

	var results []Result
	for _, length := range e.idx.Lengths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts := e.idx.DocumentPhrases(documentID, length)
		if len(texts) == 0 && !e.emitEmpty {
			continue
		}

		r := Result{
			DocumentID:   documentID,
			Length:       length,
			PhraseCount:  len(texts),
			FilterCounts: make([]int, len(e.filters)),
		}
		for _, text := range texts {
			post := e.idx.Postings(length, text)
			baseline := e.baseline.Contains(text)
			if post.Intersects(eligible) {
				r.AntecedentCount++
				if !baseline {
					r.ModernAntecedentCount++
				}
			}
			for i, f := range e.filters {
				if f.ModernOnly && baseline {
					continue
				}
				if post.Intersects(filtered[i]) {
					r.FilterCounts[i]++
				}
			}
		}

		r.AntecedentFraction = fractionOf(r.AntecedentCount, r.PhraseCount)
		r.ModernAntecedentFraction = fractionOf(r.ModernAntecedentCount, r.PhraseCount)
		r.FilterFractions = make([]Fraction, len(e.filters))
		for i, c := range r.FilterCounts {
			r.FilterFractions[i] = fractionOf(c, r.PhraseCount)
		}
		results = append(results, r)
	}
	return results, nil
}

// PhraseSplit lists a document's antecedent phrases of one length, in the
// document's phrase order.
type PhraseSplit struct {
	All    []string
	Modern []string
}

// Antecedents returns, per length, the target's phrases that have an
// antecedent, with the baseline-free subset alongside. Lengths with no
// antecedent phrases are omitted.
func (e *Engine) Antecedents(ctx context.Context, documentID string) (map[corpus.Length]PhraseSplit, error) {
	_, eligible, err := e.target(documentID)
	if err != nil {
		return nil, err
	}
	out := make(map[corpus.Length]PhraseSplit)
	for _, length := range e.idx.Lengths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var split PhraseSplit
		for _, text := range e.idx.DocumentPhrases(documentID, length) {
			if !e.idx.Postings(length, text).Intersects(eligible) {
				continue
			}
			split.All = append(split.All, text)
			if !e.baseline.Contains(text) {
				split.Modern = append(split.Modern, text)
			}
		}
		if len(split.All) > 0 {
			out[length] = split
		}
	}
	return out, nil
}

//Personal.AI order the ending
