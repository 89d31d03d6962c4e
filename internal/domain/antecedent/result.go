package antecedent

import (
	"strconv"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
)

// Result is one analysis row for a (document, length) pair.
type Result struct {
	DocumentID            string
	Length                corpus.Length
	PhraseCount           int
	AntecedentCount       int
	ModernAntecedentCount int
	FilterCounts          []int

	AntecedentFraction       Fraction
	ModernAntecedentFraction Fraction
	FilterFractions          []Fraction
}

// Schema fixes the column layout of result rows for one filter list. The same
// Schema is used by every chunk so their outputs concatenate cleanly.
type Schema struct {
	filters []string
}

// NewSchema derives the layout from the configured filters.
func NewSchema(filters []CrossFilter) Schema {
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.Column()
	}
	return Schema{filters: names}
}

// FilterColumns returns the column stems of the cross-filters in order.
func (s Schema) FilterColumns() []string {
	out := make([]string, len(s.filters))
	copy(out, s.filters)
	return out
}

// Header returns the column names.
func (s Schema) Header() []string {
	h := []string{"document_id", "length", "phrase_count", "antecedent_count", "modern_antecedent_count"}
	for _, f := range s.filters {
		h = append(h, f+"_count")
	}
	h = append(h, "antecedent_fraction", "modern_antecedent_fraction")
	for _, f := range s.filters {
		h = append(h, f+"_fraction")
	}
	return h
}

// Row renders r in header order.
func (s Schema) Row(r Result) []string {
	row := []string{
		r.DocumentID,
		r.Length.String(),
		strconv.Itoa(r.PhraseCount),
		strconv.Itoa(r.AntecedentCount),
		strconv.Itoa(r.ModernAntecedentCount),
	}
	for i := range s.filters {
		row = append(row, strconv.Itoa(valueAt(r.FilterCounts, i)))
	}
	row = append(row, r.AntecedentFraction.String(), r.ModernAntecedentFraction.String())
	for i := range s.filters {
		var f Fraction
		if i < len(r.FilterFractions) {
			f = r.FilterFractions[i]
		}
		row = append(row, f.String())
	}
	return row
}

// FilterMap pairs filter columns with their counts, for sinks that store them
// as a document.
func (s Schema) FilterMap(r Result) map[string]int {
	out := make(map[string]int, len(s.filters))
	for i, f := range s.filters {
		out[f] = valueAt(r.FilterCounts, i)
	}
	return out
}

func valueAt(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

//Personal.AI order the ending
