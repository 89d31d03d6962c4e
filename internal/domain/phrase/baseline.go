package phrase

import (
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// BaselineSet holds the phrase texts already in circulation during the
// earliest years of the corpus. Only membership matters.
type BaselineSet struct {
	texts   map[string]struct{}
	cutoff  int
	defined bool
}

// BuildBaseline collects the distinct texts of every record whose document
// year is ≤ min_year + windowYears. An empty index yields an empty set.
func BuildBaseline(idx *Index, windowYears int) (BaselineSet, error) {
	if windowYears < 0 {
		return BaselineSet{}, errors.Validation("baseline window must not be negative").WithDetailf("window=%d", windowYears)
	}
	set := BaselineSet{texts: make(map[string]struct{})}
	minYear, _, ok := idx.YearRange()
	if !ok {
		return set, nil
	}
	set.cutoff = minYear + windowYears
	set.defined = true
	for _, text := range idx.Filter(YearAtMost(set.cutoff)).Texts() {
		set.texts[text] = struct{}{}
	}
	return set, nil
}

// NewBaselineSet builds a set from explicit texts.
func NewBaselineSet(texts ...string) BaselineSet {
	set := BaselineSet{texts: make(map[string]struct{}, len(texts))}
	for _, t := range texts {
		set.texts[t] = struct{}{}
	}
	return set
}

// Contains reports whether text is a baseline phrase.
func (b BaselineSet) Contains(text string) bool {
	_, ok := b.texts[text]
	return ok
}

// Len returns the number of baseline phrases.
func (b BaselineSet) Len() int { return len(b.texts) }

// CutoffYear returns the last year included in the baseline. ok is false when
// the set was not derived from an index.
func (b BaselineSet) CutoffYear() (int, bool) { return b.cutoff, b.defined }

//Personal.AI order the ending
