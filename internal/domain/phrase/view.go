package phrase

import (
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
)

// Predicate selects phrase records.
type Predicate func(corpus.PhraseRecord) bool

// ByLength selects records of the given length.
func ByLength(l corpus.Length) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Length == l }
}

// YearBefore selects records from documents strictly older than year.
func YearBefore(year int) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Year < year }
}

// YearAtMost selects records from documents with year ≤ year.
func YearAtMost(year int) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Year <= year }
}

// YearBetween selects records with from ≤ year ≤ to.
func YearBetween(from, to int) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Year >= from && r.Doc.Year <= to }
}

// ExcludeAuthor drops records from documents written by author.
func ExcludeAuthor(author string) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Author != author }
}

// ByAuthor selects records from documents written by author.
func ByAuthor(author string) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Author == author }
}

// ExcludeDocument drops records of document id.
func ExcludeDocument(id string) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.DocumentID != id }
}

// ByCategory selects records from documents of category.
func ByCategory(c corpus.Category) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Category == c }
}

// NotCategory selects records from documents not of category.
func NotCategory(c corpus.Category) Predicate {
	return func(r corpus.PhraseRecord) bool { return r.Doc.Category != c }
}

// And combines predicates; an empty list selects everything.
func And(preds ...Predicate) Predicate {
	return func(r corpus.PhraseRecord) bool {
		for _, p := range preds {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(r corpus.PhraseRecord) bool { return !p(r) }
}

// View is a lazily filtered, read-only window onto an Index. Nothing is copied
// when a View is created; records are tested on access.
type View struct {
	idx  *Index
	pred Predicate
}

// Filter returns a view of the records accepted by pred.
func (idx *Index) Filter(pred Predicate) View {
	return View{idx: idx, pred: pred}
}

// Filter narrows the view further.
func (v View) Filter(pred Predicate) View {
	return View{idx: v.idx, pred: And(v.pred, pred)}
}

func (v View) accept(r corpus.PhraseRecord) bool {
	return v.pred == nil || v.pred(r)
}

// Lookup returns the accepted records for text, in load order.
func (v View) Lookup(text string) []corpus.PhraseRecord {
	var out []corpus.PhraseRecord
	for _, r := range v.idx.Lookup(text) {
		if v.accept(r) {
			out = append(out, r)
		}
	}
	return out
}

// Contains reports whether any accepted record has text.
func (v View) Contains(text string) bool {
	for _, r := range v.idx.Lookup(text) {
		if v.accept(r) {
			return true
		}
	}
	return false
}

// Texts returns, in ascending order, the distinct texts with at least one
// accepted record.
func (v View) Texts() []string {
	var out []string
	for i, text := range v.idx.texts {
		for _, r := range v.idx.groups[i] {
			if v.accept(r) {
				out = append(out, text)
				break
			}
		}
	}
	return out
}

// Each calls fn for every accepted record in phrase order, stopping when fn
// returns false.
func (v View) Each(fn func(corpus.PhraseRecord) bool) {
	for _, g := range v.idx.groups {
		for _, r := range g {
			if v.accept(r) && !fn(r) {
				return
			}
		}
	}
}

// Count returns the number of accepted records.
func (v View) Count() int {
	n := 0
	v.Each(func(corpus.PhraseRecord) bool { n++; return true })
	return n
}

//Personal.AI order the ending
