// Package redaction marks antecedent phrase occurrences in an opinion's
// original text.
//
// Matching always runs against the unmodified text. Every candidate span is
// collected first, overlaps are resolved once, and markup is inserted in a
// single pass from the highest offset down, so inserted tags can never be
// matched by a later phrase.
package redaction

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
)

// Span is a half-open byte range [Start, End) of the original text.
type Span struct {
	Start  int
	End    int
	Length corpus.Length
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// PhraseSet maps a length category to the antecedent phrases of that length.
type PhraseSet map[corpus.Length][]string

// Lengths returns the categories present, in canonical order.
func (p PhraseSet) Lengths() []corpus.Length {
	out := make([]corpus.Length, 0, len(p))
	for l := range p {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var underscoresOnly = regexp.MustCompile(`^_+$`)

// Degenerate reports whether a phrase is skipped: empty, only underscores,
// only numerals, or only whitespace.
func Degenerate(p string) bool {
	if p == "" || underscoresOnly.MatchString(p) {
		return true
	}
	return allRunes(p, unicode.IsSpace) || allRunes(p, func(r rune) bool { return unicode.IsNumber(r) })
}

func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

// findOccurrences returns every match of re in text bounded on both sides by
// a non-letter or the text edge. A candidate that fails the boundary test does
// not hide an occurrence starting inside it.
func findOccurrences(text string, re *regexp.Regexp) []Span {
	var out []Span
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil || loc[1] == loc[0] {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if letterBoundary(text, start, end) {
			out = append(out, Span{Start: start, End: end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

func letterBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Scanner finds phrase occurrences in one text. Each distinct phrase is
// compiled and searched once; later passes over the same text reuse the
// matches. A Scanner is not safe for concurrent use.
type Scanner struct {
	text  string
	found map[string][]Span
}

// NewScanner returns a Scanner over text.
func NewScanner(text string) *Scanner {
	return &Scanner{text: text, found: make(map[string][]Span)}
}

// occurrences returns the case-insensitive, letter-bounded matches of phrase.
// The returned spans carry no length category.
func (s *Scanner) occurrences(phrase string) []Span {
	key := strings.ToLower(phrase)
	if spans, ok := s.found[key]; ok {
		return spans
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	spans := findOccurrences(s.text, re)
	s.found[key] = spans
	return spans
}

// Spans computes the non-overlapping highlight spans for phrases in text,
// ordered by start offset.
func Spans(text string, phrases PhraseSet) []Span {
	return NewScanner(text).Spans(phrases)
}

// Spans computes the non-overlapping highlight spans for phrases in the
// scanner's text, ordered by start offset.
//
// Overlapping candidates are resolved by preferring the longer span, then the
// later length category, then the earlier start.
func (s *Scanner) Spans(phrases PhraseSet) []Span {
	var candidates []Span
	for _, length := range phrases.Lengths() {
		seen := make(map[string]bool)
		for _, p := range phrases[length] {
			key := strings.ToLower(p)
			if seen[key] || Degenerate(p) {
				continue
			}
			seen[key] = true
			for _, sp := range s.occurrences(p) {
				sp.Length = length
				candidates = append(candidates, sp)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		return a.Start < b.Start
	})

	var accepted []Span // sorted by Start
	for _, c := range candidates {
		i := sort.Search(len(accepted), func(i int) bool { return accepted[i].Start >= c.Start })
		if i > 0 && accepted[i-1].overlaps(c) {
			continue
		}
		if i < len(accepted) && accepted[i].overlaps(c) {
			continue
		}
		accepted = append(accepted, Span{})
		copy(accepted[i+1:], accepted[i:])
		accepted[i] = c
	}
	return accepted
}

//Personal.AI order the ending
