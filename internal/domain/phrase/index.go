// Package phrase builds the read-only phrase index that every analysis and
// redaction query runs against.
//
// Layout:
//
//	texts/groups   sorted distinct phrase texts, each with its records in load order
//	postings       (length, text) → roaring bitmap of document ordinals
//	attributes     author / category / topic → roaring bitmap of document ordinals
//
// Document ordinals are assigned in ascending year order (stable on load
// order), so "every document older than year Y" is a single contiguous range.
// After Build returns nothing is mutated; concurrent readers need no locking.
package phrase

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

type postingKey struct {
	length corpus.Length
	text   string
}

// Index is the phrase multimap plus its bitmap postings.
type Index struct {
	documents []*corpus.Document
	byOrdinal []*corpus.Document
	ordinals  map[string]uint32

	years       []int
	yearOffsets []uint32

	texts  []string
	groups [][]corpus.PhraseRecord

	postings   map[postingKey]*roaring.Bitmap
	docPhrases []map[corpus.Length][]string
	lengths    []corpus.Length

	authors    map[string]*roaring.Bitmap
	categories map[corpus.Category]*roaring.Bitmap
	topics     map[string]*roaring.Bitmap

	records int
}

var emptyBitmap = roaring.New()

// BuildOption customises Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	documents []*corpus.Document
}

// WithDocuments registers documents up front, including ones without phrases,
// so they can still be analysed (and yield zero counts).
func WithDocuments(docs []*corpus.Document) BuildOption {
	return func(o *buildOptions) { o.documents = append(o.documents, docs...) }
}

// FromCorpus indexes every document and phrase record of c.
func FromCorpus(c *corpus.Corpus) (*Index, error) {
	return Build(c.Phrases(), WithDocuments(c.Documents()))
}

// Build indexes records. Duplicate (document, text) pairs are collapsed to the
// first occurrence. Records that fail validation, or that disagree with a
// previously seen document of the same id, fail the whole build with
// MalformedInput.
func Build(records []corpus.PhraseRecord, opts ...BuildOption) (*Index, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		ordinals:   make(map[string]uint32),
		postings:   make(map[postingKey]*roaring.Bitmap),
		authors:    make(map[string]*roaring.Bitmap),
		categories: make(map[corpus.Category]*roaring.Bitmap),
		topics:     make(map[string]*roaring.Bitmap),
	}

	registered := make(map[string]*corpus.Document)
	register := func(d *corpus.Document) error {
		if prev, ok := registered[d.ID]; ok {
			if prev != d && (prev.Year != d.Year || prev.Author != d.Author || prev.Category != d.Category) {
				return errors.MalformedInput("conflicting metadata for document").WithDetail("document_id=" + d.ID)
			}
			return nil
		}
		if err := d.Validate(); err != nil {
			return err
		}
		registered[d.ID] = d
		idx.documents = append(idx.documents, d)
		return nil
	}

	for _, d := range o.documents {
		if err := register(d); err != nil {
			return nil, err
		}
	}

	type pair struct{ doc, text string }
	seen := make(map[pair]struct{}, len(records))
	kept := make([]corpus.PhraseRecord, 0, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeUnknown, "phrase record %d", i)
		}
		if err := register(r.Doc); err != nil {
			return nil, err
		}
		k := pair{r.DocumentID, r.Text}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if reg := registered[r.DocumentID]; reg != r.Doc {
			r.Doc = reg
		}
		kept = append(kept, r)
	}

	idx.assignOrdinals()
	idx.indexAttributes()
	idx.indexRecords(kept)
	return idx, nil
}

func (idx *Index) assignOrdinals() {
	idx.byOrdinal = make([]*corpus.Document, len(idx.documents))
	copy(idx.byOrdinal, idx.documents)
	sort.SliceStable(idx.byOrdinal, func(i, j int) bool {
		return idx.byOrdinal[i].Year < idx.byOrdinal[j].Year
	})
	for i, d := range idx.byOrdinal {
		idx.ordinals[d.ID] = uint32(i)
		if len(idx.years) == 0 || idx.years[len(idx.years)-1] != d.Year {
			idx.years = append(idx.years, d.Year)
			idx.yearOffsets = append(idx.yearOffsets, uint32(i))
		}
	}
	idx.yearOffsets = append(idx.yearOffsets, uint32(len(idx.byOrdinal)))
	idx.docPhrases = make([]map[corpus.Length][]string, len(idx.byOrdinal))
}

func (idx *Index) indexAttributes() {
	add := func(m map[string]*roaring.Bitmap, key string, ord uint32) {
		bm, ok := m[key]
		if !ok {
			bm = roaring.New()
			m[key] = bm
		}
		bm.Add(ord)
	}
	for i, d := range idx.byOrdinal {
		ord := uint32(i)
		add(idx.authors, d.Author, ord)
		cat, ok := idx.categories[d.Category]
		if !ok {
			cat = roaring.New()
			idx.categories[d.Category] = cat
		}
		cat.Add(ord)
		for topic, set := range d.Topics {
			if set {
				add(idx.topics, topic, ord)
			}
		}
	}
}

func (idx *Index) indexRecords(records []corpus.PhraseRecord) {
	groups := make(map[string][]corpus.PhraseRecord)
	lengths := make(map[corpus.Length]struct{})
	for _, r := range records {
		groups[r.Text] = append(groups[r.Text], r)
		lengths[r.Length] = struct{}{}

		ord := idx.ordinals[r.DocumentID]
		key := postingKey{length: r.Length, text: r.Text}
		bm, ok := idx.postings[key]
		if !ok {
			bm = roaring.New()
			idx.postings[key] = bm
		}
		bm.Add(ord)

		if idx.docPhrases[ord] == nil {
			idx.docPhrases[ord] = make(map[corpus.Length][]string)
		}
		idx.docPhrases[ord][r.Length] = append(idx.docPhrases[ord][r.Length], r.Text)
	}

	idx.texts = make([]string, 0, len(groups))
	for text := range groups {
		idx.texts = append(idx.texts, text)
	}
	sort.Strings(idx.texts)
	idx.groups = make([][]corpus.PhraseRecord, len(idx.texts))
	for i, text := range idx.texts {
		idx.groups[i] = groups[text]
	}

	for l := range lengths {
		idx.lengths = append(idx.lengths, l)
	}
	sort.Slice(idx.lengths, func(i, j int) bool { return idx.lengths[i] < idx.lengths[j] })

	for _, bm := range idx.postings {
		bm.RunOptimize()
	}
	idx.records = len(records)
}

// ─────────────────────────────────────────────────────────────────────────────
// Phrase lookups
// ─────────────────────────────────────────────────────────────────────────────

func (idx *Index) find(text string) (int, bool) {
	i := sort.SearchStrings(idx.texts, text)
	return i, i < len(idx.texts) && idx.texts[i] == text
}

// Lookup returns the records sharing text, in load order. An absent phrase
// yields an empty slice. The returned slice must not be modified.
func (idx *Index) Lookup(text string) []corpus.PhraseRecord {
	i, ok := idx.find(text)
	if !ok {
		return nil
	}
	g := idx.groups[i]
	return g[:len(g):len(g)]
}

// Contains reports whether any record has the given text.
func (idx *Index) Contains(text string) bool {
	_, ok := idx.find(text)
	return ok
}

// Texts returns the distinct phrase texts in ascending order.
func (idx *Index) Texts() []string {
	out := make([]string, len(idx.texts))
	copy(out, idx.texts)
	return out
}

// Len returns the number of distinct phrase texts.
func (idx *Index) Len() int { return len(idx.texts) }

// RecordCount returns the number of records kept after deduplication.
func (idx *Index) RecordCount() int { return idx.records }

// Lengths returns every phrase length present, in canonical order.
func (idx *Index) Lengths() []corpus.Length {
	out := make([]corpus.Length, len(idx.lengths))
	copy(out, idx.lengths)
	return out
}

// Postings returns the ordinals of documents containing text at length. The
// bitmap is shared and must not be modified.
func (idx *Index) Postings(length corpus.Length, text string) *roaring.Bitmap {
	if bm, ok := idx.postings[postingKey{length: length, text: text}]; ok {
		return bm
	}
	return emptyBitmap
}

// DocumentPhrases returns the distinct texts of length in document id, in
// load order.
func (idx *Index) DocumentPhrases(id string, length corpus.Length) []string {
	ord, ok := idx.ordinals[id]
	if !ok || idx.docPhrases[ord] == nil {
		return nil
	}
	return idx.docPhrases[ord][length]
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────────────────────────────────────

// Documents returns the indexed documents in load order.
func (idx *Index) Documents() []*corpus.Document {
	out := make([]*corpus.Document, len(idx.documents))
	copy(out, idx.documents)
	return out
}

// DocumentCount returns the number of indexed documents.
func (idx *Index) DocumentCount() int { return len(idx.documents) }

// Document returns the indexed document with the given id.
func (idx *Index) Document(id string) (*corpus.Document, bool) {
	ord, ok := idx.ordinals[id]
	if !ok {
		return nil, false
	}
	return idx.byOrdinal[ord], true
}

// Ordinal returns the bitmap ordinal of document id.
func (idx *Index) Ordinal(id string) (uint32, bool) {
	ord, ok := idx.ordinals[id]
	return ord, ok
}

// DocumentAt returns the document with the given ordinal.
func (idx *Index) DocumentAt(ord uint32) *corpus.Document {
	if int(ord) >= len(idx.byOrdinal) {
		return nil
	}
	return idx.byOrdinal[ord]
}

// YearRange returns the smallest and largest document year.
func (idx *Index) YearRange() (min, max int, ok bool) {
	if len(idx.years) == 0 {
		return 0, 0, false
	}
	return idx.years[0], idx.years[len(idx.years)-1], true
}

// MinYear returns the earliest document year, or 0 for an empty index.
func (idx *Index) MinYear() int {
	min, _, _ := idx.YearRange()
	return min
}

// MaxYear returns the latest document year, or 0 for an empty index.
func (idx *Index) MaxYear() int {
	_, max, _ := idx.YearRange()
	return max
}

// DocumentsOfYear returns the ids of documents from year, in load order.
func (idx *Index) DocumentsOfYear(year int) []string {
	var ids []string
	for _, d := range idx.documents {
		if d.Year == year {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// ─────────────────────────────────────────────────────────────────────────────
// Document sets
// ─────────────────────────────────────────────────────────────────────────────

func (idx *Index) firstOrdinalFrom(year int) uint32 {
	i := sort.SearchInts(idx.years, year)
	return idx.yearOffsets[i]
}

// DocsBefore returns the documents with year < year.
func (idx *Index) DocsBefore(year int) *roaring.Bitmap {
	bm := roaring.New()
	if len(idx.years) == 0 {
		return bm
	}
	bm.AddRange(0, uint64(idx.firstOrdinalFrom(year)))
	return bm
}

// DocsBetween returns the documents with from ≤ year ≤ to.
func (idx *Index) DocsBetween(from, to int) *roaring.Bitmap {
	bm := roaring.New()
	if len(idx.years) == 0 || from > to {
		return bm
	}
	bm.AddRange(uint64(idx.firstOrdinalFrom(from)), uint64(idx.firstOrdinalFrom(to+1)))
	return bm
}

// AllDocs returns every document ordinal.
func (idx *Index) AllDocs() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(0, uint64(len(idx.byOrdinal)))
	return bm
}

// DocsByAuthor returns the documents written by author.
func (idx *Index) DocsByAuthor(author string) *roaring.Bitmap {
	return cloneOrEmpty(idx.authors[author])
}

// DocsByCategory returns the documents of category.
func (idx *Index) DocsByCategory(category corpus.Category) *roaring.Bitmap {
	return cloneOrEmpty(idx.categories[category])
}

// DocsWithTopic returns the documents whose topic flag is set.
func (idx *Index) DocsWithTopic(topic string) *roaring.Bitmap {
	return cloneOrEmpty(idx.topics[topic])
}

func cloneOrEmpty(bm *roaring.Bitmap) *roaring.Bitmap {
	if bm == nil {
		return roaring.New()
	}
	return bm.Clone()
}

//Personal.AI order the ending
