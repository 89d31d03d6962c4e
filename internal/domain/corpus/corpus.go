// Package corpus holds the read-only input model of an analysis run: the
// opinion documents and the phrase records extracted from them.
package corpus

import (
	"context"
	"math/rand"
	"sort"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Source loads a corpus from some backing store.
type Source interface {
	Load(ctx context.Context) (*Corpus, error)
}

// Corpus is the PhraseRecord store. Documents keep their load order; every
// phrase record carries a resolved document reference.
type Corpus struct {
	documents []*Document
	byID      map[string]*Document
	phrases   []PhraseRecord
}

// New assembles a corpus. Phrase records whose document is not among docs are
// rejected with MalformedInput, as are duplicate document ids. Document and
// phrase text is normalized with NormalizeText; documents are updated in place.
func New(docs []*Document, phrases []PhraseRecord) (*Corpus, error) {
	c := &Corpus{
		documents: make([]*Document, 0, len(docs)),
		byID:      make(map[string]*Document, len(docs)),
		phrases:   make([]PhraseRecord, 0, len(phrases)),
	}
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, errors.MalformedInput("duplicate document id").WithDetail("document_id=" + d.ID)
		}
		d.Text = NormalizeText(d.Text)
		c.byID[d.ID] = d
		c.documents = append(c.documents, d)
	}
	for i, p := range phrases {
		p.Doc = c.byID[p.DocumentID]
		p.Text = NormalizeText(p.Text)
		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeUnknown, "phrase record %d", i)
		}
		c.phrases = append(c.phrases, p)
	}
	return c, nil
}

// Documents returns the documents in load order.
func (c *Corpus) Documents() []*Document { return c.documents }

// Phrases returns the phrase records in load order.
func (c *Corpus) Phrases() []PhraseRecord { return c.phrases }

// Document returns the document with the given id.
func (c *Corpus) Document(id string) (*Document, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.documents) }

// YearRange returns the smallest and largest document year. ok is false for an
// empty corpus.
func (c *Corpus) YearRange() (min, max int, ok bool) {
	for i, d := range c.documents {
		if i == 0 || d.Year < min {
			min = d.Year
		}
		if i == 0 || d.Year > max {
			max = d.Year
		}
	}
	return min, max, len(c.documents) > 0
}

// Restrict returns a corpus containing only documents accepted by keep and
// the phrase records that belong to them.
func (c *Corpus) Restrict(keep func(*Document) bool) *Corpus {
	out := &Corpus{byID: map[string]*Document{}}
	for _, d := range c.documents {
		if keep(d) {
			out.documents = append(out.documents, d)
			out.byID[d.ID] = d
		}
	}
	for _, p := range c.phrases {
		if _, ok := out.byID[p.DocumentID]; ok {
			out.phrases = append(out.phrases, p)
		}
	}
	return out
}

// WithCategories keeps only documents of the listed categories. An empty list
// keeps everything.
func (c *Corpus) WithCategories(categories []Category) *Corpus {
	if len(categories) == 0 {
		return c
	}
	allowed := make(map[Category]bool, len(categories))
	for _, cat := range categories {
		allowed[cat] = true
	}
	return c.Restrict(func(d *Document) bool { return allowed[d.Category] })
}

// Sample keeps a reproducible random fraction of the documents. fraction must
// be in (0, 1]; 1 returns the corpus unchanged.
func (c *Corpus) Sample(fraction float64, seed int64) (*Corpus, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, errors.InvalidParam("sample fraction must be in (0, 1]").WithDetailf("fraction=%g", fraction)
	}
	if fraction == 1 {
		return c, nil
	}
	n := int(float64(len(c.documents)) * fraction)
	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(c.documents))[:n]
	sort.Ints(picked)
	keep := make(map[string]bool, n)
	for _, i := range picked {
		keep[c.documents[i].ID] = true
	}
	return c.Restrict(func(d *Document) bool { return keep[d.ID] }), nil
}

//Personal.AI order the ending
