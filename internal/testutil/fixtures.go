package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
)

// CorpusBuilder assembles small in-memory corpora for tests.
type CorpusBuilder struct {
	docs    []*corpus.Document
	records []corpus.PhraseRecord
}

// Doc adds a document. The citation is derived from the id.
func (b *CorpusBuilder) Doc(id string, year int, author string, cat corpus.Category, topics ...string) *corpus.Document {
	d := &corpus.Document{
		ID:       id,
		Year:     year,
		Citation: "CITE " + id,
		Author:   author,
		Category: cat,
		Topics:   map[string]bool{},
	}
	for _, t := range topics {
		d.Topics[t] = true
	}
	b.docs = append(b.docs, d)
	return d
}

// Say records phrases of one length for d.
func (b *CorpusBuilder) Say(d *corpus.Document, l corpus.Length, texts ...string) *CorpusBuilder {
	for _, text := range texts {
		b.records = append(b.records, corpus.PhraseRecord{DocumentID: d.ID, Text: text, Length: l, Doc: d})
	}
	return b
}

// Documents returns the documents added so far.
func (b *CorpusBuilder) Documents() []*corpus.Document { return b.docs }

// Records returns the phrase records added so far.
func (b *CorpusBuilder) Records() []corpus.PhraseRecord { return b.records }

// Build returns the assembled corpus.
func (b *CorpusBuilder) Build(t testing.TB) *corpus.Corpus {
	t.Helper()
	c, err := corpus.New(b.docs, b.records)
	require.NoError(t, err)
	return c
}

// StaticSource is a corpus.Source that returns a fixed corpus or error.
type StaticSource struct {
	Corpus *corpus.Corpus
	Err    error
}

func (s StaticSource) Load(_ context.Context) (*corpus.Corpus, error) {
	return s.Corpus, s.Err
}

// DueProcessCorpus is a three-decade corpus in which "due process" is
// baseline vocabulary and "strict scrutiny" is modern.
//
//	C 1985 Z  due process
//	B 1990 Y  due process, strict scrutiny
//	A 2000 X  due process, strict scrutiny, novel phrase
//	D 2000 Y  strict scrutiny
func DueProcessCorpus(t testing.TB) *corpus.Corpus {
	t.Helper()
	return DueProcessBuilder().Build(t)
}

// DueProcessBuilder returns the builder behind DueProcessCorpus, for tests
// that need the raw documents and records.
func DueProcessBuilder() *CorpusBuilder {
	b := &CorpusBuilder{}
	c := b.Doc("C", 1985, "Z", corpus.CategoryMajority)
	bb := b.Doc("B", 1990, "Y", corpus.CategoryMajority)
	a := b.Doc("A", 2000, "X", corpus.CategoryMajority)
	d := b.Doc("D", 2000, "Y", corpus.CategoryOther)
	c.Text = "The guarantee of due process applies."
	bb.Text = "Due process and strict scrutiny."
	a.Text = "Under due process, strict scrutiny is a novel phrase."
	d.Text = "Strict scrutiny governs."
	b.Say(c, 2, "due process")
	b.Say(bb, 2, "due process", "strict scrutiny")
	b.Say(a, 2, "due process", "strict scrutiny", "novel phrase")
	b.Say(d, 2, "strict scrutiny")
	return b
}

//Personal.AI order the ending
