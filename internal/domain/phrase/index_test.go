package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

var (
	docA = &corpus.Document{ID: "A", Year: 2000, Author: "X", Category: corpus.CategoryMajority, Topics: map[string]bool{"criminal": true}}
	docB = &corpus.Document{ID: "B", Year: 1990, Author: "Y", Category: corpus.CategoryOther}
	docC = &corpus.Document{ID: "C", Year: 1985, Author: "Z", Category: corpus.CategoryMajority, Topics: map[string]bool{"criminal": true}}
	docD = &corpus.Document{ID: "D", Year: 1990, Author: "X", Category: corpus.CategoryMajority}
)

func rec(d *corpus.Document, text string, l corpus.Length) corpus.PhraseRecord {
	return corpus.PhraseRecord{DocumentID: d.ID, Text: text, Length: l, Doc: d}
}

func fixture() []corpus.PhraseRecord {
	return []corpus.PhraseRecord{
		rec(docA, "due process", 2),
		rec(docA, "the court", 2),
		rec(docA, "due process", 2),
		rec(docB, "due process", 2),
		rec(docC, "due process", 2),
		rec(docD, "the court", 2),
		rec(docA, "liberty", 1),
		rec(docB, "liberty", 1),
		rec(docA, "We hold that the statute applies.", corpus.Sentence),
	}
}

func TestBuild_DeduplicatesAndSorts(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	assert.Equal(t, []string{"We hold that the statute applies.", "due process", "liberty", "the court"}, idx.Texts())
	assert.Equal(t, 8, idx.RecordCount())

	got := idx.Lookup("due process")
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].DocumentID)
	assert.Equal(t, "B", got[1].DocumentID)
	assert.Equal(t, "C", got[2].DocumentID)
}

func TestBuild_LookupAbsentIsEmpty(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	assert.Empty(t, idx.Lookup("habeas corpus"))
	assert.False(t, idx.Contains("habeas corpus"))
	assert.True(t, idx.Contains("liberty"))
}

func TestBuild_IsIdempotent(t *testing.T) {
	first, err := Build(fixture())
	require.NoError(t, err)
	second, err := Build(fixture())
	require.NoError(t, err)

	require.Equal(t, first.Texts(), second.Texts())
	for _, text := range first.Texts() {
		assert.Equal(t, first.Lookup(text), second.Lookup(text), text)
	}
}

func TestBuild_LengthsInCanonicalOrder(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)
	assert.Equal(t, []corpus.Length{1, 2, corpus.Sentence}, idx.Lengths())
}

func TestBuild_MalformedInputFailsLoudly(t *testing.T) {
	_, err := Build([]corpus.PhraseRecord{{DocumentID: "A", Text: "x", Length: 1}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))

	conflicting := &corpus.Document{ID: "A", Year: 1700, Author: "X"}
	_, err = Build([]corpus.PhraseRecord{rec(docA, "x", 1), rec(conflicting, "y", 1)})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
}

func TestBuild_WithDocumentsRegistersPhraselessDocuments(t *testing.T) {
	empty := &corpus.Document{ID: "E", Year: 2001, Author: "W"}
	idx, err := Build(fixture(), WithDocuments([]*corpus.Document{empty}))
	require.NoError(t, err)

	d, ok := idx.Document("E")
	require.True(t, ok)
	assert.Same(t, empty, d)
	assert.Equal(t, 5, idx.DocumentCount())
	assert.Equal(t, "E", idx.Documents()[0].ID)
	assert.Empty(t, idx.DocumentPhrases("E", 2))
}

func TestPostingsAndDocumentPhrases(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	post := idx.Postings(2, "due process")
	assert.Equal(t, uint64(3), post.GetCardinality())
	assert.True(t, idx.Postings(1, "due process").IsEmpty(), "postings are keyed by length")

	assert.Equal(t, []string{"due process", "the court"}, idx.DocumentPhrases("A", 2))
	assert.Nil(t, idx.DocumentPhrases("missing", 2))
}

func TestDocumentSets(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	ordinal := func(id string) uint32 {
		o, ok := idx.Ordinal(id)
		require.True(t, ok)
		return o
	}

	before := idx.DocsBefore(2000)
	assert.True(t, before.Contains(ordinal("B")))
	assert.True(t, before.Contains(ordinal("C")))
	assert.True(t, before.Contains(ordinal("D")))
	assert.False(t, before.Contains(ordinal("A")))
	assert.True(t, idx.DocsBefore(1985).IsEmpty())
	assert.Equal(t, uint64(4), idx.DocsBefore(3000).GetCardinality())

	between := idx.DocsBetween(1986, 1990)
	assert.Equal(t, uint64(2), between.GetCardinality())
	assert.True(t, idx.DocsBetween(1991, 1999).IsEmpty())

	assert.Equal(t, uint64(2), idx.DocsByAuthor("X").GetCardinality())
	assert.Equal(t, uint64(3), idx.DocsByCategory(corpus.CategoryMajority).GetCardinality())
	assert.Equal(t, uint64(2), idx.DocsWithTopic("criminal").GetCardinality())
	assert.True(t, idx.DocsWithTopic("tax").IsEmpty())

	// accessors hand out copies
	idx.DocsByAuthor("X").Clear()
	assert.Equal(t, uint64(2), idx.DocsByAuthor("X").GetCardinality())

	assert.Equal(t, "C", idx.DocumentAt(0).ID)
	assert.Nil(t, idx.DocumentAt(99))
	min, max, ok := idx.YearRange()
	assert.True(t, ok)
	assert.Equal(t, 1985, min)
	assert.Equal(t, 2000, max)
	assert.Equal(t, []string{"B", "D"}, idx.DocumentsOfYear(1990))
}

func TestEmptyIndex(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)

	_, _, ok := idx.YearRange()
	assert.False(t, ok)
	assert.True(t, idx.DocsBefore(2000).IsEmpty())
	assert.True(t, idx.AllDocs().IsEmpty())
	assert.Empty(t, idx.Lengths())
}

//Personal.AI order the ending
