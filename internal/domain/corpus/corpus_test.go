package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

func sampleDocs() []*Document {
	return []*Document{
		{ID: "a", Year: 2000, Citation: "2000 U.S. LEXIS 1", Category: CategoryMajority, Author: "X"},
		{ID: "b", Year: 1990, Citation: "1990 U.S. LEXIS 2", Category: CategoryOther, Author: "Y"},
		{ID: "c", Year: 1985, Citation: "1985 U.S. LEXIS 3", Category: CategoryMajority, Author: "Z"},
	}
}

func TestNew_ResolvesDocumentReferences(t *testing.T) {
	c, err := New(sampleDocs(), []PhraseRecord{
		{DocumentID: "a", Text: "due process", Length: 2},
		{DocumentID: "b", Text: "due process", Length: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	require.Len(t, c.Phrases(), 2)
	assert.Equal(t, 2000, c.Phrases()[0].Doc.Year)
	assert.Equal(t, "Y", c.Phrases()[1].Doc.Author)

	min, max, ok := c.YearRange()
	assert.True(t, ok)
	assert.Equal(t, 1985, min)
	assert.Equal(t, 2000, max)
}

func TestNew_RejectsUnknownDocument(t *testing.T) {
	_, err := New(sampleDocs(), []PhraseRecord{{DocumentID: "missing", Text: "x", Length: 1}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
}

func TestNew_RejectsDuplicateDocumentID(t *testing.T) {
	docs := append(sampleDocs(), &Document{ID: "a", Year: 2001, Author: "Q"})
	_, err := New(docs, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
}

func TestNew_RejectsInvalidRecords(t *testing.T) {
	cases := map[string]PhraseRecord{
		"empty text":  {DocumentID: "a", Text: "", Length: 1},
		"empty id":    {DocumentID: " ", Text: "x", Length: 1},
		"zero length": {DocumentID: "a", Text: "x"},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(sampleDocs(), []PhraseRecord{rec})
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput), "got %v", err)
		})
	}
}

func TestNew_AcceptsWhitespaceOnlyPhrase(t *testing.T) {
	c, err := New(sampleDocs(), []PhraseRecord{{DocumentID: "a", Text: "   ", Length: 1}})
	require.NoError(t, err)
	require.Len(t, c.Phrases(), 1)
	assert.Equal(t, "   ", c.Phrases()[0].Text)
}

func TestNew_NormalisesDocumentAndPhraseText(t *testing.T) {
	docs := sampleDocs()
	docs[0].Text = "the cafe\u0301 doctrine"
	c, err := New(docs, []PhraseRecord{{DocumentID: "a", Text: "cafe\u0301 doctrine", Length: 2}})
	require.NoError(t, err)

	d, _ := c.Document("a")
	assert.Equal(t, "the caf\u00e9 doctrine", d.Text)
	assert.Equal(t, "caf\u00e9 doctrine", c.Phrases()[0].Text)
}

func TestDocument_Validate(t *testing.T) {
	assert.Error(t, (&Document{ID: "", Year: 2000, Author: "X"}).Validate())
	assert.Error(t, (&Document{ID: "a", Year: 0, Author: "X"}).Validate())
	assert.Error(t, (&Document{ID: "a", Year: 2000}).Validate())
	assert.NoError(t, (&Document{ID: "a", Year: 2000, Author: "X"}).Validate())
}

func TestWithCategories(t *testing.T) {
	c, err := New(sampleDocs(), []PhraseRecord{
		{DocumentID: "a", Text: "x", Length: 1},
		{DocumentID: "b", Text: "x", Length: 1},
	})
	require.NoError(t, err)

	majority := c.WithCategories([]Category{CategoryMajority})
	assert.Equal(t, 2, majority.Len())
	_, ok := majority.Document("b")
	assert.False(t, ok)
	assert.Len(t, majority.Phrases(), 1)

	assert.Same(t, c, c.WithCategories(nil))
}

func TestSample_IsReproducible(t *testing.T) {
	var docs []*Document
	for i := 0; i < 100; i++ {
		docs = append(docs, &Document{ID: string(rune('A'+i%26)) + string(rune('0'+i/26)), Year: 1900 + i, Author: "A"})
	}
	c, err := New(docs, nil)
	require.NoError(t, err)

	s1, err := c.Sample(0.1, 42)
	require.NoError(t, err)
	s2, err := c.Sample(0.1, 42)
	require.NoError(t, err)

	assert.Equal(t, 10, s1.Len())
	assert.Equal(t, s1.Documents(), s2.Documents())

	_, err = c.Sample(0, 1)
	assert.Error(t, err)
	full, err := c.Sample(1, 1)
	require.NoError(t, err)
	assert.Same(t, c, full)
}

func TestTopics(t *testing.T) {
	topics := ParseTopics("criminal; ;first_amendment")
	assert.Equal(t, map[string]bool{"criminal": true, "first_amendment": true}, topics)
	assert.Equal(t, "criminal;first_amendment", FormatTopics(topics))

	d := &Document{Topics: topics}
	assert.True(t, d.HasTopic("criminal"))
	assert.False(t, d.HasTopic("tax"))
	var nilDoc *Document
	assert.False(t, nilDoc.HasTopic("criminal"))
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryMajority, ParseCategory(" Majority "))
	assert.Equal(t, Category("concurrence"), ParseCategory("concurrence"))
}

//Personal.AI order the ending
