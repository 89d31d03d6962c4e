package tabular

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

const documentsCSV = `filename,year,lexis_cite,opinion_type,author,topics
1985-100-majority_Z,1985,1985 U.S. LEXIS 100,majority,Z,criminal
1990-200-dissent_Y,1990,1990 U.S. LEXIS 200,Dissent,Y,
`

const phrasesCSV = `filename,phrase,length
1985-100-majority_Z,due process,2
1990-200-dissent_Y,due process,2
1990-200-dissent_Y,The court holds.,sentence
`

func TestReadDocuments_Aliases(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(documentsCSV))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "1985-100-majority_Z", docs[0].ID)
	assert.Equal(t, 1985, docs[0].Year)
	assert.Equal(t, "1985 U.S. LEXIS 100", docs[0].Citation)
	assert.Equal(t, corpus.CategoryMajority, docs[0].Category)
	assert.True(t, docs[0].HasTopic("criminal"))
	assert.Equal(t, corpus.Category("dissent"), docs[1].Category)
	assert.Empty(t, docs[1].TopicNames())
}

func TestReadDocuments_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing author column", "document_id,year\nA,2000\n"},
		{"bad year", "document_id,year,author\nA,two,X\n"},
		{"empty author", "document_id,year,author\nA,2000,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocuments(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput), err.Error())
		})
	}
}

func TestReadPhrases(t *testing.T) {
	recs, err := ReadPhrases(strings.NewReader(phrasesCSV))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, corpus.Length(2), recs[0].Length)
	assert.Equal(t, corpus.Sentence, recs[2].Length)
	assert.Equal(t, "The court holds.", recs[2].Text)
}

func TestReadPhrases_KeepsPhraseTextVerbatim(t *testing.T) {
	input := "document_id,phrase,length\nA,\"  \",1\nA, due process ,2\n"
	recs, err := ReadPhrases(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "  ", recs[0].Text)
	assert.Equal(t, " due process ", recs[1].Text)
}

func TestCSVSource_WhitespacePhraseAndDecomposedText(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "opinions.csv")
	phrases := filepath.Join(dir, "phrases.csv")
	// Opinion text with "é" as e + combining acute accent, phrase precomposed.
	require.NoError(t, os.WriteFile(docs, []byte("document_id,year,author,text\nA,2000,X,the cafe\u0301 doctrine applies\n"), 0o600))
	require.NoError(t, os.WriteFile(phrases, []byte("document_id,phrase,length\nA,\"  \",1\nA,caf\u00e9 doctrine,2\n"), 0o600))

	c, err := NewCSVSource(docs, phrases, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Phrases(), 2)
	assert.Equal(t, "  ", c.Phrases()[0].Text)

	doc, ok := c.Document("A")
	require.True(t, ok)
	assert.Contains(t, doc.Text, c.Phrases()[1].Text)
}

func TestReadPhrases_BadLength(t *testing.T) {
	_, err := ReadPhrases(strings.NewReader("document_id,phrase,length\nA,x,0\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
}

func TestCSVSource_Load(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "opinions.csv")
	phrases := filepath.Join(dir, "phrases.csv")
	require.NoError(t, os.WriteFile(docs, []byte(documentsCSV), 0o600))
	require.NoError(t, os.WriteFile(phrases, []byte(phrasesCSV), 0o600))

	c, err := NewCSVSource(docs, phrases, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Len(t, c.Phrases(), 3)
	assert.NotNil(t, c.Phrases()[0].Doc)
}

func TestCSVSource_UnknownDocumentInPhrases(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "opinions.csv")
	phrases := filepath.Join(dir, "phrases.csv")
	require.NoError(t, os.WriteFile(docs, []byte(documentsCSV), 0o600))
	require.NoError(t, os.WriteFile(phrases, []byte("document_id,phrase,length\nghost,x,1\n"), 0o600))

	_, err := NewCSVSource(docs, phrases, nil).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "none.csv"), "x", nil).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorpusUnavailable))
}

func sampleRows() (antecedent.Schema, []antecedent.Result) {
	schema := antecedent.NewSchema([]antecedent.CrossFilter{{Kind: antecedent.KindSameCategory}})
	f, _ := antecedent.NewFraction(1, 2)
	return schema, []antecedent.Result{{
		DocumentID:               "A",
		Length:                   2,
		PhraseCount:              2,
		AntecedentCount:          1,
		FilterCounts:             []int{1},
		AntecedentFraction:       f,
		ModernAntecedentFraction: antecedent.Fraction{Defined: true},
		FilterFractions:          []antecedent.Fraction{f},
	}}
}

func TestWriteRows(t *testing.T) {
	schema, rows := sampleRows()
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, schema, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(schema.Header(), ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "A,2,2,1,0,1,0.5,0,0.5"), lines[1])
}

func TestWriteChunkAndCombine(t *testing.T) {
	dir := t.TempDir()
	schema, rows := sampleRows()

	p0, err := WriteChunk(dir, 0, 2, schema, rows)
	require.NoError(t, err)
	p1, err := WriteChunk(dir, 1, 2, schema, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "antecedent_counts_00_of_2.csv"), p0)
	assert.Equal(t, filepath.Join(dir, "antecedent_counts_01_of_2.csv"), p1)

	out := filepath.Join(dir, "antecedent_counts.csv")
	require.NoError(t, Combine(out, []string{p0, p1}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2, "one header and one row")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temporary file left behind: %s", e.Name())
	}
}

func TestCombine_HeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("x,y\n1,2\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("x,z\n1,2\n"), 0o600))

	err := Combine(filepath.Join(dir, "out.csv"), []string{a, b})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArtifactWriteError))
}

func TestWriteDocuments_RoundTrip(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(documentsCSV))
	require.NoError(t, err)
	docs[0].Text = "Line one,\n\"quoted\""

	var buf bytes.Buffer
	require.NoError(t, WriteDocuments(&buf, docs))

	back, err := ReadDocuments(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, docs[0].Text, back[0].Text)
	assert.Equal(t, docs[1].Citation, back[1].Citation)
}

//Personal.AI order the ending
