package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/tabular"
)

// WriteCorpusFiles writes the builder's documents and phrases as CSV tables
// into dir and returns their paths.
func (b *CorpusBuilder) WriteCorpusFiles(t testing.TB, dir string) (documents, phrases string) {
	t.Helper()
	documents = filepath.Join(dir, "documents.csv")
	phrases = filepath.Join(dir, "phrases.csv")
	require.NoError(t, tabular.WriteDocumentsFile(documents, b.docs))

	f, err := os.Create(phrases)
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{tabular.ColDocumentID, tabular.ColPhrase, tabular.ColLength}))
	for _, r := range b.records {
		require.NoError(t, w.Write([]string{r.DocumentID, r.Text, r.Length.String()}))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return documents, phrases
}

//Personal.AI order the ending
