package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ChunkFileName returns the per-chunk result file name, e.g.
// "antecedent_counts_03_of_8.csv". Zero-padding keeps lexical order equal to
// chunk order for up to 100 chunks; Combine sorts numerically regardless.
func ChunkFileName(index, total int) string {
	return fmt.Sprintf("antecedent_counts_%02d_of_%d.csv", index, total)
}

// WriteRows writes a header and one line per result.
func WriteRows(w io.Writer, schema antecedent.Schema, rows []antecedent.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Header()); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to write header")
	}
	for _, r := range rows {
		if err := cw.Write(schema.Row(r)); err != nil {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to write row").WithDetail("document_id=" + r.DocumentID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to flush rows")
	}
	return nil
}

// WriteChunk writes the rows of one chunk to dir and returns the file path.
// The file is written to a temporary name and renamed into place, so a crash
// never leaves a truncated chunk file behind.
func WriteChunk(dir string, index, total int, schema antecedent.Schema, rows []antecedent.Result) (string, error) {
	path := filepath.Join(dir, ChunkFileName(index, total))
	err := writeAtomic(path, func(w io.Writer) error {
		return WriteRows(w, schema, rows)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteRowsFile is WriteRows to a file path, atomically.
func WriteRowsFile(path string, schema antecedent.Schema, rows []antecedent.Result) error {
	return writeAtomic(path, func(w io.Writer) error { return WriteRows(w, schema, rows) })
}

// Combine concatenates chunk files into out, keeping the header of the first
// file only. Inputs are taken in the given order; callers pass them sorted by
// chunk index. Files whose header differs from the first are rejected.
func Combine(out string, inputs []string) error {
	return writeAtomic(out, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		var header []string
		for _, in := range inputs {
			if err := appendTable(cw, in, &header); err != nil {
				return err
			}
		}
		if header == nil {
			return errors.New(errors.ErrCodeArtifactWriteError, "no chunk files to combine")
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to flush combined output")
		}
		return nil
	})
}

func appendTable(cw *csv.Writer, path string, header *[]string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to open chunk file").WithDetail("path=" + path)
	}
	defer f.Close()

	cr := csv.NewReader(bufio.NewReader(f))
	first, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to read chunk header").WithDetail("path=" + path)
	}
	if *header == nil {
		*header = append([]string(nil), first...)
		if err := cw.Write(first); err != nil {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to write header")
		}
	} else if !equalStrings(*header, first) {
		return errors.New(errors.ErrCodeArtifactWriteError, "chunk file header mismatch").WithDetail("path=" + path)
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to read chunk row").WithDetail("path=" + path)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to write combined row")
		}
	}
}

// WriteDocuments writes a document table in the canonical column layout,
// including the text column.
func WriteDocuments(w io.Writer, docs []*corpus.Document) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{ColDocumentID, ColYear, ColCitation, ColCategory, ColAuthor, ColTopics, ColText})
	sorted := make([]*corpus.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, d := range sorted {
		_ = cw.Write([]string{
			d.ID,
			fmt.Sprint(d.Year),
			d.Citation,
			d.Category.String(),
			d.Author,
			corpus.FormatTopics(d.Topics),
			d.Text,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to write document table")
	}
	return nil
}

// WriteDocumentsFile is WriteDocuments to a file path, atomically.
func WriteDocumentsFile(path string, docs []*corpus.Document) error {
	return writeAtomic(path, func(w io.Writer) error { return WriteDocuments(w, docs) })
}

// WriteFileAtomic replaces path with data. Readers never observe a partially
// written file.
func WriteFileAtomic(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to write output").WithDetail("path=" + path)
		}
		return nil
	})
}

func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to create output directory").WithDetail("dir=" + dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to create temporary file").WithDetail("dir=" + dir)
	}
	defer os.Remove(tmp.Name())
	_ = tmp.Chmod(0o644)

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to flush output").WithDetail("path=" + path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to close output").WithDetail("path=" + path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to move output into place").WithDetail("path=" + path)
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
