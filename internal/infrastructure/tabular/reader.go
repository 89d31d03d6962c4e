package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ReadDocuments parses a document table. Required columns: document_id,
// year, author. citation, category, topics and text are optional.
func ReadDocuments(r io.Reader) ([]*corpus.Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.MalformedInput("document table is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to read document header")
	}
	h, err := parseHeader(first, ColDocumentID, ColYear, ColAuthor)
	if err != nil {
		return nil, err
	}

	var docs []*corpus.Document
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeMalformedInput, "document table line %d", line)
		}
		yearStr := h.get(rec, ColYear)
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, errors.MalformedInput("invalid year").WithDetailf("line=%d year=%q", line, yearStr)
		}
		doc := &corpus.Document{
			ID:       h.get(rec, ColDocumentID),
			Year:     year,
			Citation: h.get(rec, ColCitation),
			Category: corpus.ParseCategory(h.get(rec, ColCategory)),
			Author:   h.get(rec, ColAuthor),
			Topics:   corpus.ParseTopics(h.get(rec, ColTopics)),
			Text:     h.raw(rec, ColText),
		}
		if err := doc.Validate(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeUnknown, "document table line %d", line)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadPhrases parses a phrase table with columns document_id, phrase and
// length. Phrase text is kept verbatim; a whitespace-only phrase is a valid
// record that redaction later skips.
func ReadPhrases(r io.Reader) ([]corpus.PhraseRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.MalformedInput("phrase table is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to read phrase header")
	}
	h, err := parseHeader(append([]string(nil), first...), ColDocumentID, ColPhrase, ColLength)
	if err != nil {
		return nil, err
	}

	var records []corpus.PhraseRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeMalformedInput, "phrase table line %d", line)
		}
		length, err := corpus.ParseLength(h.get(rec, ColLength))
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeUnknown, "phrase table line %d", line)
		}
		records = append(records, corpus.PhraseRecord{
			DocumentID: h.get(rec, ColDocumentID),
			Text:       h.raw(rec, ColPhrase),
			Length:     length,
		})
	}
	return records, nil
}

// CSVSource loads a corpus from a document table and a phrase table on disk.
type CSVSource struct {
	DocumentsPath string
	PhrasesPath   string
	logger        logging.Logger
}

// NewCSVSource returns a corpus.Source backed by two CSV files.
func NewCSVSource(documentsPath, phrasesPath string, logger logging.Logger) *CSVSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CSVSource{DocumentsPath: documentsPath, PhrasesPath: phrasesPath, logger: logger.Named("csv_source")}
}

// Load implements corpus.Source.
func (s *CSVSource) Load(ctx context.Context) (*corpus.Corpus, error) {
	s.logger.Info("loading opinion data", logging.String("path", s.DocumentsPath))
	docs, err := readFile(s.DocumentsPath, ReadDocuments)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("loading phrases", logging.String("path", s.PhrasesPath))
	phrases, err := readFile(s.PhrasesPath, ReadPhrases)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := corpus.New(docs, phrases)
	if err != nil {
		return nil, err
	}
	s.logger.Info("corpus loaded",
		logging.Int("documents", c.Len()),
		logging.Int("phrase_records", len(c.Phrases())))
	return c, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to open table").WithDetail("path=" + path)
	}
	defer f.Close()
	out, err := parse(f)
	if err != nil {
		return zero, errors.Wrap(err, errors.CodeUnknown, path)
	}
	return out, nil
}

var _ corpus.Source = (*CSVSource)(nil)

//Personal.AI order the ending
