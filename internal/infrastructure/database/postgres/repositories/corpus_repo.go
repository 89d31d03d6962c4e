package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// CorpusRepository reads and writes the documents and phrases tables.
type CorpusRepository struct {
	db     DBTX
	logger logging.Logger
}

// NewCorpusRepository returns a CorpusRepository. It implements corpus.Source.
func NewCorpusRepository(db DBTX, logger logging.Logger) *CorpusRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CorpusRepository{db: db, logger: logger.Named("corpus_repo")}
}

var documentColumns = []string{"document_id", "year", "citation", "category", "author", "topics", "text"}

var phraseColumns = []string{"document_id", "phrase", "length"}

// Load implements corpus.Source.
func (r *CorpusRepository) Load(ctx context.Context) (*corpus.Corpus, error) {
	docs, err := r.loadDocuments(ctx)
	if err != nil {
		return nil, err
	}
	phrases, err := r.loadPhrases(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info("corpus loaded", logging.Int("documents", len(docs)), logging.Int("phrase_records", len(phrases)))
	return corpus.New(docs, phrases)
}

func (r *CorpusRepository) loadDocuments(ctx context.Context) ([]*corpus.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT document_id, year, citation, category, author, topics, text
		FROM documents ORDER BY year, document_id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to query documents")
	}
	defer rows.Close()

	var docs []*corpus.Document
	for rows.Next() {
		var (
			d        corpus.Document
			category string
			topics   []string
		)
		if err := rows.Scan(&d.ID, &d.Year, &d.Citation, &category, &d.Author, &topics, &d.Text); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to scan document")
		}
		d.Category = corpus.ParseCategory(category)
		d.Topics = make(map[string]bool, len(topics))
		for _, t := range topics {
			d.Topics[t] = true
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to read documents")
	}
	return docs, nil
}

func (r *CorpusRepository) loadPhrases(ctx context.Context) ([]corpus.PhraseRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT document_id, phrase, length FROM phrases`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to query phrases")
	}
	defer rows.Close()

	var out []corpus.PhraseRecord
	for rows.Next() {
		var p corpus.PhraseRecord
		var length string
		if err := rows.Scan(&p.DocumentID, &p.Text, &length); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to scan phrase")
		}
		if p.Length, err = corpus.ParseLength(length); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to read phrases")
	}
	return out, nil
}

// SaveDocuments bulk-inserts documents with the COPY protocol.
func (r *CorpusRepository) SaveDocuments(ctx context.Context, docs []*corpus.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, documentRow(d))
	}
	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"documents"}, documentColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to copy documents")
	}
	r.logger.Debug("documents copied", logging.Int64("count", n))
	return n, nil
}

// SavePhrases bulk-inserts phrase records with the COPY protocol.
func (r *CorpusRepository) SavePhrases(ctx context.Context, records []corpus.PhraseRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	i := 0
	src := pgx.CopyFromFunc(func() ([]any, error) {
		if i >= len(records) {
			return nil, nil
		}
		p := records[i]
		i++
		return []any{p.DocumentID, p.Text, p.Length.String()}, nil
	})
	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"phrases"}, phraseColumns, src)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to copy phrases")
	}
	r.logger.Debug("phrases copied", logging.Int64("count", n))
	return n, nil
}

func documentRow(d *corpus.Document) []any {
	topics := d.TopicNames()
	if topics == nil {
		topics = []string{}
	}
	return []any{d.ID, d.Year, d.Citation, d.Category.String(), d.Author, topics, d.Text}
}

var _ corpus.Source = (*CorpusRepository)(nil)

//Personal.AI order the ending
