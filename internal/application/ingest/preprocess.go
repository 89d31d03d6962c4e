// Package ingest turns a directory of raw opinion files into the document
// table consumed by the analysis.
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/tabular"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// DocumentSaver persists preprocessed documents.
type DocumentSaver interface {
	SaveDocuments(ctx context.Context, docs []*corpus.Document) (int64, error)
}

// Result summarizes a preprocessing run.
type Result struct {
	Documents []*corpus.Document
	Skipped   []string
	Output    string
	Saved     int64
}

// Preprocessor reads opinion files and writes the document table.
type Preprocessor struct {
	workers int
	saver   DocumentSaver
	logger  logging.Logger
}

// Option customizes a Preprocessor.
type Option func(*Preprocessor)

// WithWorkers bounds the number of files decoded concurrently.
func WithWorkers(n int) Option {
	return func(p *Preprocessor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithSaver also stores the documents, e.g. in PostgreSQL.
func WithSaver(s DocumentSaver) Option {
	return func(p *Preprocessor) { p.saver = s }
}

func NewPreprocessor(logger logging.Logger, opts ...Option) *Preprocessor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	p := &Preprocessor{workers: runtime.NumCPU(), logger: logger.Named("preprocess")}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run walks dir, parses every file whose name follows the opinion naming
// convention and writes the documents, sorted by id, to out. Other files are
// skipped. An empty out skips the file output.
func (p *Preprocessor) Run(ctx context.Context, dir, out string) (*Result, error) {
	var paths []string
	res := &Result{Output: out}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, perr := corpus.ParseOpinionFilename(d.Name()); perr != nil {
			res.Skipped = append(res.Skipped, path)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to scan opinion directory").WithDetail("dir=" + dir)
	}
	p.logger.Info("opinion files found",
		logging.String("dir", dir),
		logging.Int("files", len(paths)),
		logging.Int("skipped", len(res.Skipped)))

	docs := make([]*corpus.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ReadOpinion(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkUnique(docs); err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	res.Documents = docs

	if out != "" {
		if err := tabular.WriteDocumentsFile(out, docs); err != nil {
			return nil, err
		}
		p.logger.Info("document table written", logging.String("path", out), logging.Int("documents", len(docs)))
	}
	if p.saver != nil {
		n, err := p.saver.SaveDocuments(ctx, docs)
		if err != nil {
			return nil, err
		}
		res.Saved = n
		p.logger.Info("documents stored", logging.Int64("rows", n))
	}
	return res, nil
}

// ReadOpinion decodes one latin-1 opinion file and returns its document.
func ReadOpinion(path string) (*corpus.Document, error) {
	name := filepath.Base(path)
	info, err := corpus.ParseOpinionFilename(name)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusUnavailable, "failed to read opinion").WithDetail("path=" + path)
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to decode opinion").WithDetail("path=" + path)
	}
	return &corpus.Document{
		ID:       name,
		Year:     info.Year,
		Citation: info.Citation,
		Category: info.Category,
		Author:   info.Author,
		Topics:   map[string]bool{},
		Text:     corpus.CleanOpinionText(string(text)),
	}, nil
}

func checkUnique(docs []*corpus.Document) error {
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID] {
			return errors.MalformedInput("duplicate opinion file name").WithDetail("document_id=" + d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

//Personal.AI order the ending
