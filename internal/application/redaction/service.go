// Package redaction renders, for each target document, HTML copies with its
// antecedent phrases highlighted and publishes them to an artifact store.
package redaction

import (
	"context"
	"time"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/phrase"
	domain "github.com/turtacn/Antecedent-Intelligence/internal/domain/redaction"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// State is a step of the per-document redaction state machine.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateIndexing State = "indexing"
	StateScanning State = "scanning"
	StateMarking  State = "marking"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// ArtifactStore persists rendered artifacts. Put with an existing name
// replaces it.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Location() string
}

// PhraseResolver yields the antecedent phrases of a document per length.
type PhraseResolver interface {
	Antecedents(ctx context.Context, documentID string) (map[corpus.Length]antecedent.PhraseSplit, error)
}

// Options tunes the service.
type Options struct {
	// Combined also renders one artifact per mode covering all lengths.
	Combined bool
	// Debug prefixes artifact names with DEBUG_.
	Debug bool
}

// Artifact is one published file.
type Artifact struct {
	Name     string      `json:"name"`
	Location string      `json:"location"`
	Length   string      `json:"length"`
	Mode     domain.Mode `json:"mode"`
	Spans    int         `json:"spans"`
}

// DocumentReport is the outcome for one document. FailedIn names the state
// the document failed in.
type DocumentReport struct {
	DocumentID string        `json:"document_id"`
	Citation   string        `json:"citation,omitempty"`
	State      State         `json:"state"`
	FailedIn   State         `json:"failed_in,omitempty"`
	Artifacts  []Artifact    `json:"artifacts,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// Report summarizes RedactAll.
type Report struct {
	Documents []DocumentReport
	Failed    int
	Artifacts int
}

// Service redacts documents of one index.
type Service struct {
	idx      *phrase.Index
	resolver PhraseResolver
	store    ArtifactStore
	opts     Options
	metrics  *prom.AnalysisMetrics
	logger   logging.Logger
}

// NewService returns a Service. metrics may be nil.
func NewService(idx *phrase.Index, resolver PhraseResolver, store ArtifactStore, opts Options, metrics *prom.AnalysisMetrics, logger logging.Logger) (*Service, error) {
	if idx == nil || resolver == nil || store == nil {
		return nil, errors.InvalidParam("index, phrase resolver and artifact store are required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		idx:      idx,
		resolver: resolver,
		store:    store,
		opts:     opts,
		metrics:  metrics,
		logger:   logger.Named("redaction"),
	}, nil
}

// RedactAll redacts every id in order. A failing document does not stop
// the others.
func (s *Service) RedactAll(ctx context.Context, ids []string) Report {
	var rep Report
	for _, id := range ids {
		if ctx.Err() != nil {
			rep.Documents = append(rep.Documents, DocumentReport{
				DocumentID: id,
				State:      StateFailed,
				FailedIn:   StateIdle,
				Err:        ctx.Err(),
			})
			rep.Failed++
			continue
		}
		dr := s.Redact(ctx, id)
		if dr.State == StateFailed {
			rep.Failed++
		}
		rep.Artifacts += len(dr.Artifacts)
		rep.Documents = append(rep.Documents, dr)
	}
	s.logger.Info("redaction finished",
		logging.Int("documents", len(ids)),
		logging.Int("failed", rep.Failed),
		logging.Int("artifacts", rep.Artifacts),
		logging.String("store", s.store.Location()))
	return rep
}

// job carries one document through the states.
type job struct {
	report DocumentReport
	doc    *corpus.Document
	sets   map[domain.Mode]map[corpus.Length][]string
	pages  []page
}

type page struct {
	name   string
	length string
	mode   domain.Mode
	result domain.Result
}

// Redact runs the state machine for one document.
func (s *Service) Redact(ctx context.Context, id string) DocumentReport {
	start := time.Now()
	j := &job{report: DocumentReport{DocumentID: id, State: StateIdle}}
	steps := []struct {
		state State
		run   func(context.Context, *job) error
	}{
		{StateLoading, s.load},
		{StateIndexing, s.resolve},
		{StateScanning, s.scan},
		{StateMarking, s.mark},
	}
	for _, step := range steps {
		j.report.State = step.state
		if err := step.run(ctx, j); err != nil {
			j.report.FailedIn = step.state
			j.report.State = StateFailed
			j.report.Err = errors.Wrap(err, errors.ErrCodeRedactionFailed, "redaction failed").
				WithDetailf("document_id=%s state=%s", id, step.state)
			j.report.Duration = time.Since(start)
			s.logger.Error("redaction failed",
				logging.DocumentID(id),
				logging.String("state", string(step.state)),
				logging.Err(err))
			return j.report
		}
	}
	j.report.State = StateDone
	j.report.Duration = time.Since(start)
	s.logger.Debug("document redacted", logging.DocumentID(id), logging.Int("artifacts", len(j.report.Artifacts)))
	return j.report
}

func (s *Service) load(_ context.Context, j *job) error {
	doc, ok := s.idx.Document(j.report.DocumentID)
	if !ok {
		return errors.UnknownDocument(j.report.DocumentID)
	}
	if doc.Text == "" {
		return errors.MalformedInput("document has no text to redact")
	}
	j.doc = doc
	j.report.Citation = doc.Citation
	return nil
}

func (s *Service) resolve(ctx context.Context, j *job) error {
	var lengths []corpus.Length
	for _, l := range s.idx.Lengths() {
		if len(s.idx.DocumentPhrases(j.doc.ID, l)) > 0 {
			lengths = append(lengths, l)
		}
	}
	if len(lengths) == 0 {
		return errors.MalformedInput("document has no phrase data")
	}
	splits, err := s.resolver.Antecedents(ctx, j.doc.ID)
	if err != nil {
		return err
	}
	j.sets = map[domain.Mode]map[corpus.Length][]string{
		domain.ModeAll:    make(map[corpus.Length][]string, len(lengths)),
		domain.ModeModern: make(map[corpus.Length][]string, len(lengths)),
	}
	for _, l := range lengths {
		split := splits[l]
		j.sets[domain.ModeAll][l] = split.All
		j.sets[domain.ModeModern][l] = split.Modern
	}
	return nil
}

func (s *Service) scan(ctx context.Context, j *job) error {
	scanner := domain.NewScanner(j.doc.Text)
	for _, mode := range []domain.Mode{domain.ModeAll, domain.ModeModern} {
		set := domain.PhraseSet(j.sets[mode])
		for _, l := range set.Lengths() {
			if err := ctx.Err(); err != nil {
				return err
			}
			label := domain.LengthLabel(l)
			j.pages = append(j.pages, page{
				name:   domain.ArtifactName(j.doc.Citation, label, mode, s.opts.Debug),
				length: label,
				mode:   mode,
				result: scanner.Redact(domain.PhraseSet{l: set[l]}),
			})
		}
		if s.opts.Combined {
			j.pages = append(j.pages, page{
				name:   domain.ArtifactName(j.doc.Citation, domain.CombinedLabel, mode, s.opts.Debug),
				length: domain.CombinedLabel,
				mode:   mode,
				result: scanner.Redact(set),
			})
		}
	}
	return nil
}

func (s *Service) mark(ctx context.Context, j *job) error {
	for _, p := range j.pages {
		html, err := domain.RenderHTML(j.doc.Citation, p.result.Body)
		if err != nil {
			return err
		}
		loc, err := s.store.Put(ctx, p.name, html)
		if err != nil {
			return err
		}
		j.report.Artifacts = append(j.report.Artifacts, Artifact{
			Name:     p.name,
			Location: loc,
			Length:   p.length,
			Mode:     p.mode,
			Spans:    len(p.result.Spans),
		})
		if s.metrics != nil {
			s.metrics.ArtifactWritten(string(p.mode))
		}
	}
	return nil
}

//Personal.AI order the ending
