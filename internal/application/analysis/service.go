package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/tabular"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Manifest describes one finished run. It is written next to the combined
// output.
type Manifest struct {
	RunID          string             `json:"run_id"`
	ConfigDigest   string             `json:"config_digest"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
	Outcome        string             `json:"outcome"`
	Targets        int                `json:"targets"`
	ChunkCount     int                `json:"chunk_count"`
	Columns        []string           `json:"columns"`
	Sinks          []string           `json:"sinks"`
	Chunks         []ChunkState       `json:"chunks"`
	DocumentErrors []ManifestDocError `json:"document_errors,omitempty"`
}

// ManifestDocError is a skipped target in the manifest.
type ManifestDocError struct {
	DocumentID string `json:"document_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Report is returned by Service.Run.
type Report struct {
	Manifest     Manifest
	ManifestPath string
	Outcome      *BatchOutcome
}

// Service runs a complete analysis: prepare, select targets, run chunks,
// publish to sinks and write the manifest.
type Service struct {
	cfg     *config.Config
	source  corpus.Source
	sinks   []ResultSink
	tracker StatusTracker
	metrics *prom.AnalysisMetrics
	logger  logging.Logger
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithSinks sets the result sinks.
func WithSinks(sinks ...ResultSink) ServiceOption {
	return func(s *Service) { s.sinks = sinks }
}

// WithTracker sets the chunk status tracker.
func WithTracker(t StatusTracker) ServiceOption {
	return func(s *Service) { s.tracker = t }
}

// WithMetrics records run level metrics.
func WithMetrics(m *prom.AnalysisMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a Service for cfg reading the corpus from source.
func NewService(cfg *config.Config, source corpus.Source, logger logging.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil || source == nil {
		return nil, errors.InvalidParam("config and corpus source are required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{cfg: cfg, source: source, logger: logger.Named("analysis")}
	for _, o := range opts {
		o(s)
	}
	if s.tracker == nil {
		s.tracker = NewLogTracker(s.logger)
	}
	return s, nil
}

// Run executes one analysis run. A partial run (some chunks failed) returns
// a report and no error; ErrAllChunksFailed and sink failures return both.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	started := time.Now().UTC()
	ws, err := Prepare(ctx, s.source, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	engine, err := ws.Engine(s.cfg)
	if err != nil {
		return nil, err
	}
	targets, err := SelectTargets(ws.Index, s.cfg.Analysis.Targets)
	if err != nil {
		return nil, err
	}

	digest, err := ConfigDigest(s.cfg)
	if err != nil {
		return nil, err
	}
	run := RunInfo{
		RunID:        uuid.New(),
		ConfigDigest: digest,
		ChunkCount:   s.cfg.Batch.ChunkCount,
		TargetCount:  len(targets),
		StartedAt:    started,
		Schema:       engine.Schema(),
	}
	log := s.logger.With(logging.String("run_id", run.RunID.String()))
	log.Info("targets selected",
		logging.String("mode", s.cfg.Analysis.Targets.Mode),
		logging.Int("targets", len(targets)))

	for _, sink := range s.sinks {
		if err := sink.Begin(ctx, run); err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "result sink failed to start").WithDetail("sink=" + sink.Name())
		}
	}

	coord := NewCoordinator(engine, s.tracker, CoordinatorOptions{
		RunID:         run.RunID.String(),
		Concurrency:   s.cfg.Batch.Concurrency,
		ChunkTimeout:  s.cfg.Batch.ChunkTimeout,
		ShutdownGrace: s.cfg.Batch.ShutdownGrace,
	}, s.logger)
	outcome, runErr := coord.Run(ctx, targets, run.ChunkCount)
	if outcome == nil {
		return nil, runErr
	}

	// Sinks keep writing after an interrupt so completed chunks are kept.
	sinkCtx := context.WithoutCancel(ctx)
	var sinkErr error
	for _, sink := range s.sinks {
		if err := s.publish(sinkCtx, sink, run, outcome); err != nil {
			log.Error("result sink failed", logging.String("sink", sink.Name()), logging.Err(err))
			if sinkErr == nil {
				sinkErr = errors.Wrap(err, errors.CodeUnknown, "result sink failed").WithDetail("sink=" + sink.Name())
			}
		}
	}

	report := &Report{Outcome: outcome, Manifest: s.manifest(run, outcome)}
	report.ManifestPath = filepath.Join(s.cfg.Output.Dir, s.cfg.Output.Manifest)
	if err := writeManifest(report.ManifestPath, report.Manifest); err != nil {
		log.Error("failed to write manifest", logging.Err(err))
		if sinkErr == nil {
			sinkErr = err
		}
	}

	if s.metrics != nil {
		s.metrics.RunFinished(report.Manifest.Outcome)
		for _, de := range outcome.DocumentErrors() {
			s.metrics.DocumentError(string(errors.GetCode(de.Err)))
		}
	}
	log.Info("run complete",
		logging.String("outcome", report.Manifest.Outcome),
		logging.Int("rows", len(outcome.Rows())),
		logging.String("manifest", report.ManifestPath),
		logging.Duration("elapsed", time.Since(started)))

	if runErr != nil {
		return report, runErr
	}
	return report, sinkErr
}

func (s *Service) publish(ctx context.Context, sink ResultSink, run RunInfo, outcome *BatchOutcome) error {
	for _, c := range outcome.Chunks {
		if c.Status != StatusSucceeded {
			continue
		}
		if err := sink.WriteChunk(ctx, run, c); err != nil {
			return err
		}
	}
	return sink.Finish(ctx, run, outcome)
}

func (s *Service) manifest(run RunInfo, outcome *BatchOutcome) Manifest {
	m := Manifest{
		RunID:        run.RunID.String(),
		ConfigDigest: run.ConfigDigest,
		StartedAt:    run.StartedAt,
		FinishedAt:   time.Now().UTC(),
		Outcome:      outcome.Outcome(),
		Targets:      run.TargetCount,
		ChunkCount:   run.ChunkCount,
		Columns:      run.Schema.Header(),
		Chunks:       outcome.States(),
	}
	for _, sink := range s.sinks {
		m.Sinks = append(m.Sinks, sink.Name())
	}
	for _, de := range outcome.DocumentErrors() {
		m.DocumentErrors = append(m.DocumentErrors, ManifestDocError{
			DocumentID: de.DocumentID,
			Code:       string(errors.GetCode(de.Err)),
			Message:    de.Err.Error(),
		})
	}
	return m
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to encode manifest")
	}
	return tabular.WriteFileAtomic(path, append(data, '\n'))
}

// ConfigDigest returns a stable hex digest of the effective configuration.
func ConfigDigest(cfg *config.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to encode configuration")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

//Personal.AI order the ending
