package analysis

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/tabular"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// RunInfo identifies one analysis run to the sinks.
type RunInfo struct {
	RunID        uuid.UUID
	ConfigDigest string
	ChunkCount   int
	TargetCount  int
	StartedAt    time.Time
	Schema       antecedent.Schema
}

// ResultSink receives the output of a run. WriteChunk is called once per
// succeeded chunk, in chunk order, between Begin and Finish.
type ResultSink interface {
	Name() string
	Begin(ctx context.Context, run RunInfo) error
	WriteChunk(ctx context.Context, run RunInfo, chunk ChunkResult) error
	Finish(ctx context.Context, run RunInfo, outcome *BatchOutcome) error
}

// ─────────────────────────────────────────────────────────────────────────────
// CSV
// ─────────────────────────────────────────────────────────────────────────────

// CSVSink writes one file per chunk and concatenates them into the combined
// file once the run finishes. The combined file always belongs to the latest
// run: it is removed in Begin and holds only the header when no chunk
// succeeded.
type CSVSink struct {
	dir      string
	combined string
	logger   logging.Logger

	written []string
}

func NewCSVSink(dir, combinedFile string, logger logging.Logger) *CSVSink {
	return &CSVSink{dir: dir, combined: combinedFile, logger: logger.Named("csv_sink")}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Begin(_ context.Context, run RunInfo) error {
	s.written = s.written[:0]
	// Drop output of earlier runs with the same chunk count so the
	// directory only reflects this run.
	stale := []string{filepath.Join(s.dir, s.combined)}
	for i := 0; i < run.ChunkCount; i++ {
		stale = append(stale, filepath.Join(s.dir, tabular.ChunkFileName(i, run.ChunkCount)))
	}
	for _, p := range stale {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to remove stale output").WithDetail("path=" + p)
		}
	}
	return nil
}

func (s *CSVSink) WriteChunk(_ context.Context, run RunInfo, chunk ChunkResult) error {
	p, err := tabular.WriteChunk(s.dir, chunk.Index, run.ChunkCount, run.Schema, chunk.Rows)
	if err != nil {
		return err
	}
	s.written = append(s.written, p)
	s.logger.Debug("chunk file written", logging.Chunk(chunk.Index), logging.String("path", p))
	return nil
}

func (s *CSVSink) Finish(_ context.Context, run RunInfo, _ *BatchOutcome) error {
	out := filepath.Join(s.dir, s.combined)
	if len(s.written) == 0 {
		if err := tabular.WriteRowsFile(out, run.Schema, nil); err != nil {
			return err
		}
		s.logger.Warn("no chunk succeeded, combined output has no rows", logging.String("path", out))
		return nil
	}
	if err := tabular.Combine(out, s.written); err != nil {
		return err
	}
	s.logger.Info("combined output written", logging.String("path", out), logging.Int("chunks", len(s.written)))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL
// ─────────────────────────────────────────────────────────────────────────────

// RunRepository is the persistence surface used by PostgresSink.
type RunRepository interface {
	CreateRun(ctx context.Context, run repositories.RunRecord) error
	SaveResults(ctx context.Context, runID uuid.UUID, chunk int, schema antecedent.Schema, results []antecedent.Result) (int64, error)
	FinishRun(ctx context.Context, runID uuid.UUID, status string, finishedAt time.Time, chunks any) error
}

// PostgresSink mirrors the rows into analysis_runs and antecedent_results.
type PostgresSink struct {
	repo   RunRepository
	logger logging.Logger
}

func NewPostgresSink(repo RunRepository, logger logging.Logger) *PostgresSink {
	return &PostgresSink{repo: repo, logger: logger.Named("postgres_sink")}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Begin(ctx context.Context, run RunInfo) error {
	return s.repo.CreateRun(ctx, repositories.RunRecord{
		RunID:        run.RunID,
		ConfigDigest: run.ConfigDigest,
		ChunkCount:   run.ChunkCount,
		TargetCount:  run.TargetCount,
		Status:       string(StatusRunning),
		StartedAt:    run.StartedAt,
	})
}

func (s *PostgresSink) WriteChunk(ctx context.Context, run RunInfo, chunk ChunkResult) error {
	n, err := s.repo.SaveResults(ctx, run.RunID, chunk.Index, run.Schema, chunk.Rows)
	if err != nil {
		return err
	}
	s.logger.Debug("chunk rows copied", logging.Chunk(chunk.Index), logging.Int64("rows", n))
	return nil
}

func (s *PostgresSink) Finish(ctx context.Context, run RunInfo, outcome *BatchOutcome) error {
	return s.repo.FinishRun(ctx, run.RunID, outcome.Outcome(), time.Now().UTC(), outcome.States())
}

//Personal.AI order the ending
