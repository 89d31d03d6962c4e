package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// RunRecord is one row of analysis_runs.
type RunRecord struct {
	RunID        uuid.UUID
	ConfigDigest string
	ChunkCount   int
	TargetCount  int
	Status       string
	StartedAt    time.Time
	FinishedAt   *time.Time

	// Chunks is the per-chunk summary stored as JSONB.
	Chunks any
}

// ResultRepository mirrors analysis output into analysis_runs and
// antecedent_results.
type ResultRepository struct {
	db     DBTX
	logger logging.Logger
}

// NewResultRepository returns a ResultRepository.
func NewResultRepository(db DBTX, logger logging.Logger) *ResultRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ResultRepository{db: db, logger: logger.Named("result_repo")}
}

var resultColumns = []string{
	"run_id", "chunk", "document_id", "length",
	"phrase_count", "antecedent_count", "modern_antecedent_count", "filter_counts",
	"antecedent_fraction", "modern_antecedent_fraction", "filter_fractions",
}

// CreateRun inserts the run row. It must precede SaveResults for the run.
func (r *ResultRepository) CreateRun(ctx context.Context, run RunRecord) error {
	chunks, err := json.Marshal(nonNil(run.Chunks))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode chunk summary")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO analysis_runs (run_id, config_digest, chunk_count, target_count, status, started_at, finished_at, chunks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.RunID, run.ConfigDigest, run.ChunkCount, run.TargetCount, run.Status, run.StartedAt, run.FinishedAt, chunks)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to insert analysis run").WithDetail("run_id=" + run.RunID.String())
	}
	return nil
}

// FinishRun records the final status and chunk summary of a run.
func (r *ResultRepository) FinishRun(ctx context.Context, runID uuid.UUID, status string, finishedAt time.Time, chunks any) error {
	encoded, err := json.Marshal(nonNil(chunks))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode chunk summary")
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE analysis_runs SET status = $2, finished_at = $3, chunks = $4 WHERE run_id = $1`,
		runID, status, finishedAt, encoded)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to update analysis run").WithDetail("run_id=" + runID.String())
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("analysis run not found").WithDetail("run_id=" + runID.String())
	}
	return nil
}

// SaveResults copies the rows of one chunk. Undefined fractions are stored as
// NULL; filter counts and fractions are JSONB objects keyed by column stem.
func (r *ResultRepository) SaveResults(ctx context.Context, runID uuid.UUID, chunk int, schema antecedent.Schema, results []antecedent.Result) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(results))
	for _, res := range results {
		row, err := resultRow(runID, chunk, schema, res)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"antecedent_results"}, resultColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to copy antecedent results").WithDetailf("run_id=%s chunk=%d", runID, chunk)
	}
	r.logger.Debug("results copied", logging.Chunk(chunk), logging.Int64("rows", n))
	return n, nil
}

func resultRow(runID uuid.UUID, chunk int, schema antecedent.Schema, res antecedent.Result) ([]any, error) {
	counts, err := json.Marshal(schema.FilterMap(res))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to encode filter counts")
	}
	fractions := make(map[string]antecedent.Fraction, len(res.FilterFractions))
	for i, col := range schema.FilterColumns() {
		if i < len(res.FilterFractions) {
			fractions[col] = res.FilterFractions[i]
		} else {
			fractions[col] = antecedent.Fraction{}
		}
	}
	fracJSON, err := json.Marshal(fractions)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to encode filter fractions")
	}
	return []any{
		runID, chunk, res.DocumentID, res.Length.String(),
		res.PhraseCount, res.AntecedentCount, res.ModernAntecedentCount, counts,
		res.AntecedentFraction.Float(), res.ModernAntecedentFraction.Float(), fracJSON,
	}, nil
}

func nonNil(v any) any {
	if v == nil {
		return []any{}
	}
	return v
}

//Personal.AI order the ending
