// Package analysis runs the antecedent query over the target documents in
// parallel chunks and publishes the results.
package analysis

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ErrAllChunksFailed is returned when no non-empty chunk succeeded.
var ErrAllChunksFailed = errors.New(errors.ErrCodeAllChunksFailed, "every analysis chunk failed")

const (
	defaultChunkTimeout  = 6 * time.Hour
	defaultShutdownGrace = 30 * time.Second
)

// CoordinatorOptions tunes a Coordinator.
type CoordinatorOptions struct {
	RunID         string
	Concurrency   int
	ChunkTimeout  time.Duration
	ShutdownGrace time.Duration
}

// Coordinator fans target documents out over chunks. Chunks are isolated
// from each other: one failing never cancels the rest.
type Coordinator struct {
	analyzer antecedent.Analyzer
	tracker  StatusTracker
	opts     CoordinatorOptions
	logger   logging.Logger
}

// NewCoordinator returns a Coordinator. A nil tracker discards status
// updates.
func NewCoordinator(analyzer antecedent.Analyzer, tracker StatusTracker, opts CoordinatorOptions, logger logging.Logger) *Coordinator {
	if tracker == nil {
		tracker = MultiTracker(nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.ChunkTimeout <= 0 {
		opts.ChunkTimeout = defaultChunkTimeout
	}
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = defaultShutdownGrace
	}
	return &Coordinator{
		analyzer: analyzer,
		tracker:  tracker,
		opts:     opts,
		logger:   logger.Named("coordinator"),
	}
}

// Run analyzes targets in chunkCount chunks. The outcome is always returned,
// ordered by chunk index; the error is ErrAllChunksFailed when no non-empty
// chunk succeeded.
func (c *Coordinator) Run(ctx context.Context, targets []string, chunkCount int) (*BatchOutcome, error) {
	if chunkCount < 1 {
		return nil, errors.Validation("chunk count must be at least 1").WithDetailf("chunk_count=%d", chunkCount)
	}
	chunks := Partition(targets, chunkCount)
	limit := c.opts.Concurrency
	if limit < 1 {
		limit = chunkCount
	}

	outcome := &BatchOutcome{Chunks: make([]ChunkResult, chunkCount)}
	for i, docs := range chunks {
		outcome.Chunks[i] = ChunkResult{Index: i, Documents: docs, Status: StatusPending}
		c.tracker.Track(ctx, c.opts.RunID, outcome.Chunks[i].State())
	}
	c.logger.Info("analysis started",
		logging.String("run_id", c.opts.RunID),
		logging.Int("targets", len(targets)),
		logging.Int("chunks", chunkCount),
		logging.Int("concurrency", limit))

	// Workers own their result until they hand it over on done.
	done := make(chan ChunkResult, chunkCount)
	go func() {
		var g errgroup.Group
		g.SetLimit(limit)
		for i, docs := range chunks {
			i, docs := i, docs
			g.Go(func() error {
				done <- c.runChunk(ctx, i, docs)
				return nil
			})
		}
		_ = g.Wait()
	}()

	received := make([]bool, chunkCount)
	remaining := chunkCount
	parentDone := ctx.Done()
	var grace <-chan time.Time

collect:
	for remaining > 0 {
		select {
		case res := <-done:
			outcome.Chunks[res.Index] = res
			received[res.Index] = true
			remaining--
			c.tracker.Track(context.WithoutCancel(ctx), c.opts.RunID, res.State())
		case <-parentDone:
			parentDone = nil
			timer := time.NewTimer(c.opts.ShutdownGrace)
			defer timer.Stop()
			grace = timer.C
			c.logger.Warn("analysis interrupted, waiting for running chunks",
				logging.Int("remaining", remaining),
				logging.Duration("grace", c.opts.ShutdownGrace))
		case <-grace:
			break collect
		}
	}

	for i := range outcome.Chunks {
		if received[i] {
			continue
		}
		res := &outcome.Chunks[i]
		res.Status = StatusAbandoned
		res.Rows = nil
		res.Err = errors.Newf(errors.ErrCodeWorkerAbandoned, "chunk %d did not finish within the shutdown grace period", i).
			WithDetailf("chunk=%d", i)
		c.logger.Error("chunk abandoned", logging.Chunk(i))
		c.tracker.Track(context.WithoutCancel(ctx), c.opts.RunID, res.State())
	}

	c.logger.Info("analysis finished",
		logging.String("run_id", c.opts.RunID),
		logging.Int("succeeded", outcome.Count(StatusSucceeded)),
		logging.Int("failed", outcome.Count(StatusFailed)),
		logging.Int("abandoned", outcome.Count(StatusAbandoned)))

	if outcome.AllFailed() {
		return outcome, ErrAllChunksFailed
	}
	return outcome, nil
}

// runChunk analyzes one chunk under its own timeout. Work that ignores
// cancellation is left running once the timeout fires; its result is
// discarded.
func (c *Coordinator) runChunk(ctx context.Context, index int, docs []string) ChunkResult {
	start := time.Now()
	res := ChunkResult{Index: index, Documents: docs, Status: StatusRunning}
	if len(docs) == 0 {
		res.Status = StatusSucceeded
		return res
	}
	// Chunks still queued when the run is interrupted never start.
	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Err = chunkFailure(index, err)
		return res
	}
	c.tracker.Track(ctx, c.opts.RunID, res.State())

	chunkCtx, cancel := context.WithTimeout(ctx, c.opts.ChunkTimeout)
	defer cancel()

	work := make(chan ChunkResult, 1)
	go func() { work <- c.analyzeChunk(chunkCtx, index, docs) }()

	select {
	case res = <-work:
	case <-chunkCtx.Done():
		if ctx.Err() != nil {
			// Interrupted from above; the coordinator's grace period decides.
			res = <-work
		} else {
			res.Status = StatusFailed
			res.Err = chunkFailure(index, errors.New(errors.ErrCodeTimeout, "chunk timed out").
				WithDetailf("timeout=%s", c.opts.ChunkTimeout))
		}
	}
	res.Duration = time.Since(start)

	if res.Status == StatusFailed {
		res.Rows = nil
		c.logger.Error("chunk failed", logging.Chunk(index), logging.Err(res.Err))
	}
	return res
}

func (c *Coordinator) analyzeChunk(ctx context.Context, index int, docs []string) (res ChunkResult) {
	res = ChunkResult{Index: index, Documents: docs, Status: StatusRunning}
	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Rows = nil
			res.Err = chunkFailure(index, errors.Newf(errors.ErrCodeInternal, "panic: %v", r).WithDetail(string(debug.Stack())))
		}
	}()

	for _, id := range docs {
		if err := ctx.Err(); err != nil {
			res.Status = StatusFailed
			res.Rows = nil
			res.Err = chunkFailure(index, err)
			return res
		}
		rows, err := c.analyzer.Analyze(ctx, id)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeUnknownDocument) {
				c.logger.Warn("skipping unknown target", logging.Chunk(index), logging.DocumentID(id))
				res.DocumentErrors = append(res.DocumentErrors, DocumentError{DocumentID: id, Err: err})
				continue
			}
			res.Status = StatusFailed
			res.Rows = nil
			res.Err = chunkFailure(index, err)
			return res
		}
		res.Rows = append(res.Rows, rows...)
	}
	res.Status = StatusSucceeded
	return res
}

func chunkFailure(index int, cause error) *errors.AppError {
	return errors.Wrap(cause, errors.ErrCodeChunkFailure, fmt.Sprintf("chunk %d failed", index)).
		WithDetailf("chunk=%d", index)
}

//Personal.AI order the ending
