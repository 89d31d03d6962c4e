package analysis

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// StatusTracker receives every chunk status transition. Implementations must
// be safe for concurrent use and must not fail the run: delivery problems
// are logged and dropped.
type StatusTracker interface {
	Track(ctx context.Context, runID string, state ChunkState)
}

// MultiTracker fans a transition out to several trackers in order.
type MultiTracker []StatusTracker

func (m MultiTracker) Track(ctx context.Context, runID string, state ChunkState) {
	for _, t := range m {
		if t != nil {
			t.Track(ctx, runID, state)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Log
// ─────────────────────────────────────────────────────────────────────────────

// LogTracker writes one log line per transition.
type LogTracker struct {
	logger logging.Logger
}

func NewLogTracker(logger logging.Logger) *LogTracker {
	return &LogTracker{logger: logger.Named("status")}
}

func (t *LogTracker) Track(_ context.Context, runID string, st ChunkState) {
	fields := []logging.Field{
		logging.String("run_id", runID),
		logging.Chunk(st.Index),
		logging.String("status", string(st.Status)),
		logging.Int("documents", st.Documents),
	}
	switch st.Status {
	case StatusSucceeded:
		t.logger.Info("chunk status", append(fields,
			logging.Int("rows", st.Rows),
			logging.Int("document_errors", st.DocumentErrors),
			logging.Int64("duration_ms", st.DurationMS))...)
	case StatusFailed, StatusAbandoned:
		t.logger.Error("chunk status", append(fields,
			logging.String("code", st.Code),
			logging.String("error", st.Message))...)
	default:
		t.logger.Debug("chunk status", fields...)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Prometheus
// ─────────────────────────────────────────────────────────────────────────────

// MetricsTracker keeps the chunk status gauge and chunk histograms current.
type MetricsTracker struct {
	metrics *prom.AnalysisMetrics
}

func NewMetricsTracker(metrics *prom.AnalysisMetrics) *MetricsTracker {
	return &MetricsTracker{metrics: metrics}
}

func (t *MetricsTracker) Track(_ context.Context, _ string, st ChunkState) {
	t.metrics.SetChunkStatus(st.Index, string(st.Status))
	if st.Status.Terminal() {
		t.metrics.ObserveChunk(string(st.Status), time.Duration(st.DurationMS)*time.Millisecond, st.Rows)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis / Kafka
// ─────────────────────────────────────────────────────────────────────────────

// StatusStore persists the latest state of each chunk of a run.
type StatusStore interface {
	Put(ctx context.Context, runID string, chunk int, status interface{}) error
}

// EventPublisher emits status events.
type EventPublisher interface {
	Publish(ctx context.Context, runID string, payload interface{}) error
}

// StoreTracker writes each transition to a StatusStore.
type StoreTracker struct {
	store  StatusStore
	logger logging.Logger
}

func NewStoreTracker(store StatusStore, logger logging.Logger) *StoreTracker {
	return &StoreTracker{store: store, logger: logger}
}

func (t *StoreTracker) Track(ctx context.Context, runID string, st ChunkState) {
	if err := t.store.Put(ctx, runID, st.Index, st); err != nil {
		t.logger.Warn("failed to store chunk status", logging.Chunk(st.Index), logging.Err(err))
	}
}

// EventTracker publishes each transition as an event.
type EventTracker struct {
	publisher EventPublisher
	logger    logging.Logger
}

func NewEventTracker(publisher EventPublisher, logger logging.Logger) *EventTracker {
	return &EventTracker{publisher: publisher, logger: logger}
}

func (t *EventTracker) Track(ctx context.Context, runID string, st ChunkState) {
	if err := t.publisher.Publish(ctx, runID, st); err != nil {
		t.logger.Warn("failed to publish chunk status", logging.Chunk(st.Index), logging.Err(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory snapshot
// ─────────────────────────────────────────────────────────────────────────────

// RunSnapshot is the status of the run observed most recently.
type RunSnapshot struct {
	RunID  string       `json:"run_id"`
	Chunks []ChunkState `json:"chunks"`
}

// MemoryTracker keeps the latest state of every chunk of the current run.
// It backs the /status endpoint.
type MemoryTracker struct {
	mu     sync.RWMutex
	runID  string
	chunks map[int]ChunkState
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{chunks: make(map[int]ChunkState)}
}

func (t *MemoryTracker) Track(_ context.Context, runID string, st ChunkState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if runID != t.runID {
		t.runID = runID
		t.chunks = make(map[int]ChunkState)
	}
	t.chunks[st.Index] = st
}

// Snapshot returns a copy of the tracked states ordered by chunk index.
func (t *MemoryTracker) Snapshot() RunSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := RunSnapshot{RunID: t.runID, Chunks: make([]ChunkState, 0, len(t.chunks))}
	for _, st := range t.chunks {
		snap.Chunks = append(snap.Chunks, st)
	}
	sort.Slice(snap.Chunks, func(i, j int) bool { return snap.Chunks[i].Index < snap.Chunks[j].Index })
	return snap
}

// Lookup returns the snapshot when runID is empty or names the tracked run.
func (t *MemoryTracker) Lookup(_ context.Context, runID string) (RunSnapshot, error) {
	snap := t.Snapshot()
	if snap.RunID == "" || (runID != "" && runID != snap.RunID) {
		return RunSnapshot{}, errors.NotFound("no chunk status for run").WithDetail("run_id=" + runID)
	}
	return snap, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reading stored status
// ─────────────────────────────────────────────────────────────────────────────

// StatusReader looks up the chunk states of a run. An empty runID means the
// most recent run.
type StatusReader interface {
	Lookup(ctx context.Context, runID string) (RunSnapshot, error)
}

// StatusHistory is the read side of a StatusStore.
type StatusHistory interface {
	All(ctx context.Context, runID string) ([]json.RawMessage, error)
	LatestRun(ctx context.Context) (string, error)
}

// HistoryReader decodes the documents kept by a StatusHistory.
type HistoryReader struct {
	history StatusHistory
}

func NewHistoryReader(history StatusHistory) *HistoryReader {
	return &HistoryReader{history: history}
}

func (r *HistoryReader) Lookup(ctx context.Context, runID string) (RunSnapshot, error) {
	if runID == "" {
		latest, err := r.history.LatestRun(ctx)
		if err != nil {
			return RunSnapshot{}, err
		}
		runID = latest
	}
	docs, err := r.history.All(ctx, runID)
	if err != nil {
		return RunSnapshot{}, err
	}
	snap := RunSnapshot{RunID: runID, Chunks: make([]ChunkState, 0, len(docs))}
	for _, doc := range docs {
		var st ChunkState
		if err := json.Unmarshal(doc, &st); err != nil {
			return RunSnapshot{}, errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to decode chunk status").WithDetail("run_id=" + runID)
		}
		snap.Chunks = append(snap.Chunks, st)
	}
	return snap, nil
}

//Personal.AI order the ending
