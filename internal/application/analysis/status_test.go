package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	mocks "github.com/turtacn/Antecedent-Intelligence/internal/testutil"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

type fakeStore struct {
	puts []ChunkState
	err  error
}

func (f *fakeStore) Put(_ context.Context, _ string, _ int, status interface{}) error {
	f.puts = append(f.puts, status.(ChunkState))
	return f.err
}

type fakePublisher struct {
	runs []string
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, runID string, _ interface{}) error {
	f.runs = append(f.runs, runID)
	return f.err
}

func TestMultiTracker_FansOut(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: fmt.Errorf("broker down")}
	log := mocks.NewMockLogger()
	mem := NewMemoryTracker()

	tr := MultiTracker{NewLogTracker(log), NewStoreTracker(store, log), NewEventTracker(pub, log), mem, nil}
	tr.Track(context.Background(), "run-1", ChunkState{Index: 2, Status: StatusFailed, Code: "ANT_003", Message: "chunk 2 failed"})

	assert.Len(t, store.puts, 1)
	assert.Equal(t, []string{"run-1"}, pub.runs)
	assert.True(t, log.HasMessage("error", "chunk status"))
	assert.True(t, log.HasMessage("warn", "failed to publish chunk status"), "delivery errors are logged, not returned")
	assert.Equal(t, "run-1", mem.Snapshot().RunID)
}

func TestMemoryTracker_Snapshot(t *testing.T) {
	mem := NewMemoryTracker()
	ctx := context.Background()
	mem.Track(ctx, "a", ChunkState{Index: 1, Status: StatusRunning})
	mem.Track(ctx, "a", ChunkState{Index: 0, Status: StatusPending})
	mem.Track(ctx, "a", ChunkState{Index: 1, Status: StatusSucceeded})

	snap := mem.Snapshot()
	require.Len(t, snap.Chunks, 2)
	assert.Equal(t, 0, snap.Chunks[0].Index)
	assert.Equal(t, StatusSucceeded, snap.Chunks[1].Status)

	mem.Track(ctx, "b", ChunkState{Index: 0, Status: StatusPending})
	assert.Len(t, mem.Snapshot().Chunks, 1, "a new run resets the snapshot")
}

func TestMetricsTracker(t *testing.T) {
	c, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	m := prom.NewAnalysisMetrics(c)
	tr := NewMetricsTracker(m)

	tr.Track(context.Background(), "r", ChunkState{Index: 0, Status: StatusRunning})
	tr.Track(context.Background(), "r", ChunkState{Index: 0, Status: StatusSucceeded, Rows: 4, DurationMS: 1500})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChunkStatus.WithLabelValues("0", "succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ChunkStatus.WithLabelValues("0", "running")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RowsTotal))
}

func TestChunkStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusAbandoned.Terminal())
}

func TestMemoryTracker_Lookup(t *testing.T) {
	mem := NewMemoryTracker()
	_, err := mem.Lookup(context.Background(), "")
	assert.True(t, errors.IsNotFound(err))

	mem.Track(context.Background(), "run-1", ChunkState{Index: 0, Status: StatusRunning})
	snap, err := mem.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.RunID)

	_, err = mem.Lookup(context.Background(), "run-2")
	assert.True(t, errors.IsNotFound(err))
}

func TestHistoryReader_RoundTripThroughRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewChunkStatusStore(client, "antecedent:", time.Hour, logging.NewNopLogger())
	tracker := NewStoreTracker(store, logging.NewNopLogger())
	ctx := context.Background()

	tracker.Track(ctx, "run-a", ChunkState{Index: 1, Status: StatusFailed, Code: "ANT_003"})
	tracker.Track(ctx, "run-a", ChunkState{Index: 0, Status: StatusSucceeded, Rows: 4})

	reader := NewHistoryReader(store)
	snap, err := reader.Lookup(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "run-a", snap.RunID)
	require.Len(t, snap.Chunks, 2)
	assert.Equal(t, StatusSucceeded, snap.Chunks[0].Status)
	assert.Equal(t, 4, snap.Chunks[0].Rows)
	assert.Equal(t, "ANT_003", snap.Chunks[1].Code)

	_, err = reader.Lookup(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

//Personal.AI order the ending
