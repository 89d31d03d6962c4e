package redis

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ChunkStatusStore keeps the latest status of every chunk of a run in a hash
// "<prefix>run:<run_id>:chunks", one JSON document per chunk index. The id of
// the most recent run is kept under "<prefix>run:latest".
type ChunkStatusStore struct {
	client *Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewChunkStatusStore returns a store. A zero ttl keeps keys forever.
func NewChunkStatusStore(client *Client, prefix string, ttl time.Duration, logger logging.Logger) *ChunkStatusStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ChunkStatusStore{client: client, prefix: prefix, ttl: ttl, logger: logger.Named("chunk_status_store")}
}

// ChunksKey returns the hash key of a run.
func (s *ChunkStatusStore) ChunksKey(runID string) string {
	return s.prefix + "run:" + runID + ":chunks"
}

func (s *ChunkStatusStore) latestKey() string {
	return s.prefix + "run:latest"
}

// Put stores the status document of one chunk and marks runID as the latest
// run.
func (s *ChunkStatusStore) Put(ctx context.Context, runID string, chunk int, status interface{}) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode chunk status")
	}
	key := s.ChunksKey(runID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(chunk), payload)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	pipe.Set(ctx, s.latestKey(), runID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to store chunk status").WithDetailf("run_id=%s chunk=%d", runID, chunk)
	}
	return nil
}

// All returns the stored status documents of a run ordered by chunk index.
// An unknown run yields NotFound.
func (s *ChunkStatusStore) All(ctx context.Context, runID string) ([]json.RawMessage, error) {
	fields, err := s.client.HGetAll(ctx, s.ChunksKey(runID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to read chunk status").WithDetail("run_id=" + runID)
	}
	if len(fields) == 0 {
		return nil, errors.NotFound("no chunk status for run").WithDetail("run_id=" + runID)
	}

	type entry struct {
		index int
		doc   json.RawMessage
	}
	entries := make([]entry, 0, len(fields))
	for k, v := range fields {
		i, err := strconv.Atoi(k)
		if err != nil {
			s.logger.Warn("ignoring malformed chunk field", logging.String("field", k))
			continue
		}
		entries = append(entries, entry{index: i, doc: json.RawMessage(v)})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].index < entries[b].index })

	out := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		out[i] = e.doc
	}
	return out, nil
}

// LatestRun returns the id of the most recently updated run.
func (s *ChunkStatusStore) LatestRun(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, s.latestKey()).Result()
	if err == redis.Nil {
		return "", errors.NotFound("no run recorded")
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CodeCacheError, "failed to read latest run")
	}
	return id, nil
}

//Personal.AI order the ending
