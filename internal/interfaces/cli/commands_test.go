package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/internal/testutil"
)

func TestAnalyzeCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	docs, phrases := testutil.DueProcessBuilder().WriteCorpusFiles(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t,
		"--config", writeConfig(t, ""),
		"--output", outDir,
		"analyze",
		"--documents", docs,
		"--phrases", phrases,
		"--baseline-window", "0",
		"--chunks", "2",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded")

	f, err := os.Open(filepath.Join(outDir, config.DefaultCombinedFile))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3, "header plus one row for A and one for D")
	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s missing", name)
		return -1
	}
	byID := map[string][]string{}
	for _, r := range records[1:] {
		byID[r[col("document_id")]] = r
	}
	assert.Equal(t, "3", byID["A"][col("phrase_count")])
	assert.Equal(t, "2", byID["A"][col("antecedent_count")])
	assert.Equal(t, "1", byID["A"][col("modern_antecedent_count")])
	assert.Equal(t, "0", byID["D"][col("antecedent_count")])

	data, err := os.ReadFile(filepath.Join(outDir, config.DefaultManifest))
	require.NoError(t, err)
	var manifest analysis.Manifest
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, "succeeded", manifest.Outcome)
	assert.Equal(t, 2, manifest.Targets)
	assert.Len(t, manifest.Chunks, 2)
}

func TestRedactCommand(t *testing.T) {
	dir := t.TempDir()
	docs, phrases := testutil.DueProcessBuilder().WriteCorpusFiles(t, dir)
	artifacts := filepath.Join(dir, "redactions")
	cfg := writeConfig(t, fmt.Sprintf("corpus:\n  documents_path: %s\n  phrases_path: %s\nanalysis:\n  baseline_window_years: 0\n", docs, phrases))

	out, err := execute(t, "--config", cfg, "redact", "A", "missing", "--out-dir", artifacts, "--combined")
	require.NoError(t, err, "one failing document does not fail the command")
	assert.Contains(t, out, "1 of 2 documents failed")

	for _, name := range []string{"CITE_A_2.html", "CITE_A_2_modern.html", "CITE_A_all.html", "CITE_A_all_modern.html"} {
		assert.FileExists(t, filepath.Join(artifacts, name))
	}
	page, err := os.ReadFile(filepath.Join(artifacts, "CITE_A_2_modern.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "strict scrutiny")

	_, err = execute(t, "--config", cfg, "redact", "missing", "--out-dir", artifacts)
	assert.Error(t, err, "every document failed")
}

func TestPreprocessCommand(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "1999-77-majority_SOUTER.txt"), []byte("Some  opinion text."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644))
	outPath := filepath.Join(t.TempDir(), "opinions.csv")

	out, err := execute(t, "--config", writeConfig(t, ""), "preprocess", in, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 documents written to "+outPath+" (1 files skipped)")
	assert.FileExists(t, outPath)
}

func TestStatusCommand_ReadsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	store := redis.NewChunkStatusStore(client, config.DefaultRedisKeyPrefix, time.Hour, logging.NewNopLogger())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "run-9", 0, analysis.ChunkState{Index: 0, Status: analysis.StatusSucceeded, Rows: 2}))
	require.NoError(t, store.Put(ctx, "run-9", 1, analysis.ChunkState{Index: 1, Status: analysis.StatusRunning}))

	cfg := writeConfig(t, fmt.Sprintf("redis:\n  enabled: true\n  addr: %s\n", mr.Addr()))
	out, err := execute(t, "--config", cfg, "status", "--json")
	require.NoError(t, err)

	var snap analysis.RunSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "run-9", snap.RunID)
	require.Len(t, snap.Chunks, 2)
	assert.Equal(t, analysis.StatusRunning, snap.Chunks[1].Status)

	out, err = execute(t, "--config", cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "run run-9")
	assert.Contains(t, out, "succeeded")
}

func TestStatusCommand_RequiresBackend(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, ""), "status")
	assert.Error(t, err)
	_, err = execute(t, "--config", writeConfig(t, ""), "status", "--follow")
	assert.Error(t, err)
}

func TestChunkEventHandler(t *testing.T) {
	var got []analysis.ChunkState
	handle := chunkEventHandler("run-1", logging.NewNopLogger(), func(_ string, st analysis.ChunkState) {
		got = append(got, st)
	})
	ctx := context.Background()

	env, err := kafka.NewEventEnvelope(kafka.EventTypeChunkStatus, "test", "run-1", analysis.ChunkState{Index: 3, Status: analysis.StatusFailed})
	require.NoError(t, err)
	require.NoError(t, handle(ctx, env))

	other, err := kafka.NewEventEnvelope(kafka.EventTypeChunkStatus, "test", "run-2", analysis.ChunkState{Index: 4})
	require.NoError(t, err)
	require.NoError(t, handle(ctx, other))

	empty := &kafka.EventEnvelope{EventType: kafka.EventTypeChunkStatus, RunID: "run-1"}
	require.NoError(t, handle(ctx, empty), "undecodable payloads are skipped")

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Index)
	assert.Equal(t, analysis.StatusFailed, got[0].Status)
}

//Personal.AI order the ending
