package analysis

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/Antecedent-Intelligence/internal/testutil"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

func testConfig(t *testing.T, window int) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Analysis.BaselineWindowYears = &window
	cfg.Batch.ChunkCount = 2
	cfg.Batch.Concurrency = 2
	cfg.Output.Dir = t.TempDir()
	cfg.Corpus.SampleFraction = 1
	return cfg
}

type fakeRunRepo struct {
	created  []repositories.RunRecord
	saved    map[int]int
	finished string
}

func (f *fakeRunRepo) CreateRun(_ context.Context, run repositories.RunRecord) error {
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunRepo) SaveResults(_ context.Context, _ uuid.UUID, chunk int, _ antecedent.Schema, results []antecedent.Result) (int64, error) {
	if f.saved == nil {
		f.saved = map[int]int{}
	}
	f.saved[chunk] = len(results)
	return int64(len(results)), nil
}

func (f *fakeRunRepo) FinishRun(_ context.Context, _ uuid.UUID, status string, _ time.Time, _ any) error {
	f.finished = status
	return nil
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestService_RunLatestYear(t *testing.T) {
	cfg := testConfig(t, 0)
	src := testutil.StaticSource{Corpus: testutil.DueProcessCorpus(t)}
	repo := &fakeRunRepo{}
	mem := NewMemoryTracker()

	svc, err := NewService(cfg, src, nil,
		WithSinks(NewCSVSink(cfg.Output.Dir, cfg.Output.CombinedFile, testutil.NewMockLogger()), NewPostgresSink(repo, testutil.NewMockLogger())),
		WithTracker(mem))
	require.NoError(t, err)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "succeeded", report.Manifest.Outcome)
	assert.Equal(t, 2, report.Manifest.Targets)

	// A (2000, X): due process and strict scrutiny are antecedents, only
	// strict scrutiny is outside the 1985 baseline.
	byDoc := map[string]antecedent.Result{}
	for _, r := range report.Outcome.Rows() {
		byDoc[r.DocumentID] = r
	}
	a := byDoc["A"]
	assert.Equal(t, 3, a.PhraseCount)
	assert.Equal(t, 2, a.AntecedentCount)
	assert.Equal(t, 1, a.ModernAntecedentCount)
	// D (2000, Y): its only earlier match is by its own author.
	assert.Equal(t, 0, byDoc["D"].AntecedentCount)

	combined := readCSV(t, filepath.Join(cfg.Output.Dir, cfg.Output.CombinedFile))
	assert.Len(t, combined, 3, "header plus one row per target")
	assert.Equal(t, "document_id", combined[0][0])

	var m Manifest
	data, err := os.ReadFile(report.ManifestPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, report.Manifest.RunID, m.RunID)
	assert.Len(t, m.Chunks, 2)
	assert.Equal(t, []string{"csv", "postgres"}, m.Sinks)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "succeeded", repo.finished)
	assert.Equal(t, m.RunID, mem.Snapshot().RunID)
}

func TestService_UnknownTargetIsReported(t *testing.T) {
	cfg := testConfig(t, 0)
	cfg.Analysis.Targets = config.TargetConfig{Mode: config.TargetIDs, IDs: []string{"A", "nope", "A"}}
	cfg.Batch.ChunkCount = 1

	svc, err := NewService(cfg, testutil.StaticSource{Corpus: testutil.DueProcessCorpus(t)}, nil)
	require.NoError(t, err)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Manifest.Targets, "duplicates are dropped")
	require.Len(t, report.Manifest.DocumentErrors, 1)
	assert.Equal(t, "nope", report.Manifest.DocumentErrors[0].DocumentID)
	assert.Equal(t, string(errors.ErrCodeUnknownDocument), report.Manifest.DocumentErrors[0].Code)
}

func TestService_CorpusUnavailable(t *testing.T) {
	cfg := testConfig(t, 0)
	src := testutil.StaticSource{Err: errors.New(errors.ErrCodeCorpusUnavailable, "gone")}
	svc, err := NewService(cfg, src, nil)
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorpusUnavailable))
}

func TestSelectTargets(t *testing.T) {
	ws, err := Prepare(context.Background(), testutil.StaticSource{Corpus: testutil.DueProcessCorpus(t)}, testConfig(t, 5), testutil.NewMockLogger())
	require.NoError(t, err)

	got, err := SelectTargets(ws.Index, config.TargetConfig{Mode: config.TargetLatestYear})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "D"}, got)

	got, err = SelectTargets(ws.Index, config.TargetConfig{Mode: config.TargetAll})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = SelectTargets(ws.Index, config.TargetConfig{Mode: config.TargetYears, Years: []int{1985, 1990}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, got)

	_, err = SelectTargets(ws.Index, config.TargetConfig{Mode: "someday"})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestPrepare_RequiresWindow(t *testing.T) {
	cfg := testConfig(t, 0)
	cfg.Analysis.BaselineWindowYears = nil
	_, err := Prepare(context.Background(), testutil.StaticSource{Corpus: testutil.DueProcessCorpus(t)}, cfg, testutil.NewMockLogger())
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestPrepare_CategoryRestriction(t *testing.T) {
	cfg := testConfig(t, 0)
	cfg.Corpus.Categories = []string{"majority"}
	ws, err := Prepare(context.Background(), testutil.StaticSource{Corpus: testutil.DueProcessCorpus(t)}, cfg, testutil.NewMockLogger())
	require.NoError(t, err)
	_, ok := ws.Index.Document("D")
	assert.False(t, ok)
}

func TestCrossFilters(t *testing.T) {
	got := CrossFilters([]config.FilterConfig{
		{Kind: "category", Category: " Majority "},
		{Kind: "recent", Years: 10, ModernOnly: true},
	})
	require.Len(t, got, 2)
	assert.Equal(t, antecedent.KindCategory, got[0].Kind)
	assert.Equal(t, "majority", string(got[0].Category))
	assert.Equal(t, "modern_recent_10y", got[1].Column())
}

func TestConfigDigest_Stable(t *testing.T) {
	a, err := ConfigDigest(testConfig(t, 3))
	require.NoError(t, err)
	cfg := testConfig(t, 3)
	b, err := ConfigDigest(cfg)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	// Output.Dir differs between the two temp dirs.
	assert.NotEqual(t, a, b)
	c, err := ConfigDigest(cfg)
	require.NoError(t, err)
	assert.Equal(t, b, c)
}

//Personal.AI order the ending
