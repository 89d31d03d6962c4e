package analysis

import (
	"context"
	"time"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/phrase"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Workspace is the immutable state shared by every query of a run: the
// loaded corpus, its phrase index and the baseline set.
type Workspace struct {
	Corpus   *corpus.Corpus
	Index    *phrase.Index
	Baseline phrase.BaselineSet
}

// Prepare loads the corpus from source, applies the category restriction
// and debug sample from cfg.Corpus, and builds the index and baseline.
func Prepare(ctx context.Context, source corpus.Source, cfg *config.Config, logger logging.Logger) (*Workspace, error) {
	if cfg.Analysis.BaselineWindowYears == nil {
		return nil, errors.Validation("analysis.baseline_window_years is required")
	}
	start := time.Now()

	c, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(cfg.Corpus.Categories) > 0 {
		cats := make([]corpus.Category, len(cfg.Corpus.Categories))
		for i, s := range cfg.Corpus.Categories {
			cats[i] = corpus.ParseCategory(s)
		}
		c = c.WithCategories(cats)
	}
	if f := cfg.Corpus.SampleFraction; f > 0 && f < 1 {
		if c, err = c.Sample(f, cfg.Corpus.SampleSeed); err != nil {
			return nil, err
		}
		logger.Info("analyzing a document sample",
			logging.Float64("fraction", f),
			logging.Int64("seed", cfg.Corpus.SampleSeed),
			logging.Int("documents", c.Len()))
	}

	idx, err := phrase.FromCorpus(c)
	if err != nil {
		return nil, err
	}
	baseline, err := phrase.BuildBaseline(idx, *cfg.Analysis.BaselineWindowYears)
	if err != nil {
		return nil, err
	}

	cutoff, _ := baseline.CutoffYear()
	logger.Info("phrase index built",
		logging.Int("documents", idx.DocumentCount()),
		logging.Int("phrases", idx.Len()),
		logging.Int("records", idx.RecordCount()),
		logging.Int("baseline_phrases", baseline.Len()),
		logging.Int("baseline_cutoff_year", cutoff),
		logging.Duration("elapsed", time.Since(start)))

	return &Workspace{Corpus: c, Index: idx, Baseline: baseline}, nil
}

// Engine returns a query engine over the workspace configured by cfg.
func (w *Workspace) Engine(cfg *config.Config) (*antecedent.Engine, error) {
	return antecedent.NewEngine(w.Index, w.Baseline, antecedent.Options{
		Filters:          CrossFilters(cfg.Analysis.Filters),
		EmitEmptyLengths: cfg.Analysis.EmitEmptyLengths,
	})
}

// CrossFilters converts the configured filter list.
func CrossFilters(in []config.FilterConfig) []antecedent.CrossFilter {
	out := make([]antecedent.CrossFilter, len(in))
	for i, f := range in {
		out[i] = antecedent.CrossFilter{
			Name:       f.Name,
			Kind:       antecedent.FilterKind(f.Kind),
			Author:     f.Author,
			Topic:      f.Topic,
			Years:      f.Years,
			ModernOnly: f.ModernOnly,
		}
		if f.Category != "" {
			out[i].Category = corpus.ParseCategory(f.Category)
		}
	}
	return out
}

// SelectTargets returns the ids of the documents to analyze, in index order
// for the year based modes and as listed for TargetIDs. Listed ids are not
// checked here; unknown ones surface as per-document errors.
func SelectTargets(idx *phrase.Index, t config.TargetConfig) ([]string, error) {
	switch t.Mode {
	case config.TargetLatestYear, "":
		if _, _, ok := idx.YearRange(); !ok {
			return nil, nil
		}
		return idx.DocumentsOfYear(idx.MaxYear()), nil
	case config.TargetAll:
		docs := idx.Documents()
		ids := make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		return ids, nil
	case config.TargetYears:
		want := make(map[int]bool, len(t.Years))
		for _, y := range t.Years {
			want[y] = true
		}
		var ids []string
		for _, d := range idx.Documents() {
			if want[d.Year] {
				ids = append(ids, d.ID)
			}
		}
		return ids, nil
	case config.TargetIDs:
		seen := make(map[string]bool, len(t.IDs))
		ids := make([]string, 0, len(t.IDs))
		for _, id := range t.IDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return ids, nil
	default:
		return nil, errors.Validation("unknown target mode").WithDetail("mode=" + t.Mode)
	}
}

//Personal.AI order the ending
