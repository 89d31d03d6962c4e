package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/middleware"
)

type analyzeOptions struct {
	statusAddr     string
	sample         float64
	seed           int64
	chunks         int
	concurrency    int
	baselineWindow int
	targets        string
	years          []int
	ids            []string
	documents      string
	phrases        string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Count phrase antecedents for the target opinions",
		Long: "Loads the document and phrase tables, builds the phrase index and the\n" +
			"baseline set, splits the target documents into chunks and writes one result\n" +
			"table per chunk, the combined table and manifest.json.",
		Example: "  antecedent analyze --baseline-window 5 --chunks 8\n" +
			"  antecedent analyze --sample 0.1 --seed 42 --status-addr :9090",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.statusAddr, "status-addr", "", "serve /healthz, /status and /metrics on this address while running")
	f.Float64Var(&opts.sample, "sample", 0, "analyze a random fraction of the documents (0 < f < 1)")
	f.Int64Var(&opts.seed, "seed", 0, "seed of the --sample draw")
	f.IntVar(&opts.chunks, "chunks", 0, "number of chunks (default: batch.chunk_count)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "chunks run at once (default: batch.concurrency)")
	f.IntVar(&opts.baselineWindow, "baseline-window", -1, "years after the earliest year forming the baseline")
	f.StringVar(&opts.targets, "targets", "", "target mode: latest_year, all, years or ids")
	f.IntSliceVar(&opts.years, "year", nil, "target year (repeatable, implies --targets years)")
	f.StringSliceVar(&opts.ids, "id", nil, "target document id (repeatable, implies --targets ids)")
	f.StringVar(&opts.documents, "documents", "", "document table path for the csv source")
	f.StringVar(&opts.phrases, "phrases", "", "phrase table path for the csv source")
	return cmd
}

// apply copies the set flags onto cfg.
func (o *analyzeOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("sample") {
		cfg.Corpus.SampleFraction = o.sample
	}
	if f.Changed("seed") {
		cfg.Corpus.SampleSeed = o.seed
	}
	if f.Changed("chunks") {
		cfg.Batch.ChunkCount = o.chunks
		if !f.Changed("concurrency") {
			cfg.Batch.Concurrency = o.chunks
		}
	}
	if f.Changed("concurrency") {
		cfg.Batch.Concurrency = o.concurrency
	}
	if f.Changed("baseline-window") {
		w := o.baselineWindow
		cfg.Analysis.BaselineWindowYears = &w
	}
	if len(o.years) > 0 {
		cfg.Analysis.Targets.Mode = config.TargetYears
		cfg.Analysis.Targets.Years = o.years
	}
	if len(o.ids) > 0 {
		cfg.Analysis.Targets.Mode = config.TargetIDs
		cfg.Analysis.Targets.IDs = o.ids
	}
	if o.targets != "" {
		cfg.Analysis.Targets.Mode = o.targets
	}
	if o.documents != "" {
		cfg.Corpus.DocumentsPath = o.documents
	}
	if o.phrases != "" {
		cfg.Corpus.PhrasesPath = o.phrases
	}
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cliCtx.Logger

	ctx, cancel := cliCtx.commandContext(cmd.Context())
	defer cancel()

	d := newDeps(cfg, logger)
	defer d.Close()

	source, err := d.CorpusSource()
	if err != nil {
		return err
	}
	sinks, err := d.Sinks()
	if err != nil {
		return err
	}

	var mem *analysis.MemoryTracker
	withMetrics := cfg.Metrics.Enabled || opts.statusAddr != ""
	if opts.statusAddr != "" {
		mem = analysis.NewMemoryTracker()
	}
	trackers, err := d.Trackers(withMetrics, mem)
	if err != nil {
		return err
	}
	svcOpts := []analysis.ServiceOption{analysis.WithSinks(sinks...), analysis.WithTracker(trackers)}
	if withMetrics {
		m, err := d.Metrics()
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, analysis.WithMetrics(m))
	}
	svc, err := analysis.NewService(cfg, source, logger, svcOpts...)
	if err != nil {
		return err
	}

	if opts.statusAddr != "" {
		stop, err := startStatusServer(ctx, cliCtx, d, opts.statusAddr, mem)
		if err != nil {
			return err
		}
		defer stop()
	}

	report, runErr := svc.Run(ctx)
	if report != nil {
		printRunSummary(cmd, report)
	}
	return runErr
}

// startStatusServer serves the status endpoints from mem in the background
// and returns a function that stops the server and waits for it.
func startStatusServer(ctx context.Context, cliCtx *CLIContext, d *deps, addr string, mem *analysis.MemoryTracker) (func(), error) {
	metrics, err := d.Metrics()
	if err != nil {
		return nil, err
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Mode:          cliCtx.Config.Server.Mode,
		HealthHandler: handlers.NewHealthHandler(cliCtx.Build.Version),
		StatusHandler: handlers.NewStatusHandler(mem),
		Metrics:       metrics,
		Logger:        cliCtx.Logger.Named("http"),
		Logging:       middleware.DefaultLoggingConfig(),
	})
	srvCfg := cliCtx.Config.Server
	srvCfg.Addr = addr
	srv := httpapi.NewServer(srvCfg, router, cliCtx.Logger)

	srvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Run(srvCtx); err != nil {
			cliCtx.Logger.Error("status server failed", logging.Err(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

func printRunSummary(cmd *cobra.Command, report *analysis.Report) {
	m := report.Manifest
	rows := make([][]string, 0, len(m.Chunks))
	for _, st := range m.Chunks {
		rows = append(rows, []string{
			strconv.Itoa(st.Index),
			string(st.Status),
			strconv.Itoa(st.Documents),
			strconv.Itoa(st.Rows),
			strconv.Itoa(st.DocumentErrors),
			(time.Duration(st.DurationMS) * time.Millisecond).String(),
			st.Code,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s (%d targets, %d chunks)\n", m.RunID, m.Outcome, m.Targets, m.ChunkCount)
	fmt.Fprint(out, FormatTable([]string{"CHUNK", "STATUS", "DOCUMENTS", "ROWS", "DOC_ERRORS", "DURATION", "CODE"}, rows))
	fmt.Fprintf(out, "manifest: %s\n", report.ManifestPath)
}

//Personal.AI order the ending
