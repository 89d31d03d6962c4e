package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/application/redaction"
	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

type redactOptions struct {
	store          string
	outDir         string
	combined       bool
	debug          bool
	baselineWindow int
}

func newRedactCmd() *cobra.Command {
	opts := &redactOptions{}
	cmd := &cobra.Command{
		Use:   "redact [document_id...]",
		Short: "Render opinions with their antecedent phrases highlighted",
		Long: "Writes one HTML page per phrase length and mode (all antecedents, modern\n" +
			"antecedents) for each document. Without arguments the analysis targets are\n" +
			"redacted. A document that fails does not stop the others.",
		Example: "  antecedent redact 1995-4123-majority_SCALIA.txt --combined\n" +
			"  antecedent redact --store minio --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(cmd, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.store, "store", "", "artifact store: local or minio")
	f.StringVar(&opts.outDir, "out-dir", "", "directory of the local artifact store")
	f.BoolVar(&opts.combined, "combined", false, "also render one page per mode covering all lengths")
	f.BoolVar(&opts.debug, "debug", false, "prefix artifact names with DEBUG_")
	f.IntVar(&opts.baselineWindow, "baseline-window", -1, "years after the earliest year forming the baseline")
	return cmd
}

func (o *redactOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if o.store != "" {
		cfg.Redaction.Store = o.store
	}
	if o.outDir != "" {
		cfg.Redaction.OutputDir = o.outDir
	}
	if f.Changed("combined") {
		cfg.Redaction.Combined = o.combined
	}
	if f.Changed("debug") {
		cfg.Redaction.Debug = o.debug
	}
	if f.Changed("baseline-window") {
		w := o.baselineWindow
		cfg.Analysis.BaselineWindowYears = &w
	}
}

func runRedact(cmd *cobra.Command, opts *redactOptions, args []string) error {
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
	ws, err := analysis.Prepare(ctx, source, cfg, logger)
	if err != nil {
		return err
	}
	engine, err := ws.Engine(cfg)
	if err != nil {
		return err
	}
	ids := args
	if len(ids) == 0 {
		if ids, err = analysis.SelectTargets(ws.Index, cfg.Analysis.Targets); err != nil {
			return err
		}
	}
	store, err := d.ArtifactStore(ctx)
	if err != nil {
		return err
	}
	var metrics *prom.AnalysisMetrics
	if cfg.Metrics.Enabled {
		if metrics, err = d.Metrics(); err != nil {
			return err
		}
	}

	svc, err := redaction.NewService(ws.Index, engine, store, redaction.Options{
		Combined: cfg.Redaction.Combined,
		Debug:    cfg.Redaction.Debug,
	}, metrics, logger)
	if err != nil {
		return err
	}
	rep := svc.RedactAll(ctx, ids)
	printRedactionReport(cmd, rep, store.Location())

	if len(ids) > 0 && rep.Failed == len(ids) {
		return errors.New(errors.ErrCodeRedactionFailed, "every document failed to redact")
	}
	return nil
}

func printRedactionReport(cmd *cobra.Command, rep redaction.Report, location string) {
	rows := make([][]string, 0, len(rep.Documents))
	for _, dr := range rep.Documents {
		msg := ""
		if dr.Err != nil {
			msg = dr.Err.Error()
		}
		rows = append(rows, []string{
			dr.DocumentID,
			string(dr.State),
			string(dr.FailedIn),
			strconv.Itoa(len(dr.Artifacts)),
			msg,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, FormatTable([]string{"DOCUMENT", "STATE", "FAILED_IN", "ARTIFACTS", "ERROR"}, rows))
	fmt.Fprintf(out, "%d artifacts written to %s, %d of %d documents failed\n",
		rep.Artifacts, location, rep.Failed, len(rep.Documents))
	if rep.Failed > 0 {
		var failed []string
		for _, dr := range rep.Documents {
			if dr.State == redaction.StateFailed {
				failed = append(failed, dr.DocumentID)
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s\n", strings.Join(failed, ", "))
	}
}

//Personal.AI order the ending
