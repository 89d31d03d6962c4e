// Package cli implements the antecedent command line: analysis runs,
// redaction, preprocessing, run status, the status server and schema
// migrations.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.BuildDate)
}

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	OutputDir  string
	Verbose    bool
	Timeout    time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config     *config.Config
	ConfigPath string
	Logger     logging.Logger
	Build      BuildInfo
	Verbose    bool
	Timeout    time.Duration
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "antecedent",
		Short: "Phrase antecedent analysis for judicial opinions",
		Long: "antecedent measures how much of each opinion's phrasing already appeared in\n" +
			"earlier opinions by other authors, and renders highlighted copies of the\n" +
			"opinions showing those borrowed phrases.",
		Version: info.String(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts, info)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./antecedent.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputDir, "output", "o", "", "directory for result tables and the manifest")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "overall operation timeout (0 = none)")

	cmd.AddCommand(
		newAnalyzeCmd(),
		newRedactCmd(),
		newPreprocessCmd(),
		newStatusCmd(),
		newServeCmd(),
		newMigrateCmd(),
		newVersionCmd(info),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(info BuildInfo) int {
	root := NewRootCommand(info)
	if err := root.Execute(); err != nil {
		PrintError(root, err)
		return 1
	}
	return 0
}

// persistentPreRun loads the configuration and the logger, then stores the
// CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, info BuildInfo) error {
	path := opts.ConfigPath
	if path == "" {
		path = config.Discover()
	}
	cfg, err := config.LoadUnvalidated(path)
	if err != nil {
		return err
	}
	applyRootFlags(cfg, opts)

	logger, err := newLogger(cfg.Log, "")
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	if path == "" {
		logger.Debug("no config file found, using defaults and environment")
	} else {
		logger.Debug("configuration loaded", logging.String("path", path))
	}

	cliCtx := &CLIContext{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
		Build:      info,
		Verbose:    opts.Verbose,
		Timeout:    opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// applyRootFlags lets the global flags override file and environment values.
func applyRootFlags(cfg *config.Config, opts *RootOptions) {
	if opts.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		cfg.Log.Level = logging.LevelDebug
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
}

// newLogger builds the zap logger for cfg. A non-empty format overrides the
// configured encoding.
func newLogger(cfg config.LogConfig, format string) (logging.Logger, error) {
	if format == "" {
		format = cfg.Format
	}
	out := cfg.Output
	if out == "" {
		out = config.DefaultLogOutput
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           format,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Validation("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Validation("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext returns the context a command runs under: cancelled on
// SIGINT/SIGTERM and after the --timeout, when one is set.
func (c *CLIContext) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if c.Timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, c.Timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, widths[i]))
		}
		sb.WriteString("\n")
	}
	writeRow(headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
}

//Personal.AI order the ending
