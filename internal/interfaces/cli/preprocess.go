package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/ingest"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/postgres/repositories"
)

func newPreprocessCmd() *cobra.Command {
	var (
		out     string
		toDB    bool
		workers int
	)
	cmd := &cobra.Command{
		Use:   "preprocess <dir>",
		Short: "Build the document table from a directory of opinion files",
		Long: "Reads every file named <year>-<lexis number>-<type>_<AUTHOR>... below dir as\n" +
			"latin-1, strips reporter markup and writes the document table. Other files\n" +
			"are skipped.",
		Example: "  antecedent preprocess opinions/ --out data/opinions.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if out == "" {
				out = cfg.Corpus.DocumentsPath
			}

			ctx, cancel := cliCtx.commandContext(cmd.Context())
			defer cancel()
			d := newDeps(cfg, cliCtx.Logger)
			defer d.Close()

			opts := []ingest.Option{ingest.WithWorkers(workers)}
			if toDB {
				pool, err := d.Pool()
				if err != nil {
					return err
				}
				opts = append(opts, ingest.WithSaver(repositories.NewCorpusRepository(pool, cliCtx.Logger)))
			}
			res, err := ingest.NewPreprocessor(cliCtx.Logger, opts...).Run(ctx, args[0], out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d documents written to %s (%d files skipped)\n",
				len(res.Documents), res.Output, len(res.Skipped))
			if toDB {
				fmt.Fprintf(cmd.OutOrStdout(), "%d documents stored in PostgreSQL\n", res.Saved)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&out, "out", "", "document table path (default: corpus.documents_path)")
	f.BoolVar(&toDB, "db", false, "also store the documents in PostgreSQL")
	f.IntVar(&workers, "workers", 0, "files decoded at once (default: number of CPUs)")
	return cmd
}

//Personal.AI order the ending
