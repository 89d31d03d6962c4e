package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/postgres"
)

func newMigrateCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long:  "Applies or rolls back the documents, phrases, analysis_runs and antecedent_results tables.",
	}
	cmd.PersistentFlags().StringVar(&source, "source", "", "migration source URL (default: database.migration_path)")

	migrator := func(cmd *cobra.Command) (*postgres.Migrator, error) {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return nil, err
		}
		cfg := cliCtx.Config
		path := source
		if path == "" {
			path = cfg.Database.MigrationPath
		}
		return postgres.NewMigrator(postgres.ConnString(cfg.Database), path, cliCtx.Logger), nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			return m.Up()
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			return m.Down(steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := m.Status()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

//Personal.AI order the ending
