package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

func newStatusCmd() *cobra.Command {
	var (
		runID  string
		follow bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the chunk status of an analysis run",
		Long: "Reads the chunk states kept in Redis for a run (the most recent one by\n" +
			"default). With --follow, prints status events from Kafka as they arrive.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.commandContext(cmd.Context())
			defer cancel()
			d := newDeps(cliCtx.Config, cliCtx.Logger)
			defer d.Close()

			if follow {
				return followStatus(ctx, cmd, d, runID)
			}
			if !cliCtx.Config.Redis.Enabled {
				return errors.Validation("status requires redis.enabled")
			}
			store, err := d.StatusStore()
			if err != nil {
				return err
			}
			snap, err := analysis.NewHistoryReader(store).Lookup(ctx, runID)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, snap)
			}
			printSnapshot(cmd, snap)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&runID, "run-id", "", "run to show (default: most recent)")
	f.BoolVarP(&follow, "follow", "f", false, "stream status events from Kafka")
	f.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func followStatus(ctx context.Context, cmd *cobra.Command, d *deps, runID string) error {
	if !d.cfg.Kafka.Enabled {
		return errors.Validation("status --follow requires kafka.enabled")
	}
	consumer, err := kafka.NewConsumer(d.cfg.Kafka, d.logger)
	if err != nil {
		return err
	}
	d.onClose(consumer.Close)

	out := cmd.OutOrStdout()
	return consumer.Run(ctx, chunkEventHandler(runID, d.logger, func(run string, st analysis.ChunkState) {
		fmt.Fprintf(out, "%s  run=%s chunk=%d status=%s rows=%d %s\n",
			st.UpdatedAt.Format(time.RFC3339), run, st.Index, st.Status, st.Rows, st.Code)
	}))
}

// chunkEventHandler decodes chunk status events and passes them to fn.
// Events of other runs, when runID is set, and events of other types are
// ignored. Undecodable payloads are logged and skipped.
func chunkEventHandler(runID string, logger logging.Logger, fn func(runID string, st analysis.ChunkState)) kafka.EventHandler {
	return func(_ context.Context, env *kafka.EventEnvelope) error {
		if env.EventType != kafka.EventTypeChunkStatus {
			return nil
		}
		if runID != "" && env.RunID != runID {
			return nil
		}
		var st analysis.ChunkState
		if err := env.DecodePayload(&st); err != nil {
			logger.Warn("skipping chunk event", logging.String("event_id", env.EventID), logging.Err(err))
			return nil
		}
		fn(env.RunID, st)
		return nil
	}
}

func printSnapshot(cmd *cobra.Command, snap analysis.RunSnapshot) {
	rows := make([][]string, 0, len(snap.Chunks))
	for _, st := range snap.Chunks {
		rows = append(rows, []string{
			strconv.Itoa(st.Index),
			string(st.Status),
			strconv.Itoa(st.Documents),
			strconv.Itoa(st.Rows),
			st.UpdatedAt.Format(time.RFC3339),
			st.Message,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", snap.RunID)
	fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"CHUNK", "STATUS", "DOCUMENTS", "ROWS", "UPDATED", "MESSAGE"}, rows))
}

//Personal.AI order the ending
