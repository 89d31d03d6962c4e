package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/http/middleware"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run status and metrics over HTTP",
		Long: "Exposes /healthz, /status and /metrics. Chunk states come from Redis when\n" +
			"redis.enabled is set, otherwise from the Kafka status topic.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := newLogger(cfg.Log, "json")
			if err != nil {
				return err
			}

			ctx, cancel := cliCtx.commandContext(cmd.Context())
			defer cancel()
			d := newDeps(cfg, logger)
			defer d.Close()

			if cliCtx.ConfigPath != "" {
				watchLogLevel(cliCtx.ConfigPath, logger)
			}

			metrics, err := d.Metrics()
			if err != nil {
				return err
			}
			reader, checkers, err := statusSource(ctx, d)
			if err != nil {
				return err
			}
			router := httpapi.NewRouter(httpapi.RouterConfig{
				Mode:          cfg.Server.Mode,
				HealthHandler: handlers.NewHealthHandler(cliCtx.Build.Version, checkers...),
				StatusHandler: handlers.NewStatusHandler(reader),
				Metrics:       metrics,
				Logger:        logger.Named("http"),
				Logging:       middleware.DefaultLoggingConfig(),
			})
			return httpapi.NewServer(cfg.Server, router, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

// statusSource picks where /status reads from. With Kafka, events are
// consumed in the background for as long as ctx lives.
func statusSource(ctx context.Context, d *deps) (analysis.StatusReader, []handlers.HealthChecker, error) {
	if d.cfg.Redis.Enabled {
		client, err := d.Redis()
		if err != nil {
			return nil, nil, err
		}
		store, err := d.StatusStore()
		if err != nil {
			return nil, nil, err
		}
		return analysis.NewHistoryReader(store), []handlers.HealthChecker{
			handlers.CheckFunc{Component: "redis", Fn: client.Ping},
		}, nil
	}

	mem := analysis.NewMemoryTracker()
	if !d.cfg.Kafka.Enabled {
		d.logger.Warn("neither redis nor kafka is enabled; /status stays empty")
		return mem, nil, nil
	}
	consumer, err := kafka.NewConsumer(d.cfg.Kafka, d.logger)
	if err != nil {
		return nil, nil, err
	}
	d.onClose(consumer.Close)
	metrics, err := d.Metrics()
	if err != nil {
		return nil, nil, err
	}
	tracker := analysis.MultiTracker{mem, analysis.NewMetricsTracker(metrics)}
	go func() {
		err := consumer.Run(ctx, chunkEventHandler("", d.logger, func(runID string, st analysis.ChunkState) {
			tracker.Track(ctx, runID, st)
		}))
		if err != nil {
			d.logger.Error("status consumer stopped", logging.Err(err))
		}
	}()
	return mem, nil, nil
}

// watchLogLevel applies log.level changes of the config file at runtime.
func watchLogLevel(path string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	config.Watch(path, func(cfg *config.Config) {
		setter.SetLevel(cfg.Log.Level)
		logger.Info("log level reloaded", logging.String("level", cfg.Log.Level))
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
}

//Personal.AI order the ending
