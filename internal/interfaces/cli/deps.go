package cli

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
	"github.com/turtacn/Antecedent-Intelligence/internal/application/redaction"
	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/storage/local"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/tabular"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// deps opens infrastructure on first use and closes it in reverse order.
type deps struct {
	cfg     *config.Config
	logger  logging.Logger
	pool    *pgxpool.Pool
	redis   *redis.Client
	metrics *prom.AnalysisMetrics
	closers []func() error
}

func newDeps(cfg *config.Config, logger logging.Logger) *deps {
	return &deps{cfg: cfg, logger: logger}
}

func (d *deps) onClose(fn func() error) {
	d.closers = append(d.closers, fn)
}

// Close releases everything opened so far. Errors are logged.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Warn("failed to release resource", logging.Err(err))
		}
	}
	d.closers = nil
}

// Pool returns the PostgreSQL pool.
func (d *deps) Pool() (*pgxpool.Pool, error) {
	if d.pool != nil {
		return d.pool, nil
	}
	pool, err := postgres.NewConnectionPool(d.cfg.Database, d.logger)
	if err != nil {
		return nil, err
	}
	d.pool = pool
	d.onClose(func() error { postgres.Close(pool); return nil })
	return pool, nil
}

// Redis returns the status store client.
func (d *deps) Redis() (*redis.Client, error) {
	if d.redis != nil {
		return d.redis, nil
	}
	client, err := redis.NewClient(d.cfg.Redis, d.logger)
	if err != nil {
		return nil, err
	}
	d.redis = client
	d.onClose(client.Close)
	return client, nil
}

// Metrics returns the analysis metrics on a private registry.
func (d *deps) Metrics() (*prom.AnalysisMetrics, error) {
	if d.metrics != nil {
		return d.metrics, nil
	}
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{
		Namespace:            d.cfg.Metrics.Namespace,
		EnableGoMetrics:      true,
		EnableProcessMetrics: true,
	}, d.logger)
	if err != nil {
		return nil, err
	}
	d.metrics = prom.NewAnalysisMetrics(collector)
	return d.metrics, nil
}

// CorpusSource returns the configured document and phrase source.
func (d *deps) CorpusSource() (corpus.Source, error) {
	switch d.cfg.Corpus.Source {
	case config.SourcePostgres:
		pool, err := d.Pool()
		if err != nil {
			return nil, err
		}
		return repositories.NewCorpusRepository(pool, d.logger), nil
	default:
		return tabular.NewCSVSource(d.cfg.Corpus.DocumentsPath, d.cfg.Corpus.PhrasesPath, d.logger), nil
	}
}

// Sinks returns the configured result sinks.
func (d *deps) Sinks() ([]analysis.ResultSink, error) {
	var sinks []analysis.ResultSink
	for _, name := range d.cfg.Output.Sinks {
		switch strings.ToLower(name) {
		case config.SinkCSV:
			sinks = append(sinks, analysis.NewCSVSink(d.cfg.Output.Dir, d.cfg.Output.CombinedFile, d.logger))
		case config.SinkPostgres:
			pool, err := d.Pool()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, analysis.NewPostgresSink(repositories.NewResultRepository(pool, d.logger), d.logger))
		default:
			return nil, errors.Validation("unknown result sink").WithDetail("sink=" + name)
		}
	}
	return sinks, nil
}

// Trackers returns the chunk status fan-out: log lines always, Prometheus
// when metrics are on, and Redis and Kafka when enabled. mem, when non-nil,
// is appended for the embedded status server.
func (d *deps) Trackers(withMetrics bool, mem *analysis.MemoryTracker) (analysis.MultiTracker, error) {
	trackers := analysis.MultiTracker{analysis.NewLogTracker(d.logger)}
	if withMetrics {
		m, err := d.Metrics()
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, analysis.NewMetricsTracker(m))
	}
	if d.cfg.Redis.Enabled {
		store, err := d.StatusStore()
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, analysis.NewStoreTracker(store, d.logger))
	}
	if d.cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(d.cfg.Kafka, d.logger)
		if err != nil {
			return nil, err
		}
		publisher := kafka.NewChunkEventPublisher(producer, d.cfg.Kafka.Topic, "antecedent-analyze")
		d.onClose(publisher.Close)
		trackers = append(trackers, analysis.NewEventTracker(publisher, d.logger))
	}
	if mem != nil {
		trackers = append(trackers, mem)
	}
	return trackers, nil
}

// StatusStore returns the Redis chunk status store.
func (d *deps) StatusStore() (*redis.ChunkStatusStore, error) {
	client, err := d.Redis()
	if err != nil {
		return nil, err
	}
	return redis.NewChunkStatusStore(client, d.cfg.Redis.KeyPrefix, d.cfg.Redis.StatusTTL, d.logger), nil
}

// ArtifactStore returns the configured redaction artifact store.
func (d *deps) ArtifactStore(ctx context.Context) (redaction.ArtifactStore, error) {
	switch d.cfg.Redaction.Store {
	case config.StoreMinIO:
		api, err := minio.NewClient(ctx, d.cfg.MinIO, d.logger)
		if err != nil {
			return nil, err
		}
		return minio.NewArtifactStore(api, d.cfg.MinIO.Bucket, d.cfg.MinIO.Prefix, d.logger), nil
	default:
		return local.NewArtifactStore(d.cfg.Redaction.OutputDir, d.logger), nil
	}
}

//Personal.AI order the ending
