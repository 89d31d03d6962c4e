package config

import (
	"runtime"
	"time"
)

// Enumerated string settings.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"

	SinkCSV      = "csv"
	SinkPostgres = "postgres"

	StoreLocal = "local"
	StoreMinIO = "minio"

	TargetLatestYear = "latest_year"
	TargetAll        = "all"
	TargetYears      = "years"
	TargetIDs        = "ids"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultLogOutput = "stderr"

	DefaultDocumentsPath = "data/opinions.csv"
	DefaultPhrasesPath   = "data/phrases.csv"

	DefaultChunkTimeout  = 6 * time.Hour
	DefaultShutdownGrace = 30 * time.Second

	DefaultOutputDir    = "data"
	DefaultCombinedFile = "antecedent_counts.csv"
	DefaultManifest     = "manifest.json"

	DefaultRedactionDir = "data/redactions"

	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBName          = "antecedent"
	DefaultDBSSLMode       = "disable"
	DefaultDBMaxConns      = 10
	DefaultDBMigrationPath = "file://migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisKeyPrefix = "antecedent:"
	DefaultRedisStatusTTL = 7 * 24 * time.Hour

	DefaultKafkaTopic     = "antecedent.chunk.status"
	DefaultKafkaBatchSize = 16
	DefaultKafkaGroup     = "antecedent-status"

	DefaultServerAddr = ":9090"
	DefaultServerMode = "release"

	DefaultMetricsNamespace = "antecedent"
)

// DefaultChunkCount is one chunk per CPU.
func DefaultChunkCount() int {
	return runtime.NumCPU()
}

// ApplyDefaults fills zero-value fields in cfg. Explicit settings always win.
// The baseline window is deliberately left alone: it has no default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Corpus ────────────────────────────────────────────────────────────────
	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = SourceCSV
	}
	if cfg.Corpus.Source == SourceCSV {
		if cfg.Corpus.DocumentsPath == "" {
			cfg.Corpus.DocumentsPath = DefaultDocumentsPath
		}
		if cfg.Corpus.PhrasesPath == "" {
			cfg.Corpus.PhrasesPath = DefaultPhrasesPath
		}
	}
	if cfg.Corpus.SampleFraction == 0 {
		cfg.Corpus.SampleFraction = 1
	}

	// ── Analysis ──────────────────────────────────────────────────────────────
	if cfg.Analysis.Targets.Mode == "" {
		cfg.Analysis.Targets.Mode = TargetLatestYear
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.ChunkCount == 0 {
		cfg.Batch.ChunkCount = DefaultChunkCount()
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = cfg.Batch.ChunkCount
	}
	if cfg.Batch.ChunkTimeout == 0 {
		cfg.Batch.ChunkTimeout = DefaultChunkTimeout
	}
	if cfg.Batch.ShutdownGrace == 0 {
		cfg.Batch.ShutdownGrace = DefaultShutdownGrace
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.CombinedFile == "" {
		cfg.Output.CombinedFile = DefaultCombinedFile
	}
	if cfg.Output.Manifest == "" {
		cfg.Output.Manifest = DefaultManifest
	}
	if len(cfg.Output.Sinks) == 0 {
		cfg.Output.Sinks = []string{SinkCSV}
	}

	// ── Redaction ─────────────────────────────────────────────────────────────
	if cfg.Redaction.Store == "" {
		cfg.Redaction.Store = StoreLocal
	}
	if cfg.Redaction.OutputDir == "" {
		cfg.Redaction.OutputDir = DefaultRedactionDir
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultDBMigrationPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.StatusTTL == 0 {
		cfg.Redis.StatusTTL = DefaultRedisStatusTTL
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.ConsumerGroup == "" {
		cfg.Kafka.ConsumerGroup = DefaultKafkaGroup
	}

	// ── Server / Metrics ──────────────────────────────────────────────────────
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefaultConfig returns a Config with every default applied. The baseline
// window is still unset, so the result does not validate until a caller
// provides one.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
