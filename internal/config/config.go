// Package config defines the configuration structures of the antecedent
// toolkit. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"strings"
	"time"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stderr" | "stdout" | file path
}

// CorpusConfig selects where documents and phrases are loaded from.
type CorpusConfig struct {
	Source         string   `mapstructure:"source"` // "csv" | "postgres"
	DocumentsPath  string   `mapstructure:"documents_path"`
	PhrasesPath    string   `mapstructure:"phrases_path"`
	Categories     []string `mapstructure:"categories"`
	SampleFraction float64  `mapstructure:"sample_fraction"`
	SampleSeed     int64    `mapstructure:"sample_seed"`
}

// FilterConfig is one entry of the cross-filter list.
type FilterConfig struct {
	Name       string `mapstructure:"name"`
	Kind       string `mapstructure:"kind"`
	Author     string `mapstructure:"author"`
	Category   string `mapstructure:"category"`
	Topic      string `mapstructure:"topic"`
	Years      int    `mapstructure:"years"`
	ModernOnly bool   `mapstructure:"modern_only"`
}

// TargetConfig selects which documents are analysed.
type TargetConfig struct {
	Mode  string   `mapstructure:"mode"` // "latest_year" | "all" | "years" | "ids"
	Years []int    `mapstructure:"years"`
	IDs   []string `mapstructure:"ids"`
}

// AnalysisConfig holds the antecedent query parameters.
type AnalysisConfig struct {
	// BaselineWindowYears has no default; leaving it unset is a startup error.
	BaselineWindowYears *int           `mapstructure:"baseline_window_years"`
	EmitEmptyLengths    bool           `mapstructure:"emit_empty_lengths"`
	Targets             TargetConfig   `mapstructure:"targets"`
	Filters             []FilterConfig `mapstructure:"filters"`
}

// BatchConfig holds the chunked execution parameters.
type BatchConfig struct {
	ChunkCount    int           `mapstructure:"chunk_count"`
	Concurrency   int           `mapstructure:"concurrency"`
	ChunkTimeout  time.Duration `mapstructure:"chunk_timeout"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// OutputConfig holds the result sink parameters.
type OutputConfig struct {
	Dir          string   `mapstructure:"dir"`
	CombinedFile string   `mapstructure:"combined_file"`
	Manifest     string   `mapstructure:"manifest"`
	Sinks        []string `mapstructure:"sinks"` // "csv" | "postgres"
}

// RedactionConfig holds the redaction artifact parameters.
type RedactionConfig struct {
	Store     string `mapstructure:"store"` // "local" | "minio"
	OutputDir string `mapstructure:"output_dir"`
	Combined  bool   `mapstructure:"combined"`
	Debug     bool   `mapstructure:"debug"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the chunk status store.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	StatusTTL    time.Duration `mapstructure:"status_ttl"`
}

// KafkaConfig holds the chunk status event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`

	// ConsumerGroup is used by "status --follow".
	ConsumerGroup string `mapstructure:"consumer_group"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// ServerConfig holds the status HTTP server tunables.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Output    OutputConfig    `mapstructure:"output"`
	Redaction RedactionConfig `mapstructure:"redaction"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// UsesPostgres reports whether any component needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Corpus.Source == SourcePostgres || c.HasSink(SinkPostgres)
}

// HasSink reports whether the named result sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Output.Sinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

var knownFilterKinds = map[string]bool{
	"author":         true,
	"category":       true,
	"same_category":  true,
	"cross_category": true,
	"topic_aligned":  true,
	"topic_opposed":  true,
	"recent":         true,
}

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeValidation, "config: "+format, args...)
}

// Validate performs semantic validation of the fully-populated Config. Any
// error is fatal at startup.
func (c *Config) Validate() error {
	// Analysis
	if c.Analysis.BaselineWindowYears == nil {
		return invalid("analysis.baseline_window_years is required")
	}
	if *c.Analysis.BaselineWindowYears < 0 {
		return invalid("analysis.baseline_window_years must be ≥ 0, got %d", *c.Analysis.BaselineWindowYears)
	}
	switch c.Analysis.Targets.Mode {
	case TargetLatestYear, TargetAll:
	case TargetYears:
		if len(c.Analysis.Targets.Years) == 0 {
			return invalid("analysis.targets.years must not be empty when mode is %q", TargetYears)
		}
	case TargetIDs:
		if len(c.Analysis.Targets.IDs) == 0 {
			return invalid("analysis.targets.ids must not be empty when mode is %q", TargetIDs)
		}
	default:
		return invalid("analysis.targets.mode %q is invalid; expected latest_year|all|years|ids", c.Analysis.Targets.Mode)
	}
	for i, f := range c.Analysis.Filters {
		if err := validateFilter(f); err != nil {
			return invalid("analysis.filters[%d]: %v", i, err)
		}
	}

	// Batch
	if c.Batch.ChunkCount < 1 {
		return invalid("batch.chunk_count must be ≥ 1, got %d", c.Batch.ChunkCount)
	}
	if c.Batch.Concurrency < 1 {
		return invalid("batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.ChunkTimeout <= 0 || c.Batch.ShutdownGrace <= 0 {
		return invalid("batch.chunk_timeout and batch.shutdown_grace must be positive")
	}

	// Corpus
	switch c.Corpus.Source {
	case SourceCSV:
		if c.Corpus.DocumentsPath == "" || c.Corpus.PhrasesPath == "" {
			return invalid("corpus.documents_path and corpus.phrases_path are required for the csv source")
		}
	case SourcePostgres:
	default:
		return invalid("corpus.source %q is invalid; expected csv|postgres", c.Corpus.Source)
	}
	if c.Corpus.SampleFraction <= 0 || c.Corpus.SampleFraction > 1 {
		return invalid("corpus.sample_fraction must be in (0, 1], got %g", c.Corpus.SampleFraction)
	}

	// Output
	for _, s := range c.Output.Sinks {
		switch strings.ToLower(s) {
		case SinkCSV, SinkPostgres:
		default:
			return invalid("output.sinks entry %q is invalid; expected csv|postgres", s)
		}
	}

	// Redaction
	switch c.Redaction.Store {
	case StoreLocal:
	case StoreMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return invalid("minio.endpoint and minio.bucket are required for the minio redaction store")
		}
	default:
		return invalid("redaction.store %q is invalid; expected local|minio", c.Redaction.Store)
	}

	// Database
	if c.UsesPostgres() {
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return invalid("database.host, database.user and database.db_name are required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return invalid("database.port %d is out of range [1, 65535]", c.Database.Port)
		}
	}

	// Redis / Kafka
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return invalid("redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return invalid("kafka.brokers and kafka.topic are required when kafka is enabled")
	}

	// Server
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return invalid("server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func validateFilter(f FilterConfig) error {
	if !knownFilterKinds[f.Kind] {
		return errors.Newf(errors.CodeValidation, "unknown kind %q", f.Kind)
	}
	switch f.Kind {
	case "author":
		if f.Author == "" {
			return errors.New(errors.CodeValidation, "author is required")
		}
	case "category":
		if f.Category == "" {
			return errors.New(errors.CodeValidation, "category is required")
		}
	case "topic_aligned", "topic_opposed":
		if f.Topic == "" {
			return errors.New(errors.CodeValidation, "topic is required")
		}
	case "recent":
		if f.Years <= 0 {
			return errors.New(errors.CodeValidation, "years must be positive")
		}
	}
	return nil
}

//Personal.AI order the ending
