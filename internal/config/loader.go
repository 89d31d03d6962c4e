package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "ANTECEDENT"

// boundKeys lists scalar keys that must be visible to viper even when absent
// from the file, so ANTECEDENT_* variables alone can set them.
var boundKeys = []string{
	"log.level", "log.format", "log.output",
	"corpus.source", "corpus.documents_path", "corpus.phrases_path", "corpus.sample_fraction", "corpus.sample_seed",
	"analysis.baseline_window_years", "analysis.emit_empty_lengths", "analysis.targets.mode",
	"batch.chunk_count", "batch.concurrency", "batch.chunk_timeout", "batch.shutdown_grace",
	"output.dir", "output.combined_file", "output.manifest",
	"redaction.store", "redaction.output_dir", "redaction.combined", "redaction.debug",
	"database.host", "database.port", "database.user", "database.password", "database.db_name", "database.ssl_mode",
	"redis.enabled", "redis.addr", "redis.password", "redis.db",
	"kafka.enabled", "kafka.topic",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
	"server.addr", "server.mode",
	"metrics.enabled",
}

// newViper builds a Viper instance with the standard settings: YAML file
// type, ANTECEDENT_ env prefix, automatic env binding, and a "." → "_" key
// replacer so "batch.chunk_count" resolves to ANTECEDENT_BATCH_CHUNK_COUNT.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range boundKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges ANTECEDENT_* overrides,
// applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	cfg, err := LoadUnvalidated(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromFile is an alias of Load.
func LoadFromFile(configPath string) (*Config, error) {
	return Load(configPath)
}

// LoadUnvalidated reads and defaults a configuration without validating it.
// The CLI uses it so flags can fill in required values before Validate runs.
// An empty path skips the file and relies on environment variables.
func LoadUnvalidated(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}
	return unmarshalAndDefault(v)
}

// LoadFromEnv builds a Config from ANTECEDENT_* environment variables alone.
//
//	ANTECEDENT_<SECTION>_<FIELD>   e.g.  ANTECEDENT_BATCH_CHUNK_COUNT
func LoadFromEnv() (*Config, error) {
	cfg, err := unmarshalAndDefault(newViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func unmarshalAndDefault(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// SearchPaths returns the locations checked, in order, when no --config flag
// is given.
func SearchPaths() []string {
	paths := []string{"./antecedent.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".antecedent", "config.yaml"))
	}
	return append(paths, "/etc/antecedent/config.yaml")
}

// Discover returns the first existing file of SearchPaths, or "" when none
// exists.
func Discover() string {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Watch monitors configPath and invokes onChange with the newly parsed Config
// whenever the file changes. Only settings that are safe to change at runtime
// (log level) should be applied by callers. Invalid configurations are
// reported through onError and not passed to onChange.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndDefault(v)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
