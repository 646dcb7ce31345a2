// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Discovery, Corpus, Counter, Postgres, Kafka, Redis,
// Server, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Counter   CounterConfig   `yaml:"counter"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DiscoveryConfig holds the statistical parameters of the word discovery
// pipeline and the file paths it exchanges with the external counter.
type DiscoveryConfig struct {
	// Order is the n-gram order; it must match the order used to produce
	// the binary n-gram file.
	Order int `yaml:"order"`
	// MinCount is the absolute frequency floor, applied both when decoding
	// records and when thresholding tokenized candidates.
	MinCount int64 `yaml:"minCount"`
	// MinPMI accepts either a scalar or a per-order sequence of log-PMI
	// thresholds, e.g. [0, 2, 4, 6].
	MinPMI     PMIThresholds `yaml:"minPmi"`
	CorpusFile string        `yaml:"corpusFile"`
	VocabFile  string        `yaml:"vocabFile"`
	NgramFile  string        `yaml:"ngramFile"`
	OutputFile string        `yaml:"outputFile"`
}

// PMIThresholds is a per-order list of log-PMI thresholds. It unmarshals
// from either a YAML scalar or a YAML sequence.
type PMIThresholds []float64

// UnmarshalYAML accepts `minPmi: 2` as well as `minPmi: [0, 2, 4, 6]`.
func (p *PMIThresholds) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var scalar float64
		if err := value.Decode(&scalar); err != nil {
			return err
		}
		*p = PMIThresholds{scalar}
		return nil
	case yaml.SequenceNode:
		var seq []float64
		if err := value.Decode(&seq); err != nil {
			return err
		}
		*p = PMIThresholds(seq)
		return nil
	default:
		return fmt.Errorf("minPmi must be a scalar or a sequence")
	}
}

// ForOrder expands the thresholds to one value per n-gram order. A single
// scalar is repeated; a sequence must cover every order.
func (p PMIThresholds) ForOrder(order int) ([]float64, error) {
	switch {
	case len(p) == 1:
		expanded := make([]float64, order)
		for i := range expanded {
			expanded[i] = p[0]
		}
		return expanded, nil
	case len(p) >= order:
		return []float64(p[:order]), nil
	default:
		return nil, fmt.Errorf("minPmi has %d thresholds but order is %d", len(p), order)
	}
}

// CorpusConfig controls how raw input text is located and preprocessed.
type CorpusConfig struct {
	// FilePattern is a glob over the raw input text files.
	FilePattern string `yaml:"filePattern"`
	// InMemory materializes all sentences up front instead of re-reading
	// the input files on every pass. Both modes produce identical results.
	InMemory bool `yaml:"inMemory"`
}

// CounterConfig locates the external count_ngrams binary.
type CounterConfig struct {
	Binary string `yaml:"binary"`
	// Memory is the fraction of available memory handed to the counter.
	Memory float64 `yaml:"memory"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	VocabUpdated string `yaml:"vocabUpdated"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// ServerConfig holds the vocab server's HTTP settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with the original tooling's defaults for
// local development.
func defaultConfig() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			Order:      4,
			MinCount:   32,
			MinPMI:     PMIThresholds{0, 2, 4, 6},
			CorpusFile: "corpus_file.corpus",
			VocabFile:  "vocab_file.chars",
			NgramFile:  "ngram_file.ngrams",
			OutputFile: "output_file.vocab",
		},
		Corpus: CorpusConfig{
			FilePattern: "/root/corpus/*/*.txt",
			InMemory:    false,
		},
		Counter: CounterConfig{
			Binary: "./count_ngrams",
			Memory: 0.8,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "worddiscovery",
			User:            "worddiscovery",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "worddiscovery-group",
			Topics: KafkaTopics{
				VocabUpdated: "vocab.updated",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads WD_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WD_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("WD_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("WD_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("WD_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("WD_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("WD_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("WD_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("WD_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("WD_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WD_COUNTER_BINARY"); v != "" {
		cfg.Counter.Binary = v
	}
	if v := os.Getenv("WD_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WD_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
