package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	QA       QAConfig       `mapstructure:"qa"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Database DatabaseConfig `mapstructure:"database"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr"`
}

// PDFConfig selects the text rendering backend.
type PDFConfig struct {
	Backend   string `mapstructure:"backend"`   // "pdfreader" | "pdftotext"
	Pdftotext string `mapstructure:"pdftotext"` // binary name or absolute path
}

// QAConfig configures the question-answering capability and the chunk aggregator.
type QAConfig struct {
	Provider     string        `mapstructure:"provider"` // "huggingface" | "openai" | "none"
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ChunkTimeout time.Duration `mapstructure:"chunk_timeout"`
	MaxWords     int           `mapstructure:"max_words"`
	Concurrency  int           `mapstructure:"concurrency"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// PipelineConfig holds per-request limits.
type PipelineConfig struct {
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	LocationQuestion string        `mapstructure:"location_question"`
}

// DatabaseConfig holds database-related configuration. An empty Driver disables the run store.
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"` // "postgres" | "sqlite" | ""
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// BatchConfig holds folder/watch processing settings.
type BatchConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

// DefaultLocationQuestion is asked against every contract to fill Location.
const DefaultLocationQuestion = "Où le contrat a-t-il été signé ou le lieu mentionné ?"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":8080")

	v.SetDefault("pdf.backend", "pdfreader")
	v.SetDefault("pdf.pdftotext", "pdftotext")

	v.SetDefault("qa.provider", "huggingface")
	v.SetDefault("qa.model", "mrm8488/bert-multi-cased-finetuned-xquadv1")
	v.SetDefault("qa.base_url", "")
	v.SetDefault("qa.api_key", "")
	v.SetDefault("qa.timeout", 30*time.Second)
	v.SetDefault("qa.chunk_timeout", 20*time.Second)
	v.SetDefault("qa.max_words", 400)
	v.SetDefault("qa.concurrency", 1)
	v.SetDefault("qa.max_retries", 3)

	v.SetDefault("pipeline.request_timeout", 3*time.Minute)
	v.SetDefault("pipeline.location_question", DefaultLocationQuestion)

	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", 0)

	v.SetDefault("batch.workers", 2)
	v.SetDefault("batch.queue_size", 128)
	v.SetDefault("batch.process_timeout", 3*time.Minute)
	v.SetDefault("batch.debounce", 500*time.Millisecond)
}

// LoadConfig reads defaults, an optional YAML file and CONTRACTS_* environment variables
// (CONTRACTS_QA_API_KEY overrides qa.api_key). A missing default config file is not an error.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CONTRACTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("contracts")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.contracts")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.PDF.Backend {
	case "pdfreader", "pdftotext":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown pdf.backend %q", c.PDF.Backend), ErrInvalidInput)
	}
	switch c.QA.Provider {
	case "huggingface", "none":
	case "openai":
		if c.QA.APIKey == "" {
			return NewAppError(CodeConfig, "qa.api_key is required for the openai provider", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown qa.provider %q", c.QA.Provider), ErrInvalidInput)
	}
	if c.QA.MaxWords <= 0 {
		return NewAppError(CodeConfig, "qa.max_words must be positive", ErrInvalidInput)
	}
	switch c.Database.Driver {
	case "":
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return NewAppError(CodeConfig, "database.dsn is required when database.driver is set", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown database.driver %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "server.grpc_addr is required", ErrInvalidInput)
	}
	return nil
}
