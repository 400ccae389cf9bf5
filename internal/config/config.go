// Package config loads vecrag settings through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"vecrag/internal/distance"
	"vecrag/internal/embedding"
	"vecrag/internal/telemetry"
)

// Config is the complete runtime configuration.
type Config struct {
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Log       LogConfig       `mapstructure:"log"`
	Chunk     ChunkConfig     `mapstructure:"chunk"`
	Search    SearchConfig    `mapstructure:"search"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Dimension   int           `mapstructure:"dimension"`
	Command     []string      `mapstructure:"command"`
	Env         []string      `mapstructure:"env"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	Burst       int           `mapstructure:"burst"`
	BatchSize   int           `mapstructure:"batch_size"`
	Concurrency int           `mapstructure:"concurrency"`
}

// LLMConfig selects the answer generator. Provider "none" disables generation.
// Empty Model and BaseURL fall back to the provider defaults.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ChunkConfig controls document splitting.
type ChunkConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	TopK   int    `mapstructure:"top_k"`
	Metric string `mapstructure:"metric"`
}

// SetDefaults registers every key with its default so that environment
// variables can override keys that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("embedding.provider", embedding.ProviderHash)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimension", 0)
	v.SetDefault("embedding.command", []string{})
	v.SetDefault("embedding.env", []string{})
	v.SetDefault("embedding.timeout", 0)
	v.SetDefault("embedding.rate_limit", 0.0)
	v.SetDefault("embedding.burst", 1)
	v.SetDefault("embedding.batch_size", 0)
	v.SetDefault("embedding.concurrency", 0)

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", telemetry.FormatConsole)

	v.SetDefault("chunk.size", 1000)
	v.SetDefault("chunk.overlap", 200)

	v.SetDefault("search.top_k", 3)
	v.SetDefault("search.metric", distance.NameCosine)
}

// Load unmarshals v into a Config and validates it. OPENAI_API_KEY fills
// API keys left empty.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = key
		}
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	var errs []error

	if _, err := distance.Parse(c.Search.Metric); err != nil {
		errs = append(errs, fmt.Errorf("search.metric: %w", err))
	}
	if c.Search.TopK <= 0 {
		errs = append(errs, fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK))
	}
	if c.Embedding.Timeout < 0 || c.Embedding.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("embedding: timeout and concurrency must not be negative"))
	}
	if c.Chunk.Size <= 0 || c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		errs = append(errs, fmt.Errorf("chunk: overlap %d must be in [0, size %d)", c.Chunk.Overlap, c.Chunk.Size))
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "ollama", "openai", "none":
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be ollama, openai or none, got %q", c.LLM.Provider))
	}

	return errors.Join(errs...)
}

// Metric returns the configured default metric.
func (c *Config) Metric() distance.Metric {
	m, err := distance.Parse(c.Search.Metric)
	if err != nil {
		return distance.Default
	}
	return m
}

// ProviderConfig converts the embedding section for embedding.New.
func (e EmbeddingConfig) ProviderConfig() embedding.ProviderConfig {
	return embedding.ProviderConfig{
		Provider:    e.Provider,
		Model:       e.Model,
		BaseURL:     e.BaseURL,
		APIKey:      e.APIKey,
		Dimension:   e.Dimension,
		Command:     e.Command,
		Env:         e.Env,
		Timeout:     e.Timeout,
		RateLimit:   e.RateLimit,
		Burst:       e.Burst,
		BatchSize:   e.BatchSize,
		Concurrency: e.Concurrency,
	}
}
