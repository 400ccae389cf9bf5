package embedding

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderCommand = "command"
	ProviderHash    = "hash"
)

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is one of "openai", "ollama", "command" or "hash"
	Provider string
	// Model is the embedding model name
	Model string
	// BaseURL overrides the API endpoint (openai, ollama)
	BaseURL string
	// APIKey authenticates against OpenAI
	APIKey string
	// Dimension is the requested output length (openai, hash)
	Dimension int
	// Command is the executable and arguments (command)
	Command []string
	// Env adds "KEY=value" entries to the subprocess environment (command)
	Env []string
	// Timeout bounds one subprocess round trip; zero keeps the default (command)
	Timeout time.Duration
	// RateLimit caps requests per second; zero disables limiting
	RateLimit float64
	// Burst is the rate limiter burst size
	Burst int
	// BatchSize caps inputs per request (openai)
	BatchSize int
	// Concurrency caps sub-batch requests in flight (openai)
	Concurrency int
}

// New creates an embedder for cfg.Provider. Embedders that hold resources
// (Command) implement io.Closer.
func New(cfg ProviderConfig) (Embedder, error) {
	opts := []Option{WithRateLimit(cfg.RateLimit, cfg.Burst)}
	if cfg.Model != "" {
		opts = append(opts, WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.Dimension > 0 {
		opts = append(opts, WithDimension(cfg.Dimension))
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, WithBatchSize(cfg.BatchSize))
	}
	if cfg.Concurrency > 0 {
		opts = append(opts, WithConcurrency(cfg.Concurrency))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	if len(cfg.Env) > 0 {
		opts = append(opts, WithEnv(cfg.Env...))
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAI(cfg.APIKey, opts...), nil
	case ProviderOllama:
		return NewOllama(opts...), nil
	case ProviderCommand:
		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("command provider requires a command")
		}
		return NewCommand(cfg.Command[0], cfg.Command[1:], opts...)
	case ProviderHash, "":
		return NewHash(opts...), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, cfg.Provider)
	}
}
