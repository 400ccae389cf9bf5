package embedding

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// config holds shared configuration for embedder implementations.
type config struct {
	model       string
	dim         int
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	batchSize   int
	concurrency int
	timeout     time.Duration
	env         []string
}

// Option configures an embedder.
type Option func(*config)

// WithModel sets the embedding model name.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithDimension sets the output dimensionality. For OpenAI it is sent as the
// dimensions parameter; for Hash it is the vector length.
func WithDimension(dim int) Option {
	return func(c *config) { c.dim = dim }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithRateLimit caps outgoing API requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBatchSize sets the maximum number of inputs per API request.
func WithBatchSize(n int) Option {
	return func(c *config) { c.batchSize = n }
}

// WithConcurrency sets how many sub-batch requests may be in flight at once.
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

// WithTimeout bounds a single request to a subprocess embedder.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithEnv appends environment entries ("KEY=value") for subprocess embedders.
func WithEnv(env ...string) Option {
	return func(c *config) { c.env = append(c.env, env...) }
}
