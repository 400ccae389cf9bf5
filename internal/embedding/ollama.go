package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ollamaDefaultURL   = "http://localhost:11434"
	ollamaDefaultModel = "nomic-embed-text"
)

// Ollama implements [Embedder] against a local Ollama server.
type Ollama struct {
	baseURL string
	cfg     config
}

var _ Embedder = (*Ollama)(nil)

// ollamaEmbedRequest represents a request to the Ollama embed API
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse represents a response from the Ollama embed API
type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllama creates an Ollama embedder. It does not contact the server;
// call Ping to check connectivity.
func NewOllama(opts ...Option) *Ollama {
	cfg := config{
		model:   ollamaDefaultModel,
		baseURL: ollamaDefaultURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(&cfg)
	}

	return &Ollama{
		baseURL: strings.TrimSuffix(cfg.baseURL, "/"),
		cfg:     cfg,
	}
}

// Embed returns the embedding for a single text.
func (c *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends all texts in a single /api/embed request.
func (c *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	if c.cfg.limiter != nil {
		if err := c.cfg.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	requestBody, err := json.Marshal(ollamaEmbedRequest{Model: c.cfg.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(response.Embeddings), len(texts))
	}

	return response.Embeddings, nil
}

// Ping tests the connection to the Ollama server
func (c *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama server returned status %d", resp.StatusCode)
	}

	return nil
}

// Model returns the configured embedding model
func (c *Ollama) Model() string {
	return c.cfg.model
}
