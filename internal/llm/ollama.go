package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"
)

// ErrModelNotPulled is returned by Ping when the server does not have the
// configured model.
var ErrModelNotPulled = errors.New("model not available on ollama server")

// OllamaClient answers prompts through a local Ollama server's
// /api/generate endpoint.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateChunk is one NDJSON line of a streamed reply, or the whole reply
// when streaming is off.
type generateChunk struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Response  string    `json:"response"`
	Done      bool      `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient creates a client for model at baseURL. It does not contact
// the server; call Ping before the first prompt to fail fast.
func NewOllamaClient(baseURL, model string) (*OllamaClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Generate returns the complete reply to prompt.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	var sb strings.Builder
	if err := c.generate(ctx, prompt, false, func(s string) { sb.WriteString(s) }); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// GenerateStream calls callback with each non-empty piece of the reply as
// the server produces it.
func (c *OllamaClient) GenerateStream(ctx context.Context, prompt string, callback func(string)) error {
	return c.generate(ctx, prompt, true, callback)
}

// generate decodes /api/generate replies until the server reports done or
// closes the body. A non-streamed reply is a single chunk.
func (c *OllamaClient) generate(ctx context.Context, prompt string, stream bool, emit func(string)) error {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: stream})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	for {
		var chunk generateChunk
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if chunk.Response != "" {
			emit(chunk.Response)
		}
		if chunk.Done || !stream {
			return nil
		}
	}
}

// Ping checks that the server answers and has the configured model pulled.
func (c *OllamaClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama server: %w", err)
	}
	defer resp.Body.Close()

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to decode model list: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	// Ollama reports untagged pulls as "name:latest".
	if slices.Contains(names, c.model) || slices.Contains(names, c.model+":latest") {
		return nil
	}
	return fmt.Errorf("%w: %q (have %s)", ErrModelNotPulled, c.model, strings.Join(names, ", "))
}

// Model returns the model prompts are sent to.
func (c *OllamaClient) Model() string {
	return c.model
}

// do sends one request and returns the response only for a 200 status; any
// other status is turned into an error carrying the response body.
func (c *OllamaClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
