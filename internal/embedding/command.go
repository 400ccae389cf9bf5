package embedding

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	commandDefaultTimeout = 2 * time.Minute
	commandMaxLine        = 64 << 20
)

// ErrCommandClosed is returned after the subprocess has been shut down or
// left in an unknown state by a timed-out request.
var ErrCommandClosed = errors.New("embedding: command embedder is closed")

// Command implements [Embedder] by talking to a persistent subprocess, for
// example a sentence-transformers script.
//
// The protocol is one JSON object per line. The process first prints
// {"status":"ready"}. Each request {"texts":[...],"model":"..."} is answered
// by {"embeddings":[[...],...]} or {"error":"..."}. A line "QUIT" asks the
// process to exit.
type Command struct {
	cfg    config
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	mu     sync.Mutex
	closed bool
}

var _ Embedder = (*Command)(nil)

// commandRequest represents the request structure sent to the subprocess
type commandRequest struct {
	Texts []string `json:"texts"`
	Model string   `json:"model,omitempty"`
}

// commandResponse represents the response structure from the subprocess
type commandResponse struct {
	Embeddings [][]float32 `json:"embeddings,omitempty"`
	Error      string      `json:"error,omitempty"`
	Status     string      `json:"status,omitempty"`
}

// NewCommand starts name with args and waits for its ready signal.
func NewCommand(name string, args []string, opts ...Option) (*Command, error) {
	cfg := config{timeout: commandDefaultTimeout}
	for _, o := range opts {
		o(&cfg)
	}

	c := &Command{cfg: cfg}
	c.cmd = exec.Command(name, args...)
	if len(cfg.env) > 0 {
		c.cmd.Env = append(os.Environ(), cfg.env...)
	}

	if err := c.start(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start embedding command: %w", err)
	}
	return c, nil
}

// start sets up the pipes and waits for the ready signal
func (c *Command) start() error {
	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	c.stdin = stdin

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	c.stdout = bufio.NewScanner(stdout)
	c.stdout.Buffer(make([]byte, 0, 64*1024), commandMaxLine)

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	if !c.stdout.Scan() {
		return fmt.Errorf("failed to read ready signal")
	}

	var ready commandResponse
	if err := json.Unmarshal(c.stdout.Bytes(), &ready); err != nil {
		return fmt.Errorf("failed to parse ready signal: %w", err)
	}
	if ready.Status != "ready" {
		return fmt.Errorf("unexpected ready signal: %s", ready.Status)
	}

	return nil
}

// Embed generates an embedding for the given text
func (c *Command) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends every text in one request line
func (c *Command) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCommandClosed
	}

	requestJSON, err := json.Marshal(commandRequest{Texts: texts, Model: c.cfg.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := fmt.Fprintf(c.stdin, "%s\n", requestJSON); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	done := make(chan struct{})
	var response commandResponse
	var scanErr error

	go func() {
		defer close(done)
		if c.stdout.Scan() {
			scanErr = json.Unmarshal(c.stdout.Bytes(), &response)
		} else if err := c.stdout.Err(); err != nil {
			scanErr = fmt.Errorf("failed to read response: %w", err)
		} else {
			scanErr = fmt.Errorf("failed to read response: %w", io.ErrUnexpectedEOF)
		}
	}()

	timer := time.NewTimer(c.cfg.timeout)
	defer timer.Stop()

	select {
	case <-done:
		if scanErr != nil {
			return nil, fmt.Errorf("failed to parse response: %w", scanErr)
		}
	case <-ctx.Done():
		c.shutdownLocked()
		return nil, ctx.Err()
	case <-timer.C:
		c.shutdownLocked()
		return nil, fmt.Errorf("embedding generation timed out after %s", c.cfg.timeout)
	}

	if response.Error != "" {
		return nil, fmt.Errorf("embedding error: %s", response.Error)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("command returned %d embeddings for %d inputs", len(response.Embeddings), len(texts))
	}

	return response.Embeddings, nil
}

// Close shuts down the subprocess
func (c *Command) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownLocked()
	return nil
}

func (c *Command) shutdownLocked() {
	if c.closed {
		return
	}
	c.closed = true

	if c.stdin != nil {
		fmt.Fprintf(c.stdin, "QUIT\n")
		c.stdin.Close()
	}

	if c.cmd != nil && c.cmd.Process != nil {
		done := make(chan error, 1)
		go func() {
			done <- c.cmd.Wait()
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			c.cmd.Process.Kill()
		}
	}
}
