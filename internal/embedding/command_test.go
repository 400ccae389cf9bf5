package embedding

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It is re-executed by the command
// tests to play the embedding subprocess.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv("VECRAG_HELPER_MODE")
	if mode == "" {
		return
	}
	defer os.Exit(0)

	if mode == "not-ready" {
		fmt.Println(`{"status":"loading"}`)
		return
	}
	fmt.Println(`{"status":"ready"}`)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "QUIT" {
			return
		}
		var req commandRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
			continue
		}
		switch {
		case mode == "hang":
			time.Sleep(time.Minute)
		case len(req.Texts) > 0 && req.Texts[0] == "explode":
			fmt.Println(`{"error":"model crashed"}`)
		default:
			resp := commandResponse{}
			for _, text := range req.Texts {
				resp.Embeddings = append(resp.Embeddings, []float32{float32(len(text)), float32(len(req.Model))})
			}
			out, _ := json.Marshal(resp)
			fmt.Println(string(out))
		}
	}
}

func newHelperCommand(t *testing.T, mode string, opts ...Option) (*Command, error) {
	t.Helper()
	opts = append(opts, WithEnv("VECRAG_HELPER_MODE="+mode))
	return NewCommand(os.Args[0], []string{"-test.run=TestHelperProcess", "--"}, opts...)
}

func TestCommandEmbedBatch(t *testing.T) {
	c, err := newHelperCommand(t, "ok", WithModel("mini"))
	require.NoError(t, err)
	defer c.Close()

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "abc", "ab"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 4}, {3, 4}, {2, 4}}, vecs)

	vec, err := c.Embed(context.Background(), "abcde")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 4}, vec)

	_, err = c.EmbedBatch(context.Background(), []string{"explode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")

	// The process stays usable after an error reply.
	_, err = c.Embed(context.Background(), "again")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	_, err = c.Embed(context.Background(), "closed")
	assert.ErrorIs(t, err, ErrCommandClosed)
}

func TestCommandNotReady(t *testing.T) {
	_, err := newHelperCommand(t, "not-ready")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected ready signal")

	_, err = NewCommand("/nonexistent/embedder", nil)
	assert.Error(t, err)
}

func TestCommandTimeout(t *testing.T) {
	c, err := newHelperCommand(t, "hang", WithTimeout(100*time.Millisecond))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Embed(context.Background(), "slow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")

	_, err = c.Embed(context.Background(), "after")
	assert.ErrorIs(t, err, ErrCommandClosed)
}

func TestNewProviderCommandSettings(t *testing.T) {
	e, err := New(ProviderConfig{
		Provider: "command",
		Command:  []string{os.Args[0], "-test.run=TestHelperProcess", "--"},
		Env:      []string{"VECRAG_HELPER_MODE=hang"},
		Timeout:  100 * time.Millisecond,
	})
	require.NoError(t, err)
	c := e.(*Command)
	defer c.Close()

	start := time.Now()
	_, err = c.Embed(context.Background(), "slow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 100ms")
	assert.Less(t, time.Since(start), 10*time.Second)
}
