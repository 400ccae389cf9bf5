package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOllamaServer(t *testing.T, short bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"nomic-embed-text"}]}`))
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model == "missing" {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
			return
		}
		resp := ollamaEmbedResponse{Model: req.Model}
		for _, text := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(len(text)), 1})
		}
		if short {
			resp.Embeddings = resp.Embeddings[:len(resp.Embeddings)-1]
		}
		json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

func TestOllamaEmbedBatch(t *testing.T) {
	srv := newFakeOllamaServer(t, false)
	defer srv.Close()

	e := NewOllama(WithBaseURL(srv.URL + "/"))
	require.NoError(t, e.Ping(context.Background()))
	assert.Equal(t, ollamaDefaultModel, e.Model())

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {3, 1}}, vecs)

	vec, err := e.Embed(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1}, vec)
}

func TestOllamaErrors(t *testing.T) {
	srv := newFakeOllamaServer(t, true)
	defer srv.Close()

	_, err := NewOllama(WithBaseURL(srv.URL)).EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 inputs")

	_, err = NewOllama(WithBaseURL(srv.URL), WithModel("missing")).Embed(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	_, err = NewOllama(WithBaseURL(srv.URL)).Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	srv.Close()
	assert.Error(t, NewOllama(WithBaseURL(srv.URL)).Ping(context.Background()))
}
