package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaTestServer(t *testing.T, handler http.HandlerFunc) ModelBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOllamaService(OllamaConfig{
		BaseURL:         server.URL + "/",
		Token:           "secret",
		GenerationModel: "phi",
		EmbeddingModel:  "all-minilm",
	}, server.Client())
}

func TestOllama_Embed(t *testing.T) {
	backend := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req["model"])

		switch input := req["input"].(type) {
		case string:
			w.Write([]byte(`{"embeddings": [[0.1, 0.2]]}`))
		case []interface{}:
			assert.Len(t, input, 2)
			w.Write([]byte(`{"embeddings": [[1, 0], [0, 1]]}`))
		}
	})

	vec, err := backend.Embed(context.Background(), "Competenze: Go")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)

	batch, err := backend.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, batch)
}

func TestOllama_GenerateText(t *testing.T) {
	backend := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req struct {
			Model   string             `json:"model"`
			Prompt  string             `json:"prompt"`
			Stream  bool               `json:"stream"`
			Options map[string]float64 `json:"options"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phi", req.Model)
		assert.Equal(t, "Risposta:", req.Prompt)
		assert.False(t, req.Stream)
		assert.Equal(t, 0.0, req.Options["temperature"])
		assert.Equal(t, 128.0, req.Options["num_predict"])

		w.Write([]byte(`{"model": "phi", "response": "Buon profilo", "done": true}`))
	})

	text, err := backend.GenerateText(context.Background(), "Risposta:", GenerationOptions{MaxNewTokens: 128})
	require.NoError(t, err)
	assert.Equal(t, "Buon profilo", text)
}

func TestOllama_GenerateText_Malformed(t *testing.T) {
	for _, body := range []string{`{"done": true}`, `not json`} {
		backend := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})

		_, err := backend.GenerateText(context.Background(), "p", GenerationOptions{})
		assert.ErrorIs(t, err, ErrOutputMalformed, body)
	}
}

func TestOllama_Ping(t *testing.T) {
	backend := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/show", r.URL.Path)
		http.Error(w, `{"error":"model 'phi' not found"}`, http.StatusNotFound)
	})

	err := backend.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, "phi", backend.ModelName())
}
