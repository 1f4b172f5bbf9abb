package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/config"
)

func TestNewModelBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ollama.GenerationModel = "phi"
	cfg.Ollama.URL = "http://localhost:11434"

	backend, err := NewModelBackend(context.Background(), cfg, ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, "phi", backend.ModelName())

	_, err = NewModelBackend(context.Background(), cfg, "openai")
	assert.Error(t, err)

	_, err = NewModelBackend(context.Background(), cfg, ProviderGemini)
	assert.Error(t, err, "gemini requires an API key")
}

func TestNewVectorIndex(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retrieval.IndexPath = t.TempDir() + "/index.bin"

	index, err := NewVectorIndex(cfg, IndexBackendFlat, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, index)

	_, err = NewVectorIndex(cfg, "faiss", zap.NewNop())
	assert.Error(t, err)
}
