// Package app wires configuration into the service implementations shared by the API server
// and the indexer.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/config"
	"alfredoptarigan/cv-screener/internal/services"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	IndexBackendFlat   = "flat"
	IndexBackendQdrant = "qdrant"
)

// NewModelBackend builds the embedding and generation client for provider. The Ollama client has
// no timeout of its own; calls are bounded by the caller's context.
func NewModelBackend(ctx context.Context, cfg *config.Config, provider string) (services.ModelBackend, error) {
	switch provider {
	case ProviderOllama:
		return services.NewOllamaService(services.OllamaConfig{
			BaseURL:         cfg.Ollama.URL,
			Token:           cfg.Ollama.Token,
			GenerationModel: cfg.Ollama.GenerationModel,
			EmbeddingModel:  cfg.Ollama.EmbeddingModel,
		}, &http.Client{}), nil
	case ProviderGemini:
		return services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.GenerationModel, cfg.Gemini.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}

func NewVectorIndex(cfg *config.Config, backend string, log *zap.Logger) (services.VectorIndex, error) {
	switch backend {
	case IndexBackendFlat:
		return services.NewFlatIndex(cfg.Retrieval.IndexPath), nil
	case IndexBackendQdrant:
		return services.NewQdrantIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	default:
		return nil, fmt.Errorf("unknown index backend %q", backend)
	}
}

// PingTimeout bounds the one-time generation model check at startup.
const PingTimeout = 30 * time.Second
