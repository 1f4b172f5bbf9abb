package services

import "context"

type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type GenerationOptions struct {
	MaxNewTokens int
	Temperature  float32
}

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
	// Ping verifies the generation model is loaded and reachable.
	Ping(ctx context.Context) error
}

// ModelBackend is a provider serving both embeddings and generation.
type ModelBackend interface {
	EmbeddingService
	TextGenerator
	ModelName() string
}
