package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(ctx context.Context, apiKey, modelName, embedModel string) (ModelBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: embedModel,
	}, nil
}

func (g *geminiService) ModelName() string {
	return g.modelName
}

// Embed implements EmbeddingService.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

// EmbedBatch implements EmbeddingService.
func (g *geminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("empty embedding result")
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding for text %d", i)
		}
		embeddings[i] = embedding.Values
	}

	return embeddings, nil
}

// GenerateText implements TextGenerator.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	temperature := opts.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(opts.MaxNewTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil gemini response", ErrOutputMalformed)
	}

	return resp.Text(), nil
}

// Ping implements TextGenerator.
func (g *geminiService) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.modelName, nil); err != nil {
		return fmt.Errorf("gemini model %q unavailable: %w", g.modelName, err)
	}
	return nil
}
