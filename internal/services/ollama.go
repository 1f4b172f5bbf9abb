package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaConfig points at a local (or bearer-protected) Ollama server.
type OllamaConfig struct {
	BaseURL         string
	Token           string
	GenerationModel string
	EmbeddingModel  string
}

type ollamaService struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

func NewOllamaService(cfg OllamaConfig, httpClient *http.Client) ModelBackend {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &ollamaService{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

func (o *ollamaService) ModelName() string {
	return o.cfg.GenerationModel
}

// Embed implements EmbeddingService.
func (o *ollamaService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := o.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("ollama embed: empty response")
	}

	return embeddings[0], nil
}

// EmbedBatch implements EmbeddingService.
func (o *ollamaService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := o.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed batch: got %d embeddings for %d texts", len(embeddings), len(texts))
	}

	return embeddings, nil
}

func (o *ollamaService) embed(ctx context.Context, input interface{}) ([][]float32, error) {
	payload := map[string]interface{}{
		"model": o.cfg.EmbeddingModel,
		"input": input,
	}

	body, err := o.post(ctx, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}

	return resp.Embeddings, nil
}

// GenerateText implements TextGenerator with a single non-streaming completion.
func (o *ollamaService) GenerateText(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	payload := map[string]interface{}{
		"model":  o.cfg.GenerationModel,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxNewTokens,
		},
	}

	body, err := o.post(ctx, "/api/generate", payload)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	var resp struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: ollama generate decode: %w", ErrOutputMalformed, err)
	}
	if resp.Response == nil {
		return "", fmt.Errorf("%w: ollama response has no generated text", ErrOutputMalformed)
	}

	return *resp.Response, nil
}

// Ping implements TextGenerator by asking Ollama for the model's metadata.
func (o *ollamaService) Ping(ctx context.Context) error {
	if _, err := o.post(ctx, "/api/show", map[string]string{"model": o.cfg.GenerationModel}); err != nil {
		return fmt.Errorf("ollama model %q unavailable: %w", o.cfg.GenerationModel, err)
	}
	return nil
}

func (o *ollamaService) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return io.ReadAll(resp.Body)
}
