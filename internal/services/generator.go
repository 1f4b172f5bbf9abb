package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const (
	DefaultMaxPromptTokens = 1200
	DefaultMaxNewTokens    = 128
)

type FeedbackGenerator interface {
	GenerateFeedback(ctx context.Context, prompt string) (string, error)
	Available() bool
}

type GeneratorConfig struct {
	MaxPromptTokens int
	MaxNewTokens    int
}

type feedbackGenerator struct {
	llm     TextGenerator
	initErr error
	cfg     GeneratorConfig
	logger  *zap.Logger
}

// NewFeedbackGenerator pings llm once. If the ping fails (or llm is nil) the generator stays
// unavailable for the life of the process.
func NewFeedbackGenerator(ctx context.Context, llm TextGenerator, cfg GeneratorConfig, logger *zap.Logger) FeedbackGenerator {
	if cfg.MaxPromptTokens <= 0 {
		cfg.MaxPromptTokens = DefaultMaxPromptTokens
	}
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = DefaultMaxNewTokens
	}

	g := &feedbackGenerator{llm: llm, cfg: cfg, logger: logger}

	switch {
	case llm == nil:
		g.initErr = errors.New("no generation backend configured")
	default:
		g.initErr = llm.Ping(ctx)
	}

	if g.initErr != nil {
		logger.Error("❌ Generation model failed to load, feedback disabled until restart", zap.Error(g.initErr))
	} else {
		logger.Info("✅ Generation model loaded")
	}

	return g
}

func (g *feedbackGenerator) Available() bool {
	return g.initErr == nil
}

// GenerateFeedback implements FeedbackGenerator.
func (g *feedbackGenerator) GenerateFeedback(ctx context.Context, prompt string) (string, error) {
	if g.initErr != nil {
		return "", fmt.Errorf("%w: %w", ErrModelUnavailable, g.initErr)
	}

	prompt = truncateTokens(prompt, g.cfg.MaxPromptTokens)

	output, err := g.llm.GenerateText(ctx, prompt, GenerationOptions{
		MaxNewTokens: g.cfg.MaxNewTokens,
		Temperature:  0,
	})
	if err == nil && strings.TrimSpace(output) == "" {
		err = fmt.Errorf("%w: empty completion", ErrOutputMalformed)
	}
	if err != nil {
		g.logger.Error("❌ Feedback generation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return strings.TrimSpace(output), nil
}

// truncateTokens keeps the first maxTokens whitespace-separated tokens of text.
func truncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}

	count := 0
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inToken = false
			continue
		}
		if !inToken {
			inToken = true
			count++
			if count > maxTokens {
				return strings.TrimRightFunc(text[:i], unicode.IsSpace)
			}
		}
	}
	return text
}
