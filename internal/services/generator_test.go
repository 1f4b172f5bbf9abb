package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFeedbackGenerator_Generate(t *testing.T) {
	llm := &stubLLM{output: "  1. Ottima compatibilità\n"}
	generator := NewFeedbackGenerator(context.Background(), llm, GeneratorConfig{}, zap.NewNop())
	require.True(t, generator.Available())

	feedback, err := generator.GenerateFeedback(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "1. Ottima compatibilità", feedback)

	require.Len(t, llm.opts, 1)
	assert.Equal(t, GenerationOptions{MaxNewTokens: DefaultMaxNewTokens, Temperature: 0}, llm.opts[0])
}

func TestFeedbackGenerator_TruncatesPrompt(t *testing.T) {
	llm := &stubLLM{output: "ok"}
	generator := NewFeedbackGenerator(context.Background(), llm, GeneratorConfig{MaxPromptTokens: 3}, zap.NewNop())

	_, err := generator.GenerateFeedback(context.Background(), "uno due\ntre quattro cinque")
	require.NoError(t, err)
	assert.Equal(t, []string{"uno due\ntre"}, llm.prompts)
}

func TestFeedbackGenerator_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		llm  TextGenerator
	}{
		{"no backend", nil},
		{"ping failed", &stubLLM{pingErr: errors.New("model not found")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := NewFeedbackGenerator(context.Background(), tt.llm, GeneratorConfig{}, zap.NewNop())
			assert.False(t, generator.Available())

			for i := 0; i < 2; i++ {
				_, err := generator.GenerateFeedback(context.Background(), "prompt")
				assert.ErrorIs(t, err, ErrModelUnavailable)
			}
		})
	}
}

func TestFeedbackGenerator_EmptyOutput(t *testing.T) {
	generator := NewFeedbackGenerator(context.Background(), &stubLLM{output: " \n "}, GeneratorConfig{}, zap.NewNop())

	_, err := generator.GenerateFeedback(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrOutputMalformed)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestFeedbackGenerator_BackendError(t *testing.T) {
	boom := errors.New("context deadline exceeded")
	generator := NewFeedbackGenerator(context.Background(), &stubLLM{err: boom}, GeneratorConfig{}, zap.NewNop())

	_, err := generator.GenerateFeedback(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrModelUnavailable)
}

func TestTruncateTokens(t *testing.T) {
	assert.Equal(t, "a b", truncateTokens("a b", 2))
	assert.Equal(t, "a b", truncateTokens("a b  c", 2))
	assert.Equal(t, "  a", truncateTokens("  a\n\tb", 1))
	assert.Equal(t, "   ", truncateTokens("   ", 1))
	assert.Equal(t, "x y z", truncateTokens("x y z", 0))

	long := strings.Repeat("parola ", 1500)
	assert.Len(t, strings.Fields(truncateTokens(long, DefaultMaxPromptTokens)), DefaultMaxPromptTokens)
}
