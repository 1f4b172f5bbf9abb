package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

type IndexBuildReport struct {
	Roles     []string
	Dimension int
}

type IndexBuilder struct {
	corpus   RoleCorpus
	embedder EmbeddingService
	index    VectorIndex
	mapping  RoleMapping
	logger   *zap.Logger
}

func NewIndexBuilder(corpus RoleCorpus, embedder EmbeddingService, index VectorIndex, mapping RoleMapping, logger *zap.Logger) *IndexBuilder {
	return &IndexBuilder{
		corpus:   corpus,
		embedder: embedder,
		index:    index,
		mapping:  mapping,
		logger:   logger,
	}
}

// Build embeds every job description and rewrites the index and the role mapping.
// Row i of the index is the i-th corpus entry.
func (b *IndexBuilder) Build(ctx context.Context) (*IndexBuildReport, error) {
	b.logger.Info("🔧 Building role index")

	entries, err := b.corpus.Entries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("job description corpus is empty")
	}

	roles := make([]string, len(entries))
	descriptions := make([]string, len(entries))
	for i, entry := range entries {
		roles[i] = entry.Role
		descriptions[i] = entry.Description
	}

	vectors, err := b.embedder.EmbedBatch(ctx, descriptions)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job descriptions: %w", err)
	}
	if len(vectors) != len(roles) {
		return nil, fmt.Errorf("got %d embeddings for %d roles", len(vectors), len(roles))
	}

	// the mapping goes first: queries reject an index whose row count differs from it, and a
	// failed index write restores the previous mapping
	previous, previousErr := b.mapping.Load()

	if err := b.mapping.Save(roles); err != nil {
		return nil, fmt.Errorf("failed to write role mapping: %w", err)
	}
	b.logger.Info("✅ Role mapping written", zap.Strings("roles", roles))

	if err := b.index.Replace(ctx, vectors); err != nil {
		if previousErr == nil {
			b.restoreMapping(previous)
		}
		return nil, fmt.Errorf("failed to write similarity index: %w", err)
	}
	b.logger.Info("✅ Similarity index written", zap.Int("rows", len(vectors)), zap.Int("dimension", len(vectors[0])))

	return &IndexBuildReport{Roles: roles, Dimension: len(vectors[0])}, nil
}

func (b *IndexBuilder) restoreMapping(previous map[string]string) {
	roles := make([]string, len(previous))
	for i := range roles {
		role, ok := previous[strconv.Itoa(i)]
		if !ok {
			b.logger.Warn("⚠️ Previous role mapping has gaps, not restored")
			return
		}
		roles[i] = role
	}

	if err := b.mapping.Save(roles); err != nil {
		b.logger.Error("❌ Failed to restore previous role mapping", zap.Error(err))
		return
	}
	b.logger.Warn("⚠️ Index write failed, previous role mapping restored", zap.Int("roles", len(roles)))
}
