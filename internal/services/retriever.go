package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultMaxReducedChars     = 1200
	DefaultSimilarityThreshold = 0.65
	DefaultFallbackRole        = "Machine Learning Engineer"
)

// reductionKeywords select the résumé lines that are embedded for retrieval.
var reductionKeywords = []string{
	"Esperienza",
	"Competenze",
	"Obiettivo",
	"GitHub",
	"LangChain",
	"Machine Learning",
	"FastAPI",
}

// RoleMatch is the retrieval outcome. Similarity is the raw squared L2 distance of the best
// row (lower means closer) or 0 when the default role was used.
type RoleMatch struct {
	Role       string
	Similarity float64
	Fallback   bool
}

type RetrieverService interface {
	RetrieveRole(ctx context.Context, cvText string) (*RoleMatch, error)
}

type RetrieverConfig struct {
	Threshold       float64
	DefaultRole     string
	MaxReducedChars int
}

type retrieverService struct {
	embedder EmbeddingService
	index    VectorIndex
	mapping  RoleMapping
	cfg      RetrieverConfig
	logger   *zap.Logger
}

func NewRetrieverService(
	embedder EmbeddingService,
	index VectorIndex,
	mapping RoleMapping,
	cfg RetrieverConfig,
	logger *zap.Logger,
) RetrieverService {
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = DefaultFallbackRole
	}
	if cfg.MaxReducedChars <= 0 {
		cfg.MaxReducedChars = DefaultMaxReducedChars
	}

	return &retrieverService{
		embedder: embedder,
		index:    index,
		mapping:  mapping,
		cfg:      cfg,
		logger:   logger,
	}
}

// RetrieveRole implements RetrieverService.
//
// The threshold is compared against the distance as if it were a similarity: a distance below
// the threshold discards the match. This mirrors the behaviour the index was calibrated with.
func (r *retrieverService) RetrieveRole(ctx context.Context, cvText string) (*RoleMatch, error) {
	roles, err := r.mapping.Load()
	if err != nil {
		return nil, err
	}

	rows, err := r.index.Len(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read similarity index: %w", err)
	}
	if rows != len(roles) {
		return nil, fmt.Errorf("%w: similarity index has %d rows but the role mapping has %d entries, rebuild the index",
			ErrMissingData, rows, len(roles))
	}

	// a CV without keyword lines reduces to "" and is embedded as such
	query := ReduceCVText(cvText, r.cfg.MaxReducedChars)
	if query == "" {
		r.logger.Debug("no keyword lines in CV, embedding an empty reduction")
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed CV text: %w", err)
	}

	neighbors, err := r.index.Search(ctx, embedding, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to search similarity index: %w", err)
	}
	if len(neighbors) == 0 {
		return nil, fmt.Errorf("%w: similarity index is empty", ErrMissingData)
	}

	best := neighbors[0]
	role, ok := roles[strconv.Itoa(best.ID)]
	if !ok {
		return nil, fmt.Errorf("%w: index row %d has no role in the mapping", ErrMissingData, best.ID)
	}

	similarity := float64(best.Distance)
	r.logger.Info("🔍 Retrieval",
		zap.String("role", role),
		zap.Float64("similarity", similarity),
	)

	if similarity < r.cfg.Threshold {
		r.logger.Warn("⚠️ Low similarity, falling back to default role",
			zap.String("matched_role", role),
			zap.String("default_role", r.cfg.DefaultRole),
		)
		return &RoleMatch{Role: r.cfg.DefaultRole, Similarity: 0, Fallback: true}, nil
	}

	return &RoleMatch{Role: role, Similarity: similarity}, nil
}

// ReduceCVText keeps the lines mentioning a reduction keyword (case-insensitive), in order,
// joined by newlines and cut to maxChars characters.
func ReduceCVText(cvText string, maxChars int) string {
	var kept []string
	for _, line := range splitLines(cvText) {
		if containsAnyFold(line, reductionKeywords) {
			kept = append(kept, line)
		}
	}

	return truncateRunes(strings.Join(kept, "\n"), maxChars)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func truncateRunes(s string, maxChars int) string {
	if maxChars < 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == maxChars {
			return s[:i]
		}
		count++
	}
	return s
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsAnyFold(s string, substrs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
