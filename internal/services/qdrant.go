package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

// NewQdrantIndex stores role vectors in a Qdrant collection with Euclid distance.
func NewQdrantIndex(urlStr, apiKey, collectionName string, logger *zap.Logger) (VectorIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}, nil
}

// Replace implements VectorIndex. The collection is dropped and recreated so ids stay dense.
func (q *qdrantIndex) Replace(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return errors.New("cannot write an empty index")
	}

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		if err := q.client.DeleteCollection(ctx, q.collectionName); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(len(vectors[0])),
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for i, vec := range vectors {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"row": i,
			}),
		})
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	q.logger.Info("✅ Qdrant collection rebuilt",
		zap.String("collection", q.collectionName),
		zap.Int("points", len(points)),
	)
	return nil
}

// Len implements VectorIndex.
func (q *qdrantIndex) Len(ctx context.Context) (int, error) {
	if err := q.ensureCollection(ctx); err != nil {
		return 0, err
	}

	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(count), nil
}

func (q *qdrantIndex) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: qdrant collection %q not found, build the index first", ErrMissingData, q.collectionName)
	}
	return nil
}

// Search implements VectorIndex. Qdrant reports plain Euclidean distance; it is squared to
// match the flat index.
func (q *qdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		k = 1
	}

	if err := q.ensureCollection(ctx); err != nil {
		return nil, err
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(points))
	for _, point := range points {
		distance := point.GetScore()
		neighbors = append(neighbors, Neighbor{
			ID:       int(point.GetId().GetNum()),
			Distance: distance * distance,
		})
	}

	return neighbors, nil
}
