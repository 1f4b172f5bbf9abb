package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// Neighbor is one search hit. Distance is the squared Euclidean distance, lower is closer.
type Neighbor struct {
	ID       int
	Distance float32
}

// VectorIndex stores one embedding per role; row ids are dense 0..N-1.
type VectorIndex interface {
	Search(ctx context.Context, query []float32, k int) ([]Neighbor, error)
	Replace(ctx context.Context, vectors [][]float32) error
	Len(ctx context.Context) (int, error)
}

const flatIndexMagic = "CVFLATL2"

// flatIndex is an exact-search index persisted as a single file:
// magic, uint32 dimension, uint32 rows, then rows*dimension little-endian float32.
type flatIndex struct {
	path string
}

func NewFlatIndex(path string) VectorIndex {
	return &flatIndex{path: path}
}

// Search implements VectorIndex. The file is read on every call.
func (x *flatIndex) Search(ctx context.Context, query []float32, k int) ([]Neighbor, error) {
	vectors, err := x.load()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return nearest(vectors, query, k)
}

// Len implements VectorIndex.
func (x *flatIndex) Len(ctx context.Context) (int, error) {
	vectors, err := x.load()
	if err != nil {
		return 0, err
	}
	return len(vectors), ctx.Err()
}

// Replace implements VectorIndex.
func (x *flatIndex) Replace(ctx context.Context, vectors [][]float32) error {
	data, err := encodeFlatIndex(vectors)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return writeFileAtomic(x.path, data)
}

func (x *flatIndex) load() ([][]float32, error) {
	data, err := os.ReadFile(x.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: similarity index %s not found, build the index first", ErrMissingData, x.path)
		}
		return nil, fmt.Errorf("%w: similarity index %s: %w", ErrMissingData, x.path, err)
	}

	vectors, err := decodeFlatIndex(data)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed similarity index %s: %w", ErrMissingData, x.path, err)
	}

	return vectors, nil
}

func encodeFlatIndex(vectors [][]float32) ([]byte, error) {
	if len(vectors) == 0 {
		return nil, errors.New("cannot write an empty index")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("cannot index zero-length vectors")
	}

	var buf bytes.Buffer
	buf.WriteString(flatIndexMagic)
	header := []uint32{uint32(dim), uint32(len(vectors))}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to encode index header: %w", err)
	}

	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), dim)
		}
		if err := binary.Write(&buf, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("failed to encode vector %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

func decodeFlatIndex(data []byte) ([][]float32, error) {
	headerSize := len(flatIndexMagic) + 8
	if len(data) < headerSize || string(data[:len(flatIndexMagic)]) != flatIndexMagic {
		return nil, errors.New("not a flat index file")
	}

	dim := int(binary.LittleEndian.Uint32(data[len(flatIndexMagic):]))
	rows := int(binary.LittleEndian.Uint32(data[len(flatIndexMagic)+4:]))
	if dim == 0 {
		return nil, errors.New("zero vector dimension")
	}
	if want := headerSize + rows*dim*4; len(data) != want {
		return nil, fmt.Errorf("file size %d does not match %d rows of dimension %d", len(data), rows, dim)
	}

	reader := bytes.NewReader(data[headerSize:])
	vectors := make([][]float32, rows)
	for i := range vectors {
		vectors[i] = make([]float32, dim)
		if err := binary.Read(reader, binary.LittleEndian, vectors[i]); err != nil {
			return nil, fmt.Errorf("failed to read vector %d: %w", i, err)
		}
	}

	return vectors, nil
}

// nearest runs an exact scan; ties keep the lower row id first.
func nearest(vectors [][]float32, query []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		k = 1
	}

	neighbors := make([]Neighbor, 0, len(vectors))
	for id, vec := range vectors {
		if len(vec) != len(query) {
			return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), len(vec))
		}
		neighbors = append(neighbors, Neighbor{ID: id, Distance: squaredL2(vec, query)})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
