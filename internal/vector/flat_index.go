// Package vector provides an append-only flat L2 vector index with opaque
// blob persistence. Vector identifiers equal insertion positions, which makes
// them stable join keys to the chunk metadata store.
package vector

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FlatIndex is an exact nearest-neighbor index using L2 distance. Reads are
// lock-shared; appends take the write lock, so searches observe either the
// pre- or post-ingestion snapshot, never a partial batch.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

// persistedIndex is the on-disk gob representation of a FlatIndex
type persistedIndex struct {
	Dimension int
	Vectors   [][]float32
}

// NewFlatIndex creates an empty index with the given dimensionality
func NewFlatIndex(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dimension)
	}
	return &FlatIndex{dimension: dimension}, nil
}

// LoadFlatIndex reads a persisted index blob from disk. A missing file is
// reported via os.IsNotExist on the returned error so callers can degrade to
// an empty index.
func LoadFlatIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p persistedIndex
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode index blob %s: %w", path, err)
	}
	if p.Dimension <= 0 {
		return nil, fmt.Errorf("index blob %s has invalid dimension %d", path, p.Dimension)
	}

	return &FlatIndex{
		dimension: p.Dimension,
		vectors:   p.Vectors,
	}, nil
}

// Add appends vectors and returns the id assigned to the first vector of the
// batch. Ids are contiguous from the current index size.
func (ix *FlatIndex) Add(vectors [][]float32) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i, v := range vectors {
		if len(v) != ix.dimension {
			return 0, fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), ix.dimension)
		}
	}

	startID := len(ix.vectors)
	ix.vectors = append(ix.vectors, vectors...)
	return startID, nil
}

// Search returns the k nearest neighbors by L2 distance, closest first.
// Ties break by insertion order, which keeps result order stable for a given
// index state. k larger than the index size is clamped.
func (ix *FlatIndex) Search(query []float32, k int) ([]float32, []int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(query) != ix.dimension {
		return nil, nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), ix.dimension)
	}
	if k <= 0 || len(ix.vectors) == 0 {
		return nil, nil, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	distances := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		distances[i] = l2Squared(query, v)
	}

	ids := make([]int, len(ix.vectors))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return distances[ids[a]] < distances[ids[b]]
	})

	outIDs := ids[:k]
	outDists := make([]float32, k)
	for i, id := range outIDs {
		outDists[i] = distances[id]
	}
	return outDists, outIDs, nil
}

// Size returns the number of vectors in the index
func (ix *FlatIndex) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Dimension returns the vector dimensionality
func (ix *FlatIndex) Dimension() int {
	return ix.dimension
}

// Save writes the index blob atomically via a temp file rename
func (ix *FlatIndex) Save(path string) error {
	ix.mu.RLock()
	p := persistedIndex{
		Dimension: ix.dimension,
		Vectors:   ix.vectors,
	}
	ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create index temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(&p); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode index blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close index temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace index blob: %w", err)
	}
	return nil
}

// l2Squared computes squared euclidean distance. Squared distance preserves
// neighbor ordering and the 1/(1+d) score mapping stays in (0,1].
func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
