package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/ternarybob/adjutant/internal/interfaces"
)

// OfflineEmbedder is a deterministic, dependency-free embedder for local
// development and tests. It hashes word tokens into a fixed-size bag-of-words
// vector and L2-normalizes it, so similar texts land near each other without
// any network calls. Not a substitute for a real embedding model.
type OfflineEmbedder struct {
	dimension int
}

// NewOfflineEmbedder creates an offline embedder with the given dimension
func NewOfflineEmbedder(dimension int) *OfflineEmbedder {
	return &OfflineEmbedder{dimension: dimension}
}

// Embed generates a deterministic embedding vector for a single text
func (e *OfflineEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vec := make([]float32, e.dimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(word))
		sum := h.Sum64()

		idx := int(sum % uint64(e.dimension))
		// Second hash bit decides sign so common words do not all pile up
		// in the positive direction
		if (sum>>32)&1 == 1 {
			vec[idx] += 1
		} else {
			vec[idx] -= 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts, preserving input order
func (e *OfflineEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimension returns the embedding dimensionality
func (e *OfflineEmbedder) Dimension() int {
	return e.dimension
}

var _ interfaces.EmbeddingService = (*OfflineEmbedder)(nil)
