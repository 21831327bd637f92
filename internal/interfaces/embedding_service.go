package interfaces

import "context"

// EmbeddingService encodes text into dense vectors of a fixed, configured
// dimensionality.
type EmbeddingService interface {
	// Embed generates an embedding vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one pass,
	// preserving input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimensionality
	Dimension() int
}
