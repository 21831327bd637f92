package interfaces

// VectorIndex is an append-only nearest-neighbor index over dense vectors.
// Vector identifiers are assigned contiguously in insertion order: the id of
// a vector equals its position in the index at the time it was added.
type VectorIndex interface {
	// Add appends vectors to the index and returns the id assigned to the
	// first vector of the batch
	Add(vectors [][]float32) (int, error)

	// Search returns the k nearest neighbors of the query vector by L2
	// distance, closest first
	Search(query []float32, k int) (distances []float32, ids []int, err error)

	// Size returns the number of vectors in the index
	Size() int

	// Dimension returns the vector dimensionality the index was created with
	Dimension() int

	// Save persists the index as an opaque blob at the given path
	Save(path string) error
}
