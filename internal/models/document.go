package models

// DocumentChunk is the retrieval unit stored alongside the vector index.
// VectorID equals the chunk's insertion position in the index; it is the join
// key between search hits and metadata and is never reassigned.
type DocumentChunk struct {
	VectorID   int                    `json:"vector_id" badgerhold:"key"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Department string                 `json:"department"`
	Source     string                 `json:"source"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// IngestDocument is a raw document submitted for ingestion, before chunking
type IngestDocument struct {
	Title      string                 `json:"title"`
	Content    string                 `json:"content" validate:"required"`
	Department string                 `json:"department"`
	Source     string                 `json:"source"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SearchResult is a single semantic search hit joined back to chunk metadata
type SearchResult struct {
	Content    string  `json:"content"`
	Title      string  `json:"title"`
	Department string  `json:"department"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	VectorID   int     `json:"vector_id"`
}
