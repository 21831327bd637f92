package interfaces

import (
	"context"

	"github.com/ternarybob/adjutant/internal/models"
)

// NoRelevantDocuments is the sentinel returned by BuildContext when no
// documents survive filtering, so prompt assembly can branch on it.
const NoRelevantDocuments = "No relevant documents found."

// Retriever performs semantic search over the document corpus and formats
// bounded context blocks for prompt assembly.
type Retriever interface {
	// Initialize loads the persisted index. Lazy and idempotent; missing
	// index files degrade to an empty index, unexpected errors propagate.
	Initialize(ctx context.Context) error

	// Search returns up to topK department-visible results above minScore,
	// in non-increasing score order. An empty department means no filter;
	// "*" also disables filtering.
	Search(ctx context.Context, query string, topK int, department string, minScore float64) ([]models.SearchResult, error)

	// BuildContext formats ranked results into a size-bounded labeled text
	// block, or the NoRelevantDocuments sentinel when nothing matches.
	BuildContext(ctx context.Context, query, department string, maxTokens int) (string, error)

	// AddDocuments chunks, embeds and indexes a batch, returning the number
	// of chunks added. An empty batch is a no-op returning 0.
	AddDocuments(ctx context.Context, docs []models.IngestDocument, persist bool) (int, error)
}
