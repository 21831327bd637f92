package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/adjutant/internal/models"
)

// ErrKeyNotFound is returned when a key is not found in the key/value store
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStorage defines operations for generic key/value storage with
// optional per-entry expiry.
type KeyValueStorage interface {
	// Get retrieves a value by key, returns ErrKeyNotFound if absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or updates a key/value pair without expiry
	Set(ctx context.Context, key string, value []byte) error

	// SetWithTTL inserts or updates a key/value pair that expires after ttl
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key/value pair, returns ErrKeyNotFound if absent
	Delete(ctx context.Context, key string) error
}

// ChunkStorage persists document chunk metadata keyed by vector identifier.
// Identifiers are caller-assigned at ingestion time and must match the
// positions assigned by the vector index.
type ChunkStorage interface {
	// AppendChunks stores a batch of chunks with their pre-assigned vector ids
	AppendChunks(ctx context.Context, chunks []*models.DocumentChunk) error

	// GetByVectorIDs returns the chunks for the given ids, keyed by id.
	// Unknown ids are simply absent from the result, not errors.
	GetByVectorIDs(ctx context.Context, ids []int) (map[int]*models.DocumentChunk, error)

	// Count returns the number of stored chunks
	Count(ctx context.Context) (int, error)
}

// ConversationStore provides keyed persistence of conversation context
type ConversationStore interface {
	// Get retrieves a conversation context by id. Returns (nil, nil) when the
	// conversation is unknown; deserialization failures are treated the same.
	Get(ctx context.Context, conversationID string) (*models.ConversationContext, error)

	// Set persists a conversation context under its id
	Set(ctx context.Context, conversationID string, context *models.ConversationContext) error
}

// StorageManager aggregates the storage backends behind one lifecycle
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	ChunkStorage() ChunkStorage
	AuditStorage() AuditStorage
	Close() error
}
