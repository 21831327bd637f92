package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ChunkStorage implements the ChunkStorage interface for Badger. Chunks are
// keyed by their vector identifier, which the retriever assigns to match the
// chunk's insertion position in the vector index.
type ChunkStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChunkStorage creates a new ChunkStorage instance
func NewChunkStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChunkStorage {
	return &ChunkStorage{
		db:     db,
		logger: logger,
	}
}

// AppendChunks stores a batch of chunks with their pre-assigned vector ids
func (s *ChunkStorage) AppendChunks(ctx context.Context, chunks []*models.DocumentChunk) error {
	for _, chunk := range chunks {
		if chunk.VectorID < 0 {
			return fmt.Errorf("chunk %q has unassigned vector id", chunk.Title)
		}
		if err := s.db.Store().Upsert(chunk.VectorID, chunk); err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", chunk.VectorID, err)
		}
	}

	s.logger.Debug().Int("count", len(chunks)).Msg("Stored document chunks")
	return nil
}

// GetByVectorIDs returns the chunks for the given ids, keyed by id.
// Ids without a stored chunk are skipped rather than treated as errors, which
// lets the retriever tolerate a brief ingestion window where a vector is
// searchable before its metadata lands.
func (s *ChunkStorage) GetByVectorIDs(ctx context.Context, ids []int) (map[int]*models.DocumentChunk, error) {
	result := make(map[int]*models.DocumentChunk, len(ids))
	for _, id := range ids {
		var chunk models.DocumentChunk
		err := s.db.Store().Get(id, &chunk)
		if errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Debug().Int("vector_id", id).Msg("No metadata for vector id, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get chunk %d: %w", id, err)
		}
		result[id] = &chunk
	}
	return result, nil
}

// Count returns the number of stored chunks
func (s *ChunkStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.DocumentChunk{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}
