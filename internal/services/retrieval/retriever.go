package retrieval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
	"github.com/ternarybob/adjutant/internal/vector"
)

const indexFileName = "index.gob"

// Service performs semantic retrieval over the chunked document corpus.
// Search hits join back to chunk metadata through the vector id, which is the
// chunk's insertion position in the index.
type Service struct {
	mu          sync.Mutex
	initialized bool
	index       interfaces.VectorIndex

	embedder     interfaces.EmbeddingService
	chunkStorage interfaces.ChunkStorage
	vectorCfg    *common.VectorConfig
	ingestCfg    *common.IngestConfig
	logger       arbor.ILogger
}

// NewService creates a retrieval service. The index is loaded lazily on first
// use so startup does not pay for a corpus that is never queried.
func NewService(embedder interfaces.EmbeddingService, chunkStorage interfaces.ChunkStorage, vectorCfg *common.VectorConfig, ingestCfg *common.IngestConfig, logger arbor.ILogger) *Service {
	return &Service{
		embedder:     embedder,
		chunkStorage: chunkStorage,
		vectorCfg:    vectorCfg,
		ingestCfg:    ingestCfg,
		logger:       logger,
	}
}

func (s *Service) indexPath() string {
	return filepath.Join(s.vectorCfg.Path, indexFileName)
}

// Initialize loads the persisted index blob. Idempotent; a missing blob
// degrades to an empty index, anything else propagates.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked()
}

func (s *Service) initializeLocked() error {
	if s.initialized {
		return nil
	}

	ix, err := vector.LoadFlatIndex(s.indexPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load vector index: %w", err)
		}
		s.logger.Warn().Str("path", s.indexPath()).Msg("Vector index not found, starting empty")
		ix, err = vector.NewFlatIndex(s.vectorCfg.Dimension)
		if err != nil {
			return err
		}
	}

	s.index = ix
	s.initialized = true
	s.logger.Info().Int("index_size", ix.Size()).Msg("Retriever initialized")
	return nil
}

func (s *Service) ensureInitialized() (interfaces.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initializeLocked(); err != nil {
		return nil, err
	}
	return s.index, nil
}

// Search returns up to topK department-visible results above minScore, in
// non-increasing score order. topK <= 0 selects the configured default.
func (s *Service) Search(ctx context.Context, query string, topK int, department string, minScore float64) ([]models.SearchResult, error) {
	ix, err := s.ensureInitialized()
	if err != nil {
		return nil, err
	}

	if ix.Size() == 0 {
		s.logger.Warn().Msg("Search attempted on empty index")
		return []models.SearchResult{}, nil
	}

	if topK <= 0 {
		topK = s.vectorCfg.TopK
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Over-fetch so post-search filtering still has topK candidates left
	k := topK * 2
	if k > ix.Size() {
		k = ix.Size()
	}

	distances, ids, err := ix.Search(queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(ids) == 0 {
		return []models.SearchResult{}, nil
	}

	scores := make(map[int]float64, len(ids))
	for i, id := range ids {
		// Map L2 distance into (0, 1]
		scores[id] = 1.0 / (1.0 + float64(distances[i]))
	}

	chunks, err := s.chunkStorage.GetByVectorIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chunk metadata: %w", err)
	}

	results := make([]models.SearchResult, 0, topK)
	for _, id := range ids {
		chunk, ok := chunks[id]
		if !ok {
			continue
		}

		score := scores[id]
		if score < minScore {
			continue
		}
		if !departmentVisible(department, chunk.Department) {
			continue
		}

		results = append(results, models.SearchResult{
			Content:    chunk.Content,
			Title:      chunk.Title,
			Department: chunk.Department,
			Source:     chunk.Source,
			Score:      score,
			VectorID:   id,
		})

		if len(results) >= topK {
			break
		}
	}

	s.logger.Debug().
		Int("hits", len(results)).
		Str("department", department).
		Msg("Semantic search complete")

	return results, nil
}

// departmentVisible reports whether a chunk tagged docDept is visible to a
// caller filtering on department. Empty or "*" disables filtering; otherwise
// the chunk must belong to the caller's department or be general/public.
// Matching is case-insensitive.
func departmentVisible(department, docDept string) bool {
	if department == "" || department == "*" {
		return true
	}
	d := strings.ToLower(docDept)
	return d == strings.ToLower(department) || d == "public" || d == "general"
}

// BuildContext formats ranked results into a size-bounded labeled text block
// for prompt assembly, or the sentinel when nothing matches.
func (s *Service) BuildContext(ctx context.Context, query, department string, maxTokens int) (string, error) {
	results, err := s.Search(ctx, query, s.vectorCfg.TopK, department, s.vectorCfg.MinScore)
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		return interfaces.NoRelevantDocuments, nil
	}

	if maxTokens <= 0 {
		maxTokens = s.vectorCfg.MaxContextTokens
	}
	maxChars := maxTokens * 4 // rough chars-per-token approximation

	var parts []string
	totalChars := 0
	for i, doc := range results {
		content := doc.Content
		if truncated := common.TruncateRunes(content, 1000); truncated != content {
			content = truncated + "..."
		}

		part := fmt.Sprintf("[Document %d: %s] (relevance: %.2f)\n%s\n", i+1, doc.Title, doc.Score, content)

		// Whole blocks only; a truncated block would cut mid-sentence
		if totalChars+len(part) > maxChars {
			break
		}
		parts = append(parts, part)
		totalChars += len(part)
	}

	return strings.Join(parts, "\n"), nil
}

// AddDocuments chunks, embeds and indexes a batch of documents, returning the
// number of chunks added. Index and metadata appends happen in lockstep so
// vector ids always resolve.
func (s *Service) AddDocuments(ctx context.Context, docs []models.IngestDocument, persist bool) (int, error) {
	ix, err := s.ensureInitialized()
	if err != nil {
		return 0, err
	}

	if len(docs) == 0 {
		return 0, nil
	}

	var chunks []*models.DocumentChunk
	for _, doc := range docs {
		dept := doc.Department
		if dept == "" {
			dept = "general"
		}
		source := doc.Source
		if source == "" {
			source = "unknown"
		}
		title := doc.Title
		if title == "" {
			title = "Untitled"
		}

		pieces := chunkText(doc.Content, s.ingestCfg.ChunkSize, s.ingestCfg.ChunkOverlap)
		for i, piece := range pieces {
			chunkTitle := title
			if len(pieces) > 1 {
				chunkTitle = fmt.Sprintf("%s (Part %d)", title, i+1)
			}
			chunks = append(chunks, &models.DocumentChunk{
				Title:      chunkTitle,
				Content:    piece,
				Department: dept,
				Source:     source,
				Metadata:   doc.Metadata,
			})
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}

	startID, err := ix.Add(embeddings)
	if err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}

	for i, c := range chunks {
		c.VectorID = startID + i
	}

	if err := s.chunkStorage.AppendChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunk metadata: %w", err)
	}

	if persist {
		if err := ix.Save(s.indexPath()); err != nil {
			return 0, fmt.Errorf("failed to persist vector index: %w", err)
		}
	}

	s.logger.Info().
		Int("documents", len(docs)).
		Int("chunks", len(chunks)).
		Int("index_size", ix.Size()).
		Msg("Documents added to index")

	return len(chunks), nil
}

// chunkText splits text into overlapping word-window chunks. Text at or under
// the window size comes back as a single chunk unchanged.
func chunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + chunkSize
		limit := end
		if limit > len(words) {
			limit = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:limit], " "))
		// Advance from the unclamped end so the loop terminates on the
		// final partial window
		start = end - overlap
	}
	return chunks
}

var _ interfaces.Retriever = (*Service)(nil)
