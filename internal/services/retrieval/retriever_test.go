package retrieval

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
	"github.com/ternarybob/adjutant/internal/services/embeddings"
)

// memChunkStorage is an in-memory ChunkStorage for tests
type memChunkStorage struct {
	mu     sync.Mutex
	chunks map[int]*models.DocumentChunk
}

func newMemChunkStorage() *memChunkStorage {
	return &memChunkStorage{chunks: make(map[int]*models.DocumentChunk)}
}

func (m *memChunkStorage) AppendChunks(ctx context.Context, chunks []*models.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.VectorID] = c
	}
	return nil
}

func (m *memChunkStorage) GetByVectorIDs(ctx context.Context, ids []int) (map[int]*models.DocumentChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int]*models.DocumentChunk)
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			result[id] = c
		}
	}
	return result, nil
}

func (m *memChunkStorage) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func newTestRetriever(t *testing.T) (*Service, *memChunkStorage) {
	t.Helper()

	vectorCfg := &common.VectorConfig{
		Path:             t.TempDir(),
		Dimension:        64,
		TopK:             5,
		MinScore:         0.0,
		MaxContextTokens: 2000,
	}
	ingestCfg := &common.IngestConfig{ChunkSize: 500, ChunkOverlap: 50}

	storage := newMemChunkStorage()
	svc := NewService(embeddings.NewOfflineEmbedder(64), storage, vectorCfg, ingestCfg, common.GetLogger())
	return svc, storage
}

func corpusDocs() []models.IngestDocument {
	return []models.IngestDocument{
		{Title: "Vacation Policy", Content: "Employees receive 25 paid vacation days per year. Vacation requests must be approved by your manager.", Department: "hr", Source: "handbook"},
		{Title: "Expense Policy", Content: "All business expenses require receipts. Submit expense reports within 30 days.", Department: "finance", Source: "handbook"},
		{Title: "Deployment Guide", Content: "Production deployments go through the staging pipeline. Rollbacks use the previous release tag.", Department: "engineering", Source: "wiki"},
		{Title: "Office Hours", Content: "The office is open from 8am to 8pm on weekdays for all staff.", Department: "general", Source: "handbook"},
		{Title: "Holiday Calendar", Content: "Company holidays are published on the public holiday calendar every January.", Department: "public", Source: "intranet"},
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index returns no results", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		results, err := svc.Search(ctx, "anything", 5, "", 0.0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("finds relevant document with valid scores", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		added, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)
		assert.Equal(t, 5, added)

		results, err := svc.Search(ctx, "how many paid vacation days do employees receive", 5, "", 0.0)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		assert.Equal(t, "Vacation Policy", results[0].Title)

		for i, r := range results {
			assert.Greater(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 1.0)
			if i > 0 {
				assert.LessOrEqual(t, r.Score, results[i-1].Score, "scores must be non-increasing")
			}
		}
	})

	t.Run("department filter hides other departments", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)

		results, err := svc.Search(ctx, "policy guide calendar office deployment vacation expense", 5, "hr", 0.0)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		for _, r := range results {
			assert.Contains(t, []string{"hr", "general", "public"}, r.Department)
		}
	})

	t.Run("wildcard department sees everything", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)

		results, err := svc.Search(ctx, "policy guide calendar office deployment vacation expense", 5, "*", 0.0)
		require.NoError(t, err)
		assert.Len(t, results, 5)
	})

	t.Run("department matching is case-insensitive", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, []models.IngestDocument{
			{Title: "Vacation Policy", Content: "Employees receive 25 paid vacation days.", Department: "HR", Source: "handbook"},
		}, false)
		require.NoError(t, err)

		results, err := svc.Search(ctx, "vacation days", 5, "hr", 0.0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Vacation Policy", results[0].Title)
	})

	t.Run("min score threshold filters weak matches", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)

		results, err := svc.Search(ctx, "completely unrelated quantum chromodynamics topic", 5, "", 0.99)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("topK caps the result count", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)

		results, err := svc.Search(ctx, "policy guide calendar office deployment vacation expense", 2, "", 0.0)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestBuildContext(t *testing.T) {
	ctx := context.Background()

	t.Run("sentinel on empty corpus", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		text, err := svc.BuildContext(ctx, "anything", "", 2000)
		require.NoError(t, err)
		assert.Equal(t, interfaces.NoRelevantDocuments, text)
	})

	t.Run("formats labeled blocks with relevance", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)

		text, err := svc.BuildContext(ctx, "vacation days for employees", "hr", 2000)
		require.NoError(t, err)

		assert.Contains(t, text, "[Document 1:")
		assert.Contains(t, text, "(relevance: ")
		assert.Contains(t, text, "Vacation Policy")
	})

	t.Run("long chunk content is truncated with ellipsis", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		long := strings.Repeat("vacation policy details ", 100) // > 1000 chars, < chunk window
		_, err := svc.AddDocuments(ctx, []models.IngestDocument{
			{Title: "Long Doc", Content: long, Department: "general"},
		}, false)
		require.NoError(t, err)

		text, err := svc.BuildContext(ctx, "vacation policy", "", 2000)
		require.NoError(t, err)
		assert.Contains(t, text, "...")
		assert.Less(t, len(text), len(long))
	})

	t.Run("budget stops at whole blocks", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		_, err := svc.AddDocuments(ctx, corpusDocs(), false)
		require.NoError(t, err)

		// Budget of 50 tokens is 200 chars, roughly one block
		text, err := svc.BuildContext(ctx, "policy guide calendar office vacation expense", "", 50)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(text), 200+1)
		if text != interfaces.NoRelevantDocuments && text != "" {
			// A kept block is intact, never cut mid-content
			assert.True(t, strings.HasPrefix(text, "[Document 1:"))
		}
	})
}

func TestAddDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		svc, _ := newTestRetriever(t)
		added, err := svc.AddDocuments(ctx, nil, false)
		require.NoError(t, err)
		assert.Zero(t, added)
	})

	t.Run("long documents are chunked with part titles", func(t *testing.T) {
		svc, storage := newTestRetriever(t)

		words := make([]string, 1200)
		for i := range words {
			words[i] = "word"
		}
		_, err := svc.AddDocuments(ctx, []models.IngestDocument{
			{Title: "Big Manual", Content: strings.Join(words, " "), Department: "engineering"},
		}, false)
		require.NoError(t, err)

		count, err := storage.Count(ctx)
		require.NoError(t, err)
		assert.Greater(t, count, 1)

		chunks, err := storage.GetByVectorIDs(ctx, []int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, "Big Manual (Part 1)", chunks[0].Title)
		assert.Equal(t, "Big Manual (Part 2)", chunks[1].Title)
	})

	t.Run("vector ids are contiguous across batches", func(t *testing.T) {
		svc, storage := newTestRetriever(t)

		_, err := svc.AddDocuments(ctx, corpusDocs()[:2], false)
		require.NoError(t, err)
		_, err = svc.AddDocuments(ctx, corpusDocs()[2:], false)
		require.NoError(t, err)

		chunks, err := storage.GetByVectorIDs(ctx, []int{0, 1, 2, 3, 4})
		require.NoError(t, err)
		assert.Len(t, chunks, 5)
	})

	t.Run("persisted index survives restart", func(t *testing.T) {
		vectorCfg := &common.VectorConfig{
			Path:             t.TempDir(),
			Dimension:        64,
			TopK:             5,
			MaxContextTokens: 2000,
		}
		ingestCfg := &common.IngestConfig{ChunkSize: 500, ChunkOverlap: 50}
		storage := newMemChunkStorage()

		first := NewService(embeddings.NewOfflineEmbedder(64), storage, vectorCfg, ingestCfg, common.GetLogger())
		_, err := first.AddDocuments(ctx, corpusDocs(), true)
		require.NoError(t, err)

		second := NewService(embeddings.NewOfflineEmbedder(64), storage, vectorCfg, ingestCfg, common.GetLogger())
		results, err := second.Search(ctx, "vacation days for employees", 5, "", 0.0)
		require.NoError(t, err)
		assert.NotEmpty(t, results)
	})
}

func TestChunkText(t *testing.T) {
	t.Run("short text is a single unchanged chunk", func(t *testing.T) {
		chunks := chunkText("a few words only", 500, 50)
		require.Len(t, chunks, 1)
		assert.Equal(t, "a few words only", chunks[0])
	})

	t.Run("long text produces overlapping windows", func(t *testing.T) {
		words := make([]string, 120)
		for i := range words {
			words[i] = "w"
		}
		chunks := chunkText(strings.Join(words, " "), 50, 10)
		assert.Greater(t, len(chunks), 2)

		first := strings.Fields(chunks[0])
		second := strings.Fields(chunks[1])
		assert.Len(t, first, 50)
		// Overlap: second window starts 10 words before the first ends
		assert.Equal(t, first[40:], second[:10])
	})
}
