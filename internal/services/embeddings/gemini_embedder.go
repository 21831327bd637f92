package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiEmbedder implements EmbeddingService using the Gemini embedding API
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewGeminiEmbedder creates an embedder against the configured Gemini
// embedding model.
func NewGeminiEmbedder(ctx context.Context, config *common.GeminiConfig, dimension int, logger arbor.ILogger) (*GeminiEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		timeout = 120 * time.Second
	}

	return &GeminiEmbedder{
		client:    client,
		model:     config.EmbeddingModel,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Embed generates an embedding vector for a single text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	outputDim := int32(e.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	result, err := e.client.Models.EmbedContent(timeoutCtx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0].Values == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	embedding := result.Embeddings[0].Values
	if len(embedding) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(embedding))
	}

	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts in one API call,
// preserving input order.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text cannot be empty")
		}
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	outputDim := int32(e.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	start := time.Now()
	result, err := e.client.Models.EmbedContent(timeoutCtx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("batch embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(result.Embeddings))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch at index %d: expected %d, got %d", i, e.dimension, len(emb.Values))
		}
		embeddings[i] = emb.Values
	}

	e.logger.Debug().
		Int("count", len(texts)).
		Dur("duration", time.Since(start)).
		Msg("Generated batch embeddings")

	return embeddings, nil
}

// Dimension returns the embedding dimensionality
func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

var _ interfaces.EmbeddingService = (*GeminiEmbedder)(nil)
