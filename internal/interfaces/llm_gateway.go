package interfaces

import (
	"context"

	"github.com/ternarybob/adjutant/internal/models"
)

// ProviderType identifies an LLM provider
type ProviderType string

const (
	// ProviderGemini uses the Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses the Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// CompletionResult carries the answer text plus attribution of which
// provider/model produced it.
type CompletionResult struct {
	Answer   string
	Provider ProviderType
	Model    string

	// Degraded is true when the answer is the fallback template produced
	// after a provider failure rather than real model output.
	Degraded bool
}

// LLMGateway generates answers from a prompt with a unified request shape
// across providers. Provider failures of any kind (auth, rate limit, network,
// malformed response) are converted into a degraded answer; Complete never
// returns an error for provider-side faults.
type LLMGateway interface {
	// Complete generates an answer for the given messages with the given
	// token budget. maxTokens <= 0 selects the configured default.
	Complete(ctx context.Context, messages []models.Message, maxTokens int) CompletionResult

	// HealthCheck verifies the active provider is reachable
	HealthCheck(ctx context.Context) error

	// Close releases provider client resources
	Close() error
}
