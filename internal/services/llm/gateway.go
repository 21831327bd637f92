package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

// provider is the internal completion backend behind the gateway
type provider interface {
	name() interfaces.ProviderType
	model() string
	generate(ctx context.Context, messages []models.Message, maxTokens int) (string, error)
	healthCheck(ctx context.Context) error
	close() error
}

// Gateway fronts the configured LLM provider with a unified request shape.
// Provider failures of any kind become a degraded answer; Complete never
// surfaces provider errors to callers.
type Gateway struct {
	config *common.Config
	retry  *RetryConfig
	logger arbor.ILogger

	mu       sync.Mutex
	provider provider
}

// NewGateway creates a gateway for the configured default provider. The
// provider client itself is initialized lazily on first use.
func NewGateway(config *common.Config, logger arbor.ILogger) *Gateway {
	return &Gateway{
		config: config,
		retry:  NewDefaultRetryConfig(),
		logger: logger,
	}
}

// activeProvider lazily initializes and returns the configured provider
func (g *Gateway) activeProvider(ctx context.Context) (provider, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.provider != nil {
		return g.provider, nil
	}

	var p provider
	var err error
	switch g.config.LLM.DefaultProvider {
	case string(interfaces.ProviderClaude):
		p, err = newClaudeProvider(&g.config.Claude, g.logger)
	case string(interfaces.ProviderGemini):
		p, err = newGeminiProvider(ctx, &g.config.Gemini, g.logger)
	default:
		err = fmt.Errorf("unknown LLM provider: %s", g.config.LLM.DefaultProvider)
	}
	if err != nil {
		return nil, err
	}

	g.provider = p
	return p, nil
}

// Complete generates an answer for the given messages. Any provider failure,
// including initialization, yields a degraded answer so the caller can always
// respond to the user.
func (g *Gateway) Complete(ctx context.Context, messages []models.Message, maxTokens int) interfaces.CompletionResult {
	if maxTokens <= 0 {
		maxTokens = g.config.LLM.DefaultMaxTokens
	}

	p, err := g.activeProvider(ctx)
	if err != nil {
		g.logger.Error().Err(err).Msg("LLM provider initialization failed")
		return interfaces.CompletionResult{
			Answer:   degradedAnswer(err),
			Provider: interfaces.ProviderType(g.config.LLM.DefaultProvider),
			Degraded: true,
		}
	}

	answer, err := g.generateWithRetry(ctx, p, messages, maxTokens)
	if err != nil {
		g.logger.Error().Err(err).Str("provider", string(p.name())).Msg("LLM call failed")
		return interfaces.CompletionResult{
			Answer:   degradedAnswer(err),
			Provider: p.name(),
			Model:    p.model(),
			Degraded: true,
		}
	}

	return interfaces.CompletionResult{
		Answer:   answer,
		Provider: p.name(),
		Model:    p.model(),
	}
}

// generateWithRetry retries rate-limited calls with backoff; other failures
// return immediately.
func (g *Gateway) generateWithRetry(ctx context.Context, p provider, messages []models.Message, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retry.MaxRetries; attempt++ {
		answer, err := p.generate(ctx, messages, maxTokens)
		if err == nil {
			return answer, nil
		}
		lastErr = err

		if !IsRateLimitError(err) || attempt == g.retry.MaxRetries {
			break
		}

		backoff := g.retry.CalculateBackoff(attempt, ExtractRetryDelay(err))
		g.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Rate limited, retrying LLM call")

		if err := sleepCtx(ctx, backoff); err != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

// HealthCheck verifies the active provider is reachable
func (g *Gateway) HealthCheck(ctx context.Context) error {
	p, err := g.activeProvider(ctx)
	if err != nil {
		return err
	}
	return p.healthCheck(ctx)
}

// Close releases provider client resources
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.provider != nil {
		err := g.provider.close()
		g.provider = nil
		return err
	}
	return nil
}

// degradedAnswer is the fallback answer template used when the provider fails
func degradedAnswer(err error) string {
	return fmt.Sprintf("I apologize, but I encountered an error processing your request. Please try again later. Error: %s", err.Error())
}

var _ interfaces.LLMGateway = (*Gateway)(nil)
