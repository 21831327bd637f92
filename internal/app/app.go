package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/handlers"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/services/audit"
	"github.com/ternarybob/adjutant/internal/services/conversations"
	"github.com/ternarybob/adjutant/internal/services/embeddings"
	"github.com/ternarybob/adjutant/internal/services/llm"
	"github.com/ternarybob/adjutant/internal/services/orchestrator"
	"github.com/ternarybob/adjutant/internal/services/permissions"
	"github.com/ternarybob/adjutant/internal/services/ratelimit"
	"github.com/ternarybob/adjutant/internal/services/retrieval"
	"github.com/ternarybob/adjutant/internal/services/tools"
	"github.com/ternarybob/adjutant/internal/storage/badger"
)

// App wires the service graph and owns component lifecycles
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Storage       *badger.Manager
	Conversations *conversations.Store
	Gateway       interfaces.LLMGateway
	Limiter       *ratelimit.Limiter

	QueryHandler        *handlers.QueryHandler
	DocumentHandler     *handlers.DocumentHandler
	ConversationHandler *handlers.ConversationHandler
	StatusHandler       *handlers.StatusHandler

	cron *cron.Cron
}

// New initializes storage, services and handlers from configuration
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(&config.Storage.Badger, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	auditService := audit.NewService(storageManager.AuditStorage(), logger)
	permissionService := permissions.NewService(logger, auditService)

	toolService := tools.NewService(&config.Tools, logger, auditService)
	executor := tools.NewExecutor(toolService, permissionService, logger)

	embedder, err := newEmbedder(ctx, config, logger)
	if err != nil {
		storageManager.Close()
		return nil, err
	}

	retriever := retrieval.NewService(embedder, storageManager.ChunkStorage(), &config.Vector, &config.Ingest, logger)

	conversationStore, err := conversations.NewStore(storageManager.KeyValueStorage(), &config.Conversations, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize conversation store: %w", err)
	}

	gateway := llm.NewGateway(config, logger)

	orchestratorService := orchestrator.NewService(
		toolService, executor, retriever, conversationStore, gateway, auditService, config, logger)

	limiter := ratelimit.NewLimiter(&config.RateLimit, logger)

	c := cron.New()
	if _, err := c.AddFunc("@every 10m", limiter.Cleanup); err != nil {
		logger.Warn().Err(err).Msg("Failed to schedule rate limiter cleanup")
	}
	c.Start()

	return &App{
		Config:              config,
		Logger:              logger,
		Storage:             storageManager,
		Conversations:       conversationStore,
		Gateway:             gateway,
		Limiter:             limiter,
		QueryHandler:        handlers.NewQueryHandler(orchestratorService, logger),
		DocumentHandler:     handlers.NewDocumentHandler(retriever, auditService, logger),
		ConversationHandler: handlers.NewConversationHandler(conversationStore, logger),
		StatusHandler:       handlers.NewStatusHandler(config, storageManager.ChunkStorage(), logger),
		cron:                c,
	}, nil
}

// newEmbedder selects the embedding backend. Offline mode and a missing API
// key both fall back to the deterministic local embedder.
func newEmbedder(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	if config.LLM.Offline {
		logger.Info().Msg("Using offline embedder (llm.offline=true)")
		return embeddings.NewOfflineEmbedder(config.Vector.Dimension), nil
	}
	if config.Gemini.APIKey == "" {
		logger.Warn().Msg("Gemini API key not configured, falling back to offline embedder")
		return embeddings.NewOfflineEmbedder(config.Vector.Dimension), nil
	}

	embedder, err := embeddings.NewGeminiEmbedder(ctx, &config.Gemini, config.Vector.Dimension, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return embedder, nil
}

// Close releases all component resources
func (a *App) Close() {
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.Conversations != nil {
		a.Conversations.Close()
	}
	if a.Gateway != nil {
		if err := a.Gateway.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM gateway")
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
