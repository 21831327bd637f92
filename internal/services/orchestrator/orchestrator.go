package orchestrator

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
	"github.com/ternarybob/adjutant/internal/services/prompt"
	"github.com/ternarybob/adjutant/internal/services/tools"
)

const maxSourceReferences = 3

// Service coordinates retrieval, tool execution and completion to answer a
// query end to end. Component failures degrade the answer, they never fail
// the request: a response always comes back.
type Service struct {
	toolService   interfaces.ToolService
	executor      *tools.Executor
	retriever     interfaces.Retriever
	conversations interfaces.ConversationStore
	gateway       interfaces.LLMGateway
	audit         interfaces.AuditSink
	config        *common.Config
	logger        arbor.ILogger
}

// NewService wires the orchestrator from its collaborators
func NewService(
	toolService interfaces.ToolService,
	executor *tools.Executor,
	retriever interfaces.Retriever,
	conversations interfaces.ConversationStore,
	gateway interfaces.LLMGateway,
	audit interfaces.AuditSink,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		toolService:   toolService,
		executor:      executor,
		retriever:     retriever,
		conversations: conversations,
		gateway:       gateway,
		audit:         audit,
		config:        config,
		logger:        logger,
	}
}

// HandleQuery runs the full pipeline for one query: conversation lookup, tool
// discovery and fan-out, retrieval, prompt assembly, completion, conversation
// write-back and source attribution.
func (s *Service) HandleQuery(ctx context.Context, identity models.Identity, request models.QueryRequest) (*models.QueryResponse, error) {
	start := time.Now()

	role := identity.RoleOrDefault()
	dept := identity.DepartmentOrDefault()

	conversation, err := s.getOrCreateConversation(ctx, request.ConversationID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", identity.UserID).
		Str("conversation_id", conversation.ConversationID).
		Int("query_length", len(request.Query)).
		Msg("Processing query")

	// Admins see every department's documents
	retrievalDept := dept
	if role == models.RoleAdmin {
		retrievalDept = "*"
	}

	available := s.toolService.DiscoverTools(ctx, role)

	ragContext, err := s.retriever.BuildContext(ctx, request.Query, retrievalDept, s.config.Vector.MaxContextTokens)
	if err != nil {
		s.logger.Error().Err(err).Msg("Context retrieval failed, continuing without documents")
		ragContext = interfaces.NoRelevantDocuments
	}

	executions := s.executor.ExecuteApplicable(ctx, available, request.Query, models.Identity{
		UserID:     identity.UserID,
		Role:       role,
		Department: dept,
	})

	history := conversation.LastMessages(s.config.Conversations.HistoryLimit)
	messages := prompt.Assemble(request.Query, ragContext, executions, history)

	completion := s.gateway.Complete(ctx, messages, request.MaxTokens)

	sources := s.buildSources(ctx, request, retrievalDept)

	conversation.AppendMessage("user", request.Query)
	conversation.AppendMessage("assistant", completion.Answer)
	conversation.ToolsUsed = append(conversation.ToolsUsed, executions...)
	conversation.Sources = append(conversation.Sources, sources...)

	if err := s.conversations.Set(ctx, conversation.ConversationID, conversation); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", conversation.ConversationID).Msg("Failed to persist conversation")
	}

	processingMs := float64(time.Since(start).Microseconds()) / 1000.0

	if s.audit != nil {
		s.audit.LogQuery(identity.UserID, request.Query, processingMs, !completion.Degraded)
	}

	if executions == nil {
		executions = []models.ToolExecution{}
	}

	return &models.QueryResponse{
		Answer:           completion.Answer,
		ConversationID:   conversation.ConversationID,
		Sources:          sources,
		ToolsUsed:        executions,
		ProcessingTimeMs: processingMs,
		ModelUsed:        completion.Model,
		Timestamp:        time.Now().UTC(),
	}, nil
}

// getOrCreateConversation loads the requested conversation, or creates a
// fresh one when the id is empty or unknown. An unknown id is reused for the
// new conversation rather than rejected.
func (s *Service) getOrCreateConversation(ctx context.Context, conversationID string) (*models.ConversationContext, error) {
	if conversationID != "" {
		existing, err := s.conversations.Get(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	id := conversationID
	if id == "" {
		id = common.NewConversationID()
	}
	return models.NewConversationContext(id), nil
}

// buildSources re-runs retrieval and converts the strongest hits into source
// references when the caller asked for them.
func (s *Service) buildSources(ctx context.Context, request models.QueryRequest, department string) []models.SourceReference {
	sources := []models.SourceReference{}
	if !request.WantsSources() {
		return sources
	}

	results, err := s.retriever.Search(ctx, request.Query, s.config.Vector.TopK, department, s.config.Vector.MinScore)
	if err != nil {
		s.logger.Error().Err(err).Msg("Source retrieval failed")
		return sources
	}

	for i, doc := range results {
		if i >= maxSourceReferences {
			break
		}
		snippet := common.TruncateRunes(doc.Content, 200)
		sources = append(sources, models.SourceReference{
			Title:          doc.Title,
			ContentSnippet: snippet,
			SourceType:     "document",
			RelevanceScore: doc.Score,
		})
	}
	return sources
}
