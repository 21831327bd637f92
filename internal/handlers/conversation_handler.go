package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/interfaces"
)

// ConversationHandler handles conversation retrieval requests
type ConversationHandler struct {
	store  interfaces.ConversationStore
	logger arbor.ILogger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(store interfaces.ConversationStore, logger arbor.ILogger) *ConversationHandler {
	return &ConversationHandler{
		store:  store,
		logger: logger,
	}
}

// GetHandler handles GET /api/conversations/{id} requests
func (h *ConversationHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "Conversation id is required")
		return
	}

	conversation, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", id).Msg("Failed to load conversation")
		writeError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}
	if conversation == nil {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}
