package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
)

// StatusHandler handles service status requests
type StatusHandler struct {
	config       *common.Config
	chunkStorage interfaces.ChunkStorage
	logger       arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(config *common.Config, chunkStorage interfaces.ChunkStorage, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		config:       config,
		chunkStorage: chunkStorage,
		logger:       logger,
	}
}

// StatusHandler handles GET /api/status requests
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chunkCount := -1
	if count, err := h.chunkStorage.Count(r.Context()); err == nil {
		chunkCount = count
	} else {
		h.logger.Warn().Err(err).Msg("Failed to count document chunks")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"service":      "adjutant",
		"version":      common.GetVersion(),
		"environment":  h.config.Environment,
		"llm_provider": h.config.LLM.DefaultProvider,
		"chunk_count":  chunkCount,
	})
}
