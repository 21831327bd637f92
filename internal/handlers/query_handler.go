package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/models"
	"github.com/ternarybob/adjutant/internal/services/orchestrator"
)

// QueryHandler handles assistant query requests
type QueryHandler struct {
	orchestrator *orchestrator.Service
	validate     *validator.Validate
	logger       arbor.ILogger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(orchestratorService *orchestrator.Service, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		orchestrator: orchestratorService,
		validate:     validator.New(),
		logger:       logger,
	}
}

// QueryHandler handles POST /api/query requests
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode query request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query request: "+err.Error())
		return
	}

	identity := identityFromRequest(r)

	h.logger.Info().
		Str("user_id", identity.UserID).
		Int("query_length", len(req.Query)).
		Msg("Processing query request")

	response, err := h.orchestrator.HandleQuery(r.Context(), identity, req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Query handling failed")
		writeError(w, http.StatusInternalServerError, "Failed to process query: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response)
}
