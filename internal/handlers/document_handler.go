package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

// IngestRequest is the document ingestion payload
type IngestRequest struct {
	Documents []models.IngestDocument `json:"documents" validate:"required,min=1,dive"`
	Persist   *bool                   `json:"persist,omitempty"`
}

// DocumentHandler handles document ingestion requests
type DocumentHandler struct {
	retriever interfaces.Retriever
	audit     interfaces.AuditSink
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(retriever interfaces.Retriever, audit interfaces.AuditSink, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		retriever: retriever,
		audit:     audit,
		validate:  validator.New(),
		logger:    logger,
	}
}

// IngestHandler handles POST /api/documents requests. Ingestion mutates the
// shared corpus, so it is restricted to admins.
func (h *DocumentHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity := identityFromRequest(r)
	if identity.RoleOrDefault() != models.RoleAdmin {
		if h.audit != nil {
			h.audit.LogPermissionDenied(identity.UserID, "documents", "ingest", "role "+identity.RoleOrDefault()+" not permitted")
		}
		writeError(w, http.StatusForbidden, "Document ingestion requires the admin role")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode ingest request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ingest request: "+err.Error())
		return
	}

	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	added, err := h.retriever.AddDocuments(r.Context(), req.Documents, persist)
	if err != nil {
		h.logger.Error().Err(err).Msg("Document ingestion failed")
		writeError(w, http.StatusInternalServerError, "Failed to ingest documents: "+err.Error())
		return
	}

	h.logger.Info().
		Int("documents", len(req.Documents)).
		Int("chunks_added", added).
		Msg("Documents ingested")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"documents":    len(req.Documents),
		"chunks_added": added,
	})
}
