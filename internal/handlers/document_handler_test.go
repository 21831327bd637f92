package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/models"
)

type fakeIngestRetriever struct {
	added       int
	lastPersist bool
	err         error
}

func (f *fakeIngestRetriever) Initialize(ctx context.Context) error { return nil }

func (f *fakeIngestRetriever) Search(ctx context.Context, query string, topK int, department string, minScore float64) ([]models.SearchResult, error) {
	return nil, nil
}

func (f *fakeIngestRetriever) BuildContext(ctx context.Context, query, department string, maxTokens int) (string, error) {
	return "", nil
}

func (f *fakeIngestRetriever) AddDocuments(ctx context.Context, docs []models.IngestDocument, persist bool) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.lastPersist = persist
	f.added = len(docs) * 2
	return f.added, nil
}

type recordingAudit struct {
	denied []string
}

func (r *recordingAudit) LogToolExecution(userID, toolName, query string, resultLen int, durationMs float64, success bool, errMsg string) {
}

func (r *recordingAudit) LogPermissionDenied(userID, resource, action, reason string) {
	r.denied = append(r.denied, userID+":"+resource+":"+action)
}

func (r *recordingAudit) LogQuery(userID, query string, durationMs float64, success bool) {}

func ingestRequest(t *testing.T, body string, role string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(body))
	r.Header.Set("X-User-ID", "user-1")
	r.Header.Set("X-User-Role", role)
	return r
}

func TestIngestHandlerAdminOnly(t *testing.T) {
	retriever := &fakeIngestRetriever{}
	auditSink := &recordingAudit{}
	h := NewDocumentHandler(retriever, auditSink, common.GetLogger())

	body := `{"documents":[{"title":"Handbook","content":"Remote work is allowed.","department":"hr"}]}`

	t.Run("employee is forbidden and audited", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IngestHandler(w, ingestRequest(t, body, "employee"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		require.Len(t, auditSink.denied, 1)
		assert.Equal(t, "user-1:documents:ingest", auditSink.denied[0])
	})

	t.Run("missing role defaults to employee and is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IngestHandler(w, ingestRequest(t, body, ""))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin may ingest", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IngestHandler(w, ingestRequest(t, body, "admin"))

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, float64(1), resp["documents"])
		assert.Equal(t, float64(2), resp["chunks_added"])
		assert.True(t, retriever.lastPersist)
	})
}

func TestIngestHandlerValidation(t *testing.T) {
	h := NewDocumentHandler(&fakeIngestRetriever{}, nil, common.GetLogger())

	tests := []struct {
		name string
		body string
	}{
		{"empty document list", `{"documents":[]}`},
		{"missing documents field", `{}`},
		{"document without content", `{"documents":[{"title":"t"}]}`},
		{"malformed json", `{"documents":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.IngestHandler(w, ingestRequest(t, tt.body, "admin"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestIngestHandlerPersistFlag(t *testing.T) {
	retriever := &fakeIngestRetriever{}
	h := NewDocumentHandler(retriever, nil, common.GetLogger())

	body := `{"documents":[{"content":"text"}],"persist":false}`
	w := httptest.NewRecorder()
	h.IngestHandler(w, ingestRequest(t, body, "admin"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, retriever.lastPersist)
}

func TestIngestHandlerRetrieverFailure(t *testing.T) {
	retriever := &fakeIngestRetriever{err: errors.New("embedding backend unavailable")}
	h := NewDocumentHandler(retriever, nil, common.GetLogger())

	body := `{"documents":[{"content":"text"}]}`
	w := httptest.NewRecorder()
	h.IngestHandler(w, ingestRequest(t, body, "admin"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
