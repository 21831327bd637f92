package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/handlers"
	"github.com/ternarybob/adjutant/internal/models"
	"github.com/ternarybob/adjutant/internal/services/ratelimit"
)

type staticChunkCounter struct{}

func (staticChunkCounter) AppendChunks(ctx context.Context, chunks []*models.DocumentChunk) error {
	return nil
}

func (staticChunkCounter) GetByVectorIDs(ctx context.Context, ids []int) (map[int]*models.DocumentChunk, error) {
	return nil, nil
}

func (staticChunkCounter) Count(ctx context.Context) (int, error) { return 0, nil }

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *Server {
	t.Helper()

	config := common.DefaultConfig()
	logger := common.GetLogger()

	return New(
		config,
		logger,
		limiter,
		handlers.NewQueryHandler(nil, logger),
		handlers.NewDocumentHandler(nil, nil, logger),
		handlers.NewConversationHandler(nil, logger),
		handlers.NewStatusHandler(config, staticChunkCounter{}, logger),
	)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(&common.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 60,
		Burst:             1,
	}, common.GetLogger())

	s := newTestServer(t, limiter)
	handler := s.withMiddleware(s.router)

	post := func(userID string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		if userID != "" {
			r.Header.Set("X-User-ID", userID)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("second burst request is throttled", func(t *testing.T) {
		first := post("user-a")
		assert.NotEqual(t, http.StatusTooManyRequests, first.Code)

		second := post("user-a")
		require.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Contains(t, second.Body.String(), "Rate limit exceeded")
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		w := post("user-b")
		assert.NotEqual(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("GET requests are not limited", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			r.Header.Set("X-User-ID", "user-a")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, nil)
	handler := s.withMiddleware(s.router)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/query", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-Role")
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		s.recoveryMiddleware(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
