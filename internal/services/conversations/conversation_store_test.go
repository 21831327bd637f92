package conversations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

// memKV is an in-memory KeyValueStorage for tests
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	broken bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errors.New("storage unavailable")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *memKV) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errors.New("storage unavailable")
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestStore(t *testing.T, kv interfaces.KeyValueStorage) *Store {
	t.Helper()
	config := &common.ConversationConfig{TTL: "24h", SweepSchedule: "", HistoryLimit: 10}
	store, err := NewStore(kv, config, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newMemKV())

	original := models.NewConversationContext("conv-1")
	original.AppendMessage("user", "What is the vacation policy?")
	original.AppendMessage("assistant", "You get 25 days.")
	original.ToolsUsed = append(original.ToolsUsed, models.ToolExecution{
		ToolName: "search_documents", Success: true, ExecutionTimeMs: 12.5,
	})

	require.NoError(t, store.Set(ctx, "conv-1", original))

	loaded, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, original.ConversationID, loaded.ConversationID)
	assert.Equal(t, original.Messages, loaded.Messages)
	assert.Equal(t, original.ToolsUsed[0].ToolName, loaded.ToolsUsed[0].ToolName)
	assert.WithinDuration(t, original.UpdatedAt, loaded.UpdatedAt, time.Second)
}

func TestGetUnknownConversation(t *testing.T) {
	store := newTestStore(t, newMemKV())

	loaded, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCorruptRecordReadsAsFresh(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	store := newTestStore(t, kv)

	require.NoError(t, kv.Set(ctx, keyPrefix+"conv-x", []byte("{not json")))

	loaded, err := store.Get(ctx, "conv-x")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFallbackServesReadsWhenStorageFails(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	store := newTestStore(t, kv)

	context1 := models.NewConversationContext("conv-2")
	context1.AppendMessage("user", "hello")
	require.NoError(t, store.Set(ctx, "conv-2", context1))

	kv.broken = true

	loaded, err := store.Get(ctx, "conv-2")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "hello", loaded.Messages[0].Content)
}

func TestSetSucceedsWhenDurableWriteFails(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.broken = true
	store := newTestStore(t, kv)

	context1 := models.NewConversationContext("conv-3")
	context1.AppendMessage("user", "still works")

	require.NoError(t, store.Set(ctx, "conv-3", context1))

	loaded, err := store.Get(ctx, "conv-3")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "still works", loaded.Messages[0].Content)
}

func TestSweepFallback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newMemKV())

	require.NoError(t, store.Set(ctx, "old", models.NewConversationContext("old")))
	require.NoError(t, store.Set(ctx, "new", models.NewConversationContext("new")))

	// Age the first entry past the TTL
	store.mu.Lock()
	entry := store.fallback["old"]
	entry.updatedAt = time.Now().Add(-48 * time.Hour)
	store.fallback["old"] = entry
	store.mu.Unlock()

	store.sweepFallback()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.NotContains(t, store.fallback, "old")
	assert.Contains(t, store.fallback, "new")
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newMemKV())

	first := models.NewConversationContext("conv-4")
	first.AppendMessage("user", "first")
	second := models.NewConversationContext("conv-4")
	second.AppendMessage("user", "second")

	require.NoError(t, store.Set(ctx, "conv-4", first))
	require.NoError(t, store.Set(ctx, "conv-4", second))

	loaded, err := store.Get(ctx, "conv-4")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "second", loaded.Messages[0].Content)
}
