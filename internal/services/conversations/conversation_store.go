package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

const keyPrefix = "conv:"

// memoryEntry pairs a serialized conversation with its write time so the
// sweep can expire it on the same schedule as the durable layer.
type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// Store persists conversation context in the durable key/value layer with a
// TTL, shadowed by an in-memory fallback that serves reads when the durable
// layer misbehaves. Writes are last-write-wins; concurrent requests on the
// same conversation do not merge.
type Store struct {
	kv     interfaces.KeyValueStorage
	ttl    time.Duration
	logger arbor.ILogger

	mu       sync.RWMutex
	fallback map[string]memoryEntry

	cron *cron.Cron
}

// NewStore creates a conversation store and starts the fallback sweep on the
// configured schedule.
func NewStore(kv interfaces.KeyValueStorage, config *common.ConversationConfig, logger arbor.ILogger) (*Store, error) {
	s := &Store{
		kv:       kv,
		ttl:      config.ConversationTTL(),
		logger:   logger,
		fallback: make(map[string]memoryEntry),
	}

	if config.SweepSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(config.SweepSchedule, s.sweepFallback); err != nil {
			return nil, fmt.Errorf("invalid conversation sweep schedule %q: %w", config.SweepSchedule, err)
		}
		c.Start()
		s.cron = c
	}

	return s, nil
}

// Get retrieves a conversation context by id. Unknown ids and undecodable
// payloads both return (nil, nil); a corrupt record should read as a fresh
// conversation, not an error.
func (s *Store) Get(ctx context.Context, conversationID string) (*models.ConversationContext, error) {
	data, err := s.kv.Get(ctx, keyPrefix+conversationID)
	if err != nil && !errors.Is(err, interfaces.ErrKeyNotFound) {
		s.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Error reading conversation from storage")
	}

	if len(data) == 0 {
		s.mu.RLock()
		if entry, ok := s.fallback[conversationID]; ok {
			data = entry.data
		}
		s.mu.RUnlock()
	}

	if len(data) == 0 {
		return nil, nil
	}

	var context models.ConversationContext
	if err := json.Unmarshal(data, &context); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Error deserializing conversation context")
		return nil, nil
	}
	return &context, nil
}

// Set persists a conversation context under its id. The in-memory fallback is
// always updated; durable write failures are logged, not propagated.
func (s *Store) Set(ctx context.Context, conversationID string, context *models.ConversationContext) error {
	data, err := json.Marshal(context)
	if err != nil {
		return fmt.Errorf("failed to serialize conversation context: %w", err)
	}

	s.mu.Lock()
	s.fallback[conversationID] = memoryEntry{data: data, updatedAt: time.Now()}
	s.mu.Unlock()

	if err := s.kv.SetWithTTL(ctx, keyPrefix+conversationID, data, s.ttl); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Error writing conversation to storage")
	}
	return nil
}

// sweepFallback drops in-memory entries older than the TTL so the fallback
// map does not grow without bound.
func (s *Store) sweepFallback() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, entry := range s.fallback {
		if entry.updatedAt.Before(cutoff) {
			delete(s.fallback, id)
			removed++
		}
	}
	remaining := len(s.fallback)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("remaining", remaining).Msg("Swept expired conversation fallback entries")
	}
}

// Close stops the fallback sweep
func (s *Store) Close() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

var _ interfaces.ConversationStore = (*Store)(nil)
