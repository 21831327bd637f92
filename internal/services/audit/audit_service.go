package audit

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
)

const maxQueryLen = 500

// Service persists audit records to storage. Fire-and-forget: write failures
// are logged and swallowed so auditing can never break the request path.
type Service struct {
	storage interfaces.AuditStorage
	logger  arbor.ILogger
}

// NewService creates an audit sink backed by the given storage
func NewService(storage interfaces.AuditStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// LogToolExecution records a tool invocation attempt
func (s *Service) LogToolExecution(userID, toolName, query string, resultLen int, durationMs float64, success bool, errMsg string) {
	s.append(&interfaces.AuditRecord{
		ID:        common.NewAuditID(),
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Kind:      "tool_execution",
		ToolName:  toolName,
		Query:     truncate(query, maxQueryLen),
		Success:   success,
		Error:     errMsg,
		Duration:  int64(durationMs),
		ResultLen: resultLen,
	})
}

// LogPermissionDenied records a denied access attempt
func (s *Service) LogPermissionDenied(userID, resource, action, reason string) {
	s.append(&interfaces.AuditRecord{
		ID:        common.NewAuditID(),
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Kind:      "permission_denied",
		Resource:  resource,
		Action:    action,
		Reason:    reason,
		Success:   false,
	})
}

// LogQuery records a completed end-to-end query
func (s *Service) LogQuery(userID, query string, durationMs float64, success bool) {
	s.append(&interfaces.AuditRecord{
		ID:        common.NewAuditID(),
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Kind:      "query",
		Query:     truncate(query, maxQueryLen),
		Success:   success,
		Duration:  int64(durationMs),
	})
}

func (s *Service) append(record *interfaces.AuditRecord) {
	if err := s.storage.Append(record); err != nil {
		s.logger.Warn().Err(err).Str("kind", record.Kind).Msg("Failed to persist audit record")
	}
}

func truncate(s string, limit int) string {
	return common.TruncateRunes(s, limit)
}

var _ interfaces.AuditSink = (*Service)(nil)
