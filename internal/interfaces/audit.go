package interfaces

import "time"

// AuditRecord is a persisted audit trail entry
type AuditRecord struct {
	ID        string    `json:"id" badgerhold:"key"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"` // "tool_execution", "permission_denied", "query"
	ToolName  string    `json:"tool_name,omitempty"`
	Query     string    `json:"query,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Action    string    `json:"action,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms,omitempty"`
	ResultLen int       `json:"result_len,omitempty"`
}

// AuditSink receives security-relevant events. Implementations are
// fire-and-forget: they must not block or fail the calling operation.
type AuditSink interface {
	// LogToolExecution records a tool invocation attempt
	LogToolExecution(userID, toolName, query string, resultLen int, durationMs float64, success bool, errMsg string)

	// LogPermissionDenied records a denied access attempt
	LogPermissionDenied(userID, resource, action, reason string)

	// LogQuery records a completed end-to-end query
	LogQuery(userID, query string, durationMs float64, success bool)
}

// AuditStorage persists audit records
type AuditStorage interface {
	Append(record *AuditRecord) error
	Recent(limit int) ([]AuditRecord, error)
}
