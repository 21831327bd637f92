package common

import (
	"github.com/google/uuid"
)

// NewConversationID generates a unique conversation identifier
func NewConversationID() string {
	return uuid.New().String()
}

// NewAuditID generates a unique audit record ID with the "audit_" prefix
func NewAuditID() string {
	return "audit_" + uuid.New().String()
}
