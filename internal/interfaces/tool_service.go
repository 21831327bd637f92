package interfaces

import (
	"context"

	"github.com/ternarybob/adjutant/internal/models"
)

// ToolService discovers and invokes tools against the remote capability
// registry. Transport failures never propagate: discovery degrades to a
// fallback tool set and calls return structured failure results.
type ToolService interface {
	// DiscoverTools lists the tools available to a role
	DiscoverTools(ctx context.Context, role string) []models.Tool

	// CallTool invokes a named tool with prepared parameters. userID is used
	// for audit emission; an empty userID skips auditing.
	CallTool(ctx context.Context, toolName string, parameters models.ToolParams, role, userID string) models.ToolCallResult
}

// PermissionService resolves role/department based access decisions. Pure
// functions over immutable tables; denials are filtering signals, not errors.
type PermissionService interface {
	// CanAccessTool reports whether a role may invoke a tool (fail closed)
	CanAccessTool(role, toolName string) bool

	// CanAccessDepartmentDocs reports whether a user may see documents tagged
	// with the given department
	CanAccessDepartmentDocs(userDepartment, userRole, documentDepartment string) bool

	// CheckAndLogTool checks tool access and emits an audit record on denial
	CheckAndLogTool(userID, role, toolName string) bool
}
