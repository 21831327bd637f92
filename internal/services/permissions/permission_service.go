package permissions

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

// ToolTable maps each role to the set of tools it may invoke. Unknown roles
// and unknown tools are denied.
type ToolTable map[string]map[string]bool

// DepartmentTable maps a user's department to the document departments they
// may read. Departments not listed fall back to public only; "*" grants all.
type DepartmentTable map[string][]string

// DefaultToolTable returns the standard role to tool access table
func DefaultToolTable() ToolTable {
	return ToolTable{
		models.RoleAdmin: {
			"search_documents": true,
			"query_database":   true,
			"search_github":    true,
			"search_jira":      true,
			"get_github_file":  true,
			"get_jira_ticket":  true,
		},
		models.RoleManager: {
			"search_documents": true,
			"query_database":   true,
			"search_jira":      true,
			"get_jira_ticket":  true,
		},
		models.RoleEmployee: {
			"search_documents": true,
		},
	}
}

// DefaultDepartmentTable returns the standard department visibility table
func DefaultDepartmentTable() DepartmentTable {
	return DepartmentTable{
		"engineering": {"engineering", "general", "public"},
		"hr":          {"hr", "general", "public"},
		"finance":     {"finance", "general", "public"},
		"sales":       {"sales", "general", "public"},
		"admin":       {"*"},
	}
}

// Service resolves role and department based access decisions from immutable
// in-memory tables injected at construction. Decisions are pure; only denial
// logging has side effects.
type Service struct {
	toolTable ToolTable
	deptTable DepartmentTable
	logger    arbor.ILogger
	audit     interfaces.AuditSink
}

// NewService creates a permission service over the default access tables.
// audit may be nil, in which case denials are logged but not persisted.
func NewService(logger arbor.ILogger, audit interfaces.AuditSink) *Service {
	return NewServiceWithTables(DefaultToolTable(), DefaultDepartmentTable(), logger, audit)
}

// NewServiceWithTables creates a permission service over caller-supplied
// tables. The tables must not be mutated after construction.
func NewServiceWithTables(toolTable ToolTable, deptTable DepartmentTable, logger arbor.ILogger, audit interfaces.AuditSink) *Service {
	return &Service{
		toolTable: toolTable,
		deptTable: deptTable,
		logger:    logger,
		audit:     audit,
	}
}

// CanAccessTool reports whether a role may invoke a tool. Fails closed for
// unknown roles and unknown tools.
func (s *Service) CanAccessTool(role, toolName string) bool {
	tools, ok := s.toolTable[role]
	if !ok {
		return false
	}
	return tools[toolName]
}

// CanAccessDepartmentDocs reports whether a user may see documents tagged with
// the given department. Admins see everything; department matching is
// case-insensitive.
func (s *Service) CanAccessDepartmentDocs(userDepartment, userRole, documentDepartment string) bool {
	if userRole == models.RoleAdmin {
		return true
	}

	userDept := strings.ToLower(userDepartment)
	docDept := strings.ToLower(documentDepartment)

	allowed, ok := s.deptTable[userDept]
	if !ok {
		allowed = []string{"public"}
	}

	for _, dept := range allowed {
		if dept == "*" || dept == docDept {
			return true
		}
	}
	return false
}

// CheckAndLogTool checks tool access and emits an audit record on denial
func (s *Service) CheckAndLogTool(userID, role, toolName string) bool {
	if s.CanAccessTool(role, toolName) {
		return true
	}

	s.logger.Warn().
		Str("user_id", userID).
		Str("role", role).
		Str("tool", toolName).
		Msg("Tool access denied")

	if s.audit != nil {
		s.audit.LogPermissionDenied(userID, toolName, "tool_call", "role "+role+" not permitted")
	}
	return false
}
