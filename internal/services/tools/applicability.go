package tools

import (
	"strings"

	"github.com/ternarybob/adjutant/internal/models"
)

// KeywordTable maps each tool to the query keywords that make it applicable.
// Matching is case-insensitive substring containment; a tool with no entry is
// never selected automatically.
type KeywordTable map[string][]string

// DefaultKeywords returns the standard applicability table
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		"search_documents":    {"document", "policy", "guide", "manual", "find", "search", "company"},
		"query_database":      {"database", "sql", "query", "employee", "salary", "project", "department"},
		"get_database_schema": {"schema", "tables", "columns", "database structure"},
		"search_github":       {"github", "issue", "pull request", "pr", "repository", "repo", "code"},
		"get_github_file":     {"file content", "source code", "readme"},
		"search_jira":         {"jira", "ticket", "task", "story", "bug", "sprint"},
		"get_jira_ticket":     {"jira ticket", "ticket details"},
		"list_jira_sprints":   {"sprint", "sprints", "iteration"},
	}
}

// ShouldUse reports whether a tool is applicable to a query based on keyword
// matching.
func (t KeywordTable) ShouldUse(toolName, query string) bool {
	keywords, ok := t[toolName]
	if !ok {
		return false
	}

	queryLower := strings.ToLower(query)
	for _, kw := range keywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}

// PrepareParams builds the invocation parameters for a tool from the query
// and the caller's identity.
func PrepareParams(toolName, query string, identity models.Identity) models.ToolParams {
	switch toolName {
	case "search_documents":
		return models.SearchDocumentsParams{
			Query:      query,
			Department: identity.DepartmentOrDefault(),
		}
	case "query_database":
		// Placeholder query until SQL generation is wired to the LLM
		return models.QueryDatabaseParams{
			Query: "SELECT * FROM employees LIMIT 5",
		}
	case "search_github":
		return models.SearchGitHubParams{
			Query:      query,
			SearchType: "issues",
			State:      "open",
		}
	case "search_jira":
		return models.SearchJiraParams{Query: query}
	}
	return models.GenericQueryParams{Query: query}
}
