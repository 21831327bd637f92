package tools

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/models"
)

type stubToolService struct {
	mu      sync.Mutex
	calls   []string
	results map[string]models.ToolCallResult
	delays  map[string]time.Duration
}

func (s *stubToolService) DiscoverTools(ctx context.Context, role string) []models.Tool {
	return nil
}

func (s *stubToolService) CallTool(ctx context.Context, toolName string, parameters models.ToolParams, role, userID string) models.ToolCallResult {
	if d, ok := s.delays[toolName]; ok {
		time.Sleep(d)
	}
	s.mu.Lock()
	s.calls = append(s.calls, toolName)
	s.mu.Unlock()

	if r, ok := s.results[toolName]; ok {
		return r
	}
	return models.ToolCallResult{Success: true, ToolName: toolName, Result: toolName + " data"}
}

type allowAllPermissions struct{}

func (allowAllPermissions) CanAccessTool(role, toolName string) bool { return true }
func (allowAllPermissions) CanAccessDepartmentDocs(userDepartment, userRole, documentDepartment string) bool {
	return true
}
func (allowAllPermissions) CheckAndLogTool(userID, role, toolName string) bool { return true }

type denyAllPermissions struct{}

func (denyAllPermissions) CanAccessTool(role, toolName string) bool { return false }
func (denyAllPermissions) CanAccessDepartmentDocs(userDepartment, userRole, documentDepartment string) bool {
	return false
}
func (denyAllPermissions) CheckAndLogTool(userID, role, toolName string) bool { return false }

func TestExecuteApplicable(t *testing.T) {
	identity := models.Identity{UserID: "user-1", Role: models.RoleAdmin, Department: "engineering"}

	available := []models.Tool{
		{Name: "search_documents"},
		{Name: "query_database"},
		{Name: "search_github"},
	}

	t.Run("runs only applicable tools", func(t *testing.T) {
		stub := &stubToolService{}
		exec := NewExecutor(stub, allowAllPermissions{}, common.GetLogger())

		results := exec.ExecuteApplicable(context.Background(), available, "find the deployment policy document", identity)

		require.Len(t, results, 1)
		assert.Equal(t, "search_documents", results[0].ToolName)
		assert.True(t, results[0].Success)
	})

	t.Run("preserves discovery order despite latency skew", func(t *testing.T) {
		stub := &stubToolService{
			delays: map[string]time.Duration{
				"search_documents": 50 * time.Millisecond,
				"query_database":   time.Millisecond,
			},
		}
		exec := NewExecutor(stub, allowAllPermissions{}, common.GetLogger())

		// Matches document, database and github keywords at once
		query := "search company documents about employee salary in the github repository"
		results := exec.ExecuteApplicable(context.Background(), available, query, identity)

		require.Len(t, results, 3)
		assert.Equal(t, "search_documents", results[0].ToolName)
		assert.Equal(t, "query_database", results[1].ToolName)
		assert.Equal(t, "search_github", results[2].ToolName)
	})

	t.Run("denied tools are filtered before execution", func(t *testing.T) {
		stub := &stubToolService{}
		exec := NewExecutor(stub, denyAllPermissions{}, common.GetLogger())

		results := exec.ExecuteApplicable(context.Background(), available, "find the deployment policy document", identity)
		assert.Empty(t, results)
		assert.Empty(t, stub.calls)
	})

	t.Run("custom keyword table changes selection", func(t *testing.T) {
		stub := &stubToolService{}
		keywords := KeywordTable{
			"query_database": {"deployment"},
		}
		exec := NewExecutorWithKeywords(stub, allowAllPermissions{}, keywords, common.GetLogger())

		results := exec.ExecuteApplicable(context.Background(), available, "find the deployment policy document", identity)

		require.Len(t, results, 1)
		assert.Equal(t, "query_database", results[0].ToolName)
	})

	t.Run("invalid parameters never reach the registry", func(t *testing.T) {
		stub := &stubToolService{}
		// An empty keyword matches every query, including the empty one
		keywords := KeywordTable{"search_jira": {""}}
		exec := NewExecutorWithKeywords(stub, allowAllPermissions{}, keywords, common.GetLogger())

		results := exec.ExecuteApplicable(context.Background(), []models.Tool{{Name: "search_jira"}}, "", identity)

		require.Len(t, results, 1)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Error, "Invalid tool parameters")
		assert.Empty(t, stub.calls)
	})

	t.Run("failed call becomes failed execution entry", func(t *testing.T) {
		stub := &stubToolService{
			results: map[string]models.ToolCallResult{
				"search_documents": {Success: false, ToolName: "search_documents", Error: "Tool call failed: timeout"},
			},
		}
		exec := NewExecutor(stub, allowAllPermissions{}, common.GetLogger())

		results := exec.ExecuteApplicable(context.Background(), available, "find the policy", identity)

		require.Len(t, results, 1)
		assert.False(t, results[0].Success)
		assert.Nil(t, results[0].Result)
		assert.Contains(t, results[0].Error, "timeout")
	})
}
