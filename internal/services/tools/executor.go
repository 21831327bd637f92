package tools

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

// Executor fans applicable tool calls out concurrently and collects their
// results in discovery order, so responses stay deterministic regardless of
// per-call latency.
type Executor struct {
	tools       interfaces.ToolService
	permissions interfaces.PermissionService
	keywords    KeywordTable
	logger      arbor.ILogger
}

// NewExecutor creates an executor over the given tool and permission services
// using the default applicability table
func NewExecutor(tools interfaces.ToolService, permissions interfaces.PermissionService, logger arbor.ILogger) *Executor {
	return NewExecutorWithKeywords(tools, permissions, DefaultKeywords(), logger)
}

// NewExecutorWithKeywords creates an executor with a caller-supplied
// applicability table
func NewExecutorWithKeywords(tools interfaces.ToolService, permissions interfaces.PermissionService, keywords KeywordTable, logger arbor.ILogger) *Executor {
	return &Executor{
		tools:       tools,
		permissions: permissions,
		keywords:    keywords,
		logger:      logger,
	}
}

// ExecuteApplicable selects the tools applicable to the query that the
// identity is permitted to use, invokes them concurrently, and returns their
// executions in the order the tools were discovered. Failed calls appear as
// Success=false entries; they never abort the batch.
func (e *Executor) ExecuteApplicable(ctx context.Context, available []models.Tool, query string, identity models.Identity) []models.ToolExecution {
	type job struct {
		tool   models.Tool
		params models.ToolParams
	}

	var jobs []job
	for _, tool := range available {
		if !e.keywords.ShouldUse(tool.Name, query) {
			continue
		}
		if !e.permissions.CheckAndLogTool(identity.UserID, identity.RoleOrDefault(), tool.Name) {
			continue
		}
		jobs = append(jobs, job{tool: tool, params: PrepareParams(tool.Name, query, identity)})
	}

	if len(jobs) == 0 {
		return nil
	}

	executions := make([]models.ToolExecution, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(slot int, tool models.Tool, params models.ToolParams) {
			defer wg.Done()

			if err := params.Validate(); err != nil {
				e.logger.Warn().Err(err).Str("tool", tool.Name).Msg("Invalid tool parameters, skipping call")
				executions[slot] = models.ToolExecution{
					ToolName: tool.Name,
					Success:  false,
					Error:    "Invalid tool parameters: " + err.Error(),
				}
				return
			}

			result := e.tools.CallTool(ctx, tool.Name, params, identity.RoleOrDefault(), identity.UserID)

			exec := models.ToolExecution{
				ToolName:        tool.Name,
				Success:         result.Success,
				Error:           result.Error,
				ExecutionTimeMs: result.ExecutionTimeMs,
			}
			if result.Success {
				exec.Result = result.Result
			}
			executions[slot] = exec
		}(i, j.tool, j.params)
	}
	wg.Wait()

	e.logger.Debug().
		Int("selected", len(jobs)).
		Int("available", len(available)).
		Msg("Tool fan-out complete")

	return executions
}
