package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

// Service talks to the remote tool registry over HTTP. Discovery and
// invocation both degrade instead of failing: a registry outage narrows the
// tool set to document search and individual call failures come back as
// structured results.
type Service struct {
	baseURL string
	client  *http.Client
	logger  arbor.ILogger
	audit   interfaces.AuditSink
}

// discoverResponse is the registry's tool listing payload
type discoverResponse struct {
	Tools []models.Tool `json:"tools"`
}

// callRequest is the registry's tool invocation payload. Parameters carry
// one of the models.ToolParams shapes; JSON marshalling flattens the concrete
// type into the wire object.
type callRequest struct {
	Role       string            `json:"role"`
	Parameters models.ToolParams `json:"parameters"`
}

// NewService creates a tool service against the configured registry. audit
// may be nil to disable audit emission.
func NewService(config *common.ToolsConfig, logger arbor.ILogger, audit interfaces.AuditSink) *Service {
	return &Service{
		baseURL: config.RegistryURL,
		client: &http.Client{
			Timeout: config.ToolTimeout(),
		},
		logger: logger,
		audit:  audit,
	}
}

// DiscoverTools lists the tools available to a role. Registry failures return
// the fallback tool set rather than an error.
func (s *Service) DiscoverTools(ctx context.Context, role string) []models.Tool {
	url := fmt.Sprintf("%s/tools?role=%s", s.baseURL, role)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build tool discovery request")
		return fallbackTools()
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("url", url).Msg("Tool discovery failed")
		return fallbackTools()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().Int("status", resp.StatusCode).Msg("Tool discovery returned non-OK status")
		return fallbackTools()
	}

	var payload discoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to decode tool discovery response")
		return fallbackTools()
	}

	s.logger.Info().Str("role", role).Int("tool_count", len(payload.Tools)).Msg("Discovered tools from registry")
	return payload.Tools
}

// CallTool invokes a named tool with prepared parameters. Transport and
// decode failures are converted to Success=false results, never errors.
func (s *Service) CallTool(ctx context.Context, toolName string, parameters models.ToolParams, role, userID string) models.ToolCallResult {
	start := time.Now()

	result, err := s.doCall(ctx, toolName, parameters, role)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		errMsg := fmt.Sprintf("Tool call failed: %s", err.Error())
		s.logger.Error().Err(err).Str("tool", toolName).Msg("Tool call failed")

		if s.audit != nil && userID != "" {
			s.audit.LogToolExecution(userID, toolName, fmt.Sprintf("%v", parameters), 0, elapsed, false, errMsg)
		}

		return models.ToolCallResult{
			Success:         false,
			ToolName:        toolName,
			Error:           errMsg,
			ExecutionTimeMs: elapsed,
		}
	}

	result.ToolName = toolName
	result.ExecutionTimeMs = elapsed

	if s.audit != nil && userID != "" {
		resultLen := 0
		if result.Result != nil {
			resultLen = len(fmt.Sprintf("%v", result.Result))
		}
		s.audit.LogToolExecution(userID, toolName, fmt.Sprintf("%v", parameters), resultLen, elapsed, result.Success, result.Error)
	}

	s.logger.Info().
		Str("tool", toolName).
		Bool("success", result.Success).
		Float64("execution_time_ms", elapsed).
		Msg("Tool executed")

	return *result
}

func (s *Service) doCall(ctx context.Context, toolName string, parameters models.ToolParams, role string) (*models.ToolCallResult, error) {
	body, err := json.Marshal(callRequest{Role: role, Parameters: parameters})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool parameters: %w", err)
	}

	url := fmt.Sprintf("%s/tools/%s", s.baseURL, toolName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry returned status %d: %s", resp.StatusCode, string(data))
	}

	var result models.ToolCallResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode tool response: %w", err)
	}
	return &result, nil
}

// fallbackTools is the degraded tool set used when the registry is unreachable
func fallbackTools() []models.Tool {
	return []models.Tool{
		{
			Name:        "search_documents",
			Description: "Search internal documents",
			Parameters:  map[string]interface{}{},
		},
	}
}
