package models

// Tool is a capability descriptor supplied by the remote registry. It is
// read-only reference data, re-fetched per query.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolCallResult is the normalized outcome of one registry tool invocation.
// Transport failures are converted into Success=false results, never errors.
type ToolCallResult struct {
	Success         bool        `json:"success"`
	ToolName        string      `json:"tool_name"`
	Result          interface{} `json:"result,omitempty"`
	Error           string      `json:"error,omitempty"`
	ExecutionTimeMs float64     `json:"execution_time_ms"`
}
