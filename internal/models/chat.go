package models

import (
	"time"
)

// QueryRequest is an inbound assistant query. Immutable once received.
type QueryRequest struct {
	Query          string `json:"query" validate:"required,min=1,max=10000"`
	ConversationID string `json:"conversation_id,omitempty"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
	MaxTokens      int    `json:"max_tokens,omitempty" validate:"omitempty,gte=100,lte=4000"`
}

// WantsSources reports whether source references were requested. Unset
// defaults to true.
func (r QueryRequest) WantsSources() bool {
	return r.IncludeSources == nil || *r.IncludeSources
}

// QueryResponse is the fully assembled answer returned to the caller.
type QueryResponse struct {
	Answer           string            `json:"answer"`
	ConversationID   string            `json:"conversation_id"`
	Sources          []SourceReference `json:"sources"`
	ToolsUsed        []ToolExecution   `json:"tools_used"`
	ProcessingTimeMs float64           `json:"processing_time_ms"`
	ModelUsed        string            `json:"model_used"`
	Timestamp        time.Time         `json:"timestamp"`
}

// ToolExecution records a single tool invocation attempt. Immutable after
// creation; appended to the conversation context and echoed in the response.
type ToolExecution struct {
	ToolName        string      `json:"tool_name"`
	Success         bool        `json:"success"`
	Result          interface{} `json:"result,omitempty"`
	Error           string      `json:"error,omitempty"`
	ExecutionTimeMs float64     `json:"execution_time_ms"`
}

// SourceReference points at a retrieved document backing part of an answer.
type SourceReference struct {
	Title          string  `json:"title"`
	ContentSnippet string  `json:"content_snippet"`
	SourceType     string  `json:"source_type"` // "document", "database", "github", "jira"
	URL            string  `json:"url,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Message is a single turn in a conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content contains the text content of the message
	Content string `json:"content"`
}

// ConversationContext holds the durable multi-turn state for one dialogue
// thread. Messages are append-only and insertion-ordered. The orchestrator
// works on a transient copy per request and writes it back atomically.
type ConversationContext struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []Message         `json:"messages"`
	ToolsUsed      []ToolExecution   `json:"tools_used"`
	Sources        []SourceReference `json:"sources"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewConversationContext creates an empty context for the given ID
func NewConversationContext(conversationID string) *ConversationContext {
	now := time.Now().UTC()
	return &ConversationContext{
		ConversationID: conversationID,
		Messages:       []Message{},
		ToolsUsed:      []ToolExecution{},
		Sources:        []SourceReference{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AppendMessage appends a message and touches the update timestamp
func (c *ConversationContext) AppendMessage(role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
	c.UpdatedAt = time.Now().UTC()
}

// LastMessages returns up to n messages from the tail, preserving order
func (c *ConversationContext) LastMessages(n int) []Message {
	if n <= 0 || len(c.Messages) == 0 {
		return nil
	}
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
