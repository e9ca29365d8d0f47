package agent

import (
	"context"
	"strings"
)

// Message represents a message in the conversation
type Message struct {
	Role       string     `json:"role"` // user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall represents a tool invocation requested by the model
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResult represents the result of a tool execution
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ToolDescriptor is a named, schema-described callable the model may request.
// The set is loaded once at startup and shared read-only afterwards.
type ToolDescriptor struct {
	Name        string
	Description string

	// InputSchema is a JSON-schema object ("type", "properties", "required")
	// passed to the model and used to validate model-supplied arguments.
	InputSchema map[string]interface{}

	// Invoke executes the tool and returns its textual output.
	Invoke func(ctx context.Context, args map[string]interface{}) (string, error)
}

// StepKind tags the outcome of one reasoning step
type StepKind int

const (
	// StepFinalAnswer means the assistant produced an answer with no tool requests
	StepFinalAnswer StepKind = iota
	// StepToolRequests means the assistant requested one or more tool invocations
	StepToolRequests
)

// StepOutcome is the tagged result of a reasoning step. Routing dispatches on
// Kind rather than inspecting message content.
type StepOutcome struct {
	Kind     StepKind
	Answer   string     // set for StepFinalAnswer
	Content  string     // assistant text accompanying tool requests, may be empty
	Requests []ToolCall // set for StepToolRequests
	Usage    *TokenUsage
}

// Result contains the output of one orchestrated user turn
type Result struct {
	Answer    string      `json:"answer"`
	ToolCalls []ToolCall  `json:"tool_calls,omitempty"`
	Usage     *TokenUsage `json:"usage,omitempty"`
	ThreadID  string      `json:"thread_id"`
}

// IsRetryableError checks if a model call error should be retried
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()

	// Network errors
	if strings.Contains(errMsg, "ECONNRESET") || strings.Contains(errMsg, "ETIMEDOUT") ||
		strings.Contains(errMsg, "connection reset") {
		return true
	}

	// Rate limits
	if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "rate limit") {
		return true
	}

	// Server errors
	if strings.Contains(errMsg, "500") || strings.Contains(errMsg, "502") ||
		strings.Contains(errMsg, "503") || strings.Contains(errMsg, "504") {
		return true
	}

	return false
}
