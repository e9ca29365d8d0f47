package checkpoint

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ToolCall records a tool invocation requested by the assistant
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// Message represents a single conversation turn
type Message struct {
	Role       string     `json:"role"` // user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Store persists conversation snapshots keyed by thread ID
type Store interface {
	// Load returns the latest snapshot for a thread; a missing thread yields
	// an empty history, not an error.
	Load(ctx context.Context, threadID string) ([]Message, error)

	// Save replaces the snapshot for a thread.
	Save(ctx context.Context, threadID string, messages []Message) error

	// Evict removes a thread's snapshot.
	Evict(threadID string) error

	// Threads lists thread IDs with a stored snapshot.
	Threads() ([]string, error)
}

// validateThreadID rejects thread IDs that could escape the store namespace.
func validateThreadID(threadID string) error {
	if threadID == "" {
		return fmt.Errorf("thread ID cannot be empty")
	}
	if strings.Contains(threadID, "..") {
		return fmt.Errorf("thread ID cannot contain '..'")
	}
	if strings.ContainsAny(threadID, "/\\") {
		return fmt.Errorf("thread ID cannot contain path separators")
	}
	if strings.Contains(threadID, "\x00") {
		return fmt.Errorf("thread ID cannot contain null bytes")
	}
	return nil
}

func copyMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
