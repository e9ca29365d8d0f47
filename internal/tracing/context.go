package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// ThreadIDKey is the context key for the conversation thread ID
	ThreadIDKey ContextKey = "thread_id"
	// TurnIDKey is the context key for a single user turn
	TurnIDKey ContextKey = "turn_id"
)

// TraceContext holds tracing information
type TraceContext struct {
	TraceID  string
	ThreadID string
	TurnID   string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// NewTurnID generates a new turn ID
func NewTurnID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithThreadID adds a conversation thread ID to the context
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, ThreadIDKey, threadID)
}

// WithTurnID adds a turn ID to the context
func WithTurnID(ctx context.Context, turnID string) context.Context {
	return context.WithValue(ctx, TurnIDKey, turnID)
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetThreadID retrieves the thread ID from the context
func GetThreadID(ctx context.Context) string {
	if threadID, ok := ctx.Value(ThreadIDKey).(string); ok {
		return threadID
	}
	return ""
}

// GetTurnID retrieves the turn ID from the context
func GetTurnID(ctx context.Context) string {
	if turnID, ok := ctx.Value(TurnIDKey).(string); ok {
		return turnID
	}
	return ""
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:  GetTraceID(ctx),
		ThreadID: GetThreadID(ctx),
		TurnID:   GetTurnID(ctx),
	}
}

// NewTurnContext creates a context for a single user turn with fresh trace
// and turn IDs, keeping the thread ID from the parent.
func NewTurnContext(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		ctx = WithTraceID(ctx, NewTraceID())
	}
	return WithTurnID(ctx, NewTurnID())
}
