package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/arya/tanya/internal/observability"
	"github.com/arya/tanya/internal/tracing"
	"github.com/arya/tanya/pkg/checkpoint"
	"github.com/arya/tanya/pkg/commandqueue"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Orchestrator drives the reasoning/execution cycle for conversation turns
type Orchestrator struct {
	provider    ModelProvider
	tools       []ToolDescriptor
	toolsByName map[string]*ToolDescriptor
	store       checkpoint.Store
	queue       *commandqueue.CommandQueue
	logger      zerolog.Logger

	model        string
	temperature  float64
	maxTokens    int
	maxTurns     int
	maxRetries   int
	systemPrompt string
}

// Config holds orchestrator configuration
type Config struct {
	Provider ModelProvider
	Tools    []ToolDescriptor
	Store    checkpoint.Store
	Queue    *commandqueue.CommandQueue
	Logger   zerolog.Logger

	Model        string
	Temperature  float64
	MaxTokens    int
	MaxTurns     int // reasoning/execution cycles per user input
	MaxRetries   int
	SystemPrompt string
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	observability.EnsureRegistered()

	if cfg.Provider == nil {
		return nil, fmt.Errorf("model provider is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if cfg.Queue == nil {
		return nil, fmt.Errorf("command queue is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if cfg.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 10
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	byName := make(map[string]*ToolDescriptor, len(cfg.Tools))
	for i := range cfg.Tools {
		byName[cfg.Tools[i].Name] = &cfg.Tools[i]
	}

	return &Orchestrator{
		provider:     cfg.Provider,
		tools:        cfg.Tools,
		toolsByName:  byName,
		store:        cfg.Store,
		queue:        cfg.Queue,
		logger:       cfg.Logger,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    maxTokens,
		maxTurns:     maxTurns,
		maxRetries:   maxRetries,
		systemPrompt: cfg.SystemPrompt,
	}, nil
}

// Tools returns the bound tool descriptor set
func (o *Orchestrator) Tools() []ToolDescriptor {
	return o.tools
}

// Run executes one user turn for a thread: the input message is appended to
// the thread's history and the cycle runs until the model produces an answer
// without tool requests. Turns for the same thread are serialized.
func (o *Orchestrator) Run(ctx context.Context, threadID, input string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if threadID == "" {
		return Result{}, fmt.Errorf("thread ID is required")
	}
	if input == "" {
		return Result{}, fmt.Errorf("input cannot be empty")
	}

	ctx = tracing.WithThreadID(ctx, threadID)
	ctx = tracing.NewTurnContext(ctx)
	ctx, span := tracing.StartSpan(
		ctx,
		"tanya.agent",
		"agent.run",
		attribute.String("thread_id", threadID),
	)
	defer span.End()

	lane := fmt.Sprintf("thread-%s", threadID)
	start := time.Now()

	value, err := o.queue.EnqueueWithContext(ctx, lane, func(taskCtx context.Context) (interface{}, error) {
		return o.runTurn(taskCtx, threadID, input)
	})

	observability.RecordTurn(time.Since(start), err == nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	return value.(Result), nil
}

// runTurn drives the state cycle: reason, then either execute requested tools
// and reason again, or finish. The checkpoint is written only on completion.
func (o *Orchestrator) runTurn(ctx context.Context, threadID, input string) (Result, error) {
	logger := tracing.LoggerFromContext(ctx, o.logger)

	history, err := o.loadHistory(ctx, threadID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load thread history")
		return Result{}, fmt.Errorf("failed to load thread history: %w", err)
	}

	messages := append(history, Message{Role: "user", Content: input})
	allToolCalls := []ToolCall{}

	for turn := 0; turn < o.maxTurns; turn++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		outcome, err := o.reason(ctx, messages)
		if err != nil {
			return Result{}, err
		}

		switch outcome.Kind {
		case StepFinalAnswer:
			messages = append(messages, Message{Role: "assistant", Content: outcome.Answer})
			if err := o.saveHistory(ctx, threadID, messages); err != nil {
				logger.Error().Err(err).Msg("Failed to checkpoint thread")
				return Result{}, fmt.Errorf("failed to checkpoint thread: %w", err)
			}
			return Result{
				Answer:    outcome.Answer,
				ToolCalls: allToolCalls,
				Usage:     outcome.Usage,
				ThreadID:  threadID,
			}, nil

		case StepToolRequests:
			messages = append(messages, Message{
				Role:      "assistant",
				Content:   outcome.Content,
				ToolCalls: outcome.Requests,
			})

			// One tool at a time, in request order, one result message each
			for _, call := range outcome.Requests {
				result := o.execute(ctx, call)
				content := result.Output
				if result.Error != "" {
					content = result.Error
				}
				messages = append(messages, Message{
					Role:       "tool",
					Content:    content,
					ToolCallID: result.ToolCallID,
				})
			}

			allToolCalls = append(allToolCalls, outcome.Requests...)
		}
	}

	return Result{}, fmt.Errorf("could not complete: exceeded %d reasoning cycles for this input", o.maxTurns)
}

// reason invokes the model with the full history and the bound tool set,
// returning a tagged outcome.
func (o *Orchestrator) reason(ctx context.Context, messages []Message) (StepOutcome, error) {
	ctx, span := tracing.StartSpan(
		ctx,
		"tanya.agent",
		"agent.reason",
		attribute.String("provider", o.provider.Name()),
		attribute.Int("messages", len(messages)),
	)
	defer span.End()

	response, err := o.completeWithRetry(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return StepOutcome{}, err
	}

	if len(response.ToolCalls) == 0 {
		return StepOutcome{
			Kind:   StepFinalAnswer,
			Answer: response.Content,
			Usage:  response.Usage,
		}, nil
	}

	return StepOutcome{
		Kind:     StepToolRequests,
		Content:  response.Content,
		Requests: response.ToolCalls,
		Usage:    response.Usage,
	}, nil
}

// execute resolves and runs one requested tool. Failures become tool-result
// text fed back to the model, never errors that abort the turn.
func (o *Orchestrator) execute(ctx context.Context, call ToolCall) ToolResult {
	ctx, span := tracing.StartSpan(
		ctx,
		"tanya.agent",
		"agent.execute_tool",
		attribute.String("tool", call.Name),
	)
	defer span.End()

	logger := tracing.LoggerFromContext(ctx, o.logger).With().Str("tool", call.Name).Logger()
	start := time.Now()

	tool, ok := o.toolsByName[call.Name]
	if !ok {
		observability.RecordToolExecution(call.Name, time.Since(start), false)
		logger.Warn().Msg("Model requested unknown tool")
		return ToolResult{
			ToolCallID: call.ID,
			Error:      fmt.Sprintf("tool %q is not available", call.Name),
		}
	}

	if err := validateArguments(*tool, call.Arguments); err != nil {
		observability.RecordToolExecution(call.Name, time.Since(start), false)
		logger.Warn().Err(err).Msg("Tool arguments failed schema validation")
		return ToolResult{
			ToolCallID: call.ID,
			Error:      err.Error(),
		}
	}

	output, err := tool.Invoke(ctx, call.Arguments)
	duration := time.Since(start)
	observability.RecordToolExecution(call.Name, duration, err == nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Dur("duration", duration).Msg("Tool execution failed")
		return ToolResult{
			ToolCallID: call.ID,
			Error:      fmt.Sprintf("tool %s failed: %v", call.Name, err),
		}
	}

	logger.Debug().Dur("duration", duration).Msg("Tool executed")
	return ToolResult{
		ToolCallID: call.ID,
		Output:     output,
	}
}

// completeWithRetry calls the model with exponential backoff retry
func (o *Orchestrator) completeWithRetry(ctx context.Context, messages []Message) (*ModelResponse, error) {
	request := ModelRequest{
		Model:        o.model,
		Messages:     messages,
		Tools:        o.tools,
		Temperature:  o.temperature,
		MaxTokens:    o.maxTokens,
		SystemPrompt: o.systemPrompt,
	}

	logger := tracing.LoggerFromContext(ctx, o.logger)

	var lastErr error
	for attempt := 0; attempt < o.maxRetries; attempt++ {
		start := time.Now()
		response, err := o.provider.Complete(ctx, request)
		observability.RecordModelCall(o.provider.Name(), time.Since(start), err == nil)
		if err == nil {
			return response, nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			return nil, err
		}

		if attempt == o.maxRetries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s
		delay := time.Duration(1<<attempt) * time.Second
		logger.Info().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying model call after error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", o.maxRetries, lastErr)
}

// loadHistory loads the checkpointed history for a thread
func (o *Orchestrator) loadHistory(ctx context.Context, threadID string) ([]Message, error) {
	entries, err := o.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(entries))
	for _, entry := range entries {
		msg := Message{
			Role:       entry.Role,
			Content:    entry.Content,
			ToolCallID: entry.ToolCallID,
		}
		for _, tc := range entry.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// saveHistory checkpoints the full conversation under its thread ID
func (o *Orchestrator) saveHistory(ctx context.Context, threadID string, messages []Message) error {
	now := time.Now()
	entries := make([]checkpoint.Message, 0, len(messages))
	for _, msg := range messages {
		entry := checkpoint.Message{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Timestamp:  now,
		}
		for _, tc := range msg.ToolCalls {
			entry.ToolCalls = append(entry.ToolCalls, checkpoint.ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})
		}
		entries = append(entries, entry)
	}
	return o.store.Save(ctx, threadID, entries)
}
