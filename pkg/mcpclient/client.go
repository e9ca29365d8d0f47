package mcpclient

import (
	"context"
	"fmt"

	"github.com/arya/tanya/internal/tracing"
	"github.com/arya/tanya/pkg/commandqueue"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// lane is the commandqueue lane serializing every request on the connection.
const lane = "mcp"

const (
	// TransportStdio launches the server as a child process over stdio
	TransportStdio = "stdio"
	// TransportSSE connects to a server-sent-events endpoint
	TransportSSE = "sse"
)

// Config describes how to reach the tool server
type Config struct {
	Transport string

	// Stdio transport
	Command string
	Args    []string
	Env     []string

	// SSE transport
	Endpoint string
}

// Session is the client session to the MCP tool server
type Session struct {
	cfg    Config
	queue  *commandqueue.CommandQueue
	logger zerolog.Logger
	client client.MCPClient
}

// NewSession creates a session. Connect must be called before use.
func NewSession(cfg Config, queue *commandqueue.CommandQueue, logger zerolog.Logger) *Session {
	queue.InitLane(lane, 1)
	return &Session{
		cfg:    cfg,
		queue:  queue,
		logger: logger,
	}
}

// Connect establishes the transport and performs the protocol handshake.
// A failure here is the one fatal error class: without a connection there is
// no session to run.
func (s *Session) Connect(ctx context.Context) error {
	switch s.cfg.Transport {
	case TransportStdio:
		s.logger.Info().
			Str("command", s.cfg.Command).
			Strs("args", s.cfg.Args).
			Msg("Launching MCP server over stdio")

		stdioClient, err := client.NewStdioMCPClient(s.cfg.Command, s.cfg.Env, s.cfg.Args...)
		if err != nil {
			return fmt.Errorf("failed to launch MCP server: %w", err)
		}
		s.client = stdioClient

	case TransportSSE:
		s.logger.Info().Str("endpoint", s.cfg.Endpoint).Msg("Connecting to MCP server over SSE")

		sseClient, err := client.NewSSEMCPClient(s.cfg.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to create SSE client: %w", err)
		}
		if err := sseClient.Start(ctx); err != nil {
			return fmt.Errorf("failed to start SSE client: %w", err)
		}
		s.client = sseClient

	default:
		return fmt.Errorf("unsupported transport: %s", s.cfg.Transport)
	}

	if err := s.initialize(ctx); err != nil {
		s.client.Close()
		s.client = nil
		return fmt.Errorf("initialization failed: %w", err)
	}

	return nil
}

// initialize performs the MCP protocol handshake
func (s *Session) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "tanya",
				Version: "0.1.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}

	result, err := s.client.Initialize(ctx, req)
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("server", result.ServerInfo.Name).
		Str("version", result.ServerInfo.Version).
		Msg("MCP session initialized")

	return nil
}

// Close shuts down the connection
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// call funnels one request through the serialized lane
func (s *Session) call(ctx context.Context, method string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if s.client == nil {
		return nil, fmt.Errorf("session is not connected")
	}

	ctx, span := tracing.StartSpan(
		ctx,
		"tanya.mcpclient",
		"mcp.request",
		attribute.String("method", method),
	)
	defer span.End()

	return s.queue.EnqueueWithContext(ctx, lane, fn)
}

// ListTools returns the server's current tool set. An empty set is valid and
// means no tools are available.
func (s *Session) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	value, err := s.call(ctx, "tools/list", func(ctx context.Context) (interface{}, error) {
		result, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return nil, err
		}
		return result.Tools, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]mcp.Tool), nil
}

// ListPrompts returns the server's prompt definitions
func (s *Session) ListPrompts(ctx context.Context) ([]mcp.Prompt, error) {
	value, err := s.call(ctx, "prompts/list", func(ctx context.Context) (interface{}, error) {
		result, err := s.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
		if err != nil {
			return nil, err
		}
		return result.Prompts, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]mcp.Prompt), nil
}

// ListResources returns the server's resource descriptors
func (s *Session) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	value, err := s.call(ctx, "resources/list", func(ctx context.Context) (interface{}, error) {
		result, err := s.client.ListResources(ctx, mcp.ListResourcesRequest{})
		if err != nil {
			return nil, err
		}
		return result.Resources, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]mcp.Resource), nil
}

// GetPrompt fetches a rendered prompt by name with bound arguments
func (s *Session) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	value, err := s.call(ctx, "prompts/get", func(ctx context.Context) (interface{}, error) {
		req := mcp.GetPromptRequest{
			Params: struct {
				Name      string            `json:"name"`
				Arguments map[string]string `json:"arguments,omitempty"`
			}{
				Name:      name,
				Arguments: args,
			},
		}
		return s.client.GetPrompt(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*mcp.GetPromptResult), nil
}

// ReadResource retrieves a resource's content blocks by URI
func (s *Session) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	value, err := s.call(ctx, "resources/read", func(ctx context.Context) (interface{}, error) {
		req := mcp.ReadResourceRequest{
			Params: struct {
				URI       string         `json:"uri"`
				Arguments map[string]any `json:"arguments,omitempty"`
			}{
				URI: uri,
			},
		}
		return s.client.ReadResource(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*mcp.ReadResourceResult), nil
}

// CallTool executes a tool on the server
func (s *Session) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	value, err := s.call(ctx, "tools/call", func(ctx context.Context) (interface{}, error) {
		req := mcp.CallToolRequest{
			Params: struct {
				Name      string    `json:"name"`
				Arguments any       `json:"arguments,omitempty"`
				Meta      *mcp.Meta `json:"_meta,omitempty"`
			}{
				Name:      name,
				Arguments: args,
			},
		}
		return s.client.CallTool(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*mcp.CallToolResult), nil
}
