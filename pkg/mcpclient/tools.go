package mcpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/arya/tanya/pkg/agent"
	"github.com/mark3labs/mcp-go/mcp"
)

// BindTools loads the server's tool listing and converts each tool into an
// agent descriptor whose Invoke routes back through this session. The
// returned set is fixed for the session; an empty set is valid.
func (s *Session) BindTools(ctx context.Context) ([]agent.ToolDescriptor, error) {
	tools, err := s.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	descriptors := make([]agent.ToolDescriptor, 0, len(tools))
	for _, tool := range tools {
		name := tool.Name
		descriptors = append(descriptors, agent.ToolDescriptor{
			Name:        name,
			Description: tool.Description,
			InputSchema: schemaToMap(tool.InputSchema),
			Invoke: func(ctx context.Context, args map[string]interface{}) (string, error) {
				result, err := s.CallTool(ctx, name, args)
				if err != nil {
					return "", err
				}
				text := resultText(result.Content)
				if result.IsError {
					if text == "" {
						text = "tool reported an error"
					}
					return "", fmt.Errorf("%s", text)
				}
				return text, nil
			},
		})
	}

	return descriptors, nil
}

// schemaToMap converts an MCP input schema into the plain JSON-schema object
// the model providers and the argument validator consume.
func schemaToMap(schema mcp.ToolInputSchema) map[string]interface{} {
	out := map[string]interface{}{
		"type": schema.Type,
	}
	if out["type"] == "" {
		out["type"] = "object"
	}
	if schema.Properties != nil {
		out["properties"] = schema.Properties
	} else {
		out["properties"] = map[string]interface{}{}
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}

// resultText concatenates the text blocks of a tool result, skipping
// non-text content.
func resultText(content []mcp.Content) string {
	var parts []string
	for _, block := range content {
		if text, ok := mcp.AsTextContent(block); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
