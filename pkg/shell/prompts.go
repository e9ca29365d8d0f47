package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/mark3labs/mcp-go/mcp"
)

// listPrompts prints the server's prompts and their argument structure
func (sh *Shell) listPrompts(ctx context.Context) {
	prompts, err := sh.session.ListPrompts(ctx)
	if err != nil {
		fmt.Fprintf(sh.out, "Failed to list prompts: %v\n", err)
		return
	}

	if len(prompts) == 0 {
		fmt.Fprintln(sh.out, "No prompts found on the server.")
		return
	}

	fmt.Fprintln(sh.out, "\nAvailable prompts and argument structure:")
	for _, p := range prompts {
		fmt.Fprintf(sh.out, "\nPrompt: %s\n", p.Name)
		if len(p.Arguments) == 0 {
			fmt.Fprintln(sh.out, "  - No arguments required.")
			continue
		}
		for _, arg := range p.Arguments {
			fmt.Fprintf(sh.out, "  - %s\n", arg.Name)
		}
	}
	fmt.Fprintln(sh.out, "\nUse: /prompt <name> \"arg1\" \"arg2\" ...")
}

// invokePrompt parses a /prompt command, binds positional arguments to the
// prompt's declared parameters, fetches the rendered text, and feeds it
// through the orchestrator as a new user turn.
//
// Argument order must match the declared parameter order; binding is
// positional by design.
func (sh *Shell) invokePrompt(ctx context.Context, command string) {
	parts, err := shlex.Split(command)
	if err != nil {
		fmt.Fprintf(sh.out, "Could not parse command: %v\n", err)
		return
	}
	if len(parts) < 2 {
		fmt.Fprintln(sh.out, "Usage: /prompt <name> \"arg1\" \"arg2\" ...")
		return
	}

	promptName := parts[1]
	args := parts[2:]

	prompts, err := sh.session.ListPrompts(ctx)
	if err != nil {
		fmt.Fprintf(sh.out, "Prompt invocation failed: %v\n", err)
		return
	}

	var match *mcp.Prompt
	for i := range prompts {
		if prompts[i].Name == promptName {
			match = &prompts[i]
			break
		}
	}
	if match == nil {
		fmt.Fprintf(sh.out, "Prompt '%s' not found.\n", promptName)
		return
	}

	// Count mismatch is a caller-side validation error; no remote call is made.
	if len(args) != len(match.Arguments) {
		names := make([]string, 0, len(match.Arguments))
		for _, arg := range match.Arguments {
			names = append(names, arg.Name)
		}
		fmt.Fprintf(sh.out, "Expected %d arguments: %s\n", len(match.Arguments), strings.Join(names, ", "))
		return
	}

	argValues := make(map[string]string, len(args))
	for i, arg := range match.Arguments {
		argValues[arg.Name] = args[i]
	}

	result, err := sh.session.GetPrompt(ctx, promptName, argValues)
	if err != nil {
		fmt.Fprintf(sh.out, "Prompt invocation failed: %v\n", err)
		return
	}

	promptText := promptMessageText(result)
	if promptText == "" {
		fmt.Fprintf(sh.out, "Prompt '%s' returned no text content.\n", promptName)
		return
	}

	turn, err := sh.orch.Run(ctx, sh.threadID, promptText)
	if err != nil {
		fmt.Fprintf(sh.out, "Prompt invocation failed: %v\n", err)
		return
	}

	fmt.Fprintln(sh.out, "\n=== Prompt Result ===")
	fmt.Fprintln(sh.out, turn.Answer)
}

// promptMessageText returns the first text-bearing message of a rendered prompt
func promptMessageText(result *mcp.GetPromptResult) string {
	for _, msg := range result.Messages {
		if text, ok := mcp.AsTextContent(msg.Content); ok {
			return text.Text
		}
	}
	return ""
}
