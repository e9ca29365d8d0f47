package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arya/tanya/pkg/agent"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// SessionAPI is the slice of the MCP session the shell needs
type SessionAPI interface {
	ListPrompts(ctx context.Context) ([]mcp.Prompt, error)
	ListResources(ctx context.Context) ([]mcp.Resource, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error)
	ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error)
}

// Converser runs one conversational turn
type Converser interface {
	Run(ctx context.Context, threadID, input string) (agent.Result, error)
}

// Shell is the interactive command loop
type Shell struct {
	session  SessionAPI
	orch     Converser
	threadID string
	logger   zerolog.Logger
	out      io.Writer

	// Resolution state for /resource: rebuilt on every /resources listing,
	// valid only until the next one.
	lastResources []mcp.Resource
	resourceIndex map[string]string // 1-based position -> resource name
}

// Config holds shell configuration
type Config struct {
	Session  SessionAPI
	Orch     Converser
	ThreadID string
	Logger   zerolog.Logger
	Out      io.Writer
}

// New creates a shell
func New(cfg Config) (*Shell, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if cfg.Orch == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}

	threadID := cfg.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	return &Shell{
		session:       cfg.Session,
		orch:          cfg.Orch,
		threadID:      threadID,
		logger:        cfg.Logger,
		out:           out,
		resourceIndex: map[string]string{},
	}, nil
}

// ThreadID returns the active conversation thread ID
func (sh *Shell) ThreadID() string {
	return sh.threadID
}

// Run reads and dispatches input until the user exits
func (sh *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".tanya_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	sh.banner()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if done := sh.Dispatch(ctx, line); done {
			return nil
		}
	}
}

// Dispatch handles one line of input. It returns true when the user asked to
// exit. Command errors are printed, never propagated.
func (sh *Shell) Dispatch(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	}

	// /prompts must match before /prompt
	switch {
	case strings.HasPrefix(input, "/prompts"):
		sh.listPrompts(ctx)
	case strings.HasPrefix(input, "/prompt"):
		sh.invokePrompt(ctx, input)
	case strings.HasPrefix(input, "/resources"):
		sh.listResources(ctx)
	case strings.HasPrefix(input, "/resource"):
		sh.readResource(ctx, input)
	default:
		sh.converse(ctx, input)
	}

	return false
}

// converse runs an ordinary conversational turn
func (sh *Shell) converse(ctx context.Context, input string) {
	result, err := sh.orch.Run(ctx, sh.threadID, input)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "AI: %s\n", result.Answer)
}

func (sh *Shell) banner() {
	fmt.Fprintln(sh.out, "Tanya is ready.")
	fmt.Fprintln(sh.out, "Type a question or use the following commands:")
	fmt.Fprintln(sh.out, "  /prompts                 - list available prompts")
	fmt.Fprintln(sh.out, "  /prompt <name> \"args\"    - run a specific prompt")
	fmt.Fprintln(sh.out, "  /resources               - list available resources")
	fmt.Fprintln(sh.out, "  /resource <name|index>   - read a specific resource")
	fmt.Fprintln(sh.out, "  exit                     - quit")
}
