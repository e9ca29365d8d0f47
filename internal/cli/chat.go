package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arya/tanya/internal/config"
	"github.com/arya/tanya/internal/logger"
	"github.com/arya/tanya/internal/observability"
	"github.com/arya/tanya/internal/tracing"
	"github.com/arya/tanya/pkg/agent"
	"github.com/arya/tanya/pkg/checkpoint"
	"github.com/arya/tanya/pkg/commandqueue"
	"github.com/arya/tanya/pkg/mcpclient"
	"github.com/arya/tanya/pkg/shell"
)

var (
	threadID    string
	metricsAddr string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session with the MCP tool server",
	Long: `Connect to the configured MCP tool server, bind its tools to the
language model, and start the interactive loop.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	rootCmd.PersistentFlags().StringVar(&threadID, "thread", "wiki-session", "conversation thread ID")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	appLogger, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()
	zl := appLogger.Zerolog()

	if err := tracing.InitOpenTelemetry("tanya"); err != nil {
		zl.Warn().Err(err).Msg("OpenTelemetry initialization failed, continuing without tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.ShutdownOpenTelemetry(shutdownCtx); err != nil {
			zl.Warn().Err(err).Msg("OpenTelemetry shutdown failed")
		}
	}()

	if metricsAddr != "" {
		observability.EnsureRegistered()
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.MetricsHandler())
		go func() {
			zl.Info().Str("addr", metricsAddr).Msg("Serving metrics")
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				zl.Warn().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := commandqueue.New()
	defer queue.Close()

	var store checkpoint.Store
	if cfg.History.Dir != "" {
		fileStore, err := checkpoint.NewFileStore(cfg.History.Dir)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		store = fileStore
	} else {
		store = checkpoint.NewMemoryStore()
	}

	session := mcpclient.NewSession(mcpclient.Config{
		Transport: cfg.Server.Transport,
		Command:   cfg.Server.Command,
		Args:      cfg.Server.Args,
		Env:       os.Environ(),
		Endpoint:  cfg.Server.Endpoint,
	}, queue, zl)

	// No connection, no session: this is the one startup error worth dying for.
	if err := session.Connect(ctx); err != nil {
		return fmt.Errorf("could not connect to MCP server: %w", err)
	}
	defer session.Close()

	tools, err := session.BindTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to load server tools: %w", err)
	}
	zl.Info().Int("tools", len(tools)).Msg("Bound server tools")

	providerName, apiKey, model := resolveModel(cfg)
	if providerName == "" {
		return fmt.Errorf("no model provider configured; set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GOOGLE_API_KEY")
	}

	factory := &agent.ProviderFactory{}
	provider, err := factory.NewProvider(agent.ProviderConfig{
		Provider: providerName,
		APIKey:   apiKey,
		BaseURL:  cfg.Model.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}
	zl.Info().Str("provider", providerName).Str("model", model).Msg("Model provider ready")

	orch, err := agent.NewOrchestrator(agent.Config{
		Provider:     provider,
		Tools:        tools,
		Store:        store,
		Queue:        queue,
		Logger:       zl,
		Model:        model,
		Temperature:  cfg.Model.Temperature,
		MaxTokens:    cfg.Model.MaxTokens,
		MaxTurns:     cfg.Model.MaxTurns,
		MaxRetries:   cfg.Model.MaxRetries,
		SystemPrompt: cfg.Model.SystemPrompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	sh, err := shell.New(shell.Config{
		Session:  session,
		Orch:     orch,
		ThreadID: threadID,
		Logger:   zl,
	})
	if err != nil {
		return fmt.Errorf("failed to create shell: %w", err)
	}

	return sh.Run(ctx)
}

// resolveModel picks the provider, API key, and model name. An explicit
// model.provider in the config wins; otherwise the first provider with a key
// is used, in the order anthropic, openai, gemini.
func resolveModel(cfg *config.Config) (providerName, apiKey, model string) {
	providerName = cfg.Model.Provider
	if providerName == "" {
		switch {
		case cfg.Auth.AnthropicAPIKey != "":
			providerName = "anthropic"
		case cfg.Auth.OpenAIAPIKey != "":
			providerName = "openai"
		case cfg.Auth.GoogleAPIKey != "":
			providerName = "gemini"
		default:
			return "", "", ""
		}
	}

	switch providerName {
	case "anthropic":
		apiKey = cfg.Auth.AnthropicAPIKey
		model = "claude-sonnet-4-20250514"
	case "openai":
		apiKey = cfg.Auth.OpenAIAPIKey
		model = "gpt-4-turbo"
	case "gemini":
		apiKey = cfg.Auth.GoogleAPIKey
		model = "gemini-2.0-flash"
	}

	if cfg.Model.Name != "" {
		model = cfg.Model.Name
	}
	return providerName, apiKey, model
}
