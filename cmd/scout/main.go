// Package main provides the Scout terminal research agent.
// Scout loads a web page or document into the model's context and lets you
// interrogate it in a chat loop, following links the model asks to visit
// along the way. It runs as a full-screen TUI by default or as a plain
// line-based REPL with -plain.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/agent/prompts"
	appconfig "github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/executor/cli"
	"github.com/entrhq/scout/pkg/executor/tui"
	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/loader"
)

const version = "0.1.0" // Version of the Scout research agent

// Config holds the application configuration
type Config struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	ConfigPath   string
	Instructions string
	TextBudget   int
	MaxLinks     int
	FetchTimeout time.Duration
	Plain        bool
	Verbose      bool
	ShowVersion  bool
}

func main() {
	// Parse command line flags
	config := parseFlags()

	// Show version if requested
	if config.ShowVersion {
		fmt.Printf("Scout v%s\n", version)
		return
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	// Run the application
	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
}

// parseFlags parses command line flags and environment variables
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Provider, "provider", "", "LLM provider: 'ollama' or 'openai' (default: config file, then ollama)")
	flag.StringVar(&config.Model, "model", "", "Model name (default: config file, then provider default)")
	flag.StringVar(&config.BaseURL, "base-url", "", "Provider base URL (or set OLLAMA_HOST / OPENAI_BASE_URL env vars)")
	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to configuration file (default: ~/.scout/config.json)")
	flag.StringVar(&config.Instructions, "prompt", "", "Custom instructions for the agent (optional, overrides default)")
	flag.IntVar(&config.TextBudget, "text-budget", loader.DefaultTextBudget, "Character cap applied to extracted source text")
	flag.IntVar(&config.MaxLinks, "max-links", prompts.DefaultMaxLinks, "Maximum links surfaced to the model per prompt")
	flag.DurationVar(&config.FetchTimeout, "fetch-timeout", loader.DefaultFetchTimeout, "Timeout for a single page or document fetch")
	flag.BoolVar(&config.Plain, "plain", false, "Run the plain line-based REPL instead of the TUI")
	flag.BoolVar(&config.Verbose, "verbose", false, "Show raw navigation directives and token usage (plain mode)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Scout - Terminal research agent for web pages and documents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scout [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OLLAMA_HOST        Ollama server URL (default: http://localhost:11434)\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # TUI Mode (default)\n")
		fmt.Fprintf(os.Stderr, "  scout                                    # Local Ollama, default model\n")
		fmt.Fprintf(os.Stderr, "  scout -model llama3.1\n")
		fmt.Fprintf(os.Stderr, "  scout -provider openai -model gpt-4o-mini\n")
		fmt.Fprintf(os.Stderr, "  scout -provider openai -base-url https://openrouter.ai/api/v1\n")
		fmt.Fprintf(os.Stderr, "\n  # Plain REPL (pipes, ssh, screen readers)\n")
		fmt.Fprintf(os.Stderr, "  scout -plain\n")
		fmt.Fprintf(os.Stderr, "  scout -plain -verbose\n")
		fmt.Fprintf(os.Stderr, "\nOnce running, load a source with /load <url> or /open <path>.\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	if c.TextBudget <= 0 {
		return fmt.Errorf("text budget must be positive, got %d", c.TextBudget)
	}

	if c.MaxLinks <= 0 {
		return fmt.Errorf("max links must be positive, got %d", c.MaxLinks)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}

	return nil
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	// Initialize global configuration (persisted provider/model settings)
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	provider, err := appconfig.BuildProvider(config.Provider, config.Model, config.BaseURL, config.APIKey)
	if err != nil {
		return err
	}

	// Create the resource loader with the configured budget and fetch timeout
	ld := loader.New(
		loader.WithTextBudget(config.TextBudget),
		loader.WithFetcher(loader.NewFetcher(loader.WithTimeout(config.FetchTimeout))),
	)

	// Create agent with the loader and link cap
	agentOpts := []agent.AgentOption{
		agent.WithLoader(ld),
		agent.WithMaxLinks(config.MaxLinks),
	}
	if config.Instructions != "" {
		agentOpts = append(agentOpts, agent.WithCustomInstructions(config.Instructions))
	}

	ag := agent.NewDefaultAgent(provider, agentOpts...)

	// Plain REPL mode for pipes and terminals without alt-screen support
	if config.Plain {
		return runPlain(ctx, ag, provider, config.Verbose)
	}

	return runTUI(ctx, ag, provider)
}

// runTUI executes the full-screen TUI mode
func runTUI(ctx context.Context, ag agent.Agent, provider llm.Provider) error {
	executor := tui.NewExecutor(ag, provider, "scout")

	// Display welcome message
	fmt.Printf("Scout v%s - Research Agent\n", version)
	fmt.Printf("Model: %s\n", provider.GetModel())
	fmt.Println("\nStarting TUI...")
	fmt.Println()

	// Run the executor
	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}

	return nil
}

// runPlain executes the line-based REPL mode
func runPlain(ctx context.Context, ag agent.Agent, provider llm.Provider, verbose bool) error {
	executor := cli.NewExecutor(ag,
		cli.WithShowDirectives(verbose),
		cli.WithShowUsage(verbose),
	)

	fmt.Printf("Scout v%s - Research Agent (plain mode)\n", version)
	fmt.Printf("Model: %s\n", provider.GetModel())

	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}

	return nil
}
