// Package main provides the Scout MCP server.
// It exposes a Scout agent's load/ask/navigate loop as MCP tools over
// stdio, so MCP-capable clients can use Scout as their page reader.
// Stdout carries the protocol; diagnostics go to Scout's session log file
// and nowhere else.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/scout/pkg/agent"
	appconfig "github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/executor/mcp"
	"github.com/entrhq/scout/pkg/logging"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	ConfigPath  string
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("Scout MCP v%s\n", version)
		return
	}

	// Create context with signal handling. No shutdown banner: stdout
	// belongs to the protocol.
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Fatalf("Server error: %v", err)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.Provider, "provider", "", "LLM provider: 'ollama' or 'openai' (default: config file, then ollama)")
	flag.StringVar(&config.Model, "model", "", "Model name (default: config file, then provider default)")
	flag.StringVar(&config.BaseURL, "base-url", "", "Provider base URL (or set OLLAMA_HOST / OPENAI_BASE_URL env vars)")
	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to configuration file (default: ~/.scout/config.json)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Scout MCP - Research agent as an MCP stdio server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scout-mcp [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nRegister with an MCP client, e.g. in a client config:\n")
		fmt.Fprintf(os.Stderr, "  {\"command\": \"scout-mcp\", \"args\": [\"-model\", \"llama3.1\"]}\n\n")
		fmt.Fprintf(os.Stderr, "Tools: load_url, load_document, ask, list_links, current_source, reset\n")
	}

	flag.Parse()
	return config
}

// run builds the agent and serves MCP over stdio
func run(ctx context.Context, config *CLIConfig) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	provider, err := appconfig.BuildProvider(config.Provider, config.Model, config.BaseURL, config.APIKey)
	if err != nil {
		return err
	}

	ag := agent.NewDefaultAgent(provider)

	// Log to the session file only. Stderr is left alone: some clients
	// surface it to users, and stdout would corrupt the protocol.
	serverLog := log.New(io.Discard, "", log.LstdFlags)
	if fileLogger, logErr := logging.NewLogger("mcp"); logErr == nil && fileLogger.LogPath() != "" {
		serverLog = log.New(fileLogger.Writer(), "[mcp] ", log.LstdFlags|log.Lshortfile)
		defer func() { _ = fileLogger.Close() }()
	}

	server := mcp.NewServer(ag, version, mcp.WithLogger(serverLog))

	serverLog.Printf("scout-mcp v%s starting (model %s)", version, provider.GetModel())
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
