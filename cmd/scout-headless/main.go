// Package main provides the Scout headless runner for scripted research.
// It loads a source, drives a configured prompt sequence through the agent
// without any interactive input, and writes run artifacts. The process exit
// code reflects the run status, which makes it usable from cron jobs and CI
// pipelines.
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
	appconfig "github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/executor/headless"
	"github.com/entrhq/scout/pkg/security/urlscope"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	ConfigFile   string
	SourceURL    string
	DocumentPath string
	Task         string
	Instructions string
	OutputDir    string
	Timeout      time.Duration
	ShowVersion  bool
}

func main() {
	// Parse command line flags
	config := parseFlags()

	// Show version if requested
	if config.ShowVersion {
		fmt.Printf("Scout Headless v%s\n", version)
		return
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	// Run the headless executor
	if err := run(ctx, config); err != nil {
		cancel() // Cancel context before exiting
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel() // Clean up context on success
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.Provider, "provider", "", "LLM provider: 'ollama' or 'openai' (default: config file, then ollama)")
	flag.StringVar(&config.Model, "model", "", "Model name (default: config file, then provider default)")
	flag.StringVar(&config.BaseURL, "base-url", "", "Provider base URL (or set OLLAMA_HOST / OPENAI_BASE_URL env vars)")
	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to run configuration file (YAML)")
	flag.StringVar(&config.SourceURL, "url", "", "Source URL (required if no config file, mutually exclusive with -document)")
	flag.StringVar(&config.DocumentPath, "document", "", "Source document path (required if no config file, mutually exclusive with -url)")
	flag.StringVar(&config.Task, "task", "summarize", "Task kind for inline runs: summarize or extract (script tasks need a config file)")
	flag.StringVar(&config.Instructions, "instructions", "", "Extra instructions refining the task prompt")
	flag.StringVar(&config.OutputDir, "output", "", "Artifact output directory (overrides config file)")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Run timeout (overrides config file, 0 keeps the configured value)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Scout Headless - Scripted research runs for cron and CI\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scout-headless [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Summarize a page inline\n")
		fmt.Fprintf(os.Stderr, "  scout-headless -url https://example.com/changelog\n\n")
		fmt.Fprintf(os.Stderr, "  # Extract structured JSON from a page\n")
		fmt.Fprintf(os.Stderr, "  scout-headless -url https://example.com/releases -task extract \\\n")
		fmt.Fprintf(os.Stderr, "      -instructions \"one object with 'version' and 'date' fields\"\n\n")
		fmt.Fprintf(os.Stderr, "  # Run a scripted prompt sequence from a config file\n")
		fmt.Fprintf(os.Stderr, "  scout-headless -config run.yaml\n\n")
		fmt.Fprintf(os.Stderr, "  # Summarize a local document\n")
		fmt.Fprintf(os.Stderr, "  scout-headless -document report.pdf\n\n")
		fmt.Fprintf(os.Stderr, "The exit code is 0 when the run succeeds (including partial success\n")
		fmt.Fprintf(os.Stderr, "with some answered prompts) and 1 when it fails outright.\n")
	}

	flag.Parse()
	return config
}

// run executes the headless mode
func run(ctx context.Context, cliConfig *CLIConfig) error {
	// Load or create execution configuration
	execConfig, err := loadConfig(cliConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate configuration
	if validationErr := execConfig.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	// Initialize global configuration
	if initErr := appconfig.Initialize(""); initErr != nil {
		return fmt.Errorf("failed to initialize configuration: %w", initErr)
	}

	// Create LLM provider (CLI flags > environment > config file > defaults)
	provider, err := appconfig.BuildProvider(cliConfig.Provider, cliConfig.Model, cliConfig.BaseURL, cliConfig.APIKey)
	if err != nil {
		return err
	}

	// Build agent options, adding a scope guard when patterns are configured
	agentOpts := []agent.AgentOption{}
	if len(execConfig.Scope.AllowedPatterns) > 0 || len(execConfig.Scope.DeniedPatterns) > 0 {
		guard, guardErr := urlscope.NewGuard(execConfig.Scope.AllowedPatterns, execConfig.Scope.DeniedPatterns)
		if guardErr != nil {
			return fmt.Errorf("failed to create scope guard: %w", guardErr)
		}
		agentOpts = append(agentOpts, agent.WithScopeGuard(guard))
	}

	ag := agent.NewDefaultAgent(provider, agentOpts...)

	// Create headless executor with configured agent
	executor, err := headless.NewExecutor(ag, execConfig)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	// Run execution; the run timeout from Limits is applied inside Run
	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	return nil
}

// loadConfig loads execution configuration from file or CLI arguments
func loadConfig(cliConfig *CLIConfig) (*headless.Config, error) {
	var config *headless.Config

	if cliConfig.ConfigFile != "" {
		loaded, err := loadConfigFromFile(cliConfig.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		// Inline run: source and task come from flags
		if cliConfig.SourceURL == "" && cliConfig.DocumentPath == "" {
			return nil, fmt.Errorf("a source is required: use -url, -document, or -config")
		}

		config = headless.DefaultConfig()
		config.Source.URL = cliConfig.SourceURL
		config.Source.DocumentPath = cliConfig.DocumentPath

		switch cliConfig.Task {
		case "summarize":
			config.Task.Kind = headless.TaskSummarize
		case "extract":
			config.Task.Kind = headless.TaskExtract
		case "script":
			return nil, fmt.Errorf("script tasks need a prompt list: use -config with a 'prompts' section")
		default:
			return nil, fmt.Errorf("invalid task kind: %s (must be 'summarize' or 'extract')", cliConfig.Task)
		}
	}

	// CLI overrides apply on top of either source
	if cliConfig.Instructions != "" {
		config.Task.Instructions = cliConfig.Instructions
	}
	if cliConfig.OutputDir != "" {
		config.Artifacts.OutputDir = cliConfig.OutputDir
	}
	if cliConfig.Timeout > 0 {
		config.Limits.Timeout = cliConfig.Timeout
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a YAML file
func loadConfigFromFile(path string) (*headless.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := headless.DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
