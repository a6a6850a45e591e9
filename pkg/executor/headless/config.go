package headless

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// Config represents the configuration for a headless research run
type Config struct {
	// Source to load before the first prompt
	Source SourceConfig `yaml:"source" json:"source"`

	// Task selects the prompt sequence for the run
	Task TaskConfig `yaml:"task" json:"task"`

	// Scope restricts which URLs directive navigation may reach
	Scope ScopeConfig `yaml:"scope" json:"scope"`

	// Limits bound the run
	Limits LimitConfig `yaml:"limits" json:"limits"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SourceConfig identifies the source loaded at the start of the run.
// Exactly one of URL or DocumentPath must be set.
type SourceConfig struct {
	URL          string `yaml:"url" json:"url"`
	DocumentPath string `yaml:"document_path" json:"document_path"`
}

// String returns the operator-facing name of the source
func (s SourceConfig) String() string {
	if s.URL != "" {
		return s.URL
	}
	return s.DocumentPath
}

// TaskKind defines the prompt sequence a run drives through the agent
type TaskKind string

const (
	// TaskScript runs the configured prompt list in order
	TaskScript TaskKind = "script"
	// TaskSummarize runs a single main-idea-plus-bullets summary prompt
	TaskSummarize TaskKind = "summarize"
	// TaskExtract runs a single structured-JSON extraction prompt and
	// writes the parsed payload as a dated artifact
	TaskExtract TaskKind = "extract"
)

// TaskConfig defines the task for a headless run
type TaskConfig struct {
	Kind TaskKind `yaml:"kind" json:"kind"`

	// Prompts is the prompt list for script tasks
	Prompts []string `yaml:"prompts" json:"prompts"`

	// Instructions refines the built-in summarize/extract prompts. For
	// extract tasks this is where the desired JSON shape is described.
	Instructions string `yaml:"instructions" json:"instructions"`
}

// ScopeConfig defines URL scope patterns for directive navigation.
// Denied patterns take precedence; an empty allow list admits all URLs.
type ScopeConfig struct {
	AllowedPatterns []string `yaml:"allowed_patterns" json:"allowed_patterns"`
	DeniedPatterns  []string `yaml:"denied_patterns" json:"denied_patterns"`
}

// LimitConfig defines run limits. Zero disables the corresponding limit.
type LimitConfig struct {
	MaxTurns       int           `yaml:"max_turns" json:"max_turns"`
	MaxNavigations int           `yaml:"max_navigations" json:"max_navigations"`
	MaxTokens      int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Individual format flags
	JSON     bool `yaml:"json" json:"json"`
	Markdown bool `yaml:"markdown" json:"markdown"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Source.URL == "" && c.Source.DocumentPath == "" {
		return fmt.Errorf("a source url or document path is required")
	}

	if c.Source.URL != "" && c.Source.DocumentPath != "" {
		return fmt.Errorf("source url and document path are mutually exclusive")
	}

	switch c.Task.Kind {
	case TaskScript:
		if len(c.Task.Prompts) == 0 {
			return fmt.Errorf("script tasks require at least one prompt")
		}
	case TaskSummarize, TaskExtract:
		if len(c.Task.Prompts) > 0 {
			return fmt.Errorf("prompts are only used by script tasks (use 'instructions' to refine %s tasks)", c.Task.Kind)
		}
	default:
		return fmt.Errorf("invalid task kind: %s (must be 'script', 'summarize', or 'extract')", c.Task.Kind)
	}

	// Validate limits
	if c.Limits.MaxTurns < 0 {
		return fmt.Errorf("max_turns cannot be negative")
	}

	if c.Limits.MaxNavigations < 0 {
		return fmt.Errorf("max_navigations cannot be negative")
	}

	if c.Limits.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative")
	}

	if c.Limits.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	// Validate scope patterns
	for _, pattern := range c.Scope.AllowedPatterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
	}

	for _, pattern := range c.Scope.DeniedPatterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	// Validate log level
	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// DefaultConfig returns a default configuration suitable for most use cases
func DefaultConfig() *Config {
	return &Config{
		Task: TaskConfig{
			Kind: TaskSummarize,
		},
		Limits: LimitConfig{
			MaxTurns:       25,
			MaxNavigations: 8,
			MaxTokens:      200000,
			Timeout:        5 * time.Minute,
		},
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".scout/runs",
			JSON:      true,
			Markdown:  true,
		},
	}
}
