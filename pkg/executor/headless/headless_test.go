package headless

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid url summarize config",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com/article"},
				Task:   TaskConfig{Kind: TaskSummarize},
				Limits: LimitConfig{
					MaxTurns: 10,
					Timeout:  5 * time.Minute,
				},
			},
			wantErr: false,
		},
		{
			name: "valid document script config",
			config: &Config{
				Source: SourceConfig{DocumentPath: "report.pdf"},
				Task: TaskConfig{
					Kind:    TaskScript,
					Prompts: []string{"Who wrote this?"},
				},
			},
			wantErr: false,
		},
		{
			name: "missing source",
			config: &Config{
				Task: TaskConfig{Kind: TaskSummarize},
			},
			wantErr: true,
		},
		{
			name: "url and document are mutually exclusive",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com", DocumentPath: "report.pdf"},
				Task:   TaskConfig{Kind: TaskSummarize},
			},
			wantErr: true,
		},
		{
			name: "invalid task kind",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com"},
				Task:   TaskConfig{Kind: "transcribe"},
			},
			wantErr: true,
		},
		{
			name: "script without prompts",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com"},
				Task:   TaskConfig{Kind: TaskScript},
			},
			wantErr: true,
		},
		{
			name: "summarize with prompts",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com"},
				Task: TaskConfig{
					Kind:    TaskSummarize,
					Prompts: []string{"ignored"},
				},
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com"},
				Task:   TaskConfig{Kind: TaskSummarize},
				Limits: LimitConfig{Timeout: -1 * time.Minute},
			},
			wantErr: true,
		},
		{
			name: "negative max turns",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com"},
				Task:   TaskConfig{Kind: TaskSummarize},
				Limits: LimitConfig{MaxTurns: -1},
			},
			wantErr: true,
		},
		{
			name: "bad scope pattern",
			config: &Config{
				Source: SourceConfig{URL: "https://example.com"},
				Task:   TaskConfig{Kind: TaskSummarize},
				Scope:  ScopeConfig{DeniedPatterns: []string{"[unterminated"}},
			},
			wantErr: true,
		},
		{
			name: "invalid verbosity",
			config: &Config{
				Source:  SourceConfig{URL: "https://example.com"},
				Task:    TaskConfig{Kind: TaskSummarize},
				Logging: LoggingConfig{Verbosity: "loud"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_DefaultsVerbosity(t *testing.T) {
	config := &Config{
		Source: SourceConfig{URL: "https://example.com"},
		Task:   TaskConfig{Kind: TaskSummarize},
	}

	if err := config.Validate(); err != nil {
		t.Fatalf("Config.Validate() error = %v", err)
	}

	if config.Logging.Verbosity != "normal" {
		t.Errorf("Validate() verbosity = %q, want %q", config.Logging.Verbosity, "normal")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Task.Kind != TaskSummarize {
		t.Errorf("DefaultConfig() task kind = %v, want %v", config.Task.Kind, TaskSummarize)
	}

	if config.Limits.MaxNavigations != 8 {
		t.Errorf("DefaultConfig() max_navigations = %v, want 8", config.Limits.MaxNavigations)
	}

	if config.Limits.Timeout != 5*time.Minute {
		t.Errorf("DefaultConfig() timeout = %v, want 5m", config.Limits.Timeout)
	}

	if !config.Artifacts.Enabled {
		t.Error("DefaultConfig() should enable artifacts")
	}

	// Default config still needs a source before it validates
	if err := config.Validate(); err == nil {
		t.Error("DefaultConfig() should not validate without a source")
	}
}

func TestSourceConfig_String(t *testing.T) {
	url := SourceConfig{URL: "https://example.com/a"}
	if got := url.String(); got != "https://example.com/a" {
		t.Errorf("String() = %q, want url", got)
	}

	doc := SourceConfig{DocumentPath: "/data/report.pdf"}
	if got := doc.String(); got != "/data/report.pdf" {
		t.Errorf("String() = %q, want document path", got)
	}
}

func TestRunLimiter_Turns(t *testing.T) {
	rl := NewRunLimiter(LimitConfig{MaxTurns: 2})

	if err := rl.RecordTurn(); err != nil {
		t.Errorf("RecordTurn() error = %v", err)
	}
	if err := rl.RecordTurn(); err != nil {
		t.Errorf("RecordTurn() error = %v", err)
	}

	// Third turn should exceed the limit
	err := rl.RecordTurn()
	if err == nil {
		t.Fatal("RecordTurn() should fail when max_turns exceeded")
	}

	var violation *LimitViolation
	if !errors.As(err, &violation) {
		t.Fatalf("RecordTurn() error type = %T, want *LimitViolation", err)
	}
	if violation.Type != ViolationTurnCount {
		t.Errorf("violation type = %v, want %v", violation.Type, ViolationTurnCount)
	}

	// The rejected turn is not counted
	if state := rl.GetCurrentState(); state.TurnsTaken != 2 {
		t.Errorf("TurnsTaken = %v, want 2", state.TurnsTaken)
	}
}

func TestRunLimiter_Navigations(t *testing.T) {
	rl := NewRunLimiter(LimitConfig{MaxNavigations: 1})

	if err := rl.RecordNavigation("https://example.com/next"); err != nil {
		t.Errorf("RecordNavigation() error = %v", err)
	}

	err := rl.RecordNavigation("https://example.com/again")
	if err == nil {
		t.Fatal("RecordNavigation() should fail when max_navigations exceeded")
	}

	var violation *LimitViolation
	if !errors.As(err, &violation) {
		t.Fatalf("RecordNavigation() error type = %T, want *LimitViolation", err)
	}
	if violation.Type != ViolationNavigationCount {
		t.Errorf("violation type = %v, want %v", violation.Type, ViolationNavigationCount)
	}

	// The navigation happened before the check, so both are counted
	if state := rl.GetCurrentState(); state.Navigations != 2 {
		t.Errorf("Navigations = %v, want 2", state.Navigations)
	}
}

func TestRunLimiter_TokenUsage(t *testing.T) {
	rl := NewRunLimiter(LimitConfig{MaxTokens: 100})

	// Record token usage within limit
	if err := rl.RecordTokenUsage(50); err != nil {
		t.Errorf("RecordTokenUsage() error = %v", err)
	}

	// Record more tokens
	if err := rl.RecordTokenUsage(40); err != nil {
		t.Errorf("RecordTokenUsage() error = %v", err)
	}

	// Exceed limit
	if err := rl.RecordTokenUsage(20); err == nil {
		t.Error("RecordTokenUsage() should fail when max_tokens exceeded")
	}
}

func TestRunLimiter_Timeout(t *testing.T) {
	rl := NewRunLimiter(LimitConfig{Timeout: 100 * time.Millisecond})

	// Should not timeout immediately
	if err := rl.CheckTimeout(); err != nil {
		t.Errorf("CheckTimeout() should not fail immediately, got: %v", err)
	}

	// Wait for timeout
	time.Sleep(150 * time.Millisecond)

	// Should timeout now
	if err := rl.CheckTimeout(); err == nil {
		t.Error("CheckTimeout() should fail after timeout period")
	}
}

func TestRunLimiter_ZeroDisablesLimits(t *testing.T) {
	rl := NewRunLimiter(LimitConfig{})

	for i := 0; i < 100; i++ {
		if err := rl.RecordTurn(); err != nil {
			t.Fatalf("RecordTurn() error with no limit = %v", err)
		}
		if err := rl.RecordNavigation("https://example.com"); err != nil {
			t.Fatalf("RecordNavigation() error with no limit = %v", err)
		}
		if err := rl.RecordTokenUsage(100000); err != nil {
			t.Fatalf("RecordTokenUsage() error with no limit = %v", err)
		}
	}

	if err := rl.CheckTimeout(); err != nil {
		t.Errorf("CheckTimeout() error with no timeout = %v", err)
	}
}
