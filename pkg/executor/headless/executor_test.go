package headless

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/types"
)

// scriptedTurn describes what the fake agent does with one user prompt
type scriptedTurn struct {
	reply      string
	navigateTo string
	tokens     int
	err        error
	hang       bool
}

// scriptedAgent is a minimal agent.Agent that replays canned turns over the
// real channel contract.
type scriptedAgent struct {
	channels *types.AgentChannels
	loadErr  error
	turns    []scriptedTurn
	turnIdx  int
}

func newScriptedAgent(turns ...scriptedTurn) *scriptedAgent {
	return &scriptedAgent{
		channels: types.NewAgentChannels(64),
		turns:    turns,
	}
}

func (a *scriptedAgent) Start(ctx context.Context) error {
	go func() {
		defer close(a.channels.Done)
		defer a.channels.Close()
		for {
			select {
			case <-a.channels.Shutdown:
				return
			case input := <-a.channels.Input:
				a.handle(input)
			}
		}
	}()
	return nil
}

func (a *scriptedAgent) handle(input *types.Input) {
	switch input.Type {
	case types.InputTypeLoadURL, types.InputTypeLoadDocument:
		sourceID := input.URL
		if input.Type == types.InputTypeLoadDocument {
			sourceID = types.DocumentSourceID(input.DocumentName)
		}
		a.channels.Event <- types.NewLoadStartEvent(sourceID)
		if a.loadErr != nil {
			a.channels.Event <- types.NewErrorEvent(a.loadErr)
			a.channels.Event <- types.NewTurnEndEvent()
			return
		}
		a.channels.Event <- types.NewResourceLoadedEvent(&types.ResourceInfo{
			SourceID:  sourceID,
			Title:     "Example Article",
			TextBytes: 1200,
			LinkCount: 3,
		})
		a.channels.Event <- types.NewTurnEndEvent()

	case types.InputTypeUserInput:
		var turn scriptedTurn
		if a.turnIdx < len(a.turns) {
			turn = a.turns[a.turnIdx]
			a.turnIdx++
		}

		if turn.hang {
			return
		}

		if turn.err != nil {
			a.channels.Event <- types.NewErrorEvent(turn.err)
			a.channels.Event <- types.NewTurnEndEvent()
			return
		}

		a.channels.Event <- types.NewMessageStartEvent()
		if turn.navigateTo == "" {
			a.channels.Event <- types.NewMessageContentEvent(turn.reply)
		}
		a.channels.Event <- types.NewMessageEndEvent()
		if turn.tokens > 0 {
			a.channels.Event <- types.NewTokenUsageEvent(turn.tokens/2, turn.tokens-turn.tokens/2, turn.tokens)
		}
		if turn.navigateTo != "" {
			a.channels.Event <- types.NewNavigationStartEvent(turn.navigateTo)
			a.channels.Event <- types.NewNavigationEndEvent(turn.navigateTo, "120ms")
			a.channels.Event <- types.NewResourceLoadedEvent(&types.ResourceInfo{
				SourceID:      turn.navigateTo,
				Title:         "Next Page",
				TextBytes:     800,
				ViaNavigation: true,
			})
		}
		a.channels.Event <- types.NewTurnEndEvent()

	case types.InputTypeReset:
		a.channels.Event <- types.NewTurnEndEvent()
	}
}

func (a *scriptedAgent) Shutdown(ctx context.Context) error {
	close(a.channels.Shutdown)
	select {
	case <-a.channels.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *scriptedAgent) GetChannels() *types.AgentChannels { return a.channels }
func (a *scriptedAgent) GetSession() *agent.Session        { return nil }
func (a *scriptedAgent) GetContextInfo() *agent.ContextInfo {
	return nil
}
func (a *scriptedAgent) SetProvider(provider llm.Provider) error { return nil }

// quietConfig returns a valid config that logs nothing and writes artifacts
// into a test directory
func quietConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Source: SourceConfig{URL: "https://example.com/article"},
		Task: TaskConfig{
			Kind:    TaskScript,
			Prompts: []string{"Who wrote this?"},
		},
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: t.TempDir(),
			JSON:      true,
			Markdown:  true,
		},
		Logging: LoggingConfig{Verbosity: "quiet"},
	}
}

func TestNewExecutor_InvalidConfig(t *testing.T) {
	_, err := NewExecutor(newScriptedAgent(), &Config{})
	if err == nil {
		t.Fatal("NewExecutor() should reject a config without a source")
	}
}

func TestExecutor_ScriptRun(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Alice Example wrote it.", tokens: 150},
		scriptedTurn{reply: "It was published in 2024.", tokens: 150},
	)

	config := quietConfig(t)
	config.Task.Prompts = []string{"Who wrote this?", "When was it published?"}

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := executor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := executor.summary
	if summary.Status != statusSuccess {
		t.Errorf("status = %q, want %q (error: %s)", summary.Status, statusSuccess, summary.Error)
	}
	if len(summary.Turns) != 2 {
		t.Fatalf("recorded %d turns, want 2", len(summary.Turns))
	}
	if summary.Turns[0].Reply != "Alice Example wrote it." {
		t.Errorf("turn 1 reply = %q", summary.Turns[0].Reply)
	}
	if summary.Turns[1].Prompt != "When was it published?" {
		t.Errorf("turn 2 prompt = %q", summary.Turns[1].Prompt)
	}
	if summary.SourceTitle != "Example Article" {
		t.Errorf("source title = %q", summary.SourceTitle)
	}
	if summary.Metrics.Turns != 2 {
		t.Errorf("metrics turns = %d, want 2", summary.Metrics.Turns)
	}
	if summary.Metrics.TokensUsed != 300 {
		t.Errorf("metrics tokens = %d, want 300", summary.Metrics.TokensUsed)
	}

	// Artifacts are written
	for _, name := range []string{"run.json", "transcript.md"} {
		if _, err := os.Stat(filepath.Join(config.Artifacts.OutputDir, name)); err != nil {
			t.Errorf("artifact %s not written: %v", name, err)
		}
	}

	transcript, err := os.ReadFile(filepath.Join(config.Artifacts.OutputDir, "transcript.md"))
	if err != nil {
		t.Fatalf("failed to read transcript: %v", err)
	}
	if !strings.Contains(string(transcript), "Alice Example wrote it.") {
		t.Error("transcript missing the first reply")
	}
}

func TestExecutor_NavigationRecorded(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{navigateTo: "https://example.com/next", tokens: 100},
		scriptedTurn{reply: "The next page covers pricing.", tokens: 100},
	)

	config := quietConfig(t)
	config.Task.Prompts = []string{"Open the next page.", "What does it cover?"}

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := executor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := executor.summary
	if summary.Status != statusSuccess {
		t.Fatalf("status = %q, want %q (error: %s)", summary.Status, statusSuccess, summary.Error)
	}
	if len(summary.Navigations) != 1 {
		t.Fatalf("recorded %d navigations, want 1", len(summary.Navigations))
	}
	if summary.Navigations[0].URL != "https://example.com/next" {
		t.Errorf("navigation url = %q", summary.Navigations[0].URL)
	}
	if summary.Turns[0].NavigatedTo != "https://example.com/next" {
		t.Errorf("turn 1 navigated_to = %q", summary.Turns[0].NavigatedTo)
	}
	// The navigation turn records the notice as its reply
	if !strings.Contains(summary.Turns[0].Reply, "Navigation Successful") {
		t.Errorf("turn 1 reply = %q, want the navigation notice", summary.Turns[0].Reply)
	}
	if summary.Metrics.Navigations != 1 {
		t.Errorf("metrics navigations = %d, want 1", summary.Metrics.Navigations)
	}
}

func TestExecutor_TokenLimitEndsRunEarly(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "First answer.", tokens: 150},
		scriptedTurn{reply: "Never reached.", tokens: 150},
	)

	config := quietConfig(t)
	config.Task.Prompts = []string{"First?", "Second?"}
	config.Limits.MaxTokens = 100

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	// A partial run is not a run error
	if err := executor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := executor.summary
	if summary.Status != statusPartialSuccess {
		t.Errorf("status = %q, want %q", summary.Status, statusPartialSuccess)
	}
	if len(summary.Turns) != 1 {
		t.Errorf("recorded %d turns, want 1 (run should stop after the trip)", len(summary.Turns))
	}
	if !strings.Contains(summary.Error, "token") {
		t.Errorf("summary error = %q, want a token limit violation", summary.Error)
	}
}

func TestExecutor_NavigationLimit(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{navigateTo: "https://example.com/a", tokens: 50},
		scriptedTurn{navigateTo: "https://example.com/b", tokens: 50},
		scriptedTurn{reply: "Never reached.", tokens: 50},
	)

	config := quietConfig(t)
	config.Task.Prompts = []string{"Go.", "Go again.", "Report."}
	config.Limits.MaxNavigations = 1

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := executor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := executor.summary
	if summary.Status != statusPartialSuccess {
		t.Errorf("status = %q, want %q", summary.Status, statusPartialSuccess)
	}
	if len(summary.Turns) != 2 {
		t.Errorf("recorded %d turns, want 2", len(summary.Turns))
	}
	if !strings.Contains(summary.Error, "navigation") {
		t.Errorf("summary error = %q, want a navigation limit violation", summary.Error)
	}
}

func TestExecutor_ExtractRun(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "```json\n{\"stories\": [{\"headline\": \"Example wins\"}]}\n```", tokens: 80},
	)

	config := quietConfig(t)
	config.Task = TaskConfig{Kind: TaskExtract}

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := executor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := executor.summary
	if summary.Status != statusSuccess {
		t.Fatalf("status = %q, want %q (error: %s)", summary.Status, statusSuccess, summary.Error)
	}
	if len(summary.Extract) == 0 {
		t.Fatal("extract payload not captured")
	}
	if !strings.Contains(string(summary.Extract), `"headline": "Example wins"`) {
		t.Errorf("extract payload = %s", summary.Extract)
	}

	name := extractArtifactName(time.Now())
	if _, err := os.Stat(filepath.Join(config.Artifacts.OutputDir, name)); err != nil {
		t.Errorf("extract artifact %s not written: %v", name, err)
	}
}

func TestExecutor_ExtractInvalidJSON(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Sorry, the page lists no stories.", tokens: 80},
	)

	config := quietConfig(t)
	config.Task = TaskConfig{Kind: TaskExtract}

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := executor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := executor.summary
	if summary.Status != statusPartialSuccess {
		t.Errorf("status = %q, want %q", summary.Status, statusPartialSuccess)
	}
	if len(summary.Extract) != 0 {
		t.Error("no extract payload should be captured for an unparseable reply")
	}
	if !strings.Contains(summary.Error, "not valid JSON") {
		t.Errorf("summary error = %q", summary.Error)
	}
}

func TestExecutor_LoadFailure(t *testing.T) {
	ag := newScriptedAgent()
	ag.loadErr = fmt.Errorf("fetch failed: status 404")

	config := quietConfig(t)

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	err = executor.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the source cannot be loaded")
	}
	if !strings.Contains(err.Error(), "failed to load source") {
		t.Errorf("Run() error = %v", err)
	}

	if executor.summary.Status != statusFailed {
		t.Errorf("status = %q, want %q", executor.summary.Status, statusFailed)
	}

	// Failure artifacts are still written
	if _, statErr := os.Stat(filepath.Join(config.Artifacts.OutputDir, "run.json")); statErr != nil {
		t.Errorf("failure run.json not written: %v", statErr)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{hang: true},
	)

	config := quietConfig(t)
	config.Limits.Timeout = 100 * time.Millisecond

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	err = executor.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the run times out")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("Run() error = %v", err)
	}
	if executor.summary.Status != statusFailed {
		t.Errorf("status = %q, want %q", executor.summary.Status, statusFailed)
	}
}

func TestExecutor_MissingDocument(t *testing.T) {
	ag := newScriptedAgent()

	config := quietConfig(t)
	config.Source = SourceConfig{DocumentPath: filepath.Join(t.TempDir(), "missing.pdf")}

	executor, err := NewExecutor(ag, config)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := executor.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when the document cannot be read")
	}
}
