package cli

import (
	"bytes"
	"context"
	"errors"
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
	directive  string
	navigateTo string
	navError   string
	attempt    int
	tokens     int
	err        error
}

// scriptedAgent is a minimal agent.Agent that replays canned turns over the
// real channel contract.
type scriptedAgent struct {
	channels *types.AgentChannels
	session  *agent.Session
	info     *agent.ContextInfo
	loadErr  error
	turns    []scriptedTurn
	turnIdx  int
	loads    []string
	resets   int
}

func newScriptedAgent(turns ...scriptedTurn) *scriptedAgent {
	return &scriptedAgent{
		channels: types.NewAgentChannels(64),
		session:  agent.NewSession(),
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
		a.loads = append(a.loads, sourceID)
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
			FileCount: 1,
		})
		a.channels.Event <- types.NewTurnEndEvent()

	case types.InputTypeUserInput:
		var turn scriptedTurn
		if a.turnIdx < len(a.turns) {
			turn = a.turns[a.turnIdx]
			a.turnIdx++
		}

		if turn.err != nil {
			a.channels.Event <- types.NewErrorEvent(turn.err)
			a.channels.Event <- types.NewTurnEndEvent()
			return
		}

		if turn.attempt > 0 {
			a.channels.Event <- types.NewAPICallStartEvent(100, 8192, turn.attempt)
		}
		a.channels.Event <- types.NewMessageStartEvent()
		if turn.reply != "" {
			a.channels.Event <- types.NewMessageContentEvent(turn.reply)
		}
		if turn.directive != "" {
			a.channels.Event <- types.NewDirectiveStartEvent()
			a.channels.Event <- types.NewDirectiveContentEvent(turn.directive)
			a.channels.Event <- types.NewDirectiveEndEvent()
		}
		a.channels.Event <- types.NewMessageEndEvent()
		if turn.tokens > 0 {
			a.channels.Event <- types.NewTokenUsageEvent(turn.tokens/2, turn.tokens-turn.tokens/2, turn.tokens)
		}
		switch {
		case turn.navError != "":
			a.channels.Event <- types.NewNavigationStartEvent(turn.navigateTo)
			a.channels.Event <- types.NewNavigationFailedEvent(turn.navigateTo, errors.New(turn.navError))
		case turn.navigateTo != "":
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
		a.resets++
		a.session.Reset()
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
func (a *scriptedAgent) GetSession() *agent.Session        { return a.session }
func (a *scriptedAgent) GetContextInfo() *agent.ContextInfo {
	return a.info
}
func (a *scriptedAgent) SetProvider(provider llm.Provider) error { return nil }

// runExecutor drives one scripted REPL session to completion and returns
// everything the executor printed.
func runExecutor(t *testing.T, ag *scriptedAgent, input string, opts ...ExecutorOption) string {
	t.Helper()

	var out bytes.Buffer
	opts = append(opts, WithReader(strings.NewReader(input)), WithWriter(&out))
	executor := NewExecutor(ag, opts...)

	done := make(chan error, 1)
	go func() { done <- executor.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("executor did not finish")
	}

	return out.String()
}

func TestExecutor_QuitCommand(t *testing.T) {
	out := runExecutor(t, newScriptedAgent(), "/quit\n")

	if !strings.Contains(out, "Type /help for commands") {
		t.Error("usage hint not printed")
	}
	if !strings.Contains(out, "Shutting down") {
		t.Error("shutdown notice not printed")
	}
}

func TestExecutor_ExitKeyword(t *testing.T) {
	out := runExecutor(t, newScriptedAgent(), "exit\n")

	if !strings.Contains(out, "Shutting down") {
		t.Error("shutdown notice not printed")
	}
}

func TestExecutor_EOFEndsRun(t *testing.T) {
	out := runExecutor(t, newScriptedAgent(), "")

	if !strings.Contains(out, "Shutting down") {
		t.Error("EOF should shut the executor down cleanly")
	}
}

func TestExecutor_UserTurn(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Alice Example wrote it."},
	)

	out := runExecutor(t, ag, "Who wrote this?\n/quit\n")

	if !strings.Contains(out, "Assistant:\nAlice Example wrote it.") {
		t.Errorf("reply not rendered, output:\n%s", out)
	}
}

func TestExecutor_HelpCommand(t *testing.T) {
	out := runExecutor(t, newScriptedAgent(), "/help\n/quit\n")

	for _, command := range []string{"/load <url>", "/open <path>", "/links", "/source", "/context", "/reset"} {
		if !strings.Contains(out, command) {
			t.Errorf("help output missing %s", command)
		}
	}
}

func TestExecutor_UnknownCommand(t *testing.T) {
	out := runExecutor(t, newScriptedAgent(), "/frobnicate\n/quit\n")

	if !strings.Contains(out, "Unknown command /frobnicate") {
		t.Errorf("unknown command not reported, output:\n%s", out)
	}
}

func TestExecutor_LoadCommand(t *testing.T) {
	ag := newScriptedAgent()

	out := runExecutor(t, ag, "/load https://example.com/article\n/quit\n")

	if len(ag.loads) != 1 || ag.loads[0] != "https://example.com/article" {
		t.Fatalf("agent loads = %v", ag.loads)
	}
	if !strings.Contains(out, "Loading https://example.com/article") {
		t.Error("load progress not printed")
	}
	if !strings.Contains(out, "✅ Loaded: Example Article") {
		t.Errorf("resource summary not printed, output:\n%s", out)
	}
	if !strings.Contains(out, "3 links, 1 files") {
		t.Error("link counts not printed")
	}
}

func TestExecutor_LoadWithoutArgument(t *testing.T) {
	ag := newScriptedAgent()

	out := runExecutor(t, ag, "/load\n/quit\n")

	if !strings.Contains(out, "Usage: /load <url>") {
		t.Error("usage line not printed")
	}
	if len(ag.loads) != 0 {
		t.Errorf("no load should be sent, got %v", ag.loads)
	}
}

func TestExecutor_OpenCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Meeting notes."), 0o644); err != nil {
		t.Fatal(err)
	}

	ag := newScriptedAgent()
	out := runExecutor(t, ag, fmt.Sprintf("/open %s\n/quit\n", path))

	if len(ag.loads) != 1 || ag.loads[0] != "document:notes.txt" {
		t.Fatalf("agent loads = %v", ag.loads)
	}
	if !strings.Contains(out, "Loading document:notes.txt") {
		t.Errorf("load progress not printed, output:\n%s", out)
	}
}

func TestExecutor_OpenMissingFile(t *testing.T) {
	ag := newScriptedAgent()

	out := runExecutor(t, ag, "/open "+filepath.Join(t.TempDir(), "missing.pdf")+"\n/quit\n")

	if !strings.Contains(out, "❌ Error:") {
		t.Error("read failure not reported")
	}
	if len(ag.loads) != 0 {
		t.Errorf("no load should be sent, got %v", ag.loads)
	}
}

func TestExecutor_LinksWithoutSource(t *testing.T) {
	out := runExecutor(t, newScriptedAgent(), "/links\n/quit\n")

	if !strings.Contains(out, "No source loaded. Use /load <url> first.") {
		t.Errorf("missing-source notice not printed, output:\n%s", out)
	}
}

func TestExecutor_LinksListing(t *testing.T) {
	ag := newScriptedAgent()
	ag.session.LoadManual(&types.Resource{
		SourceID: "https://example.com/article",
		Title:    "Example Article",
		Links: []types.Anchor{
			{Label: "Pricing", URL: "https://example.com/pricing"},
			{Label: "About", URL: "https://example.com/about"},
		},
		Files: []types.Anchor{
			{Label: "Annual report", URL: "https://example.com/report.pdf"},
		},
	})

	out := runExecutor(t, ag, "/links\n/quit\n")

	if !strings.Contains(out, "Links (2):") {
		t.Error("link count header not printed")
	}
	if !strings.Contains(out, "Pricing: https://example.com/pricing") {
		t.Error("link entry not printed")
	}
	if !strings.Contains(out, "Files (1):") {
		t.Error("file count header not printed")
	}
	if !strings.Contains(out, "Annual report: https://example.com/report.pdf") {
		t.Error("file entry not printed")
	}
}

func TestExecutor_SourcePreviewTruncation(t *testing.T) {
	ag := newScriptedAgent()
	ag.session.LoadManual(&types.Resource{
		SourceID: "https://example.com/article",
		Title:    "Example Article",
		Text:     strings.Repeat("a", sourcePreviewLimit+100),
	})

	out := runExecutor(t, ag, "/source\n/quit\n")

	if !strings.Contains(out, "Title: Example Article") {
		t.Error("title not printed")
	}
	if !strings.Contains(out, "Source: https://example.com/article") {
		t.Error("source id not printed")
	}
	if !strings.Contains(out, "(100 more bytes)") {
		t.Errorf("long text should be previewed, output ends:\n%s", out[len(out)-200:])
	}
}

func TestExecutor_ContextCommand(t *testing.T) {
	ag := newScriptedAgent()
	ag.info = &agent.ContextInfo{
		SourceID:             "https://example.com/article",
		SourceTextBytes:      1200,
		LinkCount:            3,
		FileCount:            1,
		ConversationTurns:    2,
		CurrentContextTokens: 450,
		MaxContextTokens:     8192,
		UsagePercent:         5.5,
		FreeTokens:           7742,
	}

	out := runExecutor(t, ag, "/context\n/quit\n")

	if !strings.Contains(out, "Source: https://example.com/article (1200 bytes, 3 links, 1 files)") {
		t.Errorf("source line wrong, output:\n%s", out)
	}
	if !strings.Contains(out, "Conversation: 2 turns") {
		t.Error("conversation line not printed")
	}
	if !strings.Contains(out, "Context: 450/8192 tokens (5.5%), 7742 free") {
		t.Error("context line not printed")
	}
}

func TestExecutor_ResetCommand(t *testing.T) {
	ag := newScriptedAgent()
	ag.session.LoadManual(&types.Resource{SourceID: "https://example.com/article"})

	runExecutor(t, ag, "/reset\n/quit\n")

	if ag.resets != 1 {
		t.Errorf("agent resets = %d, want 1", ag.resets)
	}
	if ag.session.HasResource() {
		t.Error("session should be cleared after reset")
	}
}

func TestExecutor_NavigationRendered(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{navigateTo: "https://example.com/next"},
	)

	out := runExecutor(t, ag, "Open the next page.\n/quit\n")

	if !strings.Contains(out, "🧭 Navigating to https://example.com/next") {
		t.Error("navigation start not printed")
	}
	if !strings.Contains(out, "✅ Navigation complete (120ms)") {
		t.Error("navigation end not printed")
	}
	if !strings.Contains(out, "✅ Loaded: Next Page") {
		t.Error("arrived resource not printed")
	}
}

func TestExecutor_NavigationFailureRendered(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{navigateTo: "https://other.example.com/", navError: "url not in scope"},
	)

	out := runExecutor(t, ag, "Open that other site.\n/quit\n")

	if !strings.Contains(out, "❌ Navigation failed: url not in scope") {
		t.Errorf("navigation failure not printed, output:\n%s", out)
	}
	if strings.Contains(out, "Navigation complete") {
		t.Error("failed navigation should not report completion")
	}
}

func TestExecutor_ErrorRendered(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{err: errors.New("completion failed after 2 attempts")},
	)

	out := runExecutor(t, ag, "Hello?\n/quit\n")

	if !strings.Contains(out, "❌ Error: completion failed after 2 attempts") {
		t.Errorf("error not rendered, output:\n%s", out)
	}
}

func TestExecutor_TokenUsageShown(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Done.", tokens: 150},
	)

	out := runExecutor(t, ag, "Summarize.\n/quit\n", WithShowUsage(true))

	if !strings.Contains(out, "[75 prompt + 75 completion = 150 tokens]") {
		t.Errorf("token usage not printed, output:\n%s", out)
	}
}

func TestExecutor_TokenUsageHiddenByDefault(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Done.", tokens: 150},
	)

	out := runExecutor(t, ag, "Summarize.\n/quit\n")

	if strings.Contains(out, "150 tokens") {
		t.Error("token usage should be hidden without WithShowUsage")
	}
}

func TestExecutor_DirectiveHiddenByDefault(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{
			directive:  `{"action": "navigate", "url": "https://example.com/next"}`,
			navigateTo: "https://example.com/next",
		},
	)

	out := runExecutor(t, ag, "Open the next page.\n/quit\n")

	if strings.Contains(out, `"action"`) {
		t.Error("directive JSON should be hidden by default")
	}
	if !strings.Contains(out, "🧭 Navigating to https://example.com/next") {
		t.Error("navigation should still be announced")
	}
}

func TestExecutor_DirectiveShownWhenEnabled(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{
			directive:  `{"action": "navigate", "url": "https://example.com/next"}`,
			navigateTo: "https://example.com/next",
		},
	)

	out := runExecutor(t, ag, "Open the next page.\n/quit\n", WithShowDirectives(true))

	if !strings.Contains(out, "[Navigation directive]") {
		t.Error("directive header not printed")
	}
	if !strings.Contains(out, `{"action": "navigate", "url": "https://example.com/next"}`) {
		t.Errorf("directive JSON not printed, output:\n%s", out)
	}
}

func TestExecutor_RetryNotice(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Recovered.", attempt: 2},
	)

	out := runExecutor(t, ag, "Hello?\n/quit\n")

	if !strings.Contains(out, "[Retrying completion, attempt 2]") {
		t.Errorf("retry notice not printed, output:\n%s", out)
	}
}

func TestExecutor_LoadFailureKeepsLoop(t *testing.T) {
	ag := newScriptedAgent(
		scriptedTurn{reply: "Still here."},
	)
	ag.loadErr = errors.New("fetch failed: status 404")

	out := runExecutor(t, ag, "/load https://example.com/gone\nAre you alive?\n/quit\n")

	if !strings.Contains(out, "❌ Error: fetch failed: status 404") {
		t.Error("load failure not reported")
	}
	if !strings.Contains(out, "Still here.") {
		t.Error("REPL should keep accepting turns after a failed load")
	}
}
