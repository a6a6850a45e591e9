package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgtypes "github.com/entrhq/scout/pkg/types"

	tuitypes "github.com/entrhq/scout/pkg/executor/tui/types"
)

// newCommandTestModel builds a model suitable for exercising slash commands.
func newCommandTestModel() *model {
	m := newEventTestModel()
	return m
}

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		input     string
		wantName  string
		wantArgs  []string
		isCommand bool
	}{
		{"/load https://example.com", "load", []string{"https://example.com"}, true},
		{"/reset", "reset", []string{}, true},
		{"  /help  ", "help", []string{}, true},
		{"/open my file.pdf", "open", []string{"my", "file.pdf"}, true},
		{"plain text", "", nil, false},
		{"/", "", nil, false},
		{"", "", nil, false},
	}

	for _, tt := range tests {
		name, args, ok := parseSlashCommand(tt.input)
		if ok != tt.isCommand {
			t.Errorf("parseSlashCommand(%q) ok = %v, want %v", tt.input, ok, tt.isCommand)
			continue
		}
		if !ok {
			continue
		}
		if name != tt.wantName {
			t.Errorf("parseSlashCommand(%q) name = %q, want %q", tt.input, name, tt.wantName)
		}
		if len(args) != len(tt.wantArgs) {
			t.Errorf("parseSlashCommand(%q) args = %v, want %v", tt.input, args, tt.wantArgs)
			continue
		}
		for i := range args {
			if args[i] != tt.wantArgs[i] {
				t.Errorf("parseSlashCommand(%q) args[%d] = %q, want %q", tt.input, i, args[i], tt.wantArgs[i])
			}
		}
	}
}

func TestCommandRegistryContents(t *testing.T) {
	expected := []string{"help", "load", "open", "links", "source", "context", "reset", "copy", "stop", "settings", "quit"}
	for _, name := range expected {
		if _, ok := getCommand(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}

	all := getAllCommands()
	if len(all) != len(expected) {
		t.Errorf("registry has %d commands, want %d", len(all), len(expected))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("getAllCommands not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestExecuteUnknownCommandShowsErrorToast(t *testing.T) {
	m := newCommandTestModel()

	_, cmd := executeSlashCommand(m, "bogus", nil)
	if cmd != nil {
		t.Error("unknown command should not return a tea.Cmd")
	}
	if m.toast == nil || !m.toast.active || !m.toast.isError {
		t.Fatal("expected an error toast for unknown command")
	}
	if !strings.Contains(m.toast.details, "/bogus") {
		t.Errorf("toast details = %q, want mention of /bogus", m.toast.details)
	}
}

func TestExecuteCommandValidatesArgCount(t *testing.T) {
	m := newCommandTestModel()

	executeSlashCommand(m, "load", nil)
	if m.toast == nil || !m.toast.isError {
		t.Fatal("expected an error toast when /load is missing its URL")
	}

	m = newCommandTestModel()
	executeSlashCommand(m, "quit", []string{"now", "please"})
	if m.toast == nil || !m.toast.isError {
		t.Fatal("expected an error toast when /quit gets arguments")
	}
	if m.shouldQuit {
		t.Error("quit handler should not run when validation fails")
	}
}

func TestHelpCommandOpensOverlay(t *testing.T) {
	m := newCommandTestModel()

	executeSlashCommand(m, "help", nil)

	if !m.overlay.isActive() {
		t.Fatal("help should open an overlay")
	}
	if m.overlay.mode != tuitypes.OverlayModeHelp {
		t.Errorf("overlay mode = %v, want help", m.overlay.mode)
	}
	view := m.overlay.overlay.View()
	if !strings.Contains(view, "/load") {
		t.Errorf("help overlay missing /load: %q", view)
	}
}

func TestLoadCommandSendsLoadURLInput(t *testing.T) {
	m := newCommandTestModel()
	m.channels = pkgtypes.NewAgentChannels(10)

	executeSlashCommand(m, "load", []string{"https://example.com/guide"})

	if !m.agentBusy {
		t.Error("load should mark the agent busy")
	}

	select {
	case input := <-m.channels.Input:
		if input.Type != pkgtypes.InputTypeLoadURL {
			t.Errorf("input type = %q, want load_url", input.Type)
		}
		if input.URL != "https://example.com/guide" {
			t.Errorf("input URL = %q", input.URL)
		}
	default:
		t.Fatal("no input sent to agent")
	}
}

func TestOpenCommandReadsLocalFile(t *testing.T) {
	m := newCommandTestModel()
	m.channels = pkgtypes.NewAgentChannels(10)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("local document body"), 0600); err != nil {
		t.Fatal(err)
	}

	executeSlashCommand(m, "open", []string{path})

	select {
	case input := <-m.channels.Input:
		if input.Type != pkgtypes.InputTypeLoadDocument {
			t.Errorf("input type = %q, want load_document", input.Type)
		}
		if input.DocumentName != "notes.txt" {
			t.Errorf("document name = %q, want notes.txt", input.DocumentName)
		}
		if string(input.DocumentData) != "local document body" {
			t.Errorf("document data = %q", input.DocumentData)
		}
	default:
		t.Fatal("no input sent to agent")
	}
}

func TestOpenCommandMissingFileShowsToast(t *testing.T) {
	m := newCommandTestModel()
	m.channels = pkgtypes.NewAgentChannels(10)

	executeSlashCommand(m, "open", []string{"/does/not/exist.pdf"})

	if m.toast == nil || !m.toast.isError {
		t.Fatal("expected an error toast for a missing file")
	}
	select {
	case <-m.channels.Input:
		t.Fatal("no input should be sent when the file cannot be read")
	default:
	}
}

func TestLinksCommandWithoutAgentShowsToast(t *testing.T) {
	m := newCommandTestModel()

	executeSlashCommand(m, "links", nil)

	if m.overlay.isActive() {
		t.Error("links overlay should not open without an agent")
	}
	if m.toast == nil || !m.toast.active {
		t.Fatal("expected a toast when no agent is attached")
	}
}

func TestResetCommandClearsLocalState(t *testing.T) {
	m := newCommandTestModel()
	m.channels = pkgtypes.NewAgentChannels(10)
	m.content.WriteString("old transcript")
	m.lastReply = "old reply"
	m.currentContextTokens = 1234
	m.source = sourceState{loaded: true, sourceID: "https://example.com", title: "Example"}

	executeSlashCommand(m, "reset", nil)

	if m.content.Len() != 0 {
		t.Error("transcript should be cleared on reset")
	}
	if m.lastReply != "" {
		t.Error("lastReply should be cleared on reset")
	}
	if m.source.loaded {
		t.Error("source should be unloaded on reset")
	}
	if m.currentContextTokens != 0 {
		t.Error("context token count should be cleared on reset")
	}

	select {
	case input := <-m.channels.Input:
		if input.Type != pkgtypes.InputTypeReset {
			t.Errorf("input type = %q, want reset", input.Type)
		}
	default:
		t.Fatal("no reset input sent to agent")
	}
}

func TestStopCommandSignalsCancelWithoutBlocking(t *testing.T) {
	m := newCommandTestModel()
	m.channels = pkgtypes.NewAgentChannels(10)

	executeSlashCommand(m, "stop", nil)
	executeSlashCommand(m, "stop", nil) // Second stop must not block on the full channel

	select {
	case <-m.channels.Cancel:
	default:
		t.Fatal("no cancel signal sent")
	}
}

func TestCopyCommandWithNoReplyShowsToast(t *testing.T) {
	m := newCommandTestModel()

	executeSlashCommand(m, "copy", nil)

	if m.toast == nil || !m.toast.active {
		t.Fatal("expected a toast when there is nothing to copy")
	}
	if m.toast.isError {
		t.Error("empty-reply toast should be informational, not an error")
	}
}

func TestQuitCommandRequestsExit(t *testing.T) {
	m := newCommandTestModel()

	executeSlashCommand(m, "quit", nil)

	if !m.shouldQuit {
		t.Error("quit should set the shouldQuit flag")
	}
}
