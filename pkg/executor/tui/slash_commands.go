package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/executor/tui/overlay"
	tuitypes "github.com/entrhq/scout/pkg/executor/tui/types"
	"github.com/entrhq/scout/pkg/types"
)

// CommandType indicates whether a command is handled by TUI or Agent
type CommandType int

const (
	CommandTypeTUI   CommandType = iota // Handled entirely by TUI
	CommandTypeAgent                    // Sent to agent
)

// CommandHandler processes a slash command and returns either:
// - tea.Cmd for immediate execution
// - nil for commands with no side effects
// The model is passed as a pointer and can be modified directly.
type CommandHandler func(m *model, args []string) interface{}

// SlashCommand represents a registered command
type SlashCommand struct {
	Name        string         // Command name (without /)
	Description string         // Short description for palette
	ArgHint     string         // Placeholder shown in the palette, e.g. "<url>"
	Type        CommandType    // Where to handle the command
	Handler     CommandHandler // Handler function
	MinArgs     int            // Minimum number of arguments
	MaxArgs     int            // Maximum number of arguments (-1 for unlimited)
}

// commandRegistry holds all registered slash commands
var commandRegistry map[string]*SlashCommand

// init initializes the command registry with built-in commands
func init() {
	commandRegistry = make(map[string]*SlashCommand)

	registerCommand(&SlashCommand{
		Name:        "help",
		Description: "Show commands and keyboard shortcuts",
		Type:        CommandTypeTUI,
		Handler:     handleHelpCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "load",
		Description: "Load a web page or PDF by URL",
		ArgHint:     "<url>",
		Type:        CommandTypeAgent,
		Handler:     handleLoadCommand,
		MinArgs:     1,
		MaxArgs:     1,
	})

	registerCommand(&SlashCommand{
		Name:        "open",
		Description: "Load a local file (HTML, PDF, or text)",
		ArgHint:     "<path>",
		Type:        CommandTypeAgent,
		Handler:     handleOpenCommand,
		MinArgs:     1,
		MaxArgs:     -1, // Paths may contain spaces
	})

	registerCommand(&SlashCommand{
		Name:        "links",
		Description: "Browse links found on the loaded page",
		Type:        CommandTypeTUI,
		Handler:     handleLinksCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "source",
		Description: "View the loaded page text",
		Type:        CommandTypeTUI,
		Handler:     handleSourceCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "context",
		Description: "Show detailed context information",
		Type:        CommandTypeTUI,
		Handler:     handleContextCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "reset",
		Description: "Clear the conversation and unload the source",
		Type:        CommandTypeAgent,
		Handler:     handleResetCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "copy",
		Description: "Copy the last reply to the clipboard",
		Type:        CommandTypeTUI,
		Handler:     handleCopyCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "stop",
		Description: "Stop the current agent operation",
		Type:        CommandTypeAgent,
		Handler:     handleStopCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "settings",
		Description: "Open settings configuration",
		Type:        CommandTypeTUI,
		Handler:     handleSettingsCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})

	registerCommand(&SlashCommand{
		Name:        "quit",
		Description: "Exit the application",
		Type:        CommandTypeTUI,
		Handler:     handleQuitCommand,
		MinArgs:     0,
		MaxArgs:     0,
	})
}

// registerCommand adds a command to the registry
func registerCommand(cmd *SlashCommand) {
	commandRegistry[cmd.Name] = cmd
}

// getCommand retrieves a command from the registry
func getCommand(name string) (*SlashCommand, bool) {
	cmd, exists := commandRegistry[name]
	return cmd, exists
}

// getAllCommands returns all registered commands sorted by name
func getAllCommands() []*SlashCommand {
	commands := make([]*SlashCommand, 0, len(commandRegistry))
	for _, cmd := range commandRegistry {
		commands = append(commands, cmd)
	}
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name < commands[j].Name
	})
	return commands
}

// parseSlashCommand parses a slash command input into command name and arguments
// Returns: commandName, args, isCommand
func parseSlashCommand(input string) (string, []string, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", nil, false
	}

	// Remove the leading /
	trimmed = trimmed[1:]

	parts := strings.Fields(trimmed)
	if len(parts) == 0 {
		return "", nil, false
	}

	commandName := parts[0]
	args := []string{}
	if len(parts) > 1 {
		args = parts[1:]
	}

	return commandName, args, true
}

// executeSlashCommand executes a slash command
func executeSlashCommand(m *model, commandName string, args []string) (*model, tea.Cmd) {
	cmd, exists := getCommand(commandName)
	if !exists {
		m.showToast("Unknown command", fmt.Sprintf("Command '/%s' not found. Type /help for available commands.", commandName), "❌", true)
		return m, nil
	}

	// Validate argument count
	if len(args) < cmd.MinArgs {
		m.showToast("Invalid arguments", fmt.Sprintf("Command '/%s' requires at least %d argument(s)", commandName, cmd.MinArgs), "❌", true)
		return m, nil
	}
	if cmd.MaxArgs != -1 && len(args) > cmd.MaxArgs {
		m.showToast("Invalid arguments", fmt.Sprintf("Command '/%s' accepts at most %d argument(s)", commandName, cmd.MaxArgs), "❌", true)
		return m, nil
	}

	// Execute the command handler
	if cmd.Handler != nil {
		result := cmd.Handler(m, args)

		switch v := result.(type) {
		case tea.Cmd:
			return m, v
		case func() tea.Msg:
			return m, tea.Cmd(v)
		case nil:
			return m, nil
		default:
			m.showToast("Command Error", fmt.Sprintf("Command '/%s' returned unexpected type", commandName), "❌", true)
			return m, nil
		}
	}

	return m, nil
}

// handleHelpCommand shows help information
func handleHelpCommand(m *model, args []string) interface{} {
	var helpContent strings.Builder
	helpContent.WriteString("Available Commands:\n\n")

	for _, cmd := range getAllCommands() {
		helpContent.WriteString(fmt.Sprintf("  /%s\n", cmd.Name))
		helpContent.WriteString(fmt.Sprintf("    %s\n\n", cmd.Description))
	}

	helpContent.WriteString("Keyboard Shortcuts:\n\n")
	helpContent.WriteString("  Enter        Send message\n")
	helpContent.WriteString("  Alt+Enter    New line\n")
	helpContent.WriteString("  Esc          Cancel the current operation\n")
	helpContent.WriteString("  Ctrl+Y       Copy the last reply\n")
	helpContent.WriteString("  Ctrl+K       Toggle command palette\n")
	helpContent.WriteString("  Ctrl+C       Exit\n\n")

	helpContent.WriteString("Tips:\n\n")
	helpContent.WriteString("  • Start with /load <url> to bring a page into context\n")
	helpContent.WriteString("  • The model can follow links itself; /links lets you pick one manually\n")
	helpContent.WriteString("  • Type / to see available commands\n")

	helpOverlay := overlay.NewHelpOverlay("Help", helpContent.String())
	m.overlay.activate(tuitypes.OverlayModeHelp, helpOverlay)

	return nil
}

// handleLoadCommand asks the agent to fetch a URL into context
func handleLoadCommand(m *model, args []string) interface{} {
	if m.channels == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return nil
	}
	m.LoadURL(args[0])
	return nil
}

// handleOpenCommand loads a local file into context. The file read happens
// in a command so a slow disk never stalls the update loop.
func handleOpenCommand(m *model, args []string) interface{} {
	if m.channels == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return nil
	}

	path := strings.Join(args, " ")
	name := filepath.Base(path)
	m.agentBusy = true
	m.currentLoadingMessage = fmt.Sprintf("Loading %s...", name)
	m.recalculateLayout()

	channels := m.channels
	return func() tea.Msg {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return agentErrMsg{err: fmt.Errorf("could not read %s: %w", path, err)}
		}
		channels.Input <- types.NewLoadDocumentInput(name, data)
		return nil
	}
}

// handleLinksCommand opens the link navigator for the loaded page
func handleLinksCommand(m *model, args []string) interface{} {
	if m.agent == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return nil
	}

	resource := m.agent.GetSession().Resource()
	if resource == nil {
		m.showToast("No source loaded", "Use /load <url> or /open <path> first", "ℹ️", false)
		return nil
	}

	linksOverlay := overlay.NewLinksOverlay(resource.Links, resource.Files, m.width, m.height)
	m.overlay.activate(tuitypes.OverlayModeLinks, linksOverlay)

	return nil
}

// handleSourceCommand opens the source text viewer for the loaded page
func handleSourceCommand(m *model, args []string) interface{} {
	if m.agent == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return nil
	}

	resource := m.agent.GetSession().Resource()
	if resource == nil {
		m.showToast("No source loaded", "Use /load <url> or /open <path> first", "ℹ️", false)
		return nil
	}

	sourceOverlay := overlay.NewSourceOverlay(resource.Title, resource.SourceID, resource.Text, resource.Truncated, m.width, m.height)
	m.overlay.activate(tuitypes.OverlayModeSource, sourceOverlay)

	return nil
}

// handleContextCommand shows detailed context information
func handleContextCommand(m *model, args []string) interface{} {
	if m.agent == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return nil
	}

	contextInfo := m.agent.GetContextInfo()

	overlayInfo := &overlay.ContextInfo{
		SystemPromptTokens:    contextInfo.SystemPromptTokens,
		CustomInstructions:    contextInfo.CustomInstructions,
		SourceID:              contextInfo.SourceID,
		SourceTitle:           contextInfo.SourceTitle,
		SourceTextBytes:       contextInfo.SourceTextBytes,
		SourceTruncated:       contextInfo.SourceTruncated,
		LinkCount:             contextInfo.LinkCount,
		FileCount:             contextInfo.FileCount,
		MessageCount:          contextInfo.MessageCount,
		ConversationTurns:     contextInfo.ConversationTurns,
		ConversationTokens:    contextInfo.ConversationTokens,
		CurrentContextTokens:  contextInfo.CurrentContextTokens,
		MaxContextTokens:      contextInfo.MaxContextTokens,
		FreeTokens:            contextInfo.FreeTokens,
		UsagePercent:          contextInfo.UsagePercent,
		TotalPromptTokens:     m.totalPromptTokens,
		TotalCompletionTokens: m.totalCompletionTokens,
		TotalTokens:           m.totalTokens,
	}

	contextOverlay := overlay.NewContextOverlay(overlayInfo, m.width, m.height)
	m.overlay.activate(tuitypes.OverlayModeContext, contextOverlay)

	return nil
}

// handleResetCommand clears the conversation and unloads the source
func handleResetCommand(m *model, args []string) interface{} {
	if m.channels == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return nil
	}

	m.channels.Input <- types.NewResetInput()

	// Mirror the session reset locally
	m.content.Reset()
	m.messageBuffer.Reset()
	m.lastReply = ""
	m.source = sourceState{}
	m.currentContextTokens = 0
	m.hasMessageContentStarted = false
	m.viewport.SetContent("")

	m.showToast("Session reset", "Conversation cleared and source unloaded", "🔄", false)
	return nil
}

// handleCopyCommand copies the last assistant reply to the clipboard
func handleCopyCommand(m *model, args []string) interface{} {
	if m.lastReply == "" {
		m.showToast("Nothing to copy", "No reply has been received yet", "ℹ️", false)
		return nil
	}
	if err := clipboard.WriteAll(m.lastReply); err != nil {
		m.showToast("Copy failed", err.Error(), "❌", true)
		return nil
	}
	m.showToast("Copied", "Last reply copied to clipboard", "📋", false)
	return nil
}

// handleStopCommand cancels the in-flight turn
func handleStopCommand(m *model, args []string) interface{} {
	m.cancelCurrentTurn()
	return nil
}

// handleSettingsCommand shows the settings configuration
func handleSettingsCommand(m *model, args []string) interface{} {
	if !config.IsInitialized() {
		m.showToast("Settings unavailable", "Configuration was not initialized", "❌", true)
		return nil
	}

	onLLMSettingsChange := func() error {
		return m.reloadLLMProvider()
	}

	settingsOverlay := overlay.NewSettingsOverlay(m.width, m.height, onLLMSettingsChange)
	m.overlay.activate(tuitypes.OverlayModeSettings, settingsOverlay)

	return nil
}

// handleQuitCommand exits the application
func handleQuitCommand(m *model, args []string) interface{} {
	m.Quit()
	return nil
}
