package tui

import (
	"fmt"
	"io"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	tuitypes "github.com/entrhq/scout/pkg/executor/tui/types"
	"github.com/entrhq/scout/pkg/logging"
	"github.com/entrhq/scout/pkg/types"
)

var debugLog *log.Logger

func initDebugLog() {
	if debugLog != nil {
		return // Already initialized
	}

	logger, err := logging.NewLogger("tui")
	if err != nil || logger.LogPath() == "" {
		// Writing to stderr would corrupt the alternate screen, so drop
		// debug output when file logging is unavailable.
		debugLog = log.New(io.Discard, "", log.LstdFlags|log.Lshortfile)
		return
	}
	debugLog = log.New(logger.Writer(), "[tui] ", log.LstdFlags|log.Lshortfile)
	debugLog.Printf("Debug logging initialized (session %s)", logger.SessionID())
}

// Update handles all state updates for the TUI model.
// This is the main event loop handler for Bubble Tea.
//
// Uses pointer receiver to ensure overlay mutations via ActionHandler persist.
// Without pointer receiver, &m passed to overlays points to a local copy,
// causing state changes (SetInput, ShowToast, etc.) to be lost.
//
//nolint:gocyclo
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Check if quit was requested by an overlay or component
	if m.shouldQuit {
		return m, tea.Quit
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	// Handle spinner tick messages
	var spinnerCmd tea.Cmd
	m.spinner, spinnerCmd = m.spinner.Update(msg)

	// Handle command palette keyboard input BEFORE updating textarea
	// This prevents Enter from being processed by textarea when palette is active
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.commandPalette.IsActive() {
		switch keyMsg.Type {
		case tea.KeyEsc:
			// Cancel command palette
			m.commandPalette.Deactivate()
			m.textarea.Reset()
			return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
		case tea.KeyUp:
			// Navigate up in palette, don't update textarea
			m.commandPalette.SelectPrev()
			return m, spinnerCmd
		case tea.KeyDown:
			// Navigate down in palette, don't update textarea
			m.commandPalette.SelectNext()
			return m, spinnerCmd
		case tea.KeyTab:
			// Autocomplete with selected command and close palette
			selected := m.commandPalette.GetSelected()
			if selected != nil {
				m.textarea.SetValue("/" + selected.Name + " ")
				m.textarea.CursorEnd()
			}
			m.commandPalette.Deactivate()
			return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
		case tea.KeyEnter:
			// Autocomplete with the selected command and close the palette
			selected := m.commandPalette.GetSelected()
			if selected != nil {
				m.textarea.SetValue("/" + selected.Name + " ")
				m.textarea.CursorEnd()
			}
			m.commandPalette.Deactivate()
			return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
		}
		// For other keys, continue to textarea update below
	}

	// Only update textarea if no overlay is active
	// This prevents the textarea from capturing scroll events when an overlay is open
	if !m.overlay.isActive() {
		// Store old textarea height to detect changes
		oldHeight := m.textarea.Height()
		m.textarea, tiCmd = m.textarea.Update(msg)
		newHeight := m.textarea.Height()

		// If textarea height changed, recalculate viewport height
		if oldHeight != newHeight && m.ready {
			m.recalculateLayout()
		}

		// Check if we should activate/deactivate command palette based on input
		value := m.textarea.Value()

		// Handle command palette activation/deactivation based on input
		switch {
		case value == "/" && !m.commandPalette.IsActive():
			// Only activate palette if input is exactly "/" as first character
			m.commandPalette.Activate()
			m.commandPalette.UpdateFilter("")
		case strings.HasPrefix(value, "/") && m.commandPalette.IsActive():
			// Update filter if palette is already active
			filter := strings.TrimPrefix(value, "/")
			m.commandPalette.UpdateFilter(filter)
		case !strings.HasPrefix(value, "/") && m.commandPalette.IsActive():
			// Deactivate palette if input no longer starts with /
			m.commandPalette.Deactivate()
		}

		// Auto-adjust textarea height based on content after any key press
		m.updateTextAreaHeight()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		debugLog.Printf("Received tea.WindowSizeMsg: width=%d, height=%d", msg.Width, msg.Height)
		return m.handleWindowResize(msg)

	case toastMsg:
		debugLog.Printf("Received toastMsg: %s", msg.message)
		return m.handleToast(msg)

	case tuitypes.ToastMsg:
		debugLog.Printf("Received types.ToastMsg: %s", msg.Message)
		// Convert to internal type
		return m.handleToast(toastMsg{
			message: msg.Message,
			details: msg.Details,
			icon:    msg.Icon,
			isError: msg.IsError,
		})

	case agentErrMsg:
		debugLog.Printf("Received agentErrMsg: %v", msg.err)
		return m.handleAgentError(msg)

	case *types.AgentEvent:
		debugLog.Printf("Received *types.AgentEvent: %s", msg.Type)

		// Update viewport BEFORE handling event (important for streaming)
		m.viewport, vpCmd = m.viewport.Update(msg)
		m.handleAgentEvent(msg)
		return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)

	case tea.MouseMsg:
		debugLog.Printf("Received tea.MouseMsg")
		// Handle mouse events (especially scroll wheel) for viewport
		// If overlay is active, forward mouse events to it
		if m.overlay.isActive() {
			var overlayCmd tea.Cmd
			updatedOverlay, overlayCmd := m.overlay.overlay.Update(msg, m, m)

			// Check if overlay returned nil (signals to close)
			if updatedOverlay == nil {
				m.overlay.deactivate()
				m.viewport.SetContent(m.content.String())
				m.viewport.GotoBottom()
				return m, overlayCmd
			}

			m.overlay.overlay = updatedOverlay
			return m, overlayCmd
		}

		// Route mouse events to viewport for scrolling
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)

	case tea.KeyMsg:
		debugLog.Printf("Received tea.KeyMsg: %s", msg.String())
		return m.handleKeyPress(msg, vpCmd, tiCmd, spinnerCmd)

	default:
		debugLog.Printf("Received unknown message type: %T", msg)

		// Forward unrecognized messages to the active overlay so commands
		// returned on close are not dropped
		if m.overlay.isActive() && m.overlay.overlay != nil {
			updatedOverlay, overlayCmd := m.overlay.overlay.Update(msg, m, m)
			if updatedOverlay == nil {
				m.overlay.deactivate()
				m.viewport.SetContent(m.content.String())
				m.viewport.GotoBottom()
			} else {
				m.overlay.overlay = updatedOverlay
			}
			return m, tea.Batch(tiCmd, vpCmd, spinnerCmd, overlayCmd)
		}
	}

	// Update viewport with current message handling
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
}

// calculateViewportHeight computes the appropriate viewport height based on current model state
func (m *model) calculateViewportHeight() int {
	headerHeight := 10                     // ASCII art (6) + tips (1) + status bar (1) + blank line (1) + spacing (1)
	inputHeight := m.textarea.Height() + 2 // textarea height + border
	statusBarHeight := 1
	loadingHeight := 0
	if m.agentBusy {
		loadingHeight = 1 // Loading indicator is a separate line when visible
	}

	viewportHeight := m.height - headerHeight - inputHeight - statusBarHeight - loadingHeight
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	return viewportHeight
}

// handleWindowResize processes window size change events
func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	// Update viewport on window resize
	m.viewport, _ = m.viewport.Update(msg)

	m.width = msg.Width
	m.height = msg.Height

	// Calculate and set viewport dimensions
	m.viewport.Width = m.width - 4
	m.viewport.Height = m.calculateViewportHeight()
	m.textarea.SetWidth(m.width - 8)
	m.ready = true
	m.recalculateLayout()
	return m, nil
}

// handleToast processes toast notification messages
func (m *model) handleToast(msg toastMsg) (tea.Model, tea.Cmd) {
	m.showToast(msg.message, msg.details, msg.icon, msg.isError)
	m.agentBusy = false
	m.recalculateLayout()
	return m, nil
}

// handleAgentError processes agent error messages
func (m *model) handleAgentError(msg agentErrMsg) (tea.Model, tea.Cmd) {
	m.content.WriteString(errorStyle.Render(fmt.Sprintf("  ❌ Error: %v", msg.err)))
	m.content.WriteString("\n\n")
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
	m.agentBusy = false
	m.recalculateLayout()
	return m, nil
}

// handleKeyPress processes keyboard input
func (m *model) handleKeyPress(msg tea.KeyMsg, vpCmd, tiCmd, spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	// Command palette handling is done earlier in Update() before textarea update

	// If an overlay is active, pass keys to the overlay
	if m.overlay.isActive() {
		if m.overlay.overlay != nil {
			updated, cmd := m.overlay.overlay.Update(msg, m, m)
			// If overlay returns nil, it wants to close
			if updated == nil {
				m.ClearOverlay()
			} else {
				m.overlay.overlay = updated
			}
			return m, tea.Batch(cmd, spinnerCmd)
		}
		// If overlay is marked active but nil, deactivate it
		m.overlay.deactivate()
	}

	// Handle key presses based on type
	switch msg.Type {
	case tea.KeyEsc:
		// Escape cancels the in-flight turn when the agent is working
		if m.agentBusy {
			m.cancelCurrentTurn()
			return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
		}

	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlY:
		return m.handleCtrlY()

	case tea.KeyCtrlK:
		return m.handleCtrlK()

	case tea.KeyCtrlP:
		return m.handleCtrlP()

	case tea.KeyEnter:
		// Check if Alt is held down
		if msg.Alt {
			// Insert a newline character
			m.textarea.InsertString("\n")
			m.updateTextAreaHeight()
			return m, nil
		}
		return m.handleEnter(tiCmd, vpCmd, spinnerCmd)
	}

	return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
}

// handleCtrlY handles Ctrl+Y key press (copy last reply to clipboard)
func (m *model) handleCtrlY() (tea.Model, tea.Cmd) {
	handleCopyCommand(m, nil)
	return m, nil
}

// handleCtrlK handles Ctrl+K key press (toggle command palette)
func (m *model) handleCtrlK() (tea.Model, tea.Cmd) {
	if m.commandPalette.IsActive() {
		m.commandPalette.Deactivate()
	} else {
		m.commandPalette.Activate()
	}
	return m, nil
}

// handleCtrlP handles Ctrl+P key press (toggle command palette - alternate)
func (m *model) handleCtrlP() (tea.Model, tea.Cmd) {
	if m.commandPalette.IsActive() {
		m.commandPalette.Deactivate()
	} else {
		m.commandPalette.Activate()
	}
	return m, nil
}

// handleEnter handles Enter key press (send message or run a slash command)
func (m *model) handleEnter(tiCmd, vpCmd, spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	if input == "" {
		return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
	}

	// Handle slash commands
	if strings.HasPrefix(input, "/") {
		return m.handleSlashCommand(input, tiCmd, vpCmd, spinnerCmd)
	}

	// Handle regular agent message
	return m.handleAgentMessage(input, tiCmd, vpCmd, spinnerCmd)
}

// handleSlashCommand processes slash commands
func (m *model) handleSlashCommand(input string, tiCmd, vpCmd, spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	// Do NOT display slash commands in chat history - they are executed silently

	// Clear the input area
	m.textarea.Reset()

	// Parse slash command
	commandName, args, ok := parseSlashCommand(input)
	if !ok {
		m.showToast("Invalid command", "Could not parse slash command", "❌", true)
		return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
	}

	// Execute slash command
	updatedModel, cmd := executeSlashCommand(m, commandName, args)
	return updatedModel, tea.Batch(tiCmd, vpCmd, spinnerCmd, cmd)
}

// handleAgentMessage processes regular agent messages
func (m *model) handleAgentMessage(input string, tiCmd, vpCmd, spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.channels == nil {
		m.showToast("Error", "Agent not available", "❌", true)
		return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
	}

	// Display user message
	formatted := formatEntry("You: ", input, userStyle, m.width, true)
	// Strip any trailing newlines before adding our spacing
	formatted = strings.TrimRight(formatted, "\n")
	m.content.WriteString(formatted + "\n\n")

	// Clear input
	m.textarea.Reset()
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()

	// Set agent busy
	m.agentBusy = true
	m.currentLoadingMessage = getRandomLoadingMessage()
	m.recalculateLayout()

	// Send message to agent
	userInput := types.NewUserInput(input)
	debugLog.Printf("Sending user input to agent: %+v", userInput)
	m.channels.Input <- userInput

	return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
}

// recalculateLayout updates viewport content and scrolls to bottom
func (m *model) recalculateLayout() {
	// Update viewport height based on current state (including loading indicator)
	m.viewport.Height = m.calculateViewportHeight()
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}
