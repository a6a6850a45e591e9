package tui

import (
	"fmt"
	"time"

	"github.com/entrhq/scout/pkg/executor/tui/types"
	pkgtypes "github.com/entrhq/scout/pkg/types"
)

// SetOverlay activates an overlay
func (m *model) SetOverlay(mode types.OverlayMode, overlay types.Overlay) {
	m.overlay.activate(mode, overlay)
}

// ClearOverlay closes the current overlay and returns focus to the input
func (m *model) ClearOverlay() {
	m.overlay.deactivate()
	m.textarea.Focus()
}

// ShowToast displays a toast notification
func (m *model) ShowToast(message, details, icon string, isError bool) {
	m.toast = &toastNotification{
		active:    true,
		message:   message,
		details:   details,
		icon:      icon,
		isError:   isError,
		showUntil: time.Now().Add(5 * time.Second),
	}
}

// SetInput sets the textarea content
func (m *model) SetInput(value string) {
	m.textarea.SetValue(value)
	m.updateTextAreaHeight()
}

// SetCursorEnd moves the cursor to the end of input
func (m *model) SetCursorEnd() {
	m.textarea.CursorEnd()
}

// LoadURL asks the agent to load the given URL into context. Used by the
// links overlay so picking a link behaves exactly like /load.
func (m *model) LoadURL(url string) {
	if m.channels == nil {
		return
	}
	m.agentBusy = true
	m.currentLoadingMessage = fmt.Sprintf("Fetching %s...", url)
	m.recalculateLayout()
	m.channels.Input <- pkgtypes.NewLoadURLInput(url)
}

// Quit triggers application exit by setting a flag that will be checked in the
// Update loop. This allows overlays and other components to request app
// termination without directly returning tea.Quit (which would break the
// Bubble Tea command chain).
func (m *model) Quit() {
	m.shouldQuit = true
}

// cancelCurrentTurn sends a cancellation signal to the agent without blocking.
// The cancel channel is buffered, so if a signal is already pending the new
// one is dropped rather than stalling the UI.
func (m *model) cancelCurrentTurn() {
	if m.channels == nil {
		return
	}
	select {
	case m.channels.Cancel <- struct{}{}:
		m.showToast("Cancelling", "Stopping the current operation", "🛑", false)
	default:
	}
}

// ScreenSize returns the current terminal dimensions
func (m *model) ScreenSize() (int, int) {
	return m.width, m.height
}
