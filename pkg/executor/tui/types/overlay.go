package types

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Overlay is the interface implemented by all modal overlays (help, links,
// source viewer, settings, context). Overlays receive every message while
// active; returning a nil Overlay from Update signals that the overlay
// wants to close, and any accompanying command still runs.
type Overlay interface {
	// Update handles a message. The state provider exposes read-only model
	// state (screen size) and the action handler lets overlays mutate the
	// model (toasts, input text, loads) without holding a direct reference.
	Update(msg tea.Msg, state StateProvider, actions ActionHandler) (Overlay, tea.Cmd)

	// View renders the overlay content.
	View() string

	// Width returns the overlay width.
	Width() int

	// Height returns the overlay height.
	Height() int

	// SetDimensions updates the overlay dimensions.
	SetDimensions(width, height int)

	// Focused returns whether the overlay should receive keyboard input.
	Focused() bool

	// SetFocused sets the focus state.
	SetFocused(focused bool)
}

// StateProvider exposes read-only model state to overlays.
type StateProvider interface {
	// ScreenSize returns the current terminal dimensions.
	ScreenSize() (width, height int)
}

// ActionHandler lets overlays request model mutations. The TUI model
// implements this interface; overlays never touch the model directly.
type ActionHandler interface {
	// ShowToast displays a transient notification.
	ShowToast(message, details, icon string, isError bool)

	// SetInput replaces the textarea content.
	SetInput(value string)

	// SetCursorEnd moves the input cursor to the end.
	SetCursorEnd()

	// LoadURL asks the agent to load the given page into the session.
	LoadURL(url string)

	// Quit requests application exit.
	Quit()
}
