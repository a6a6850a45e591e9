package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/executor/tui/types"
)

// overlayState tracks the active overlay and its mode
type overlayState struct {
	mode    types.OverlayMode
	overlay types.Overlay
}

// newOverlayState creates a new overlay state
func newOverlayState() *overlayState {
	return &overlayState{
		mode: types.OverlayModeNone,
	}
}

// activate shows an overlay, replacing any existing one
func (o *overlayState) activate(mode types.OverlayMode, overlay types.Overlay) {
	o.mode = mode
	o.overlay = overlay
}

// deactivate closes the current overlay
func (o *overlayState) deactivate() {
	o.mode = types.OverlayModeNone
	o.overlay = nil
}

// isActive returns whether any overlay is currently active
func (o *overlayState) isActive() bool {
	if o.mode == types.OverlayModeNone {
		return false
	}
	// If mode is set but overlay is nil, this is an inconsistent state
	// We should deactivate to prevent panics
	if o.overlay == nil {
		o.mode = types.OverlayModeNone
		return false
	}
	return true
}

// renderOverlay renders an overlay centered on a clean background
// This creates a modal appearance by not showing the base view underneath
func renderOverlay(baseView string, overlay types.Overlay, width, height int) string {
	if overlay == nil {
		return baseView
	}

	overlayView := overlay.View()

	// Position the overlay centered on a clean background
	// The lipgloss.Place function will fill the remaining space with whitespace
	// creating a clean modal appearance
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlayView,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}

// renderToastOverlay renders a toast-style overlay near the bottom of the
// screen without affecting the base view's layout
func renderToastOverlay(baseView string, toastContent string) string {
	if toastContent == "" {
		return baseView
	}

	baseLines := strings.Split(baseView, "\n")

	toastLines := strings.Split(strings.TrimRight(toastContent, "\n"), "\n")
	toastHeight := len(toastLines)

	// Position the toast a few lines above the bottom, just over the input box
	startLine := len(baseLines) - 5 - toastHeight
	if startLine < 0 {
		startLine = 0
	}

	var result strings.Builder
	for i, line := range baseLines {
		toastLineIdx := i - startLine
		if toastLineIdx >= 0 && toastLineIdx < len(toastLines) {
			// Overlay the toast line, left-aligned with small padding
			result.WriteString("  ")
			result.WriteString(toastLines[toastLineIdx])
		} else {
			result.WriteString(line)
		}
		if i < len(baseLines)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}
