package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/executor/tui/types"
)

// Color Palette
// The exported palette lives in the types package so overlays share it; these
// aliases keep the shorthand names used throughout this package.
var (
	skyBlue     = types.SkyBlue     // Primary accent
	seafoam     = types.Seafoam     // Success and navigation states
	mutedGray   = types.MutedGray   // Secondary text
	brightWhite = types.BrightWhite // Primary text
	errorRed    = types.ErrorRed    // Errors
)

// Common Styles
// These are pre-configured styles for common UI elements.
var (
	// Text Styles
	headerStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	userStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(seafoam)

	directiveStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorRed)

	// Container Styles
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(skyBlue).
			Padding(0, 1)
)
