package types

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all TUI colors.
// Use these constants throughout the TUI to ensure visual consistency.
var (
	// SkyBlue is the primary accent color
	SkyBlue = lipgloss.Color("#8ECAE6")

	// Seafoam marks success states and navigation notices
	Seafoam = lipgloss.Color("#94E2D5")

	// MutedGray is used for secondary text
	MutedGray = lipgloss.Color("#6B7280")

	// BrightWhite is the primary text color
	BrightWhite = lipgloss.Color("#F9FAFB")

	// ErrorRed marks errors and failed navigations
	ErrorRed = lipgloss.Color("#F38BA8")

	// PaletteBg is the highlight background for the command palette
	PaletteBg = lipgloss.Color("#374151")

	// Progress bar colors, keyed by context usage
	ProgressGreen  = lipgloss.Color("#4ADE80")
	ProgressYellow = lipgloss.Color("#FACC15")
	ProgressRed    = lipgloss.Color("#F87171")
	ProgressEmpty  = lipgloss.Color("#374151")
)

// Shared overlay styles
var (
	// OverlayTitleStyle is used for main overlay titles
	OverlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(SkyBlue)

	// OverlaySubtitleStyle is used for overlay subtitles and secondary text
	OverlaySubtitleStyle = lipgloss.NewStyle().
				Foreground(MutedGray)

	// OverlayHelpStyle is used for help text and hints
	OverlayHelpStyle = lipgloss.NewStyle().
				Foreground(MutedGray).
				Italic(true)
)

// CreateOverlayContainerStyle builds the bordered container every overlay
// renders into, sized to the given content width.
func CreateOverlayContainerStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SkyBlue).
		Padding(1, 2).
		Width(width)
}
