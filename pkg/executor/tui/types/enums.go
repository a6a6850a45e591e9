package types

// OverlayMode represents the current overlay state
type OverlayMode int

const (
	// OverlayModeNone indicates no overlay is active
	OverlayModeNone OverlayMode = iota
	// OverlayModeHelp shows the help overlay
	OverlayModeHelp
	// OverlayModeContext shows the context information overlay
	OverlayModeContext
	// OverlayModeLinks shows the page links overlay
	OverlayModeLinks
	// OverlayModeSource shows the loaded source text overlay
	OverlayModeSource
	// OverlayModeSettings shows the settings overlay
	OverlayModeSettings
)
