package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/executor/tui/overlay"
	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/types"
)

// model represents the state of the TUI application.
// It contains all components needed for the interactive terminal interface.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Agent integration
	agent    agent.Agent
	channels *types.AgentChannels
	provider llm.Provider

	// Customization
	header string // Custom ASCII art header (empty means use default)

	// Content buffers
	content       *strings.Builder
	messageBuffer *strings.Builder

	// UI state
	overlay        *overlayState
	commandPalette *overlay.CommandPalette
	toast          *toastNotification

	// Loaded source state, mirrored from resource events for the status line
	source sourceState

	// Agent state
	agentBusy             bool
	currentLoadingMessage string

	// Reply rendering
	renderMarkdown bool
	lastReply      string // Last assistant reply, kept for Ctrl+Y copy

	// Window dimensions
	width  int
	height int
	ready  bool

	// Message state
	hasMessageContentStarted bool

	// Token usage tracking
	totalPromptTokens     int // Cumulative input tokens across all API calls
	totalCompletionTokens int // Cumulative output tokens across all API calls
	totalTokens           int // Cumulative total tokens (input + output)
	currentContextTokens  int // Current conversation context size
	maxContextTokens      int // Maximum allowed context size

	// Application state
	shouldQuit bool // Flag to trigger application exit
}

// sourceState mirrors the currently loaded resource for display purposes.
// The authoritative resource lives in the agent session; this copy is updated
// from ResourceLoaded events so the status line never blocks on the agent.
type sourceState struct {
	loaded        bool
	sourceID      string
	title         string
	textBytes     int
	linkCount     int
	fileCount     int
	truncated     bool
	viaNavigation bool
}

// agentErrMsg represents an error from agent operations
type agentErrMsg struct{ err error }

// toastMsg triggers a toast notification
type toastMsg struct {
	message string
	details string
	icon    string
	isError bool
}

// toastNotification represents a temporary notification message
type toastNotification struct {
	active    bool
	message   string
	details   string
	icon      string
	isError   bool
	showUntil time.Time
}
