// Package tui provides a terminal user interface executor for Scout agents,
// offering an interactive interface for loading sources and chatting about
// them.
//
// The TUI codebase is split into multiple files for better organization:
// - executor.go: Main executor implementation and program lifecycle
// - model.go: Core model structure and state
// - init.go: Initialization logic
// - update.go: Bubble Tea Update function and message handling
// - view.go: Bubble Tea View function and rendering
// - events.go: Agent event processing
// - markdown.go: Terminal markdown rendering for replies
// - helpers.go: Utility functions
// - styles.go: Color schemes and styling
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/llm"
)

// Executor is a TUI-based executor that provides an interactive
// interface for agent interaction.
type Executor struct {
	agent    agent.Agent
	program  *tea.Program
	provider llm.Provider
	header   string // Custom ASCII art header (optional)
}

// NewExecutor creates a new TUI executor for the given agent.
// The headerText will be automatically converted to ASCII art for display.
func NewExecutor(agent agent.Agent, provider llm.Provider, headerText string) *Executor {
	return &Executor{
		agent:    agent,
		provider: provider,
		header:   headerText,
	}
}

// Run starts the TUI executor and blocks until the user exits.
func (e *Executor) Run(ctx context.Context) error {
	// Initialize debug logging first
	initDebugLog()
	debugLog.Printf("TUI Executor starting...")

	// Start the agent first
	if err := e.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}
	debugLog.Printf("Agent started successfully")

	m := initialModel()
	m.agent = e.agent
	m.channels = e.agent.GetChannels()
	m.provider = e.provider
	m.header = e.header
	debugLog.Printf("Model initialized")

	e.program = tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		// Listen for agent events and forward them to the TUI
		for event := range m.channels.Event {
			debugLog.Printf("Forwarding agent event to TUI: %T - %+v", event, event)
			e.program.Send(event)
		}
	}()

	if _, err := e.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	return nil
}
