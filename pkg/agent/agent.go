// Package agent provides the core agent interface and DefaultAgent
// implementation for the Scout research agent.
//
// The DefaultAgent is available directly from this package for simple usage:
//
//	import "github.com/entrhq/scout/pkg/agent"
//	ag := agent.NewDefaultAgent(provider, agent.WithCustomInstructions("..."))
//
// The package is organized with subpackages for specialized functionality:
//   - memory: Conversation history storage
//   - prompts: System prompt construction from the loaded resource
package agent

import (
	"context"

	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/types"
)

// Agent interface defines the core capabilities of a Scout agent.
// Agents are async event-driven components that process inputs through
// an LLM provider and communicate via channels.
type Agent interface {
	// Start begins the agent's event loop in a goroutine.
	// The agent will listen for inputs on its input channel and process them
	// asynchronously, sending responses to the event channel.
	//
	// The agent runs until:
	// - The context is canceled
	// - The shutdown channel is closed
	//
	// Returns an error if the agent fails to start, otherwise returns nil
	// and continues running asynchronously.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the agent.
	// This method signals the agent to stop processing new inputs and
	// complete any in-flight operation before shutting down.
	//
	// Returns when the agent has fully stopped or the context is canceled.
	Shutdown(ctx context.Context) error

	// GetChannels returns the communication channels for this agent.
	// The executor uses these channels to send input and receive output.
	GetChannels() *types.AgentChannels

	// GetSession returns the session owning the current resource and
	// conversation history.
	GetSession() *Session

	// GetContextInfo returns detailed context information for debugging and
	// display. This includes system prompt size, resource stats, message
	// history, and token usage.
	GetContextInfo() *ContextInfo

	// SetProvider updates the LLM provider used by the agent.
	// This allows hot-reloading of provider configuration without restarting
	// the agent. The update is thread-safe and takes effect on the next turn.
	SetProvider(provider llm.Provider) error
}

// State identifies where the agent is in its processing lifecycle.
type State string

const (
	// StateNoSource means no resource has been loaded yet.
	StateNoSource State = "no_source"

	// StateLoaded means a resource is loaded and the agent is idle.
	StateLoaded State = "loaded"

	// StateAwaitingCompletion means a completion call is in flight.
	StateAwaitingCompletion State = "awaiting_completion"

	// StateNavigating means a model-driven navigation fetch is in flight.
	StateNavigating State = "navigating"
)

// ContextInfo contains detailed agent context statistics
type ContextInfo struct {
	// System prompt
	SystemPromptTokens int
	CustomInstructions bool

	// Current resource
	SourceID        string
	SourceTitle     string
	SourceTextBytes int
	SourceTruncated bool
	LinkCount       int
	FileCount       int

	// Message history
	MessageCount       int
	ConversationTurns  int
	ConversationTokens int

	// Token usage - current context
	CurrentContextTokens int
	MaxContextTokens     int
	FreeTokens           int
	UsagePercent         float64
}
