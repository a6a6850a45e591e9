package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/scout/pkg/agent/prompts"
	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/llm/tokenizer"
	"github.com/entrhq/scout/pkg/loader"
	"github.com/entrhq/scout/pkg/logging"
	"github.com/entrhq/scout/pkg/security/urlscope"
	"github.com/entrhq/scout/pkg/types"
)

var agentDebugLog *logging.Logger

func init() {
	// On failure NewLogger hands back a stderr fallback that has already
	// reported the cause, so the handle is always usable.
	agentDebugLog, _ = logging.NewLogger("agent")
}

const (
	// DefaultCompletionTimeout bounds a single completion call.
	DefaultCompletionTimeout = 2 * time.Minute

	// DefaultCompletionRetries is how many times a failed completion call
	// is retried before the turn is abandoned.
	DefaultCompletionRetries = 2

	// DefaultRetryBackoff is the base delay between completion retries.
	// The delay grows linearly with the attempt number.
	DefaultRetryBackoff = 2 * time.Second
)

// DefaultAgent is a basic implementation of the Agent interface.
// It holds one loaded resource and one conversation about it, composes a
// fresh system prompt from the resource on every turn, streams completions
// through an LLM provider, and acts on navigation directives the model
// emits.
type DefaultAgent struct {
	provider           llm.Provider
	providerMu         sync.RWMutex
	channels           *types.AgentChannels
	customInstructions string
	bufferSize         int
	metadata           map[string]interface{}

	// Session state
	session *Session
	state   State
	stateMu sync.Mutex

	// Collaborators
	loader *loader.Loader
	scope  *urlscope.Guard

	// Completion call policy
	completionTimeout time.Duration
	completionRetries int
	retryBackoff      time.Duration

	// Prompt composition
	maxLinks int

	// Control channels
	cancelMu     sync.Mutex
	cancelStream context.CancelFunc

	// Turn serialization: ConversationState and the active resource are
	// single-writer; one user turn (and at most one consequent navigation)
	// completes before the next input mutates anything.
	turnMu sync.Mutex

	// Running state
	running bool
	runMu   sync.Mutex

	// Token usage tracking
	tokenizer *tokenizer.Tokenizer

	// Display ceiling for context usage, from the provider's model info.
	maxContextTokens int
}

// AgentOption is a function that configures an agent
type AgentOption func(*DefaultAgent)

// WithCustomInstructions sets custom instructions for the agent
// These are user-provided instructions that will be added to the system prompt
func WithCustomInstructions(instructions string) AgentOption {
	return func(a *DefaultAgent) {
		a.customInstructions = instructions
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) AgentOption {
	return func(a *DefaultAgent) {
		a.bufferSize = size
	}
}

// WithMetadata sets metadata for the agent
func WithMetadata(metadata map[string]interface{}) AgentOption {
	return func(a *DefaultAgent) {
		a.metadata = metadata
	}
}

// WithLoader sets the resource loader used for loads and navigations.
func WithLoader(l *loader.Loader) AgentOption {
	return func(a *DefaultAgent) {
		if l != nil {
			a.loader = l
		}
	}
}

// WithScopeGuard bounds which URLs model-driven navigation may fetch.
// Manual loads are operator-initiated and are not scoped.
func WithScopeGuard(guard *urlscope.Guard) AgentOption {
	return func(a *DefaultAgent) {
		a.scope = guard
	}
}

// WithMaxLinks caps how many links are surfaced to the model per prompt.
func WithMaxLinks(max int) AgentOption {
	return func(a *DefaultAgent) {
		if max > 0 {
			a.maxLinks = max
		}
	}
}

// WithCompletionTimeout bounds a single completion call.
func WithCompletionTimeout(timeout time.Duration) AgentOption {
	return func(a *DefaultAgent) {
		if timeout > 0 {
			a.completionTimeout = timeout
		}
	}
}

// WithCompletionRetries sets how many times a failed completion call is
// retried before the turn is abandoned.
func WithCompletionRetries(retries int) AgentOption {
	return func(a *DefaultAgent) {
		if retries >= 0 {
			a.completionRetries = retries
		}
	}
}

// WithRetryBackoff sets the base delay between completion retries.
func WithRetryBackoff(backoff time.Duration) AgentOption {
	return func(a *DefaultAgent) {
		if backoff > 0 {
			a.retryBackoff = backoff
		}
	}
}

// NewDefaultAgent creates a new DefaultAgent with the given provider and options.
func NewDefaultAgent(provider llm.Provider, opts ...AgentOption) *DefaultAgent {
	// Create tokenizer for client-side token counting
	tok, err := tokenizer.New()
	if err != nil {
		// Fall back to nil tokenizer if initialization fails
		tok = nil
	}

	a := &DefaultAgent{
		provider:          provider,
		bufferSize:        10, // default buffer size
		session:           NewSession(),
		state:             StateNoSource,
		loader:            loader.New(),
		completionTimeout: DefaultCompletionTimeout,
		completionRetries: DefaultCompletionRetries,
		retryBackoff:      DefaultRetryBackoff,
		maxLinks:          prompts.DefaultMaxLinks,
		tokenizer:         tok,
	}

	// Apply options
	for _, opt := range opts {
		opt(a)
	}

	// Create channels with configured buffer size
	a.channels = types.NewAgentChannels(a.bufferSize)

	if provider != nil {
		if info := provider.GetModelInfo(); info != nil {
			a.maxContextTokens = info.MaxTokens
		}
	}

	return a
}

// Start begins the agent's event loop in a goroutine.
func (a *DefaultAgent) Start(ctx context.Context) error {
	a.runMu.Lock()
	if a.running {
		a.runMu.Unlock()
		return fmt.Errorf("agent is already running")
	}
	a.running = true
	a.runMu.Unlock()

	// Start event loop
	go a.eventLoop(ctx)

	return nil
}

// Shutdown gracefully stops the agent.
func (a *DefaultAgent) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(a.channels.Shutdown)

	// Wait for completion or context cancellation
	select {
	case <-a.channels.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetChannels returns the communication channels for this agent.
func (a *DefaultAgent) GetChannels() *types.AgentChannels {
	return a.channels
}

// GetSession returns the session owning the current resource and history.
func (a *DefaultAgent) GetSession() *Session {
	return a.session
}

// eventLoop is the main processing loop for the agent.
func (a *DefaultAgent) eventLoop(ctx context.Context) {
	defer close(a.channels.Done)
	defer a.channels.Close()
	defer func() {
		a.runMu.Lock()
		a.running = false
		a.runMu.Unlock()
	}()

	// Handle cancellation requests on a separate goroutine so they are
	// processed even while a turn is executing.
	cancelCtx, cancelStop := context.WithCancel(ctx)
	defer cancelStop()

	go func() {
		for {
			select {
			case <-cancelCtx.Done():
				return
			case <-a.channels.Cancel:
				a.cancelInFlight()
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// Context canceled
			a.emitEvent(types.NewErrorEvent(ctx.Err()))
			return

		case <-a.channels.Shutdown:
			// Shutdown requested
			return

		case input := <-a.channels.Input:
			if input == nil {
				// Channel closed
				return
			}

			// Handle cancellation immediately (synchronously) so it can
			// interrupt ongoing processing
			if input.IsCancel() {
				a.cancelInFlight()
				continue
			}

			// Process other inputs asynchronously so the loop keeps
			// handling cancel requests; turnMu serializes the actual
			// state mutations.
			go a.processInput(ctx, input)
		}
	}
}

// processInput handles a single input from the user.
func (a *DefaultAgent) processInput(ctx context.Context, input *types.Input) {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()

	switch input.Type {
	case types.InputTypeUserInput:
		a.processUserTurn(ctx, input.Content)

	case types.InputTypeLoadURL:
		a.processManualLoad(ctx, input.URL)

	case types.InputTypeLoadDocument:
		a.processDocumentLoad(input.DocumentName, input.DocumentData)

	case types.InputTypeReset:
		a.session.Reset()
		a.setState(StateNoSource)
		a.emitEvent(types.NewTurnEndEvent())
	}
}

// cancelInFlight cancels the in-flight completion stream, if any.
func (a *DefaultAgent) cancelInFlight() {
	a.cancelMu.Lock()
	defer a.cancelMu.Unlock()
	if a.cancelStream != nil {
		a.cancelStream()
		a.cancelStream = nil
	}
}

// setState records the new state and emits a state change event.
func (a *DefaultAgent) setState(state State) {
	a.stateMu.Lock()
	changed := a.state != state
	a.state = state
	a.stateMu.Unlock()

	if changed {
		a.emitEvent(types.NewStateChangeEvent(string(state)))
	}
}

// GetState returns the agent's current lifecycle state.
func (a *DefaultAgent) GetState() State {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.state
}

// GetProvider returns the LLM provider used by this agent
func (a *DefaultAgent) GetProvider() llm.Provider {
	a.providerMu.RLock()
	defer a.providerMu.RUnlock()
	return a.provider
}

// SetProvider updates the LLM provider used by this agent.
// This allows hot-reloading of provider configuration without restarting the
// agent. The update is thread-safe and takes effect on the next turn.
func (a *DefaultAgent) SetProvider(provider llm.Provider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	a.providerMu.Lock()
	defer a.providerMu.Unlock()
	a.provider = provider
	if info := provider.GetModelInfo(); info != nil {
		a.maxContextTokens = info.MaxTokens
	}

	return nil
}

// GetContextInfo returns detailed context information for debugging and display
func (a *DefaultAgent) GetContextInfo() *ContextInfo {
	resource := a.session.Resource()

	// Build the system prompt the next turn would use
	builder := prompts.NewPromptBuilder().
		WithCustomInstructions(a.customInstructions).
		WithMaxLinks(a.maxLinks)
	if resource != nil {
		builder = builder.WithResource(resource)
	}
	systemPrompt := builder.Build()

	// Get message history stats
	messages := a.session.History()
	messageCount := len(messages)

	// Count conversation turns (user messages)
	conversationTurns := 0
	for _, msg := range messages {
		if msg.Role == types.RoleUser {
			conversationTurns++
		}
	}

	// Calculate token counts
	systemPromptTokens := 0
	conversationTokens := 0
	if a.tokenizer != nil {
		systemPromptTokens = a.tokenizer.CountTokens(systemPrompt)
		conversationTokens = a.tokenizer.CountMessagesTokens(messages)
	} else {
		// Fallback: approximate token counting when tokenizer is unavailable
		systemPromptTokens = tokenizer.EstimateTokens(systemPrompt)
		conversationTokens = tokenizer.EstimateMessagesTokens(messages)
	}
	currentTokens := systemPromptTokens + conversationTokens

	// Calculate free tokens and usage percentage
	maxTokens := a.maxContextTokens
	freeTokens := 0
	usagePercent := 0.0
	if maxTokens > 0 {
		freeTokens = maxTokens - currentTokens
		if freeTokens < 0 {
			freeTokens = 0
		}
		usagePercent = float64(currentTokens) / float64(maxTokens) * 100.0
	}

	info := &ContextInfo{
		SystemPromptTokens:   systemPromptTokens,
		CustomInstructions:   a.customInstructions != "",
		MessageCount:         messageCount,
		ConversationTurns:    conversationTurns,
		ConversationTokens:   conversationTokens,
		CurrentContextTokens: currentTokens,
		MaxContextTokens:     maxTokens,
		FreeTokens:           freeTokens,
		UsagePercent:         usagePercent,
	}

	if resource != nil {
		info.SourceID = resource.SourceID
		info.SourceTitle = resource.Title
		info.SourceTextBytes = len(resource.Text)
		info.SourceTruncated = resource.Truncated
		info.LinkCount = len(resource.Links)
		info.FileCount = len(resource.Files)
	}

	return info
}

// emitEvent sends an event on the event channel.
// This is a blocking send to ensure critical events like TurnEnd are not dropped.
// It safely handles the case where the event channel may be closed during shutdown.
func (a *DefaultAgent) emitEvent(event *types.AgentEvent) {
	defer func() {
		if r := recover(); r != nil {
			// Event channel was closed during shutdown - this is expected
		}
	}()
	a.channels.Event <- event
}
