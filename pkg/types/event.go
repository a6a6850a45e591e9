package types

// AgentEventType defines the type of event emitted by the agent.
type AgentEventType string

const (
	EventTypeMessageStart     AgentEventType = "message_start"     // EventTypeMessageStart indicates the agent is starting to compose a reply.
	EventTypeMessageContent   AgentEventType = "message_content"   // EventTypeMessageContent indicates streamed reply text.
	EventTypeMessageEnd       AgentEventType = "message_end"       // EventTypeMessageEnd indicates the reply is complete.
	EventTypeDirectiveStart   AgentEventType = "directive_start"   // EventTypeDirectiveStart indicates the model began emitting a navigation directive.
	EventTypeDirectiveContent AgentEventType = "directive_content" // EventTypeDirectiveContent indicates streamed directive JSON, withheld from display.
	EventTypeDirectiveEnd     AgentEventType = "directive_end"     // EventTypeDirectiveEnd indicates the directive JSON is complete.
	EventTypeLoadStart        AgentEventType = "load_start"        // EventTypeLoadStart indicates a page or document load has begun.
	EventTypeResourceLoaded   AgentEventType = "resource_loaded"   // EventTypeResourceLoaded indicates a load completed and the session resource was swapped.
	EventTypeNavigationStart  AgentEventType = "navigation_start"  // EventTypeNavigationStart indicates the agent is following a navigation directive.
	EventTypeNavigationEnd    AgentEventType = "navigation_end"    // EventTypeNavigationEnd indicates a directive navigation finished successfully.
	EventTypeNavigationFailed AgentEventType = "navigation_failed" // EventTypeNavigationFailed indicates a directive navigation failed; prior state is intact.
	EventTypeAPICallStart     AgentEventType = "api_call_start"    // EventTypeAPICallStart indicates the agent is making a completion call.
	EventTypeAPICallEnd       AgentEventType = "api_call_end"      // EventTypeAPICallEnd indicates a completion call has finished.
	EventTypeUpdateBusy       AgentEventType = "update_busy"       // EventTypeUpdateBusy indicates a change in the agent's busy status.
	EventTypeTurnEnd          AgentEventType = "turn_end"          // EventTypeTurnEnd indicates the agent has finished processing the current input.
	EventTypeError            AgentEventType = "error"             // EventTypeError indicates an error occurred during agent processing.
	EventTypeTokenUsage       AgentEventType = "token_usage"       // EventTypeTokenUsage indicates token usage information from a completion.
	EventTypeStateChange      AgentEventType = "state_change"      // EventTypeStateChange indicates the session moved to a new lifecycle state.
)

// AgentEvent represents an event emitted by the agent during execution.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Error contains error information for error events.
	Error error

	// Content holds text content for content-type events.
	Content string

	// Type indicates the kind of event.
	Type AgentEventType

	// IsBusy indicates if the agent is busy (for busy status events).
	IsBusy bool

	// Resource describes the loaded source (for resource loaded events).
	Resource *ResourceInfo

	// Navigation describes a directive navigation (for navigation events).
	Navigation *Navigation

	// TokenUsage contains token usage information (for token usage events).
	TokenUsage *TokenUsage

	// APICallInfo contains completion call information (for API call events).
	APICallInfo *APICallInfo

	// State is the new session state (for state change events).
	State string
}

// ResourceInfo summarizes a loaded resource for drivers. The full text
// stays inside the session; events carry only the shape of what loaded.
type ResourceInfo struct {
	// SourceID is the resource's URL or document sentinel.
	SourceID string

	// Title is the page title when one was found.
	Title string

	// TextBytes is the length of the budgeted text.
	TextBytes int

	// LinkCount is the number of classified page links.
	LinkCount int

	// FileCount is the number of classified file links.
	FileCount int

	// Truncated indicates the extracted text hit the budget.
	Truncated bool

	// ViaNavigation indicates the load came from a directive rather than
	// an operator command.
	ViaNavigation bool
}

// Navigation describes one directive-driven navigation attempt.
type Navigation struct {
	// URL is the directive's target.
	URL string

	// Duration is how long the navigation took, formatted.
	Duration string

	// ErrorMessage carries the failure reason for failed navigations.
	ErrorMessage string
}

// TokenUsage contains token usage statistics from a completion call.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the composed prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int

	// TotalTokens is the total number of tokens used (prompt + completion).
	TotalTokens int
}

// APICallInfo contains information about a completion call.
type APICallInfo struct {
	// ContextTokens is the composed prompt size in tokens.
	ContextTokens int

	// MaxContextTokens is the configured context window in tokens.
	MaxContextTokens int

	// Attempt is the 1-based attempt number under the retry policy.
	Attempt int
}

// NewMessageStartEvent creates a message start event.
func NewMessageStartEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessageStart,
		Metadata: make(map[string]interface{}),
	}
}

// NewMessageContentEvent creates a message content event.
func NewMessageContentEvent(content string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessageContent,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewMessageEndEvent creates a message end event.
func NewMessageEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeMessageEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewDirectiveStartEvent creates a directive start event.
func NewDirectiveStartEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeDirectiveStart,
		Metadata: make(map[string]interface{}),
	}
}

// NewDirectiveContentEvent creates a directive content event.
func NewDirectiveContentEvent(content string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeDirectiveContent,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewDirectiveEndEvent creates a directive end event.
func NewDirectiveEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeDirectiveEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewLoadStartEvent creates a load start event for the given source.
func NewLoadStartEvent(sourceID string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeLoadStart,
		Metadata: map[string]interface{}{"source_id": sourceID},
	}
}

// NewResourceLoadedEvent creates a resource loaded event.
func NewResourceLoadedEvent(info *ResourceInfo) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeResourceLoaded,
		Resource: info,
		Metadata: make(map[string]interface{}),
	}
}

// NewNavigationStartEvent creates a navigation start event.
func NewNavigationStartEvent(url string) *AgentEvent {
	return &AgentEvent{
		Type:       EventTypeNavigationStart,
		Navigation: &Navigation{URL: url},
		Metadata:   make(map[string]interface{}),
	}
}

// NewNavigationEndEvent creates a navigation end event.
func NewNavigationEndEvent(url, duration string) *AgentEvent {
	return &AgentEvent{
		Type:       EventTypeNavigationEnd,
		Navigation: &Navigation{URL: url, Duration: duration},
		Metadata:   make(map[string]interface{}),
	}
}

// NewNavigationFailedEvent creates a navigation failed event.
func NewNavigationFailedEvent(url string, err error) *AgentEvent {
	return &AgentEvent{
		Type:       EventTypeNavigationFailed,
		Error:      err,
		Navigation: &Navigation{URL: url, ErrorMessage: err.Error()},
		Metadata:   make(map[string]interface{}),
	}
}

// NewAPICallStartEvent creates an API call start event with context token information.
func NewAPICallStartEvent(contextTokens, maxContextTokens, attempt int) *AgentEvent {
	return &AgentEvent{
		Type: EventTypeAPICallStart,
		APICallInfo: &APICallInfo{
			ContextTokens:    contextTokens,
			MaxContextTokens: maxContextTokens,
			Attempt:          attempt,
		},
		Metadata: make(map[string]interface{}),
	}
}

// NewAPICallEndEvent creates an API call end event.
func NewAPICallEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeAPICallEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewUpdateBusyEvent creates a busy status update event.
func NewUpdateBusyEvent(isBusy bool) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeUpdateBusy,
		IsBusy:   isBusy,
		Metadata: make(map[string]interface{}),
	}
}

// NewTurnEndEvent creates a turn end event.
func NewTurnEndEvent() *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeTurnEnd,
		Metadata: make(map[string]interface{}),
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeError,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// NewTokenUsageEvent creates a token usage event.
func NewTokenUsageEvent(promptTokens, completionTokens, totalTokens int) *AgentEvent {
	return &AgentEvent{
		Type: EventTypeTokenUsage,
		TokenUsage: &TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      totalTokens,
		},
		Metadata: make(map[string]interface{}),
	}
}

// NewStateChangeEvent creates a state change event.
func NewStateChangeEvent(state string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeStateChange,
		State:    state,
		Metadata: make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the event and returns the event for chaining.
func (e *AgentEvent) WithMetadata(key string, value interface{}) *AgentEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsMessageEvent returns true if this is any message-related event.
func (e *AgentEvent) IsMessageEvent() bool {
	return e.Type == EventTypeMessageStart ||
		e.Type == EventTypeMessageContent ||
		e.Type == EventTypeMessageEnd
}

// IsDirectiveEvent returns true if this is any directive-related event.
func (e *AgentEvent) IsDirectiveEvent() bool {
	return e.Type == EventTypeDirectiveStart ||
		e.Type == EventTypeDirectiveContent ||
		e.Type == EventTypeDirectiveEnd
}

// IsNavigationEvent returns true if this is any navigation-related event.
func (e *AgentEvent) IsNavigationEvent() bool {
	return e.Type == EventTypeNavigationStart ||
		e.Type == EventTypeNavigationEnd ||
		e.Type == EventTypeNavigationFailed
}

// IsLoadEvent returns true if this is any load-related event.
func (e *AgentEvent) IsLoadEvent() bool {
	return e.Type == EventTypeLoadStart ||
		e.Type == EventTypeResourceLoaded
}

// IsAPIEvent returns true if this is any API-related event.
func (e *AgentEvent) IsAPIEvent() bool {
	return e.Type == EventTypeAPICallStart ||
		e.Type == EventTypeAPICallEnd
}

// IsContentEvent returns true if this event contains streamed text.
func (e *AgentEvent) IsContentEvent() bool {
	return e.Type == EventTypeMessageContent ||
		e.Type == EventTypeDirectiveContent
}

// IsErrorEvent returns true if this is an error event.
func (e *AgentEvent) IsErrorEvent() bool {
	return e.Type == EventTypeError
}
