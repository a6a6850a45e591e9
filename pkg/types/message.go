package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem is the composed instruction turn, never stored in history.
	RoleUser      MessageRole = "user"      // RoleUser is an operator turn.
	RoleAssistant MessageRole = "assistant" // RoleAssistant is a model turn (or a synthetic navigation notice).
)

// Message is a single conversation turn exchanged with the model.
type Message struct {
	// Role identifies the author of the message.
	Role MessageRole `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role MessageRole, content string) *Message {
	return &Message{
		Role:    role,
		Content: content,
	}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// IsSystem returns true if this is a system message.
func (m *Message) IsSystem() bool {
	return m.Role == RoleSystem
}

// IsUser returns true if this is a user message.
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if this is an assistant message.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// ModelInfo describes the model behind a provider.
type ModelInfo struct {
	// Provider is the provider kind serving the model (e.g., "ollama", "openai").
	Provider string

	// Name is the model identifier.
	Name string

	// SupportsStreaming indicates whether the provider streams completions.
	SupportsStreaming bool

	// MaxTokens is the advertised context window size, 0 when unknown.
	MaxTokens int

	// Metadata holds optional provider-specific details.
	Metadata map[string]interface{}
}
