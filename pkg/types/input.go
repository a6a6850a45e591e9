package types

// InputType defines the type of input being sent to the agent.
type InputType string

const (
	InputTypeCancel       InputType = "cancel"        // InputTypeCancel indicates a cancellation request.
	InputTypeUserInput    InputType = "user_input"    // InputTypeUserInput indicates a chat message from the operator.
	InputTypeLoadURL      InputType = "load_url"      // InputTypeLoadURL indicates a request to load a web page.
	InputTypeLoadDocument InputType = "load_document" // InputTypeLoadDocument indicates a request to load a local document.
	InputTypeReset        InputType = "reset"         // InputTypeReset indicates a request to clear the conversation.
)

// Input represents the inputs a driver can send to an agent.
type Input struct {
	// Metadata holds optional additional information about the input.
	Metadata map[string]interface{}

	// Content is the text content for user input.
	Content string

	// URL is the page to load for load_url inputs.
	URL string

	// DocumentName is the display name for load_document inputs.
	DocumentName string

	// DocumentData is the raw document bytes for load_document inputs.
	DocumentData []byte

	// Type indicates the kind of input.
	Type InputType
}

// NewCancelInput creates a new cancellation input.
func NewCancelInput() *Input {
	return &Input{
		Type:     InputTypeCancel,
		Metadata: make(map[string]interface{}),
	}
}

// NewUserInput creates a new chat message input.
func NewUserInput(content string) *Input {
	return &Input{
		Type:     InputTypeUserInput,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewLoadURLInput creates a request to load the given page.
func NewLoadURLInput(url string) *Input {
	return &Input{
		Type:     InputTypeLoadURL,
		URL:      url,
		Metadata: make(map[string]interface{}),
	}
}

// NewLoadDocumentInput creates a request to load a document by name and bytes.
func NewLoadDocumentInput(name string, data []byte) *Input {
	return &Input{
		Type:         InputTypeLoadDocument,
		DocumentName: name,
		DocumentData: data,
		Metadata:     make(map[string]interface{}),
	}
}

// NewResetInput creates a request to clear the conversation history.
func NewResetInput() *Input {
	return &Input{
		Type:     InputTypeReset,
		Metadata: make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the input and returns the input for chaining.
func (i *Input) WithMetadata(key string, value interface{}) *Input {
	if i.Metadata == nil {
		i.Metadata = make(map[string]interface{})
	}
	i.Metadata[key] = value
	return i
}

// IsCancel returns true if this is a cancellation input.
func (i *Input) IsCancel() bool {
	return i.Type == InputTypeCancel
}

// IsUserInput returns true if this is a chat message input.
func (i *Input) IsUserInput() bool {
	return i.Type == InputTypeUserInput
}

// IsLoad returns true if this is a load request of either kind.
func (i *Input) IsLoad() bool {
	return i.Type == InputTypeLoadURL || i.Type == InputTypeLoadDocument
}
