package llm

// ContentType classifies streamed completion content.
type ContentType string

const (
	// ContentTypeMessage is regular reply text intended for display.
	ContentTypeMessage ContentType = "message"

	// ContentTypeDirective is navigation directive JSON. Drivers withhold
	// it from display; the agent acts on it when the stream completes.
	ContentTypeDirective ContentType = "directive"
)

// StreamChunk is one piece of a streamed completion.
type StreamChunk struct {
	// Role is the author role, set on the first chunk of a stream.
	Role string

	// Content is the text delta carried by this chunk.
	Content string

	// Type classifies the content (message or directive).
	Type ContentType

	// Finished indicates the stream completed normally.
	Finished bool

	// Error carries a stream-time failure; the channel closes after.
	Error error
}

// IsError returns true if this chunk carries an error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}

// IsDirective returns true if this chunk carries directive content.
func (c *StreamChunk) IsDirective() bool {
	return c.Type == ContentTypeDirective
}
