package llm

// StreamChunk is a single increment of a streamed model response.
type StreamChunk struct {
	// Role is set on the first chunk of a response (e.g., "assistant").
	Role string

	// Content is the text delta carried by this chunk.
	Content string

	// Finished is true on the terminal chunk of a successful stream.
	Finished bool

	// Error is set when the stream failed mid-flight.
	Error error
}

// IsError reports whether this chunk carries a stream error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}
