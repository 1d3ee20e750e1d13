// Package types defines the shared message and model types used across
// the mcpkit pipeline.
package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	// RoleSystem is the role for system prompts.
	RoleSystem MessageRole = "system"

	// RoleUser is the role for user-authored messages.
	RoleUser MessageRole = "user"

	// RoleAssistant is the role for model-authored messages.
	RoleAssistant MessageRole = "assistant"
)

// Message is a single conversation message exchanged with an LLM provider.
type Message struct {
	// Role indicates who authored the message.
	Role MessageRole

	// Content is the message text.
	Content string
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the LLM model behind a provider.
type ModelInfo struct {
	// Name is the model identifier (e.g., "gpt-4o").
	Name string

	// Provider is the provider family (e.g., "openai", "anthropic").
	Provider string

	// MaxTokens is the model's context window size, if known.
	MaxTokens int

	// SupportsStreaming indicates whether the provider streams responses.
	SupportsStreaming bool

	// Metadata holds provider-specific details such as base URL overrides.
	Metadata map[string]interface{}
}
