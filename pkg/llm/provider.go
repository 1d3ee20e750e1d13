// Package llm provides the abstraction over hosted language-model
// providers used by the mcpkit pipeline.
//
// Providers handle API communication only and return plain StreamChunk
// instances. The auth and discovery layers are responsible for prompt
// construction and for interpreting model output; this separation keeps
// providers reusable and independently testable.
package llm

import (
	"context"

	"github.com/mcpkit/mcpkit/pkg/types"
)

// Provider defines the interface for LLM integrations.
type Provider interface {
	// StreamCompletion sends messages to the LLM and streams back response
	// chunks. The returned channel emits StreamChunk instances and is closed
	// when streaming completes or an error occurs. Callers should continue
	// reading until the channel is closed.
	//
	// Returns an error only if streaming cannot be initiated (invalid
	// configuration, network unavailable). Stream-time errors are sent as
	// chunks with Error set.
	StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *StreamChunk, error)

	// Complete sends messages to the LLM and returns the full response.
	// This is a convenience wrapper around StreamCompletion that accumulates
	// all chunks into a single message.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetModelInfo returns information about the model being used.
	GetModelInfo() *types.ModelInfo
}
