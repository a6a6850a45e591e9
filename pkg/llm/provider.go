// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/entrhq/scout/pkg/llm/ollama"
//	    "github.com/entrhq/scout/pkg/types"
//	)
//
//	func main() {
//	    provider, err := ollama.NewProvider(
//	        ollama.WithModel("llama3.1"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    messages := []*types.Message{
//	        types.NewUserMessage("Hello!"),
//	    }
//
//	    stream, err := provider.StreamCompletion(context.Background(), messages)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for chunk := range stream {
//	        if chunk.IsError() {
//	            log.Fatal(chunk.Error)
//	        }
//	        fmt.Print(chunk.Content)
//	    }
//	}
package llm

import (
	"context"

	"github.com/entrhq/scout/pkg/types"
)

// ModelCloner is an optional interface that LLM providers can implement to
// support lightweight model swaps without constructing a full second
// provider. The returned provider shares credentials and transport with the
// original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// Provider defines the interface for LLM integrations.
//
// A provider speaks one API dialect and turns its wire format into
// StreamChunk values; it knows nothing about sessions, directives, or
// events. The agent layer owns those concerns: it converts chunks into
// AgentEvents, interprets navigation directives, and manages conversation
// history. Keeping that split means a provider can be driven outside the
// agent (headless runs, batch extraction) and tested against a fake server
// with no agent in the loop.
type Provider interface {
	// StreamCompletion sends messages to the LLM and streams back response
	// chunks.
	//
	// The first chunk typically carries the Role; later chunks carry
	// Content deltas, typed as message or directive text; the final chunk
	// has Finished set. The channel closes when the stream ends, so callers
	// should read until close.
	//
	// The error return covers failures to start the stream (bad
	// configuration, network down). Errors mid-stream arrive as chunks
	// with Error set.
	StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *StreamChunk, error)

	// Complete sends messages to the LLM and returns the full response.
	// It accumulates a stream internally, for callers that don't need
	// incremental output.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string

	// GetAPIKey returns the API key being used for authentication.
	GetAPIKey() string
}
