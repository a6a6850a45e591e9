// Package ollama provides an LLM provider backed by a local Ollama server.
//
// It speaks Ollama's native /api/chat endpoint rather than the
// OpenAI-compatible shim so that context window (num_ctx) and temperature
// reach the server as real sampling options.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/llm/parser"
	"github.com/entrhq/scout/pkg/types"
)

const (
	// DefaultBaseURL is the default Ollama server address.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3.1"

	// DefaultContextWindow is the num_ctx sent when none is configured.
	DefaultContextWindow = 20480

	// DefaultTemperature is the sampling temperature sent when none is configured.
	DefaultTemperature = 0.7
)

// Provider implements the LLM provider interface against Ollama's native
// chat API. Responses stream as newline-delimited JSON objects.
type Provider struct {
	httpClient    *http.Client
	baseURL       string
	model         string
	contextWindow int
	temperature   float64
	modelInfo     *types.ModelInfo
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets the Ollama server address.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithContextWindow sets the num_ctx option sent with completions.
func WithContextWindow(tokens int) ProviderOption {
	return func(p *Provider) {
		if tokens > 0 {
			p.contextWindow = tokens
		}
	}
}

// WithTemperature sets the sampling temperature sent with completions.
func WithTemperature(temperature float64) ProviderOption {
	return func(p *Provider) {
		p.temperature = temperature
	}
}

// NewProvider creates a new Ollama provider.
//
// The server address defaults to http://localhost:11434 and can be overridden
// with WithBaseURL or the OLLAMA_HOST environment variable. No API key is
// required for a local server.
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		httpClient:    &http.Client{},
		baseURL:       DefaultBaseURL,
		model:         DefaultModel,
		contextWindow: DefaultContextWindow,
		temperature:   DefaultTemperature,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envHost := os.Getenv("OLLAMA_HOST"); envHost != "" {
			p.baseURL = envHost
		}
	}

	p.modelInfo = &types.ModelInfo{
		Provider:          "ollama",
		Name:              p.model,
		SupportsStreaming: true,
		MaxTokens:         p.contextWindow,
		Metadata: map[string]interface{}{
			"base_url":    p.baseURL,
			"temperature": p.temperature,
		},
	}

	return p, nil
}

// CloneWithModel returns a shallow copy of p configured to use the given
// model. It implements llm.ModelCloner.
func (p *Provider) CloneWithModel(model string) llm.Provider {
	clone := *p
	clone.model = model
	if p.modelInfo != nil {
		mi := *p.modelInfo
		mi.Name = model
		clone.modelInfo = &mi
	}
	return &clone
}

// chatRequest is the native /api/chat request body.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []*chatMessage `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  chatOptions    `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumCtx      int     `json:"num_ctx,omitempty"`
	Temperature float64 `json:"temperature"`
}

// chatChunk is one NDJSON object from the streaming response.
type chatChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// StreamCompletion sends messages to the Ollama server and streams back
// response chunks. The returned channel closes when the stream ends.
func (p *Provider) StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *llm.StreamChunk, error) {
	resp, err := p.sendStreamRequest(ctx, messages)
	if err != nil {
		return nil, err
	}

	chunks := make(chan *llm.StreamChunk, 10)
	go p.processStreamResponse(ctx, resp, chunks)
	return chunks, nil
}

// sendStreamRequest creates and sends the HTTP request for streaming
func (p *Provider) sendStreamRequest(ctx context.Context, messages []*types.Message) (*http.Response, error) {
	reqBody := chatRequest{
		Model:    p.model,
		Messages: convertMessages(messages),
		Stream:   true,
		Options: chatOptions{
			NumCtx:      p.contextWindow,
			Temperature: p.temperature,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("chat request failed with status %d (failed to read error body: %w)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// processStreamResponse reads NDJSON objects and sends chunks to the channel
func (p *Provider) processStreamResponse(ctx context.Context, resp *http.Response, chunks chan<- *llm.StreamChunk) {
	defer close(chunks)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	firstChunk := true
	directiveParser := parser.NewDirectiveParser()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue // Skip malformed lines silently
		}

		if chunk.Error != "" {
			chunks <- &llm.StreamChunk{Error: fmt.Errorf("ollama: %s", chunk.Error)}
			return
		}

		role := ""
		if firstChunk && chunk.Message.Role != "" {
			role = chunk.Message.Role
			firstChunk = false
		}

		if chunk.Message.Content != "" {
			if !p.processContent(ctx, chunk.Message.Content, role, directiveParser, chunks) {
				return
			}
		}

		if chunk.Done {
			p.flushRemainingContent(ctx, directiveParser, chunks)
			chunks <- &llm.StreamChunk{Finished: true}
			return
		}
	}

	p.flushRemainingContent(ctx, directiveParser, chunks)

	if err := scanner.Err(); err != nil {
		chunks <- &llm.StreamChunk{Error: fmt.Errorf("stream read error: %w", err)}
	}
}

// processContent parses and sends content chunks
func (p *Provider) processContent(ctx context.Context, content, role string, directiveParser *parser.DirectiveParser, chunks chan<- *llm.StreamChunk) bool {
	directiveChunk, messageChunk := directiveParser.Parse(content)

	if messageChunk != nil {
		messageChunk.Role = role
		if !p.sendChunkIfPresent(ctx, messageChunk, chunks) {
			return false
		}
	}

	if directiveChunk != nil {
		directiveChunk.Role = role
		if !p.sendChunkIfPresent(ctx, directiveChunk, chunks) {
			return false
		}
	}

	return true
}

// flushRemainingContent flushes any buffered content from the directive parser
func (p *Provider) flushRemainingContent(ctx context.Context, directiveParser *parser.DirectiveParser, chunks chan<- *llm.StreamChunk) {
	directive, message := directiveParser.Flush()
	p.sendChunkIfPresent(ctx, directive, chunks)
	p.sendChunkIfPresent(ctx, message, chunks)
}

// sendChunkIfPresent sends a chunk to the channel if it's not nil
func (p *Provider) sendChunkIfPresent(ctx context.Context, chunk *llm.StreamChunk, chunks chan<- *llm.StreamChunk) bool {
	if chunk == nil {
		return true
	}
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		chunks <- &llm.StreamChunk{Error: ctx.Err()}
		return false
	}
}

// Complete sends messages to the Ollama server and returns the full response.
func (p *Provider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	stream, err := p.StreamCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	var content string
	var role string

	for chunk := range stream {
		if chunk.IsError() {
			return nil, chunk.Error
		}

		if chunk.Role != "" {
			role = chunk.Role
		}

		content += chunk.Content
	}

	if role == "" {
		role = string(types.RoleAssistant)
	}

	return &types.Message{
		Role:    types.MessageRole(role),
		Content: content,
	}, nil
}

// GetModelInfo returns information about the model being used.
func (p *Provider) GetModelInfo() *types.ModelInfo {
	return p.modelInfo
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the server address being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// GetAPIKey returns the API key being used. Local Ollama servers do not
// authenticate, so this is always empty.
func (p *Provider) GetAPIKey() string {
	return ""
}

// convertMessages converts our Message format to Ollama's chat format.
func convertMessages(messages []*types.Message) []*chatMessage {
	out := make([]*chatMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, &chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}
