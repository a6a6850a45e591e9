package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/types"
)

func collectStream(t *testing.T, stream <-chan *llm.StreamChunk) []*llm.StreamChunk {
	t.Helper()
	var chunks []*llm.StreamChunk
	for chunk := range stream {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func ndjsonHandler(t *testing.T, lines []string, captured *chatRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			w.Write([]byte(line + "\n"))
		}
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")

	provider, err := NewProvider()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.GetBaseURL() != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", provider.GetBaseURL())
	}
	if provider.GetModel() != DefaultModel {
		t.Errorf("expected default model, got %q", provider.GetModel())
	}
	if provider.GetAPIKey() != "" {
		t.Error("local server should not carry an API key")
	}

	info := provider.GetModelInfo()
	if info.Provider != "ollama" || info.Name != DefaultModel {
		t.Errorf("unexpected model info: %+v", info)
	}
	if info.MaxTokens != DefaultContextWindow {
		t.Errorf("expected default context window, got %d", info.MaxTokens)
	}
	if !info.SupportsStreaming {
		t.Error("streaming support should be reported")
	}
}

func TestNewProvider_Options(t *testing.T) {
	provider, err := NewProvider(
		WithModel("qwen2.5"),
		WithBaseURL("http://gpu-box:11434"),
		WithContextWindow(32768),
		WithTemperature(0.2),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.GetModel() != "qwen2.5" {
		t.Errorf("unexpected model: %q", provider.GetModel())
	}
	if provider.GetBaseURL() != "http://gpu-box:11434" {
		t.Errorf("unexpected base URL: %q", provider.GetBaseURL())
	}

	info := provider.GetModelInfo()
	if info.MaxTokens != 32768 {
		t.Errorf("unexpected context window: %d", info.MaxTokens)
	}
	if info.Metadata["temperature"] != 0.2 {
		t.Errorf("unexpected temperature metadata: %v", info.Metadata["temperature"])
	}
}

func TestNewProvider_EnvHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://remote:11434")

	provider, err := NewProvider()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.GetBaseURL() != "http://remote:11434" {
		t.Errorf("expected env host, got %q", provider.GetBaseURL())
	}

	// An explicit base URL wins over the environment.
	provider, err = NewProvider(WithBaseURL("http://explicit:11434"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.GetBaseURL() != "http://explicit:11434" {
		t.Errorf("expected explicit host, got %q", provider.GetBaseURL())
	}
}

func TestStreamCompletion(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(ndjsonHandler(t, []string{
		`{"message":{"role":"assistant","content":"The page "},"done":false}`,
		`{"message":{"role":"assistant","content":"covers pricing."},"done":false}`,
		`{"done":true}`,
	}, &captured))
	defer server.Close()

	provider, err := NewProvider(
		WithModel("llama3.1"),
		WithBaseURL(server.URL),
		WithContextWindow(4096),
		WithTemperature(0.5),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewSystemMessage("You answer from the page."),
		types.NewUserMessage("what does it cover?"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := collectStream(t, stream)

	if captured.Model != "llama3.1" {
		t.Errorf("unexpected model in request: %q", captured.Model)
	}
	if !captured.Stream {
		t.Error("request should ask for streaming")
	}
	if captured.Options.NumCtx != 4096 {
		t.Errorf("unexpected num_ctx: %d", captured.Options.NumCtx)
	}
	if captured.Options.Temperature != 0.5 {
		t.Errorf("unexpected temperature: %v", captured.Options.Temperature)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("unexpected messages in request: %+v", captured.Messages)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Role != "assistant" {
		t.Errorf("first chunk should carry the role, got %q", chunks[0].Role)
	}
	var content strings.Builder
	for _, chunk := range chunks {
		if chunk.IsDirective() {
			t.Errorf("plain reply should not produce directive chunks: %+v", chunk)
		}
		content.WriteString(chunk.Content)
	}
	if content.String() != "The page covers pricing." {
		t.Errorf("unexpected content: %q", content.String())
	}
	if !chunks[len(chunks)-1].Finished {
		t.Error("last chunk should be the finish marker")
	}
}

func TestStreamCompletion_DirectiveSplit(t *testing.T) {
	directive := `{"action": "navigate", "url": "https://example.com/next"}`
	server := httptest.NewServer(ndjsonHandler(t, []string{
		`{"message":{"role":"assistant","content":"Opening that page. "},"done":false}`,
		`{"message":{"role":"assistant","content":"` + `{\"action\": \"navigate\"` + `"},"done":false}`,
		`{"message":{"role":"assistant","content":"` + `, \"url\": \"https://example.com/next\"}` + `"},"done":false}`,
		`{"done":true}`,
	}, nil))
	defer server.Close()

	provider, err := NewProvider(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewUserMessage("follow the next link"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := collectStream(t, stream)

	var message, directiveContent strings.Builder
	for _, chunk := range chunks {
		if chunk.IsDirective() {
			directiveContent.WriteString(chunk.Content)
		} else {
			message.WriteString(chunk.Content)
		}
	}

	if message.String() != "Opening that page. " {
		t.Errorf("unexpected message content: %q", message.String())
	}
	if directiveContent.String() != directive {
		t.Errorf("unexpected directive content: %q", directiveContent.String())
	}
}

func TestStreamCompletion_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewProvider(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewUserMessage("hello"),
	})
	if err == nil {
		t.Fatal("expected an error for non-200 response")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestStreamCompletion_ErrorLine(t *testing.T) {
	server := httptest.NewServer(ndjsonHandler(t, []string{
		`{"message":{"role":"assistant","content":"partial"},"done":false}`,
		`{"error":"runner crashed"}`,
	}, nil))
	defer server.Close()

	provider, err := NewProvider(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewUserMessage("hello"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := collectStream(t, stream)

	last := chunks[len(chunks)-1]
	if !last.IsError() {
		t.Fatalf("expected a trailing error chunk, got %+v", last)
	}
	if !strings.Contains(last.Error.Error(), "runner crashed") {
		t.Errorf("error should carry the server message, got %v", last.Error)
	}
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(ndjsonHandler(t, []string{
		`{"message":{"role":"assistant","content":"All "},"done":false}`,
		`{"message":{"role":"assistant","content":"done."},"done":false}`,
		`{"done":true}`,
	}, nil))
	defer server.Close()

	provider, err := NewProvider(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := provider.Complete(context.Background(), []*types.Message{
		types.NewUserMessage("hello"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role != types.RoleAssistant {
		t.Errorf("unexpected role: %q", msg.Role)
	}
	if msg.Content != "All done." {
		t.Errorf("unexpected content: %q", msg.Content)
	}
}

func TestCloneWithModel(t *testing.T) {
	provider, err := NewProvider(WithModel("llama3.1"), WithBaseURL("http://gpu-box:11434"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clone := provider.CloneWithModel("mistral")

	if clone.GetModel() != "mistral" {
		t.Errorf("clone should use the new model, got %q", clone.GetModel())
	}
	if clone.GetModelInfo().Name != "mistral" {
		t.Errorf("clone model info should track the new model, got %q", clone.GetModelInfo().Name)
	}
	if clone.GetBaseURL() != "http://gpu-box:11434" {
		t.Error("clone should share the server address")
	}

	if provider.GetModel() != "llama3.1" || provider.GetModelInfo().Name != "llama3.1" {
		t.Error("original provider should be unchanged")
	}
}
