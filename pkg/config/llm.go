package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"

	// ProviderOllama selects the native Ollama chat API.
	ProviderOllama = "ollama"

	// ProviderOpenAI selects the OpenAI-compatible chat completions API.
	ProviderOpenAI = "openai"
)

// LLMSection manages LLM provider configuration settings.
type LLMSection struct {
	Provider          string  // "ollama" or "openai"; empty means ollama
	Model             string
	BaseURL           string
	APIKey            string
	NumCtx            int     // context window sent to ollama; 0 means provider default
	Temperature       float64 // sampling temperature; negative means provider default
	CompletionTimeout int     // seconds per completion call; 0 means agent default
	CompletionRetries int     // retries after a failed completion call; negative means agent default
	mu                sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{
		Provider:          "",
		Model:             "",
		BaseURL:           "",
		APIKey:            "",
		NumCtx:            0,
		Temperature:       -1,
		CompletionTimeout: 0,
		CompletionRetries: -1,
	}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Configure the completion engine: provider (ollama or openai), model, endpoint, credentials, sampling options, and the per-call timeout and retry policy."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"provider":           s.Provider,
		"model":              s.Model,
		"base_url":           s.BaseURL,
		"api_key":            s.APIKey,
		"num_ctx":            s.NumCtx,
		"temperature":        s.Temperature,
		"completion_timeout": s.CompletionTimeout,
		"completion_retries": s.CompletionRetries,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if provider, ok := data["provider"].(string); ok {
		s.Provider = provider
	}

	if model, ok := data["model"].(string); ok {
		s.Model = model
	}

	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}

	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}

	if numCtx, ok := asInt(data["num_ctx"]); ok {
		s.NumCtx = numCtx
	}

	if temperature, ok := asFloat(data["temperature"]); ok {
		s.Temperature = temperature
	}

	if timeout, ok := asInt(data["completion_timeout"]); ok {
		s.CompletionTimeout = timeout
	}

	if retries, ok := asInt(data["completion_retries"]); ok {
		s.CompletionRetries = retries
	}

	return nil
}

// Validate validates the current configuration.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Provider {
	case "", ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q (expected %q or %q)", s.Provider, ProviderOllama, ProviderOpenAI)
	}

	if s.NumCtx < 0 {
		return fmt.Errorf("num_ctx cannot be negative")
	}
	if s.CompletionTimeout < 0 {
		return fmt.Errorf("completion_timeout cannot be negative")
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provider = ""
	s.Model = ""
	s.BaseURL = ""
	s.APIKey = ""
	s.NumCtx = 0
	s.Temperature = -1
	s.CompletionTimeout = 0
	s.CompletionRetries = -1
}

// GetProvider returns the configured provider kind.
func (s *LLMSection) GetProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Provider
}

// SetProvider sets the provider kind.
func (s *LLMSection) SetProvider(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provider = provider
}

// GetModel returns the configured model name.
func (s *LLMSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// SetModel sets the model name.
func (s *LLMSection) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = model
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// SetBaseURL sets the base URL.
func (s *LLMSection) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = baseURL
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// SetAPIKey sets the API key.
func (s *LLMSection) SetAPIKey(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = apiKey
}

// GetNumCtx returns the configured context window. Zero means use the
// provider default.
func (s *LLMSection) GetNumCtx() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NumCtx
}

// GetTemperature returns the configured sampling temperature. A negative
// value means use the provider default.
func (s *LLMSection) GetTemperature() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Temperature
}

// GetCompletionTimeout returns the per-call timeout in seconds. Zero means
// use the agent default.
func (s *LLMSection) GetCompletionTimeout() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CompletionTimeout
}

// GetCompletionRetries returns the retry count for failed completion
// calls. A negative value means use the agent default.
func (s *LLMSection) GetCompletionRetries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CompletionRetries
}

// asInt coerces a JSON-decoded value to int. Numbers arrive as float64
// from the JSON decoder but may be int when set programmatically.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// asFloat coerces a JSON-decoded value to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
