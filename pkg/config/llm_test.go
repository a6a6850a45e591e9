package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMSection(t *testing.T) {
	section := NewLLMSection()
	assert.NotNil(t, section)
	assert.Equal(t, "", section.Provider)
	assert.Equal(t, "", section.Model)
	assert.Equal(t, "", section.BaseURL)
	assert.Equal(t, "", section.APIKey)
	assert.Equal(t, 0, section.NumCtx)
	assert.Equal(t, -1.0, section.Temperature)
}

func TestLLMSection_ID(t *testing.T) {
	section := NewLLMSection()
	assert.Equal(t, SectionIDLLM, section.ID())
	assert.Equal(t, "llm", section.ID())
}

func TestLLMSection_Title(t *testing.T) {
	section := NewLLMSection()
	assert.Equal(t, "LLM Settings", section.Title())
}

func TestLLMSection_Description(t *testing.T) {
	section := NewLLMSection()
	desc := section.Description()
	assert.NotEmpty(t, desc)
	assert.Contains(t, desc, "provider")
	assert.Contains(t, desc, "model")
}

func TestLLMSection_Data(t *testing.T) {
	section := NewLLMSection()
	section.Provider = ProviderOpenAI
	section.Model = "gpt-4-turbo"
	section.BaseURL = "https://api.openai.com/v1"
	section.APIKey = "sk-test123"
	section.NumCtx = 8192

	data := section.Data()
	assert.Equal(t, "openai", data["provider"])
	assert.Equal(t, "gpt-4-turbo", data["model"])
	assert.Equal(t, "https://api.openai.com/v1", data["base_url"])
	assert.Equal(t, "sk-test123", data["api_key"])
	assert.Equal(t, 8192, data["num_ctx"])
}

func TestLLMSection_SetData(t *testing.T) {
	tests := []struct {
		name           string
		data           map[string]any
		expectProvider string
		expectModel    string
		expectURL      string
		expectKey      string
		expectNumCtx   int
		expectError    bool
	}{
		{
			name: "valid data",
			data: map[string]any{
				"provider": "openai",
				"model":    "gpt-4-turbo",
				"base_url": "https://custom.api.com",
				"api_key":  "sk-custom",
			},
			expectProvider: "openai",
			expectModel:    "gpt-4-turbo",
			expectURL:      "https://custom.api.com",
			expectKey:      "sk-custom",
			expectError:    false,
		},
		{
			name: "partial data",
			data: map[string]any{
				"model": "llama3.1",
			},
			expectModel: "llama3.1",
			expectError: false,
		},
		{
			name: "numbers decoded from json arrive as float64",
			data: map[string]any{
				"num_ctx": float64(20480),
			},
			expectNumCtx: 20480,
			expectError:  false,
		},
		{
			name:        "nil data",
			data:        nil,
			expectError: false,
		},
		{
			name:        "empty data",
			data:        map[string]any{},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := NewLLMSection()
			err := section.SetData(tt.data)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				// Only check values that were set in test case
				if _, ok := tt.data["provider"]; ok {
					assert.Equal(t, tt.expectProvider, section.Provider)
				}
				if _, ok := tt.data["model"]; ok {
					assert.Equal(t, tt.expectModel, section.Model)
				}
				if _, ok := tt.data["base_url"]; ok {
					assert.Equal(t, tt.expectURL, section.BaseURL)
				}
				if _, ok := tt.data["api_key"]; ok {
					assert.Equal(t, tt.expectKey, section.APIKey)
				}
				if _, ok := tt.data["num_ctx"]; ok {
					assert.Equal(t, tt.expectNumCtx, section.NumCtx)
				}
			}
		})
	}
}

func TestLLMSection_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*LLMSection)
		expectErr bool
	}{
		{
			name:      "defaults are valid",
			mutate:    func(s *LLMSection) {},
			expectErr: false,
		},
		{
			name:      "ollama provider",
			mutate:    func(s *LLMSection) { s.Provider = ProviderOllama },
			expectErr: false,
		},
		{
			name:      "openai provider",
			mutate:    func(s *LLMSection) { s.Provider = ProviderOpenAI },
			expectErr: false,
		},
		{
			name:      "unknown provider",
			mutate:    func(s *LLMSection) { s.Provider = "anthropic" },
			expectErr: true,
		},
		{
			name:      "negative num_ctx",
			mutate:    func(s *LLMSection) { s.NumCtx = -1 },
			expectErr: true,
		},
		{
			name:      "negative completion timeout",
			mutate:    func(s *LLMSection) { s.CompletionTimeout = -5 },
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := NewLLMSection()
			tt.mutate(section)

			err := section.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLLMSection_Reset(t *testing.T) {
	section := NewLLMSection()
	section.Provider = ProviderOpenAI
	section.Model = "custom-model"
	section.BaseURL = "https://custom.api.com"
	section.APIKey = "sk-custom"
	section.NumCtx = 4096
	section.Temperature = 0.2

	section.Reset()

	assert.Equal(t, "", section.Provider)
	assert.Equal(t, "", section.Model)
	assert.Equal(t, "", section.BaseURL)
	assert.Equal(t, "", section.APIKey)
	assert.Equal(t, 0, section.NumCtx)
	assert.Equal(t, -1.0, section.Temperature)
}

func TestLLMSection_GettersSetters(t *testing.T) {
	section := NewLLMSection()

	// Test Provider
	section.SetProvider(ProviderOllama)
	assert.Equal(t, "ollama", section.GetProvider())

	// Test Model
	section.SetModel("gpt-4-turbo")
	assert.Equal(t, "gpt-4-turbo", section.GetModel())

	// Test BaseURL
	section.SetBaseURL("https://api.example.com")
	assert.Equal(t, "https://api.example.com", section.GetBaseURL())

	// Test APIKey
	section.SetAPIKey("sk-test123")
	assert.Equal(t, "sk-test123", section.GetAPIKey())
}

func TestLLMSection_ThreadSafety(t *testing.T) {
	section := NewLLMSection()

	// Test concurrent reads and writes
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			section.SetModel("model")
			_ = section.GetModel()
			section.SetBaseURL("url")
			_ = section.GetBaseURL()
			section.SetAPIKey("key")
			_ = section.GetAPIKey()
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestLLMSection_IntegrationWithManager(t *testing.T) {
	// Create a temporary file store
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(tmpFile)
	require.NoError(t, err)

	manager := NewManager(store)

	// Register LLM section
	section := NewLLMSection()
	err = manager.RegisterSection(section)
	require.NoError(t, err)

	// Update configuration
	section.SetProvider(ProviderOpenAI)
	section.SetModel("gpt-4-turbo")
	section.SetBaseURL("https://api.openai.com/v1")
	section.SetAPIKey("sk-test")

	// Save configuration
	err = manager.SaveAll()
	require.NoError(t, err)

	// Create new section and manager to simulate restart
	newSection := NewLLMSection()
	newStore, err := NewFileStore(tmpFile)
	require.NoError(t, err)
	newManager := NewManager(newStore)
	err = newManager.RegisterSection(newSection)
	require.NoError(t, err)

	// Load configuration
	err = newManager.LoadAll()
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, "openai", newSection.GetProvider())
	assert.Equal(t, "gpt-4-turbo", newSection.GetModel())
	assert.Equal(t, "https://api.openai.com/v1", newSection.GetBaseURL())
	assert.Equal(t, "sk-test", newSection.GetAPIKey())
}
