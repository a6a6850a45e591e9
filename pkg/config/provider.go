package config

import (
	"fmt"
	"os"

	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/llm/ollama"
	"github.com/entrhq/scout/pkg/llm/openai"
)

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
//
// The provider kind defaults to ollama, which needs no credentials and
// matches the local-model workflow. Selecting openai requires an API key
// from the -api-key flag, the OPENAI_API_KEY environment variable, or the
// config file.
func BuildProvider(cliProvider, cliModel, cliBaseURL, cliAPIKey string) (llm.Provider, error) {
	llmConfig := GetLLM()

	kind := cliProvider
	if kind == "" && llmConfig != nil {
		kind = llmConfig.GetProvider()
	}
	if kind == "" {
		kind = ProviderOllama
	}

	model := cliModel
	if model == "" && llmConfig != nil {
		model = llmConfig.GetModel()
	}

	switch kind {
	case ProviderOllama:
		return buildOllamaProvider(llmConfig, model, cliBaseURL)
	case ProviderOpenAI:
		return buildOpenAIProvider(llmConfig, model, cliBaseURL, cliAPIKey)
	default:
		return nil, fmt.Errorf("unknown provider %q (expected %q or %q)", kind, ProviderOllama, ProviderOpenAI)
	}
}

// buildOllamaProvider resolves ollama settings and constructs the provider.
// Base URL precedence: CLI flag > OLLAMA_HOST > config file > provider default.
func buildOllamaProvider(llmConfig *LLMSection, model, cliBaseURL string) (llm.Provider, error) {
	baseURL := cliBaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" && llmConfig != nil {
		baseURL = llmConfig.GetBaseURL()
	}

	opts := []ollama.ProviderOption{}
	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, ollama.WithBaseURL(baseURL))
	}
	if llmConfig != nil {
		if numCtx := llmConfig.GetNumCtx(); numCtx > 0 {
			opts = append(opts, ollama.WithContextWindow(numCtx))
		}
		if temperature := llmConfig.GetTemperature(); temperature >= 0 {
			opts = append(opts, ollama.WithTemperature(temperature))
		}
	}

	provider, err := ollama.NewProvider(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}

// buildOpenAIProvider resolves openai settings and constructs the provider.
// API key and base URL precedence: CLI flag > environment > config file.
func buildOpenAIProvider(llmConfig *LLMSection, model, cliBaseURL, cliAPIKey string) (llm.Provider, error) {
	apiKey := cliAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" && llmConfig != nil {
		apiKey = llmConfig.GetAPIKey()
	}

	baseURL := cliBaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL == "" && llmConfig != nil {
		baseURL = llmConfig.GetBaseURL()
	}

	if apiKey == "" {
		return nil, fmt.Errorf("API key is required. Set OPENAI_API_KEY environment variable, use -api-key flag, or configure in ~/.scout/config.json")
	}

	opts := []openai.ProviderOption{}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if llmConfig != nil {
		if temperature := llmConfig.GetTemperature(); temperature >= 0 {
			opts = append(opts, openai.WithTemperature(temperature))
		}
	}

	provider, err := openai.NewProvider(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}
