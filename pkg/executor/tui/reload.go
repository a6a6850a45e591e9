package tui

import (
	"fmt"

	"github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/llm"
)

// reloadLLMProvider hot-reloads the LLM provider when settings change.
// A model-only change clones the running provider; anything else builds a
// fresh one from the saved configuration. Either way the result is swapped
// into the running agent.
func (m *model) reloadLLMProvider() error {
	if !config.IsInitialized() {
		return fmt.Errorf("configuration not initialized")
	}

	provider := m.cloneForModelChange()
	if provider == nil {
		// No CLI overrides here: the settings overlay writes straight
		// to config.
		built, err := config.BuildProvider("", "", "", "")
		if err != nil {
			return fmt.Errorf("failed to create LLM provider: %w", err)
		}
		provider = built
	}

	// Update the agent's provider (thread-safe hot-reload)
	if err := m.agent.SetProvider(provider); err != nil {
		return fmt.Errorf("failed to update agent provider: %w", err)
	}

	// Update the model's provider reference so the header and settings
	// overlay see fresh values
	m.provider = provider

	return nil
}

// cloneForModelChange returns a model-swapped clone of the running provider
// when the saved settings differ from it only by model name. Credentials and
// transport carry over. Returns nil when any other editable field changed,
// which forces the full rebuild path.
func (m *model) cloneForModelChange() llm.Provider {
	cloner, ok := m.provider.(llm.ModelCloner)
	if !ok {
		return nil
	}

	llmConfig := config.GetLLM()
	if llmConfig == nil {
		return nil
	}

	info := m.provider.GetModelInfo()
	if info == nil || llmConfig.GetProvider() != info.Provider {
		return nil
	}
	if baseURL := llmConfig.GetBaseURL(); baseURL != "" && baseURL != m.provider.GetBaseURL() {
		return nil
	}
	if apiKey := llmConfig.GetAPIKey(); apiKey != "" && apiKey != m.provider.GetAPIKey() {
		return nil
	}

	model := llmConfig.GetModel()
	if model == "" || model == m.provider.GetModel() {
		return nil
	}
	return cloner.CloneWithModel(model)
}
