package llm

import (
	"fmt"
	"strings"

	"github.com/ppetrenko/veridex/internal/model"
)

// NewProvider creates a classification provider from configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "local", "ollama", "oobabooga":
		return NewLocalProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, local)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider: modelConfig.Provider,
		Model:    modelConfig.Model,
		APIKey:   modelConfig.APIKey,
		BaseURL:  modelConfig.BaseURL,
		Timeout:  modelConfig.Timeout,
	}
}
