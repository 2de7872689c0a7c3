package llm

import (
	"fmt"
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// NewProvider creates a provider from configuration. An empty provider name
// disables generation entirely: the pipeline then always returns the
// deterministic analysis.
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
