package quorum

import "fmt"

// ModelInfo describes one catalog entry for a provider.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}

// ProviderCatalog lists the models a provider offers and its default.
type ProviderCatalog struct {
	Default string      `json:"default"`
	Models  []ModelInfo `json:"models"`
}

// catalogOrder fixes the dispatch order used when callers hand in an
// unordered provider→model map.
var catalogOrder = []string{"openai", "claude", "gemini", "grok"}

// availableModels is static configuration data, not computed state. The
// presentation layer serves it verbatim from the model-listing endpoint.
var availableModels = map[string]ProviderCatalog{
	"openai": {
		Default: "gpt-4.1-2025-04-14",
		Models: []ModelInfo{
			{ID: "gpt-4.1-2025-04-14", Name: "GPT-4.1", ContextLength: 128000},
			{ID: "gpt-4o-2024-11-20", Name: "GPT-4o", ContextLength: 128000},
			{ID: "o3-2025-04-16", Name: "o3", ContextLength: 128000},
		},
	},
	"claude": {
		Default: "claude-3-7-sonnet-latest",
		Models: []ModelInfo{
			{ID: "claude-3-opus-latest", Name: "Claude 3 Opus", ContextLength: 200000},
			{ID: "claude-3-7-sonnet-latest", Name: "Claude 3 Sonnet", ContextLength: 200000},
			{ID: "claude-3-5-haiku-latest", Name: "Claude 3 Haiku", ContextLength: 200000},
		},
	},
	"gemini": {
		Default: "gemini-2.5-pro-preview-05-06",
		Models: []ModelInfo{
			{ID: "gemini-2.5-pro-preview-05-06", Name: "Gemini Pro", ContextLength: 32768},
		},
	},
	"grok": {
		Default: "grok-2-latest",
		Models: []ModelInfo{
			{ID: "grok-2-latest", Name: "Grok 2", ContextLength: 131072},
		},
	},
}

// Judge defaults.
const (
	DefaultJudgeProvider = "openai"
	DefaultJudgeModel    = "o3-2025-04-16"
)

// Catalog returns the available models by provider.
func Catalog() map[string]ProviderCatalog {
	return availableModels
}

// CatalogOrder returns the fixed provider ordering.
func CatalogOrder() []string {
	return catalogOrder
}

// DefaultSpecs returns the default comparison set: every cataloged provider
// except the judge's, each with its default model, in catalog order.
func DefaultSpecs() []ModelSpec {
	specs := make([]ModelSpec, 0, len(catalogOrder))
	for _, name := range []string{"openai", "claude", "gemini"} {
		specs = append(specs, ModelSpec{Provider: name, Model: availableModels[name].Default})
	}
	return specs
}

// SpecsFromMap converts a provider→model map into an ordered spec list,
// following catalog order so dispatch order is deterministic. An empty model
// string selects the provider's default. Unknown providers are rejected.
func SpecsFromMap(models map[string]string) ([]ModelSpec, error) {
	for name := range models {
		if _, ok := availableModels[name]; !ok {
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}

	specs := make([]ModelSpec, 0, len(models))
	for _, name := range catalogOrder {
		model, ok := models[name]
		if !ok {
			continue
		}
		if model == "" {
			model = availableModels[name].Default
		}
		specs = append(specs, ModelSpec{Provider: name, Model: model})
	}
	return specs, nil
}
