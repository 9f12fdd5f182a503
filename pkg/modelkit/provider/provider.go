// Package provider defines the core provider interface for AI model services
package provider

import (
	"context"

	"github.com/quorumkit/quorum/pkg/modelkit/config"
)

// Provider represents one external AI model service. Implementations wrap a
// single endpoint and normalize its replies and failures into the common
// Response / error shape. Adapters do not retry; callers own retry policy.
type Provider interface {
	// GenerateResponse sends one prompt to the model and returns its reply
	GenerateResponse(ctx context.Context, request Request) (Response, error)

	// Information methods
	Name() string
	Model() string
}

// Request contains all parameters for a generation request
type Request struct {
	// Prompt is the text prompt or query
	Prompt string

	// Temperature controls randomness (0.0-1.0)
	Temperature float64

	// MaxTokens limits the response length
	MaxTokens int

	// Additional provider-specific parameters
	Parameters map[string]interface{}
}

// Response contains the output from an AI provider
type Response struct {
	// Content is the text response
	Content string

	// Model identifies the model used
	Model string

	// Provider identifies the provider used
	Provider string

	// Usage contains token usage information when the provider reports it
	Usage *UsageInfo
}

// UsageInfo contains token usage statistics
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderFactory creates Provider instances
type ProviderFactory interface {
	// Name returns the name of this provider factory
	Name() string

	// Create returns a new Provider instance
	Create(cfg config.Config) (Provider, error)

	// GetAvailableModels returns a list of available models for this provider
	GetAvailableModels() []string

	// DefaultModel returns the model used when none is configured
	DefaultModel() string
}
