package provider

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/quorumkit/quorum/pkg/httputil"
	"github.com/quorumkit/quorum/pkg/modelkit/config"
	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
)

const (
	defaultGrokURL       = "https://api.x.ai/v1/chat/completions"
	defaultGrokModel     = "grok-2-latest"
	defaultGrokMaxTokens = 2048
)

// SupportedGrokModels defines capabilities for Grok models
var SupportedGrokModels = map[string]struct {
	Supported        bool
	MaxContextTokens int
}{
	"grok-2-latest": {true, 131072},
	"grok-beta":     {true, 131072},
}

// GrokProvider implements the Provider interface for xAI's Grok.
// The API is OpenAI-compatible, so the wire handling mirrors the
// OpenAI adapter with a different endpoint and key.
type GrokProvider struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
}

// GrokFactory creates Grok providers
type GrokFactory struct{}

// Name returns the provider name
func (f *GrokFactory) Name() string {
	return "grok"
}

// Create returns a new Grok provider
func (f *GrokFactory) Create(cfg config.Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, aierrors.New("grok", "create", aierrors.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGrokModel
	}
	if _, exists := SupportedGrokModels[model]; !exists {
		model = defaultGrokModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGrokURL
	}

	return &GrokProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		timeout: cfg.Timeout,
	}, nil
}

// GetAvailableModels returns supported Grok models
func (f *GrokFactory) GetAvailableModels() []string {
	models := make([]string, 0, len(SupportedGrokModels))
	for model, info := range SupportedGrokModels {
		if info.Supported {
			models = append(models, model)
		}
	}
	sort.Strings(models)
	return models
}

// DefaultModel returns the default Grok model
func (f *GrokFactory) DefaultModel() string {
	return defaultGrokModel
}

// Name returns the provider name
func (p *GrokProvider) Name() string {
	return "grok"
}

// Model returns the current model
func (p *GrokProvider) Model() string {
	return p.model
}

// GenerateResponse sends a request to Grok and returns the response
func (p *GrokProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	maxTokens := defaultGrokMaxTokens
	if request.MaxTokens > 0 {
		maxTokens = request.MaxTokens
	}

	temperature := 0.7
	if request.Temperature > 0 {
		temperature = request.Temperature
	}

	grokReq := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": request.Prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	details := httputil.RequestDetails{
		URL:         p.baseURL,
		APIKey:      p.apiKey,
		RequestBody: grokReq,
	}

	responseBody, err := httputil.SendRequest(ctx, details, httputil.ClientOptions{Timeout: p.timeout})
	if err != nil {
		return Response{}, aierrors.New("grok", "generate_response", err)
	}

	var grokResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(responseBody, &grokResp); err != nil {
		return Response{}, aierrors.New("grok", "parse_response",
			errors.Wrap(aierrors.ErrMalformedResponse, err.Error()))
	}

	if len(grokResp.Choices) == 0 {
		return Response{}, aierrors.New("grok", "parse_response",
			errors.Wrap(aierrors.ErrMalformedResponse, "no choices returned from API"))
	}

	return Response{
		Content:  grokResp.Choices[0].Message.Content,
		Model:    p.model,
		Provider: "grok",
		Usage: &UsageInfo{
			PromptTokens:     grokResp.Usage.PromptTokens,
			CompletionTokens: grokResp.Usage.CompletionTokens,
			TotalTokens:      grokResp.Usage.TotalTokens,
		},
	}, nil
}

// Register the Grok factory
func init() {
	Register(&GrokFactory{})
}
