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
	defaultOpenAIURL       = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel     = "gpt-4.1-2025-04-14"
	defaultOpenAIMaxTokens = 4096
)

// SupportedOpenAIModels defines capabilities for OpenAI models
var SupportedOpenAIModels = map[string]struct {
	Supported        bool
	MaxContextTokens int
}{
	"gpt-4.1-2025-04-14": {true, 128000},
	"gpt-4o-2024-11-20":  {true, 128000},
	"o3-2025-04-16":      {true, 128000},
	"gpt-4o-mini":        {true, 128000},
}

// OpenAIProvider implements the Provider interface for OpenAI
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
}

// OpenAIFactory creates OpenAI providers
type OpenAIFactory struct{}

// Name returns the provider name
func (f *OpenAIFactory) Name() string {
	return "openai"
}

// Create returns a new OpenAI provider
func (f *OpenAIFactory) Create(cfg config.Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, aierrors.New("openai", "create", aierrors.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	if _, exists := SupportedOpenAIModels[model]; !exists {
		model = defaultOpenAIModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}

	return &OpenAIProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		timeout: cfg.Timeout,
	}, nil
}

// GetAvailableModels returns supported OpenAI models
func (f *OpenAIFactory) GetAvailableModels() []string {
	models := make([]string, 0, len(SupportedOpenAIModels))
	for model, info := range SupportedOpenAIModels {
		if info.Supported {
			models = append(models, model)
		}
	}
	sort.Strings(models)
	return models
}

// DefaultModel returns the default OpenAI model
func (f *OpenAIFactory) DefaultModel() string {
	return defaultOpenAIModel
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the current model
func (p *OpenAIProvider) Model() string {
	return p.model
}

// GenerateResponse sends a request to OpenAI and returns the response
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	maxTokens := defaultOpenAIMaxTokens
	if request.MaxTokens > 0 {
		maxTokens = request.MaxTokens
	}

	temperature := 0.7
	if request.Temperature > 0 {
		temperature = request.Temperature
	}

	openaiReq := map[string]interface{}{
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
		RequestBody: openaiReq,
	}

	responseBody, err := httputil.SendRequest(ctx, details, httputil.ClientOptions{Timeout: p.timeout})
	if err != nil {
		return Response{}, aierrors.New("openai", "generate_response", err)
	}

	var openaiResp struct {
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

	if err := json.Unmarshal(responseBody, &openaiResp); err != nil {
		return Response{}, aierrors.New("openai", "parse_response",
			errors.Wrap(aierrors.ErrMalformedResponse, err.Error()))
	}

	if len(openaiResp.Choices) == 0 {
		return Response{}, aierrors.New("openai", "parse_response",
			errors.Wrap(aierrors.ErrMalformedResponse, "no choices returned from API"))
	}

	return Response{
		Content:  openaiResp.Choices[0].Message.Content,
		Model:    p.model,
		Provider: "openai",
		Usage: &UsageInfo{
			PromptTokens:     openaiResp.Usage.PromptTokens,
			CompletionTokens: openaiResp.Usage.CompletionTokens,
			TotalTokens:      openaiResp.Usage.TotalTokens,
		},
	}, nil
}

// Register the OpenAI factory
func init() {
	Register(&OpenAIFactory{})
}
