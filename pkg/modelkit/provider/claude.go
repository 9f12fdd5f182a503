package provider

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/quorumkit/quorum/pkg/httputil"
	"github.com/quorumkit/quorum/pkg/modelkit/config"
	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
)

const (
	defaultClaudeURL       = "https://api.anthropic.com/v1/messages"
	defaultClaudeModel     = "claude-3-7-sonnet-latest"
	defaultClaudeMaxTokens = 4096
)

// SupportedClaudeModels defines capabilities for Claude models
var SupportedClaudeModels = map[string]struct {
	Supported        bool
	MaxContextTokens int
}{
	"claude-3-opus-latest":     {true, 200000},
	"claude-3-7-sonnet-latest": {true, 200000},
	"claude-3-5-haiku-latest":  {true, 200000},
}

// ClaudeProvider implements the Provider interface for Anthropic's Claude
type ClaudeProvider struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
}

// ClaudeFactory creates Claude providers
type ClaudeFactory struct{}

// Name returns the provider name
func (f *ClaudeFactory) Name() string {
	return "claude"
}

// Create returns a new Claude provider
func (f *ClaudeFactory) Create(cfg config.Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, aierrors.New("claude", "create", aierrors.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}
	if _, exists := SupportedClaudeModels[model]; !exists {
		model = defaultClaudeModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultClaudeURL
	}

	return &ClaudeProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		timeout: cfg.Timeout,
	}, nil
}

// GetAvailableModels returns supported Claude models
func (f *ClaudeFactory) GetAvailableModels() []string {
	models := make([]string, 0, len(SupportedClaudeModels))
	for model, info := range SupportedClaudeModels {
		if info.Supported {
			models = append(models, model)
		}
	}
	sort.Strings(models)
	return models
}

// DefaultModel returns the default Claude model
func (f *ClaudeFactory) DefaultModel() string {
	return defaultClaudeModel
}

// Name returns the provider name
func (p *ClaudeProvider) Name() string {
	return "claude"
}

// Model returns the current model
func (p *ClaudeProvider) Model() string {
	return p.model
}

// GenerateResponse sends a request to Claude and returns the response
func (p *ClaudeProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	maxTokens := defaultClaudeMaxTokens
	if request.MaxTokens > 0 {
		maxTokens = request.MaxTokens
	}

	temperature := 0.7
	if request.Temperature > 0 {
		temperature = request.Temperature
	}

	claudeReq := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": request.Prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	details := httputil.RequestDetails{
		URL: p.baseURL,
		AdditionalHeaders: map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": "2023-06-01",
		},
		RequestBody: claudeReq,
	}

	responseBody, err := httputil.SendRequest(ctx, details, httputil.ClientOptions{Timeout: p.timeout})
	if err != nil {
		return Response{}, aierrors.New("claude", "generate_response", err)
	}

	var claudeResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(responseBody, &claudeResp); err != nil {
		return Response{}, aierrors.New("claude", "parse_response",
			errors.Wrap(aierrors.ErrMalformedResponse, err.Error()))
	}

	var content strings.Builder
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	if content.Len() == 0 {
		return Response{}, aierrors.New("claude", "parse_response",
			errors.Wrap(aierrors.ErrMalformedResponse, "no text content returned from API"))
	}

	return Response{
		Content:  content.String(),
		Model:    p.model,
		Provider: "claude",
		Usage: &UsageInfo{
			PromptTokens:     claudeResp.Usage.InputTokens,
			CompletionTokens: claudeResp.Usage.OutputTokens,
			TotalTokens:      claudeResp.Usage.InputTokens + claudeResp.Usage.OutputTokens,
		},
	}, nil
}

// Register the Claude factory
func init() {
	Register(&ClaudeFactory{})
}
