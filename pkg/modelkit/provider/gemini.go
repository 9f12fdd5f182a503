package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quorumkit/quorum/pkg/modelkit/config"
	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
)

const (
	defaultGeminiModel     = "gemini-2.5-pro-preview-05-06"
	defaultGeminiMaxTokens = 2048
)

// SupportedGeminiModels defines capabilities for Gemini models
var SupportedGeminiModels = map[string]struct {
	Supported        bool
	MaxContextTokens int
}{
	"gemini-2.5-pro-preview-05-06": {true, 32768},
	"gemini-1.5-pro":               {true, 1000000},
	"gemini-1.5-flash":             {true, 1000000},
}

// GeminiProvider implements the Provider interface on top of the genai SDK
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// GeminiFactory creates Gemini providers
type GeminiFactory struct{}

// Name returns the provider name
func (f *GeminiFactory) Name() string {
	return "gemini"
}

// Create returns a new Gemini provider
func (f *GeminiFactory) Create(cfg config.Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, aierrors.New("gemini", "create", aierrors.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if _, exists := SupportedGeminiModels[model]; !exists {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, aierrors.New("gemini", "create", err)
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// GetAvailableModels returns supported Gemini models
func (f *GeminiFactory) GetAvailableModels() []string {
	models := make([]string, 0, len(SupportedGeminiModels))
	for model, info := range SupportedGeminiModels {
		if info.Supported {
			models = append(models, model)
		}
	}
	sort.Strings(models)
	return models
}

// DefaultModel returns the default Gemini model
func (f *GeminiFactory) DefaultModel() string {
	return defaultGeminiModel
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the current model
func (p *GeminiProvider) Model() string {
	return p.model
}

// GenerateResponse sends a request to Gemini and returns the response
func (p *GeminiProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	model := p.client.GenerativeModel(p.model)
	if request.Temperature > 0 {
		model.SetTemperature(float32(request.Temperature))
	}
	if request.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(request.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(request.Prompt))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Response{}, aierrors.New("gemini", "generate_response", aierrors.ErrTimeout)
		}
		return Response{}, aierrors.New("gemini", "generate_response", err)
	}

	var content strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			content.WriteString(fmt.Sprintf("%v", part))
		}
	}

	text := strings.TrimSpace(content.String())
	if text == "" {
		return Response{}, aierrors.New("gemini", "parse_response", aierrors.ErrMalformedResponse)
	}

	response := Response{
		Content:  text,
		Model:    p.model,
		Provider: "gemini",
	}

	if resp.UsageMetadata != nil {
		response.Usage = &UsageInfo{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return response, nil
}

// Register the Gemini factory
func init() {
	Register(&GeminiFactory{})
}
