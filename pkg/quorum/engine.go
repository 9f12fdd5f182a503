package quorum

import (
	"context"
	"fmt"

	"github.com/quorumkit/quorum/pkg/modelkit/config"
	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
	"github.com/quorumkit/quorum/pkg/modelkit/provider"
)

// Engine turns model specs into live providers and runs comparisons over
// them. It carries the per-provider base configuration (API keys, base
// URLs) so callers can describe a comparison purely in terms of ModelSpec
// lists.
type Engine struct {
	// Configs holds the base configuration per provider name. A spec for a
	// provider without a config entry still dispatches; the call fails and
	// is reported in the response list like any other provider failure.
	Configs map[string]config.Config

	// JudgeSpec names the judge model. Zero value means the stock judge.
	JudgeSpec ModelSpec

	// Dispatcher to use. Nil means NewDispatcher().
	Dispatcher *Dispatcher

	// JudgeOptions are applied to the judge on every run.
	JudgeOptions []JudgeOption
}

// NewEngine builds an Engine over the given per-provider configurations.
func NewEngine(configs map[string]config.Config) *Engine {
	return &Engine{
		Configs: configs,
		JudgeSpec: ModelSpec{
			Provider: DefaultJudgeProvider,
			Model:    DefaultJudgeModel,
		},
	}
}

// Run dispatches the prompt to every spec'd model and resolves the verdict.
// Specs are dispatched in slice order and the result preserves that order.
func (e *Engine) Run(ctx context.Context, prompt string, specs []ModelSpec, mode Mode) (ComparisonResult, error) {
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}

	providers := e.providersFor(specs)

	judgeProvider, err := e.judgeProvider()
	if err != nil {
		return ComparisonResult{}, err
	}

	comparator := NewComparator(e.Dispatcher, NewJudge(judgeProvider, e.JudgeOptions...))
	return comparator.Compare(ctx, prompt, providers, mode)
}

// providersFor instantiates one provider per spec. A spec whose provider
// cannot be constructed still occupies its slot: it is replaced with a
// provider that fails on call, so the response list keeps one entry per
// configured spec.
func (e *Engine) providersFor(specs []ModelSpec) []provider.Provider {
	providers := make([]provider.Provider, 0, len(specs))
	for _, spec := range specs {
		p, err := e.buildProvider(spec)
		if err != nil {
			p = &brokenProvider{spec: spec, err: err}
		}
		providers = append(providers, p)
	}
	return providers
}

func (e *Engine) buildProvider(spec ModelSpec) (provider.Provider, error) {
	cfg := e.Configs[spec.Provider]
	if spec.Model != "" {
		cfg = cfg.WithOptions(config.WithModel(spec.Model))
	}
	return provider.Create(spec.Provider, cfg)
}

func (e *Engine) judgeProvider() (provider.Provider, error) {
	spec := e.JudgeSpec
	if spec.Provider == "" {
		spec = ModelSpec{Provider: DefaultJudgeProvider, Model: DefaultJudgeModel}
	}
	p, err := e.buildProvider(spec)
	if err != nil {
		return nil, fmt.Errorf("judge provider %s: %w", spec.Provider, err)
	}
	return p, nil
}

// brokenProvider stands in for a provider that could not be constructed,
// usually because its API key is missing. It reports the construction
// error on every call.
type brokenProvider struct {
	spec ModelSpec
	err  error
}

func (b *brokenProvider) GenerateResponse(ctx context.Context, request provider.Request) (provider.Response, error) {
	return provider.Response{}, aierrors.Wrap(b.err, b.spec.Provider, "create_provider")
}

func (b *brokenProvider) Name() string  { return b.spec.Provider }
func (b *brokenProvider) Model() string { return b.spec.Model }
