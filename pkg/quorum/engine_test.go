package quorum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkit/quorum/pkg/modelkit/config"
	"github.com/quorumkit/quorum/pkg/modelkit/provider"
)

func TestEngineProvidersKeepSpecOrderAndSlots(t *testing.T) {
	engine := NewEngine(map[string]config.Config{
		"openai": config.NewConfig(config.WithAPIKey("sk-test")),
		// claude has no config entry: its slot must survive as a failing
		// provider, not disappear.
	})

	specs := []ModelSpec{
		{Provider: "openai", Model: "gpt-4.1-2025-04-14"},
		{Provider: "claude", Model: "claude-3-7-sonnet-latest"},
	}

	providers := engine.providersFor(specs)
	require.Len(t, providers, 2)

	assert.Equal(t, "openai", providers[0].Name())
	assert.Equal(t, "gpt-4.1-2025-04-14", providers[0].Model())

	assert.Equal(t, "claude", providers[1].Name())
	_, err := providers[1].GenerateResponse(context.Background(), provider.Request{Prompt: "x"})
	assert.Error(t, err)
}

func TestEngineBuildProviderAppliesSpecModel(t *testing.T) {
	engine := NewEngine(map[string]config.Config{
		"openai": config.NewConfig(config.WithAPIKey("sk-test")),
	})

	p, err := engine.buildProvider(ModelSpec{Provider: "openai", Model: "o3-2025-04-16"})
	require.NoError(t, err)
	assert.Equal(t, "o3-2025-04-16", p.Model())

	// Empty model falls through to the factory default.
	p, err = engine.buildProvider(ModelSpec{Provider: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-2025-04-14", p.Model())
}

func TestEngineJudgeProviderRequiresConfig(t *testing.T) {
	engine := NewEngine(map[string]config.Config{})

	_, err := engine.judgeProvider()
	require.Error(t, err)

	engine.Configs["openai"] = config.NewConfig(config.WithAPIKey("sk-test"))
	judge, err := engine.judgeProvider()
	require.NoError(t, err)
	assert.Equal(t, DefaultJudgeModel, judge.Model())
}
