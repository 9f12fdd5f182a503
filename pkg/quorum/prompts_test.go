package quorum

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEvaluationPromptModeSwitchesFormat(t *testing.T) {
	ps := DefaultPromptSet()
	candidates := []ModelResponse{
		{Provider: "Provider 1", Model: "Model 1", Response: "first"},
		{Provider: "Provider 2", Model: "Model 2", Response: "second"},
	}

	selectPrompt := ps.buildEvaluationPrompt("the question", candidates, ModeSelect)
	assert.Contains(t, selectPrompt, "the question")
	assert.Contains(t, selectPrompt, `"selection": N`)
	assert.NotContains(t, selectPrompt, `"weights"`)
	assert.Contains(t, selectPrompt, "--- Response 1: Provider 1 (Model 1) ---")
	assert.Contains(t, selectPrompt, "--- Response 2: Provider 2 (Model 2) ---")

	blendPrompt := ps.buildEvaluationPrompt("the question", candidates, ModeBlend)
	assert.Contains(t, blendPrompt, `"weights"`)
	assert.NotContains(t, blendPrompt, `"selection": N`)
}

func TestBuildEvaluationPromptIncludesAllCriteria(t *testing.T) {
	ps := DefaultPromptSet()
	prompt := ps.buildEvaluationPrompt("q", []ModelResponse{{Response: "a"}, {Response: "b"}}, ModeSelect)
	for _, criterion := range ps.Criteria {
		assert.Contains(t, prompt, criterion)
	}
}

func TestBuildBlendPromptShowsWeightsAsPercentages(t *testing.T) {
	ps := DefaultPromptSet()
	candidates := []ModelResponse{
		{Provider: "openai", Model: "m1", Response: "first"},
		{Provider: "claude", Model: "m2", Response: "second"},
	}

	prompt := ps.buildBlendPrompt("q", candidates, []float64{0.25, 0.75})
	assert.Contains(t, prompt, "Weight: 25.0%")
	assert.Contains(t, prompt, "Weight: 75.0%")
	assert.True(t, strings.Contains(prompt, "first") && strings.Contains(prompt, "second"))
}
