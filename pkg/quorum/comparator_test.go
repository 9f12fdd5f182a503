package quorum

//go:generate mockgen -destination=./mocks/mock_provider.go -package=mocks github.com/quorumkit/quorum/pkg/modelkit/provider Provider

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
	"github.com/quorumkit/quorum/pkg/modelkit/provider"
	"github.com/quorumkit/quorum/pkg/quorum/mocks"
)

func newTestComparator(judgeProvider provider.Provider) *Comparator {
	d := &Dispatcher{CallTimeout: 100 * time.Millisecond, TransientRetries: 0}
	return NewComparator(d, NewJudge(judgeProvider, WithAnonymization(false)))
}

func TestCompareValidatesInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := newTestComparator(mocks.NewMockProvider(ctrl))

	_, err := c.Compare(context.Background(), "", []provider.Provider{&stubProvider{name: "openai"}}, ModeSelect)
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = c.Compare(context.Background(), "prompt", nil, ModeSelect)
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestCompareAllProvidersFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providers := []provider.Provider{
		&stubProvider{name: "openai", model: "m1", err: aierrors.New("openai", "generate_response", aierrors.ErrAuthentication)},
		&stubProvider{name: "claude", model: "m2", err: aierrors.New("claude", "generate_response", aierrors.ErrNetwork)},
	}

	c := newTestComparator(mocks.NewMockProvider(ctrl))

	result, err := c.Compare(context.Background(), "prompt", providers, ModeSelect)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, MethodFallback, result.Method)
	assert.Empty(t, result.Result)
	assert.NotEmpty(t, result.Explanation)
	require.Len(t, result.Responses, 2)
	assert.Equal(t, aierrors.CategoryAuth, result.Responses[0].ErrorCategory)
	assert.Equal(t, aierrors.CategoryNetwork, result.Responses[1].ErrorCategory)
}

func TestCompareSingleSurvivor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providers := []provider.Provider{
		&stubProvider{name: "openai", model: "m1", err: aierrors.New("openai", "generate_response", aierrors.ErrAuthentication)},
		&stubProvider{name: "claude", model: "m2", content: "the only answer"},
	}

	// No judge call expected for a single survivor.
	c := newTestComparator(mocks.NewMockProvider(ctrl))

	result, err := c.Compare(context.Background(), "prompt", providers, ModeSelect)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MethodSingle, result.Method)
	assert.Equal(t, "the only answer", result.Result)
	assert.Equal(t, "only one response available", result.Explanation)
	require.NotNil(t, result.Best)
	assert.Equal(t, "claude", result.Best.Provider)
	require.Len(t, result.Responses, 2)
}

func TestCompareSelectWithPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// B times out; the judge sees only A and C and picks the second of
	// those, which is C in dispatch order.
	providers := []provider.Provider{
		&stubProvider{name: "openai", model: "m1", content: "answer from A"},
		&stubProvider{name: "claude", model: "m2", content: "late", delay: time.Second},
		&stubProvider{name: "gemini", model: "m3", content: "answer from C"},
	}

	mockJudge := mocks.NewMockProvider(ctrl)
	mockJudge.EXPECT().
		GenerateResponse(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req provider.Request) (provider.Response, error) {
			assert.Contains(t, req.Prompt, "answer from A")
			assert.Contains(t, req.Prompt, "answer from C")
			assert.NotContains(t, req.Prompt, "late")
			return provider.Response{Content: `{"explanation": "C covers the edge cases.", "selection": 2}`}, nil
		})

	c := newTestComparator(mockJudge)

	result, err := c.Compare(context.Background(), "prompt", providers, ModeSelect)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MethodSelect, result.Method)
	assert.Equal(t, "answer from C", result.Result)
	assert.Equal(t, "C covers the edge cases.", result.Explanation)

	require.Len(t, result.Responses, 3)
	assert.Equal(t, "openai", result.Responses[0].Provider)
	assert.Equal(t, "claude", result.Responses[1].Provider)
	assert.Equal(t, "gemini", result.Responses[2].Provider)
	assert.False(t, result.Responses[1].Success)
	assert.Equal(t, aierrors.CategoryTimeout, result.Responses[1].ErrorCategory)

	require.NotNil(t, result.Best)
	assert.Equal(t, "gemini", result.Best.Provider)
	require.NotNil(t, result.Verdict)
	assert.Equal(t, 1, result.Verdict.ChosenIndex)
}

func TestCompareBlend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providers := []provider.Provider{
		&stubProvider{name: "openai", model: "m1", content: "answer from A"},
		&stubProvider{name: "claude", model: "m2", content: "answer from B"},
	}

	mockJudge := mocks.NewMockProvider(ctrl)
	eval := mockJudge.EXPECT().
		GenerateResponse(gomock.Any(), gomock.Any()).
		Return(provider.Response{Content: `{"explanation": "B is richer.", "weights": [3, 7]}`}, nil)
	mockJudge.EXPECT().
		GenerateResponse(gomock.Any(), gomock.Any()).
		Return(provider.Response{Content: "a blended answer"}, nil).
		After(eval)

	c := newTestComparator(mockJudge)

	result, err := c.Compare(context.Background(), "prompt", providers, ModeBlend)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MethodBlend, result.Method)
	assert.Equal(t, "a blended answer", result.Result)

	require.Len(t, result.Weights, 2)
	sum := 0.0
	for _, w := range result.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.InDelta(t, 0.3, result.Weights[0], 1e-9)
	assert.InDelta(t, 0.7, result.Weights[1], 1e-9)

	require.NotNil(t, result.Best)
	assert.Equal(t, "claude", result.Best.Provider)
}

func TestCompareJudgeFallbackStaysObservable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providers := []provider.Provider{
		&stubProvider{name: "openai", model: "m1", content: "answer from A"},
		&stubProvider{name: "claude", model: "m2", content: "answer from B"},
	}

	mockJudge := mocks.NewMockProvider(ctrl)
	mockJudge.EXPECT().
		GenerateResponse(gomock.Any(), gomock.Any()).
		Return(provider.Response{Content: "nothing structured"}, nil)

	c := newTestComparator(mockJudge)

	result, err := c.Compare(context.Background(), "prompt", providers, ModeSelect)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MethodFallback, result.Method)
	assert.Equal(t, "answer from A", result.Result)
	require.NotNil(t, result.Verdict)
	assert.NotEmpty(t, result.Verdict.FallbackReason)
}

func TestCompareRecordsElapsed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providers := []provider.Provider{
		&stubProvider{name: "openai", model: "m1", content: "answer", delay: 10 * time.Millisecond},
	}

	c := newTestComparator(mocks.NewMockProvider(ctrl))

	result, err := c.Compare(context.Background(), "prompt", providers, ModeSelect)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Elapsed, 10*time.Millisecond)
}
