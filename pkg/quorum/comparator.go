package quorum

import (
	"context"
	"strings"
	"time"

	"github.com/quorumkit/quorum/pkg/modelkit/provider"
)

// Comparator is the top-level coordinator: it fans the prompt out through
// the Dispatcher, hands the surviving candidates to the Judge, and
// assembles the final result envelope. It holds no per-request state;
// every call builds one ComparisonResult and discards nothing into shared
// state.
type Comparator struct {
	dispatcher *Dispatcher
	judge      *Judge
}

// NewComparator wires a dispatcher and judge together.
func NewComparator(dispatcher *Dispatcher, judge *Judge) *Comparator {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	return &Comparator{
		dispatcher: dispatcher,
		judge:      judge,
	}
}

// Compare queries every provider with the prompt and resolves the results
// into one answer. Only input validation returns an error; provider and
// judge failures degrade into the result's Success flag and detail fields.
// Providers are dispatched in slice order and the result's Responses list
// preserves that order.
func (c *Comparator) Compare(ctx context.Context, prompt string, providers []provider.Provider, mode Mode) (ComparisonResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return ComparisonResult{}, ErrEmptyPrompt
	}
	if len(providers) == 0 {
		return ComparisonResult{}, ErrNoProviders
	}

	start := time.Now()

	responses, err := c.dispatcher.Dispatch(ctx, prompt, providers)
	if err != nil {
		// Dispatch only fails on input validation, which was already
		// checked; surface it anyway rather than masking it.
		return ComparisonResult{}, err
	}

	// Collect the successful subset, remembering where each candidate sits
	// in the full response list.
	candidates := make([]ModelResponse, 0, len(responses))
	fullIndex := make([]int, 0, len(responses))
	for i, r := range responses {
		if r.Success {
			candidates = append(candidates, r)
			fullIndex = append(fullIndex, i)
		}
	}

	if len(candidates) == 0 {
		return ComparisonResult{
			Success:     false,
			Method:      MethodFallback,
			Explanation: "No successful responses were received from any model.",
			Responses:   responses,
			Elapsed:     time.Since(start),
		}, nil
	}

	verdict, err := c.judge.Decide(ctx, prompt, candidates, mode)
	if err != nil {
		// Judge hard failure: fall back to the first successful raw
		// response so the caller still gets an answer.
		first := candidates[0]
		best := responses[fullIndex[0]]
		return ComparisonResult{
			Result:      first.Response,
			Method:      MethodFallback,
			Success:     true,
			Explanation: "The judge could not evaluate the responses. Returning the first successful response.",
			Responses:   responses,
			Best:        &best,
			Verdict: &JudgeVerdict{
				SchemaVersion:  judgeSchemaVersion,
				Kind:           VerdictSelection,
				Method:         MethodFallback,
				ChosenIndex:    0,
				Explanation:    "The judge could not evaluate the responses. Returning the first successful response.",
				FallbackReason: err.Error(),
			},
			Elapsed: time.Since(start),
		}, nil
	}

	result := ComparisonResult{
		Method:      verdict.Method,
		Success:     true,
		Explanation: verdict.Explanation,
		Responses:   responses,
		Verdict:     &verdict,
		Elapsed:     time.Since(start),
	}

	best := responses[fullIndex[verdict.ChosenIndex]]
	result.Best = &best

	if verdict.Kind == VerdictBlend {
		result.Result = verdict.Synthesized
		result.Weights = verdict.Weights
	} else {
		result.Result = best.Response
	}

	return result, nil
}
