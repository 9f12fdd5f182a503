package quorum

import (
	"context"
	"strings"
	"sync"
	"time"

	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
	"github.com/quorumkit/quorum/pkg/modelkit/provider"
)

const (
	// DefaultCallTimeout bounds each individual provider attempt.
	DefaultCallTimeout = 60 * time.Second

	// defaultTransientRetries is the number of extra attempts granted to a
	// provider that failed with a transient error class.
	defaultTransientRetries = 1
)

// Dispatcher fans one prompt out to every configured provider concurrently.
// Providers are independent: one provider's failure or slowness never blocks
// or cancels the others, and there is no first-success short circuit because
// the judge needs every surviving candidate.
type Dispatcher struct {
	// CallTimeout bounds each provider attempt. Zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// TransientRetries is how many extra attempts a provider gets after a
	// transient failure (rate limit, transient network). Non-transient
	// failures are never retried. Negative means defaultTransientRetries.
	TransientRetries int

	// Temperature and MaxTokens are passed through to every provider call.
	Temperature float64
	MaxTokens   int
}

// NewDispatcher returns a Dispatcher with defaults applied.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		CallTimeout:      DefaultCallTimeout,
		TransientRetries: defaultTransientRetries,
	}
}

func (d *Dispatcher) callTimeout() time.Duration {
	if d.CallTimeout > 0 {
		return d.CallTimeout
	}
	return DefaultCallTimeout
}

func (d *Dispatcher) transientRetries() int {
	if d.TransientRetries >= 0 {
		return d.TransientRetries
	}
	return defaultTransientRetries
}

// Dispatch sends the prompt to all providers at once and waits for every
// provider to complete, fail, or time out. The returned slice always has
// exactly one entry per provider, in the original configuration order,
// regardless of completion order.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string, providers []provider.Provider) ([]ModelResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	// Each goroutine writes into its own slot, so no further
	// synchronization is needed beyond the WaitGroup.
	responses := make([]ModelResponse, len(providers))
	var wg sync.WaitGroup

	for i, p := range providers {
		wg.Add(1)
		go func(slot int, prov provider.Provider) {
			defer wg.Done()
			responses[slot] = d.invoke(ctx, prompt, prov)
		}(i, p)
	}

	wg.Wait()

	return responses, nil
}

// invoke performs one provider call with a bounded per-attempt timeout and
// at most one retry on transient failure classes.
func (d *Dispatcher) invoke(ctx context.Context, prompt string, prov provider.Provider) ModelResponse {
	request := provider.Request{
		Prompt:      prompt,
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
	}

	start := time.Now()

	attempts := 1 + d.transientRetries()
	var resp provider.Response
	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.callTimeout())
		resp, err = prov.GenerateResponse(attemptCtx, request)
		cancel()

		if err == nil {
			break
		}
		if !aierrors.IsTransient(err) || ctx.Err() != nil {
			break
		}
	}

	latency := time.Since(start).Milliseconds()

	if err != nil {
		return ModelResponse{
			Provider:      prov.Name(),
			Model:         prov.Model(),
			Success:       false,
			Error:         err.Error(),
			ErrorCategory: aierrors.Category(err),
			LatencyMs:     latency,
		}
	}

	return ModelResponse{
		Provider:  prov.Name(),
		Model:     prov.Model(),
		Response:  resp.Content,
		Success:   true,
		LatencyMs: latency,
	}
}
