// Package quorum implements the comparison pipeline: concurrent dispatch of
// one prompt to several model providers, followed by a judge step that either
// selects the best response or blends the candidates into one answer.
package quorum

import (
	"errors"
	"time"
)

// Input validation errors. These are the only failures that reach the caller
// as rejected requests; everything downstream degrades into a
// ComparisonResult with per-response detail.
var (
	ErrEmptyPrompt  = errors.New("prompt is empty")
	ErrNoProviders  = errors.New("no providers configured")
	ErrNoCandidates = errors.New("no successful responses to judge")
)

// Mode selects how the judge resolves multiple candidates.
type Mode string

const (
	// ModeSelect picks the single best candidate.
	ModeSelect Mode = "select"

	// ModeBlend synthesizes one answer from all candidates, weighted by
	// judged quality.
	ModeBlend Mode = "blend"
)

// Method tags how the final text of a comparison was produced.
type Method string

const (
	MethodSelect   Method = "select"
	MethodBlend    Method = "blend"
	MethodSingle   Method = "single"
	MethodFallback Method = "fallback"
)

// ModelSpec names one provider/model pair to dispatch to. Order matters:
// the response list preserves the order in which specs were configured.
type ModelSpec struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ModelRequest is the immutable per-provider request constructed once per
// dispatch.
type ModelRequest struct {
	Provider    string
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// ModelResponse records the outcome of one attempted provider call. One
// instance exists per configured provider per dispatch, successful or not;
// it is never mutated after creation.
type ModelResponse struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	Response      string `json:"response,omitempty"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`
	LatencyMs     int64  `json:"latency_ms"`
}

// VerdictKind discriminates the two judge outcomes.
type VerdictKind string

const (
	// VerdictSelection means one candidate was chosen.
	VerdictSelection VerdictKind = "selection"

	// VerdictBlend means candidates were merged under quality weights.
	VerdictBlend VerdictKind = "blend"
)

// JudgeVerdict is the judge's decision over the successful candidates.
// Selection verdicts populate ChosenIndex (an index into the candidate
// slice handed to Decide) and optionally Scores; blend verdicts populate
// Weights (non-negative, summing to 1) and Synthesized.
type JudgeVerdict struct {
	// SchemaVersion records which judge output schema produced JudgeRaw.
	SchemaVersion int `json:"schema_version"`

	Kind        VerdictKind `json:"kind"`
	Method      Method      `json:"method"`
	ChosenIndex int         `json:"chosen_index"`
	Scores      []float64   `json:"scores,omitempty"`
	Weights     []float64   `json:"weights,omitempty"`
	Synthesized string      `json:"synthesized,omitempty"`

	// Explanation is always non-empty: a genuine judge rationale, the
	// single-candidate notice, or a fallback reason.
	Explanation string `json:"explanation"`

	// FallbackReason is set whenever a deterministic path replaced a real
	// judge decision, so degraded verdicts stay observable.
	FallbackReason string `json:"fallback_reason,omitempty"`

	// JudgeRaw preserves the judge model's raw reply for diagnostics.
	JudgeRaw string `json:"judge_raw,omitempty"`
}

// ComparisonResult is the envelope returned to the caller. It is built
// once per request and carries every attempted ModelResponse, successful
// or failed.
type ComparisonResult struct {
	Result      string          `json:"result"`
	Method      Method          `json:"method"`
	Success     bool            `json:"success"`
	Explanation string          `json:"explanation"`
	Responses   []ModelResponse `json:"responses"`
	Best        *ModelResponse  `json:"best_response,omitempty"`
	Weights     []float64       `json:"weights,omitempty"`
	Verdict     *JudgeVerdict   `json:"verdict,omitempty"`
	Elapsed     time.Duration   `json:"-"`
}
