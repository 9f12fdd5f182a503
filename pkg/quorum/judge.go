package quorum

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/quorumkit/quorum/pkg/modelkit/provider"
)

const (
	// singleCandidateExplanation is the fixed notice used when only one
	// response survived dispatch.
	singleCandidateExplanation = "only one response available"

	// judgeTemperature keeps the judge decisive.
	judgeTemperature = 0.1
)

// Judge evaluates the successful candidates with a designated judge model
// and produces a verdict: a single selection or a weighted blend. The judge
// model is reached through the same Provider contract as any other model.
type Judge struct {
	provider  provider.Provider
	prompts   PromptSet
	anonymize bool
	rng       *rand.Rand
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithPromptSet replaces the stock judge prompts.
func WithPromptSet(ps PromptSet) JudgeOption {
	return func(j *Judge) {
		j.prompts = ps
	}
}

// WithAnonymization toggles candidate masking. Masking is on by default to
// keep the judge from favoring a provider by name.
func WithAnonymization(enabled bool) JudgeOption {
	return func(j *Judge) {
		j.anonymize = enabled
	}
}

// WithRand injects the random source used to shuffle candidates before
// they are shown to the judge. Tests use this for determinism.
func WithRand(rng *rand.Rand) JudgeOption {
	return func(j *Judge) {
		j.rng = rng
	}
}

// NewJudge creates a Judge backed by the given provider.
func NewJudge(p provider.Provider, opts ...JudgeOption) *Judge {
	j := &Judge{
		provider:  p,
		prompts:   DefaultPromptSet(),
		anonymize: true,
	}

	for _, opt := range opts {
		opt(j)
	}

	if j.rng == nil {
		j.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return j
}

// Decide evaluates the candidates and returns a verdict. Candidates must be
// successful responses in dispatch order. An empty candidate set returns
// ErrNoCandidates; every other failure degrades into a deterministic
// fallback verdict whose FallbackReason records what went wrong.
func (j *Judge) Decide(ctx context.Context, prompt string, candidates []ModelResponse, mode Mode) (JudgeVerdict, error) {
	if len(candidates) == 0 {
		return JudgeVerdict{}, ErrNoCandidates
	}

	if len(candidates) == 1 {
		return JudgeVerdict{
			SchemaVersion: judgeSchemaVersion,
			Kind:          VerdictSelection,
			Method:        MethodSingle,
			ChosenIndex:   0,
			Explanation:   singleCandidateExplanation,
		}, nil
	}

	// Mask provider identities and shuffle so the judge cannot play
	// favorites; order[i] maps a masked slot back to the original index.
	masked, order := j.anonymizeCandidates(candidates)

	evalPrompt := j.prompts.buildEvaluationPrompt(prompt, masked, mode)

	judgeResp, err := j.provider.GenerateResponse(ctx, provider.Request{
		Prompt:      evalPrompt,
		Temperature: judgeTemperature,
	})
	if err != nil {
		return fallbackVerdict(
			fmt.Sprintf("judge call failed: %v", err),
			"The judge model encountered an error. Defaulting to the first available response.",
			"",
		), nil
	}

	raw := judgeResp.Content

	if mode == ModeBlend {
		return j.decideBlend(ctx, prompt, candidates, order, raw), nil
	}
	return j.decideSelect(candidates, order, raw), nil
}

// decideSelect parses a selection verdict out of the judge's reply.
func (j *Judge) decideSelect(candidates []ModelResponse, order []int, raw string) JudgeVerdict {
	sel, err := parseSelection(raw, len(candidates))
	if err != nil {
		return fallbackVerdict(
			fmt.Sprintf("could not parse a valid selection: %v", err),
			"Fallback to first available response due to selection parsing failure.",
			raw,
		)
	}

	// De-anonymize scores back into dispatch order.
	var scores []float64
	if len(sel.scores) == len(candidates) {
		scores = make([]float64, len(candidates))
		for maskedIdx, origIdx := range order {
			scores[origIdx] = sel.scores[maskedIdx]
		}
	}

	var chosen int
	switch {
	case sel.index >= 0 && sel.index < len(candidates):
		chosen = order[sel.index]
	case scores != nil:
		// No explicit selection but usable scores: highest score wins,
		// earliest dispatch position on ties.
		chosen = argmax(scores)
	default:
		return fallbackVerdict(
			"judge reply contained neither a selection nor usable scores",
			"Fallback to first available response due to selection parsing failure.",
			raw,
		)
	}

	return JudgeVerdict{
		SchemaVersion: judgeSchemaVersion,
		Kind:          VerdictSelection,
		Method:        MethodSelect,
		ChosenIndex:   chosen,
		Scores:        scores,
		Explanation:   sel.explanation,
		JudgeRaw:      raw,
	}
}

// decideBlend parses weights, normalizes them, and asks the judge to
// synthesize a merged answer. Weight parsing failures degrade to uniform
// weights; synthesis failures degrade to the highest-weighted candidate.
func (j *Judge) decideBlend(ctx context.Context, prompt string, candidates []ModelResponse, order []int, raw string) JudgeVerdict {
	verdict := JudgeVerdict{
		SchemaVersion: judgeSchemaVersion,
		Kind:          VerdictBlend,
		Method:        MethodBlend,
		JudgeRaw:      raw,
	}

	maskedWeights, explanation, err := parseWeights(raw, len(candidates))
	if err != nil {
		verdict.FallbackReason = fmt.Sprintf("could not parse usable weights: %v; applied uniform weights", err)
		verdict.Weights = uniformWeights(len(candidates))
		verdict.Explanation = "Weights assigned uniformly across all candidates."
	} else {
		weights := make([]float64, len(candidates))
		for maskedIdx, origIdx := range order {
			weights[origIdx] = maskedWeights[maskedIdx]
		}
		verdict.Weights = normalizeWeights(weights)
		verdict.Explanation = explanation
	}

	best := argmax(verdict.Weights)

	blendPrompt := j.prompts.buildBlendPrompt(prompt, candidates, verdict.Weights)
	blendResp, err := j.provider.GenerateResponse(ctx, provider.Request{
		Prompt:      blendPrompt,
		Temperature: judgeTemperature,
	})
	if err != nil || strings.TrimSpace(blendResp.Content) == "" {
		if verdict.FallbackReason != "" {
			verdict.FallbackReason += "; "
		}
		verdict.FallbackReason += "synthesis call failed; returning highest-weighted response verbatim"
		verdict.Synthesized = candidates[best].Response
		verdict.ChosenIndex = best
		return verdict
	}

	verdict.Synthesized = blendResp.Content
	verdict.ChosenIndex = best
	return verdict
}

// anonymizeCandidates masks provider identities and shuffles candidate
// order. The returned order slice maps masked positions to original
// positions.
func (j *Judge) anonymizeCandidates(candidates []ModelResponse) ([]ModelResponse, []int) {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}

	if j.anonymize {
		j.rng.Shuffle(len(order), func(a, b int) {
			order[a], order[b] = order[b], order[a]
		})
	}

	masked := make([]ModelResponse, len(candidates))
	for maskedIdx, origIdx := range order {
		masked[maskedIdx] = ModelResponse{
			Provider: fmt.Sprintf("Provider %d", maskedIdx+1),
			Model:    fmt.Sprintf("Model %d", maskedIdx+1),
			Response: candidates[origIdx].Response,
			Success:  true,
		}
	}

	return masked, order
}

// fallbackVerdict builds the deterministic first-candidate verdict used when
// the judge cannot produce a genuine decision.
func fallbackVerdict(reason, explanation, raw string) JudgeVerdict {
	return JudgeVerdict{
		SchemaVersion:  judgeSchemaVersion,
		Kind:           VerdictSelection,
		Method:         MethodFallback,
		ChosenIndex:    0,
		Explanation:    explanation,
		FallbackReason: reason,
		JudgeRaw:       raw,
	}
}

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	bareNumberRe = regexp.MustCompile(`\b(\d+)\b`)
	numberListRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

type selection struct {
	index       int
	scores      []float64
	explanation string
}

// parseSelection extracts the judge's chosen candidate from its reply.
// It first looks for the structured JSON object the prompt requests, then
// falls back to scanning for a bare number.
func parseSelection(text string, n int) (selection, error) {
	sel := selection{
		index:       -1,
		explanation: "Selected based on overall quality assessment.",
	}

	if match := jsonObjectRe.FindString(text); match != "" {
		var payload struct {
			Explanation string          `json:"explanation"`
			Selection   json.RawMessage `json:"selection"`
			Scores      []float64       `json:"scores"`
		}
		if err := json.Unmarshal([]byte(match), &payload); err == nil {
			if payload.Explanation != "" {
				sel.explanation = payload.Explanation
			}
			if len(payload.Scores) == n {
				sel.scores = payload.Scores
			}
			if idx, ok := parseOneBased(payload.Selection); ok {
				sel.index = idx
				if sel.index < 0 || sel.index >= n {
					return sel, fmt.Errorf("selection %d out of range 1..%d", sel.index+1, n)
				}
				return sel, nil
			}
			if sel.scores != nil {
				return sel, nil
			}
		}
	}

	// No structured object: accept a bare response number.
	cleaned := strings.NewReplacer("'", "", `"`, "").Replace(strings.TrimSpace(text))
	if idx, err := strconv.Atoi(cleaned); err == nil {
		sel.index = idx - 1
	} else if match := bareNumberRe.FindStringSubmatch(cleaned); match != nil {
		idx, _ := strconv.Atoi(match[1])
		sel.index = idx - 1
	}

	if sel.index < 0 || sel.index >= n {
		return sel, fmt.Errorf("no valid selection found in judge reply")
	}
	return sel, nil
}

// parseOneBased reads a 1-based selection that may arrive as a JSON number
// or a quoted string, returning its 0-based form.
func parseOneBased(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt - 1, true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if idx, err := strconv.Atoi(strings.TrimSpace(asString)); err == nil {
			return idx - 1, true
		}
	}

	return 0, false
}

// parseWeights extracts per-candidate quality weights from the judge's
// reply. The weights are raw judge output, not yet normalized.
func parseWeights(text string, n int) ([]float64, string, error) {
	explanation := "Weights assigned based on quality assessment across multiple criteria."

	if match := jsonObjectRe.FindString(text); match != "" {
		var payload struct {
			Explanation string    `json:"explanation"`
			Weights     []float64 `json:"weights"`
		}
		if err := json.Unmarshal([]byte(match), &payload); err == nil {
			if payload.Explanation != "" {
				explanation = payload.Explanation
			}
			if err := validWeights(payload.Weights, n); err == nil {
				return payload.Weights, explanation, nil
			}
		}
	}

	// No structured object: accept a bare list of numbers of the right
	// length.
	matches := numberListRe.FindAllString(text, -1)
	if len(matches) == n {
		weights := make([]float64, 0, n)
		for _, m := range matches {
			w, err := strconv.ParseFloat(m, 64)
			if err != nil {
				return nil, explanation, fmt.Errorf("unparseable weight %q", m)
			}
			weights = append(weights, w)
		}
		if err := validWeights(weights, n); err != nil {
			return nil, explanation, err
		}
		return weights, explanation, nil
	}

	return nil, explanation, fmt.Errorf("expected %d weights, found %d numbers", n, len(matches))
}

func validWeights(weights []float64, n int) error {
	if len(weights) != n {
		return fmt.Errorf("expected %d weights, got %d", n, len(weights))
	}
	sum := 0.0
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("weight %v is not a usable quality score", w)
		}
		sum += w
	}
	if sum == 0 {
		return fmt.Errorf("all weights are zero")
	}
	return nil
}

// normalizeWeights scales weights so they sum to 1. Unusable totals fall
// back to uniform weights.
func normalizeWeights(weights []float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		return uniformWeights(len(weights))
	}

	normalized := make([]float64, len(weights))
	for i, w := range weights {
		if w > 0 {
			normalized[i] = w / sum
		}
	}
	return normalized
}

func uniformWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

// argmax returns the index of the largest value, preferring the earliest
// index on ties so dispatch order breaks them.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
