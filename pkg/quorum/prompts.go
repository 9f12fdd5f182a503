package quorum

import (
	"fmt"
	"strings"
)

// judgeSchemaVersion tracks the structured-output schema the judge is asked
// to produce. Bump it when the JSON shape below changes so stored raw
// replies stay interpretable.
const judgeSchemaVersion = 1

// PromptSet carries the templates used to talk to the judge model. The
// templates are configuration, not fixed protocol: callers may replace any
// piece, and the parser only depends on the JSON shapes requested in the
// format sections.
type PromptSet struct {
	// EvaluationPreamble opens both the selection and weighting prompts.
	EvaluationPreamble string

	// Criteria are the quality dimensions the judge is asked to apply.
	Criteria []string

	// SelectionFormat asks for {"explanation": ..., "selection": N}.
	SelectionFormat string

	// WeightFormat asks for {"explanation": ..., "weights": [...]}.
	WeightFormat string

	// BlendPreamble opens the synthesis prompt used in blend mode.
	BlendPreamble string
}

// DefaultPromptSet returns the stock judge prompts.
func DefaultPromptSet() PromptSet {
	return PromptSet{
		EvaluationPreamble: strings.Join([]string{
			"You are a fair and impartial judge evaluating responses from different AI models.",
			"You must evaluate each response solely on its quality and merit, not based on which model produced it.",
		}, "\n"),
		Criteria: []string{
			"1. Accuracy: Is the information correct and reliable?",
			"2. Completeness: Does it fully address all aspects of the prompt?",
			"3. Clarity: Is it well-written, easy to understand, and well-structured?",
			"4. Usefulness: How practical and helpful is the response?",
			"5. Creativity: Where appropriate, does it show original thinking?",
			"6. Reasoning: Does it demonstrate logical thinking and good judgment?",
		},
		SelectionFormat: strings.Join([]string{
			"YOUR RESPONSE FORMAT:",
			"1. Provide a brief explanation (1-2 sentences) of why you selected the best response.",
			"2. Identify the number of the best response.",
			`Format your response like this:`,
			`{"explanation": "Your explanation here", "selection": N}`,
			"Where N is the number of the best response (e.g., 1, 2, or 3).",
		}, "\n"),
		WeightFormat: strings.Join([]string{
			"YOUR RESPONSE FORMAT:",
			"1. Provide a brief explanation (1-2 sentences) of how you evaluated these responses.",
			"2. Assign a weight between 0 and 10 to each response based on overall quality.",
			`Format your response like this:`,
			`{"explanation": "Your explanation here", "weights": [X, Y, Z]}`,
			"Where X, Y, Z are numbers between 0 and 10 representing the quality of each response.",
		}, "\n"),
		BlendPreamble: strings.Join([]string{
			"You are an expert at synthesizing information from multiple sources.",
		}, "\n"),
	}
}

// buildEvaluationPrompt renders the prompt shown to the judge when it must
// rank or weight the candidates. Candidate identities are whatever the
// caller put in the slice; the judge layer anonymizes them first.
func (ps PromptSet) buildEvaluationPrompt(original string, candidates []ModelResponse, mode Mode) string {
	var b strings.Builder

	b.WriteString(ps.EvaluationPreamble)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Original prompt: %s\n\n", original)
	b.WriteString("Model responses:\n")

	for i, c := range candidates {
		fmt.Fprintf(&b, "\n--- Response %d: %s (%s) ---\n%s\n", i+1, c.Provider, c.Model, c.Response)
	}

	b.WriteString("\nEvaluate each response based on these criteria:\n")
	for _, criterion := range ps.Criteria {
		b.WriteString(criterion)
		b.WriteString("\n")
	}

	b.WriteString("\nIMPORTANT: All responses come from equally capable models. Judge each response strictly on its quality as presented here.\n\n")

	if mode == ModeBlend {
		b.WriteString(ps.WeightFormat)
	} else {
		b.WriteString(ps.SelectionFormat)
	}

	return b.String()
}

// buildBlendPrompt renders the synthesis prompt used to merge candidates
// according to their weights.
func (ps PromptSet) buildBlendPrompt(original string, candidates []ModelResponse, weights []float64) string {
	var b strings.Builder

	b.WriteString(ps.BlendPreamble)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Original prompt: %s\n\n", original)
	b.WriteString("You will be given multiple responses to this prompt with assigned weights.\n")
	b.WriteString("Your task is to create a SINGLE COHERENT RESPONSE that:\n")
	b.WriteString("1. Incorporates content from all responses according to their weights\n")
	b.WriteString("2. Prioritizes information from higher-weighted responses\n")
	b.WriteString("3. Resolves any contradictions by favoring higher-weighted responses\n")
	b.WriteString("4. Maintains a consistent tone and style throughout\n")
	b.WriteString("5. Forms a complete, well-structured answer to the original prompt\n\n")
	b.WriteString("Responses with their weights:\n")

	for i, c := range candidates {
		fmt.Fprintf(&b, "\n--- Response %d (%s, %s, Weight: %.1f%%) ---\n%s\n",
			i+1, c.Provider, c.Model, weights[i]*100, c.Response)
	}

	b.WriteString("\nNow, create a single coherent response that blends these sources according to their weights.")
	b.WriteString("\nDo not mention the weights or that this is a blend in your response.")
	b.WriteString("\nWrite in a natural, flowing style as if this was a single response from the beginning.")

	return b.String()
}
