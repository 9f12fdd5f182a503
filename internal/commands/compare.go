package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quorumkit/quorum/pkg/quorum"
	"github.com/quorumkit/quorum/ui"
)

var compareCmd = &cobra.Command{
	Use:   "compare <prompt>",
	Short: "Compare responses from multiple AI models",
	Long: `Send a prompt to multiple AI providers concurrently, then use a judge
model to select the best response or blend them into one answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompareCommand,
}

func initCompareCommand(root *cobra.Command) {
	compareCmd.Flags().StringSlice("model", nil, "provider=model pair, repeatable (default: one default model per provider)")
	compareCmd.Flags().Bool("blend", false, "blend all responses into one answer instead of selecting the best")
	compareCmd.Flags().Bool("details", false, "show per-provider responses and the judge verdict")
	compareCmd.Flags().BoolP("interactive", "i", false, "show live progress while models respond")
	root.AddCommand(compareCmd)
}

func runCompareCommand(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	modelFlags, err := cmd.Flags().GetStringSlice("model")
	if err != nil {
		return err
	}
	specs, err := parseModelFlags(modelFlags)
	if err != nil {
		return err
	}

	blend, _ := cmd.Flags().GetBool("blend")
	details, _ := cmd.Flags().GetBool("details")
	interactive, _ := cmd.Flags().GetBool("interactive")

	mode := quorum.ModeSelect
	if blend {
		mode = quorum.ModeBlend
	}

	engine := buildEngine()

	var result quorum.ComparisonResult
	if interactive && term.IsTerminal(int(os.Stdout.Fd())) {
		result, err = ui.RunCompare(cmd.Context(), engine, prompt, specs, mode)
	} else {
		result, err = engine.Run(cmd.Context(), prompt, specs, mode)
	}
	if err != nil {
		return err
	}

	printResult(result, details)
	return nil
}

// parseModelFlags turns repeated provider=model flags into an ordered spec
// list. A bare provider name selects that provider's default model.
func parseModelFlags(flags []string) ([]quorum.ModelSpec, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	models := make(map[string]string, len(flags))
	for _, f := range flags {
		name, model, _ := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --model value %q, expected provider=model", f)
		}
		models[name] = strings.TrimSpace(model)
	}

	return quorum.SpecsFromMap(models)
}

func printResult(result quorum.ComparisonResult, details bool) {
	if !result.Success {
		fmt.Println("No answer could be produced.")
		fmt.Printf("Reason: %s\n", result.Explanation)
		printResponseDetails(result.Responses)
		return
	}

	fmt.Println(result.Result)

	fmt.Printf("\n[method: %s", result.Method)
	if result.Best != nil {
		fmt.Printf(", best: %s/%s", result.Best.Provider, result.Best.Model)
	}
	fmt.Printf(", elapsed: %s]\n", result.Elapsed.Round(time.Millisecond))

	if !details {
		return
	}

	fmt.Printf("\nExplanation: %s\n", result.Explanation)
	if len(result.Weights) > 0 {
		// Weights cover only the successful responses, in dispatch order.
		fmt.Print("Weights:")
		idx := 0
		for _, r := range result.Responses {
			if !r.Success || idx >= len(result.Weights) {
				continue
			}
			fmt.Printf(" %s=%.0f%%", r.Provider, result.Weights[idx]*100)
			idx++
		}
		fmt.Println()
	}
	if result.Verdict != nil && result.Verdict.FallbackReason != "" {
		fmt.Printf("Fallback: %s\n", result.Verdict.FallbackReason)
	}
	printResponseDetails(result.Responses)
}

func printResponseDetails(responses []quorum.ModelResponse) {
	for _, r := range responses {
		fmt.Printf("\n--- %s (%s, %dms) ---\n", r.Provider, r.Model, r.LatencyMs)
		if r.Success {
			fmt.Println(r.Response)
		} else {
			fmt.Printf("failed (%s): %s\n", r.ErrorCategory, r.Error)
		}
	}
}
