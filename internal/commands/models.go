package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quorumkit/quorum/pkg/quorum"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available AI models",
	Long:  `List all available AI models by provider, with each provider's default.`,
	RunE:  runModelsCommand,
}

func initModelsCommand(root *cobra.Command) {
	root.AddCommand(modelsCmd)
}

func runModelsCommand(cmd *cobra.Command, args []string) error {
	catalog := quorum.Catalog()

	for _, name := range quorum.CatalogOrder() {
		entry := catalog[name]
		fmt.Printf("Provider: %s\n", name)
		for _, m := range entry.Models {
			marker := ""
			if m.ID == entry.Default {
				marker = " (default)"
			}
			fmt.Printf("  - %s: %s%s\n", m.ID, m.Name, marker)
		}
		fmt.Println()
	}

	fmt.Printf("Judge: %s/%s\n", viper.GetString("judge_provider"), viper.GetString("judge_model"))
	return nil
}
