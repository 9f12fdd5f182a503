// Package commands provides all the CLI commands for the application
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quorumkit/quorum/pkg/quorum"
)

var (
	cfgFile       string
	judgeProvider string
	judgeModel    string
	verbose       bool
)

// RootCmd is the root command for quorum
var RootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "quorum compares answers from multiple AI models",
	Long: `quorum sends one prompt to several AI providers at once, then uses a
judge model to pick the best response or blend them into a single answer.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.SetDefault("judge_provider", quorum.DefaultJudgeProvider)
		viper.SetDefault("judge_model", quorum.DefaultJudgeModel)

		viper.BindEnv("openai_api_key", "OPENAI_API_KEY")
		viper.BindEnv("claude_api_key", "CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
		viper.BindEnv("gemini_api_key", "GEMINI_API_KEY")
		viper.BindEnv("grok_api_key", "XAI_API_KEY")

		if judgeProvider != "" {
			viper.Set("judge_provider", judgeProvider)
		}
		if judgeModel != "" {
			viper.Set("judge_model", judgeModel)
		}
	},
}

func Execute() error {
	return RootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.quorum.yaml)")
	RootCmd.PersistentFlags().StringVar(&judgeProvider, "judge-provider", "", "provider used for judging (default openai)")
	RootCmd.PersistentFlags().StringVar(&judgeModel, "judge-model", "", "model used for judging")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	viper.BindPFlag("judge_provider", RootCmd.PersistentFlags().Lookup("judge-provider"))
	viper.BindPFlag("judge_model", RootCmd.PersistentFlags().Lookup("judge-model"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))

	initCompareCommand(RootCmd)
	initModelsCommand(RootCmd)
	initServeCommand(RootCmd)

	RootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".quorum")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quorum",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("quorum v0.1.0")
	},
}
