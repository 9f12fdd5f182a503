package commands

import (
	"github.com/spf13/viper"

	"github.com/quorumkit/quorum/pkg/modelkit/config"
	"github.com/quorumkit/quorum/pkg/quorum"
)

// buildEngine assembles the comparison engine from viper configuration.
// Providers without API keys still get a config entry; their calls fail
// and are reported per-response rather than blocking the comparison.
func buildEngine() *quorum.Engine {
	configs := map[string]config.Config{
		"openai": config.NewConfig(config.WithAPIKey(viper.GetString("openai_api_key"))),
		"claude": config.NewConfig(config.WithAPIKey(viper.GetString("claude_api_key"))),
		"gemini": config.NewConfig(config.WithAPIKey(viper.GetString("gemini_api_key"))),
		"grok":   config.NewConfig(config.WithAPIKey(viper.GetString("grok_api_key"))),
	}

	engine := quorum.NewEngine(configs)
	engine.JudgeSpec = quorum.ModelSpec{
		Provider: viper.GetString("judge_provider"),
		Model:    viper.GetString("judge_model"),
	}
	return engine
}
