package completion_fx

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"dossier/pkg/utils"
)

var Module = fx.Provide(
	provideCompletionClient,
	provideEmbeddingClient)

func completionConfig() utils.CompletionConfig {
	provider := strings.ToLower(utils.GetEnvWithDefault("COMPLETION_PROVIDER", ""))
	cfg := utils.CompletionConfig{Provider: provider}
	switch provider {
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.Model = utils.GetEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini")
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	case "gemini":
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		cfg.Model = utils.GetEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash")
	}
	return cfg
}

// provideCompletionClient never fails on missing credentials: the wizard
// then runs with answers-only modules.
func provideCompletionClient(lc fx.Lifecycle, logger *zap.Logger) (utils.CompletionClientInterface, error) {
	cfg := completionConfig()
	client, err := utils.NewCompletionClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	if !utils.IsConfigured(client) {
		logger.Warn("completion provider not configured, assisted features are disabled",
			zap.String("provider", cfg.Provider))
	} else {
		logger.Info("completion provider ready",
			zap.String("provider", client.ProviderName()),
			zap.String("model", cfg.Model))
	}

	if closer, ok := client.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})
	}
	return client, nil
}

func provideEmbeddingClient(client utils.CompletionClientInterface) utils.EmbeddingClientInterface {
	return utils.EmbeddingClientFor(client)
}
