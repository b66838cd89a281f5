package wizard

import (
	"context"
	"fmt"

	"dossier/internal/prompts"
	"dossier/pkg/utils"

	"go.uber.org/zap"
)

// completeJSON sends p and decodes the JSON reply into out. A reply that cannot
// be decoded, or that check rejects, is retried once with the same prompt.
// Provider errors are returned as-is without retry.
func completeJSON(ctx context.Context, client utils.CompletionClientInterface, p prompts.Prompt, out any, check func() error, logger *zap.Logger) error {
	if client == nil {
		return utils.ErrNotConfigured
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		res, err := client.Complete(ctx, p.Messages, p.Options)
		if err != nil {
			return err
		}
		if err := utils.DecodeJSONResponse(res.Content, out); err != nil {
			lastErr = err
		} else if check != nil {
			lastErr = check()
		} else {
			lastErr = nil
		}
		if lastErr == nil {
			return nil
		}
		logger.Warn("malformed completion response",
			zap.String("provider", res.Provider),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
	}
	return fmt.Errorf("%w: %w", utils.ErrGenerationFailed, lastErr)
}
