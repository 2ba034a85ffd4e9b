package services

import (
	"context"
	"errors"
	"log/slog"

	"nutricoach-backend/internal/config"
	"nutricoach-backend/internal/logger"
	"nutricoach-backend/internal/models"
)

const (
	completionTemperature = 0.7
	completionMaxTokens   = 2000

	// emptyReplyFallback is returned when the provider succeeds without text.
	emptyReplyFallback = "Извините, LLM вернул пустой ответ."
)

// CoachService turns one chat turn into one provider completion. It keeps no
// state between calls; conversation continuity is the caller's history.
type CoachService struct {
	cfg      *config.LLMConfig
	provider CompletionProvider
	window   HistoryWindow
	logger   *slog.Logger
}

func NewCoachService(cfg *config.LLMConfig, provider CompletionProvider, log *slog.Logger) *CoachService {
	return &CoachService{
		cfg:      cfg,
		provider: provider,
		window:   NewHistoryWindow(cfg.HistoryWindow),
		logger:   log,
	}
}

// CheckConfig fails with *ConfigurationError if any provider secret is missing.
func (s *CoachService) CheckConfig() error {
	if missing := s.cfg.MissingSecrets(); len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Complete produces the assistant reply for req. Errors are always one of
// *ConfigurationError, *ProviderError or *InternalError.
func (s *CoachService) Complete(ctx context.Context, req models.ChatTurnRequest) (string, error) {
	if err := s.CheckConfig(); err != nil {
		return "", err
	}

	payload := s.buildPayload(req)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Complete(ctx, payload)
	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) {
			s.logger.Error("YandexGPT API error", "status", providerErr.StatusCode, "body", providerErr.Body)
			return "", providerErr
		}
		s.logger.Error("coach completion failed", logger.Err(err))
		return "", &InternalError{Cause: err}
	}

	if resp != nil && resp.Result != nil && resp.Result.Usage != nil {
		s.logger.Debug("coach completion done",
			"model_version", resp.Result.ModelVersion,
			"total_tokens", resp.Result.Usage.TotalTokens.String(),
		)
	}

	return replyText(resp), nil
}

func (s *CoachService) buildPayload(req models.ChatTurnRequest) *CompletionRequest {
	history := s.window.Apply(req.ChatHistory)

	return &CompletionRequest{
		ModelURI: s.cfg.ModelURI,
		CompletionOptions: CompletionOptions{
			Stream:      false,
			Temperature: completionTemperature,
			MaxTokens:   completionMaxTokens,
		},
		Messages: buildMessages(buildSystemPrompt(req.Context), history, req.Message),
	}
}

func replyText(resp *CompletionResponse) string {
	if resp == nil || resp.Result == nil || len(resp.Result.Alternatives) == 0 {
		return emptyReplyFallback
	}
	msg := resp.Result.Alternatives[0].Message
	if msg == nil || msg.Text == "" {
		return emptyReplyFallback
	}
	return msg.Text
}
