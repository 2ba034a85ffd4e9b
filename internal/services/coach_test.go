package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nutricoach-backend/internal/config"
	"nutricoach-backend/internal/models"
)

type stubProvider struct {
	resp  *CompletionResponse
	err   error
	calls int
	last  *CompletionRequest
	block bool
}

func (s *stubProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	s.calls++
	s.last = req
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.resp, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func textResponse(text string) *CompletionResponse {
	return &CompletionResponse{Result: &CompletionResult{
		Alternatives: []Alternative{{Message: &models.HistoryTurn{Role: models.RoleAssistant, Text: text}}},
	}}
}

func TestCoachService_MissingSecretNeverCallsProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{"missing api key", config.LLMConfig{FolderID: "f", ModelURI: "m"}},
		{"missing folder", config.LLMConfig{APIKey: "k", ModelURI: "m"}},
		{"missing model", config.LLMConfig{APIKey: "k", FolderID: "f"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := &stubProvider{resp: textResponse("never")}
			svc := NewCoachService(&tc.cfg, provider, discardLogger())

			_, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "hi", Context: "goal=loss"})

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
			}
			if cfgErr.Error() != "LLM configuration missing on server" {
				t.Fatalf("unexpected message %q", cfgErr.Error())
			}
			if provider.calls != 0 {
				t.Fatalf("provider must not be called, got %d calls", provider.calls)
			}
		})
	}
}

func TestCoachService_BuildsPayload(t *testing.T) {
	cfg := testLLMConfig("unused")
	provider := &stubProvider{resp: textResponse("Good start.")}
	svc := NewCoachService(cfg, provider, discardLogger())

	history := []models.HistoryTurn{
		{Role: models.RoleAssistant, Text: "Напиши, что ты кушал сегодня."},
		{Role: models.RoleUser, Text: "Гречку"},
	}
	req := models.ChatTurnRequest{Message: "I ate oatmeal", Context: "goal=loss", ChatHistory: history}

	text, err := svc.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Good start." {
		t.Fatalf("unexpected reply %q", text)
	}

	payload := provider.last
	if payload.ModelURI != cfg.ModelURI {
		t.Errorf("unexpected model uri %q", payload.ModelURI)
	}
	if payload.CompletionOptions != (CompletionOptions{Stream: false, Temperature: 0.7, MaxTokens: 2000}) {
		t.Errorf("unexpected options %+v", payload.CompletionOptions)
	}
	if len(payload.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(payload.Messages))
	}
	if payload.Messages[0].Role != models.RoleSystem || payload.Messages[0].Text != buildSystemPrompt("goal=loss") {
		t.Errorf("first message must be the system prompt")
	}
	if payload.Messages[1] != history[0] || payload.Messages[2] != history[1] {
		t.Errorf("history not forwarded in order: %+v", payload.Messages[1:3])
	}
	if payload.Messages[3] != (models.HistoryTurn{Role: models.RoleUser, Text: "I ate oatmeal"}) {
		t.Errorf("unexpected last message %+v", payload.Messages[3])
	}
}

func TestCoachService_HistoryWindowFromConfig(t *testing.T) {
	cfg := testLLMConfig("unused")
	cfg.HistoryWindow = 1
	provider := &stubProvider{resp: textResponse("ok")}
	svc := NewCoachService(cfg, provider, discardLogger())

	req := models.ChatTurnRequest{
		Message: "now",
		ChatHistory: []models.HistoryTurn{
			{Role: models.RoleUser, Text: "old"},
			{Role: models.RoleAssistant, Text: "recent"},
		},
	}
	if _, err := svc.Complete(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := provider.last.Messages
	if len(msgs) != 3 || msgs[1].Text != "recent" {
		t.Fatalf("expected only the most recent turn to be forwarded, got %+v", msgs)
	}
}

func TestCoachService_EmptyReplyFallback(t *testing.T) {
	tests := []struct {
		name string
		resp *CompletionResponse
	}{
		{"no result", &CompletionResponse{}},
		{"no alternatives", &CompletionResponse{Result: &CompletionResult{}}},
		{"no message", &CompletionResponse{Result: &CompletionResult{Alternatives: []Alternative{{}}}}},
		{"empty text", textResponse("")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCoachService(testLLMConfig("unused"), &stubProvider{resp: tc.resp}, discardLogger())

			text, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "hi"})
			if err != nil {
				t.Fatalf("empty reply must not be an error, got %v", err)
			}
			if text != emptyReplyFallback {
				t.Fatalf("expected fallback, got %q", text)
			}
		})
	}
}

func TestCoachService_ProviderErrorPassthrough(t *testing.T) {
	provider := &stubProvider{err: &ProviderError{StatusCode: 429, Body: `{"error":"quota"}`}}
	svc := NewCoachService(testLLMConfig("unused"), provider, discardLogger())

	_, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "hi"})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if providerErr.StatusCode != 429 || providerErr.Body != `{"error":"quota"}` {
		t.Fatalf("provider error altered: %+v", providerErr)
	}
}

func TestCoachService_TransportFailureIsInternal(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	svc := NewCoachService(testLLMConfig("unused"), &stubProvider{err: cause}, discardLogger())

	_, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "hi"})

	var internalErr *InternalError
	if !errors.As(err, &internalErr) {
		t.Fatalf("expected *InternalError, got %T", err)
	}
	if internalErr.Error() != "Internal Server Error" {
		t.Fatalf("internal error must not leak details: %q", internalErr.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be kept for operators")
	}
}

func TestCoachService_Timeout(t *testing.T) {
	cfg := testLLMConfig("unused")
	cfg.Timeout = 20 * time.Millisecond
	svc := NewCoachService(cfg, &stubProvider{block: true}, discardLogger())

	_, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "hi"})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCoachService_CancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewCoachService(testLLMConfig("unused"), &stubProvider{block: true}, discardLogger())
	_, err := svc.Complete(ctx, models.ChatTurnRequest{Message: "hi"})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to propagate, got %v", err)
	}
}

// End-to-end scenarios against a stubbed provider endpoint.

func newProviderStub(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestCoachService_RoundTrip(t *testing.T) {
	srv, calls := newProviderStub(t, http.StatusOK, `{"result":{"alternatives":[{"message":{"text":"Good start."}}]}}`)
	cfg := testLLMConfig(srv.URL)
	svc := NewCoachService(cfg, NewYandexGPTClient(cfg, nil), discardLogger())

	text, err := svc.Complete(context.Background(), models.ChatTurnRequest{
		Message:     "I ate oatmeal",
		Context:     "goal=loss",
		ChatHistory: []models.HistoryTurn{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Good start." {
		t.Fatalf("unexpected reply %q", text)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one provider call, got %d", calls.Load())
	}
}

func TestCoachService_ForbiddenScenario(t *testing.T) {
	srv, _ := newProviderStub(t, http.StatusForbidden, "forbidden")
	cfg := testLLMConfig(srv.URL)
	svc := NewCoachService(cfg, NewYandexGPTClient(cfg, nil), discardLogger())

	_, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "I ate oatmeal", Context: "goal=loss"})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if providerErr.Error() != "LLM API Error: 403" || providerErr.Body != "forbidden" {
		t.Fatalf("unexpected provider error: %q / %q", providerErr.Error(), providerErr.Body)
	}
}

func TestCoachService_MissingModelScenario(t *testing.T) {
	srv, calls := newProviderStub(t, http.StatusOK, `{}`)
	cfg := testLLMConfig(srv.URL)
	cfg.ModelURI = ""
	svc := NewCoachService(cfg, NewYandexGPTClient(cfg, nil), discardLogger())

	_, err := svc.Complete(context.Background(), models.ChatTurnRequest{Message: "I ate oatmeal", Context: "goal=loss"})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no provider calls, got %d", calls.Load())
	}
}
