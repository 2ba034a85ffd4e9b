package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"nutricoach-backend/internal/config"
	"nutricoach-backend/internal/models"
)

// CompletionRequest is the YandexGPT completion payload.
type CompletionRequest struct {
	ModelURI          string               `json:"modelUri"`
	CompletionOptions CompletionOptions    `json:"completionOptions"`
	Messages          []models.HistoryTurn `json:"messages"`
}

type CompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens,string"`
}

// CompletionResponse is the subset of the provider's success body we read.
type CompletionResponse struct {
	Result *CompletionResult `json:"result"`
}

type CompletionResult struct {
	Alternatives []Alternative `json:"alternatives"`
	Usage        *Usage        `json:"usage"`
	ModelVersion string        `json:"modelVersion"`
}

type Alternative struct {
	Message *models.HistoryTurn `json:"message"`
	Status  string              `json:"status"`
}

// Usage counters arrive as quoted int64 values; json.Number accepts both forms.
type Usage struct {
	InputTextTokens  json.Number `json:"inputTextTokens"`
	CompletionTokens json.Number `json:"completionTokens"`
	TotalTokens      json.Number `json:"totalTokens"`
}

// CompletionProvider performs one completion call. A non-success status must
// be reported as *ProviderError.
type CompletionProvider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

type YandexGPTClient struct {
	cfg  *config.LLMConfig
	http *retryablehttp.Client
}

func NewYandexGPTClient(cfg *config.LLMConfig, logger *slog.Logger) *YandexGPTClient {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.CheckRetry = retryTransient
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if logger != nil {
		client.Logger = logger.With("component", "yandexgpt")
	}

	return &YandexGPTClient{cfg: cfg, http: client}
}

func (c *YandexGPTClient) Complete(ctx context.Context, payload *CompletionRequest) (*CompletionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CompletionURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-folder-id", c.cfg.FolderID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("YandexGPT request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read YandexGPT response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out CompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode YandexGPT response: %w", err)
	}
	return &out, nil
}

// retryTransient retries connection failures and the handful of statuses
// that mean "try again later". Auth and validation failures are final.
func retryTransient(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}
