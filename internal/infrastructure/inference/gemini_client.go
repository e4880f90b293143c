package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"resty.dev/v3"

	"promptforge/internal/config"
	"promptforge/internal/domain/generation"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/infrastructure/metrics"
	"promptforge/internal/infrastructure/observability"
	httpclients "promptforge/internal/utils/httpclients"
)

const (
	apiKeyHeader     = "x-goog-api-key"
	defaultRetryWait = 500 * time.Millisecond
)

// GeminiClient calls the generateContent endpoint of one configured model.
type GeminiClient struct {
	client     *resty.Client
	baseURL    string
	model      string
	apiKey     string
	maxRetries int
	retryWait  time.Duration
}

func NewGeminiClient(cfg *config.Config) *GeminiClient {
	client := httpclients.NewClient("gemini", cfg.GeminiTimeout)
	// Retries are driven by GenerateContent so every attempt is measured.
	client.SetRetryCount(0)
	return &GeminiClient{
		client:     client,
		baseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/"),
		model:      cfg.GeminiModel,
		apiKey:     cfg.GeminiAPIKey,
		maxRetries: cfg.GeminiMaxRetries,
		retryWait:  defaultRetryWait,
	}
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

// GenerateContent posts req and decodes the reply. Transport failures and
// non-2xx statuses come back as generation failures; 5xx and network errors
// are retried up to the configured count.
func (c *GeminiClient) GenerateContent(ctx context.Context, req *generation.GenerateContentRequest) (*generation.GenerateContentResponse, error) {
	ctx, span := observability.StartSpan(ctx, "promptforge", "gemini.GenerateContent")
	defer span.End()
	observability.AddSpanAttributes(ctx, attribute.String("gemini.model", c.model))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordUpstreamRetry(c.model)
			select {
			case <-ctx.Done():
				return nil, c.unavailable(ctx, ctx.Err())
			case <-time.After(c.retryWait * time.Duration(attempt)):
			}
		}

		resp, err := c.call(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		log := logger.GetLogger()
		log.Warn().Err(err).Int("attempt", attempt+1).Str("model", c.model).Msg("gemini call failed")
	}
	observability.RecordError(ctx, lastErr)
	return nil, lastErr
}

func (c *GeminiClient) call(ctx context.Context, req *generation.GenerateContentRequest) (*generation.GenerateContentResponse, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(apiKeyHeader, c.apiKey).
		SetBody(req).
		Post(c.endpoint())
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordUpstream(c.model, "network", elapsed)
		return nil, c.unavailable(ctx, err)
	}
	metrics.RecordUpstream(c.model, strconv.Itoa(resp.StatusCode()), elapsed)

	body := resp.Bytes()
	if resp.IsError() {
		return nil, generation.NewFailure(ctx, &generation.Failure{
			Kind:       generation.KindUpstreamError,
			Message:    fmt.Sprintf("provider returned %d: %s", resp.StatusCode(), errorMessage(resp.StatusCode(), body)),
			StatusCode: resp.StatusCode(),
		}, "6c1e8f3a-9b2d-4d57-a4e0-f8b3c2d1e7a5")
	}

	var result generation.GenerateContentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, generation.NewFailure(ctx, &generation.Failure{
			Kind:       generation.KindInvalidUpstreamResponse,
			Message:    "provider returned a body that is not a generateContent response",
			StatusCode: resp.StatusCode(),
			Err:        err,
		}, "0b4d7e2f-6a1c-4e93-8f5b-d2c7a9e1b3f6")
	}
	return &result, nil
}

func errorMessage(status int, body []byte) string {
	var envelope generation.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > 512 {
			text = text[:512]
		}
		return text
	}
	return http.StatusText(status)
}

func (c *GeminiClient) unavailable(ctx context.Context, err error) error {
	timeout := isTimeout(err)
	message := "provider unreachable"
	if timeout {
		message = "provider call timed out"
	}
	return generation.NewFailure(ctx, &generation.Failure{
		Kind:    generation.KindUpstreamUnavailable,
		Message: message,
		Timeout: timeout,
		Err:     err,
	}, "e2a9c4f7-1d3b-4f86-b5e2-7c9d0a1f3b84")
}

func retryable(err error) bool {
	f, ok := generation.FailureOf(err)
	if !ok {
		return false
	}
	if f.Kind == generation.KindUpstreamUnavailable {
		return !errors.Is(f.Err, context.Canceled)
	}
	return f.Kind == generation.KindUpstreamError && f.StatusCode >= http.StatusInternalServerError
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
