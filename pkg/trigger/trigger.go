package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getmentor/mentorship-api/pkg/circuitbreaker"
	"github.com/getmentor/mentorship-api/pkg/httpclient"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// asyncTimeout bounds a fire-and-forget call including its retries
const asyncTimeout = 60 * time.Second

// Trigger posts JSON payloads to an external webhook URL.
// Calls go through a circuit breaker and are retried with backoff.
type Trigger struct {
	name       string
	url        string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
	retry      retry.Config
}

// New creates a trigger. An empty url yields a disabled trigger whose calls are no-ops.
func New(name, url string, httpClient httpclient.Client) *Trigger {
	breakerCfg := circuitbreaker.DefaultConfig(name)
	breakerCfg.IsSuccessful = receiverAnswered

	return &Trigger{
		name:       name,
		url:        url,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(breakerCfg),
		retry:      retry.WebhookConfig(),
	}
}

// Enabled reports whether a URL is configured
func (t *Trigger) Enabled() bool {
	return t != nil && t.url != ""
}

// Fire posts payload and waits for the outcome
func (t *Trigger) Fire(ctx context.Context, payload any) error {
	if !t.Enabled() {
		return nil
	}

	start := time.Now()
	err := retry.Do(ctx, t.retry, t.name, func() error {
		_, err := circuitbreaker.Execute(t.breaker, func() (int, error) {
			return t.post(ctx, payload)
		})
		return err
	})
	duration := metrics.MeasureDuration(start)

	if err != nil {
		logger.LogAPICall(t.name, "fire", "error", duration, zap.Error(err))
		return fmt.Errorf("trigger %s failed: %w", t.name, err)
	}
	logger.LogAPICall(t.name, "fire", "success", duration)
	return nil
}

// FireAsync posts payload in the background. Failures are logged and never
// reach the caller.
func (t *Trigger) FireAsync(payload any) {
	if !t.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := t.Fire(ctx, payload); err != nil {
			logger.Warn("Async trigger call failed",
				zap.String("trigger", t.name),
				zap.Error(err))
		}
	}()
}

// receiverAnswered keeps rejected payloads from tripping the breaker.
// Only transport failures and retryable statuses count against the receiver.
func receiverAnswered(err error) bool {
	return err == nil || errors.Is(err, retry.ErrPermanent)
}

func (t *Trigger) post(ctx context.Context, payload any) (int, error) {
	req, err := httpclient.NewJSONRequest(ctx, t.url, payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", retry.ErrPermanent, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return resp.StatusCode, fmt.Errorf("%w: status %d", retry.ErrPermanent, resp.StatusCode)
	default:
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
