package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Dispatcher delivers bump notifications to a single configured webhook URL
// with retry logic and a circuit breaker.
type Dispatcher struct {
	url            string
	httpClient     *http.Client
	retryConfig    RetryConfig
	circuitBreaker *CircuitBreaker
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(url string, timeout time.Duration, retryConfig RetryConfig) *Dispatcher {
	retryConfig.SetDefaults()

	return &Dispatcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retryConfig:    retryConfig,
		circuitBreaker: NewCircuitBreaker(),
	}
}

// Send delivers a bump notification with retry logic
func (d *Dispatcher) Send(ctx context.Context, payload BumpPayload) error {
	if !d.circuitBreaker.CanAttempt() {
		slog.Warn("Circuit breaker is open, skipping webhook delivery",
			"ad_id", payload.AdID,
			"correlation_id", payload.CorrelationID,
			"circuit_state", d.circuitBreaker.GetStateName(),
		)
		return fmt.Errorf("circuit breaker is open")
	}

	retryStrategy := NewRetryStrategy(d.retryConfig)

	for attempt := 1; attempt <= retryStrategy.GetMaxAttempts(); attempt++ {
		statusCode, err := d.deliver(ctx, payload)

		if err == nil && statusCode >= 200 && statusCode < 300 {
			slog.Info("Bump notification delivered",
				"ad_id", payload.AdID,
				"correlation_id", payload.CorrelationID,
				"attempt", attempt,
				"status_code", statusCode,
			)
			d.circuitBreaker.RecordSuccess()
			return nil
		}

		if !retryStrategy.ShouldRetry(attempt, statusCode, err) {
			d.circuitBreaker.RecordFailure()
			return fmt.Errorf("webhook delivery failed after %d attempts (status %d): %v", attempt, statusCode, err)
		}

		if attempt < retryStrategy.GetMaxAttempts() {
			delay := retryStrategy.CalculateDelay(attempt)
			slog.Warn("Bump notification delivery failed, retrying",
				"ad_id", payload.AdID,
				"correlation_id", payload.CorrelationID,
				"attempt", attempt,
				"next_retry_ms", delay.Milliseconds(),
				"error", err,
			)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	d.circuitBreaker.RecordFailure()
	return fmt.Errorf("webhook delivery failed after %d attempts", retryStrategy.GetMaxAttempts())
}

// deliver performs a single delivery attempt
func (d *Dispatcher) deliver(ctx context.Context, payload BumpPayload) (int, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain up to 1KB so the connection can be reused
	io.CopyN(io.Discard, resp.Body, 1024)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp.StatusCode, nil
}

// GetCircuitBreakerState returns the current circuit breaker state
func (d *Dispatcher) GetCircuitBreakerState() string {
	return d.circuitBreaker.GetStateName()
}
