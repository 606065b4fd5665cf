// Package retry implements the exponential-backoff-with-jitter helper
// shared by the callers of external, rate-limited APIs (slides, storage
// uploads), grounded on the teacher's
// internal/storage retry loop.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Config mirrors the spec's RetryConfig: MAX_RETRIES, BASE_DELAY_SECONDS,
// BACKOFF_FACTOR.
type Config struct {
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
}

// DefaultConfig matches the teacher's storage retry tuning.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    4,
		BaseDelay:     1 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      30 * time.Second,
	}
}

// Delay computes attempt N's backoff with 0-25% jitter to avoid thundering herd.
func (c Config) Delay(attempt int) time.Duration {
	delay := float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

// Do runs fn up to MaxRetries+1 times, sleeping Delay(attempt) between
// attempts, stopping early when fn returns a non-retryable error (as judged
// by isRetryable) or nil.
func Do(ctx context.Context, cfg Config, isRetryable func(error) bool, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay(attempt)):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return lastErr
}

// retryableStatus is a sentinel error carrying an HTTP status code so
// IsRetryableHTTPError can classify it without string matching.
type retryableStatus struct {
	status int
	err    error
}

func (e *retryableStatus) Error() string { return e.err.Error() }
func (e *retryableStatus) Unwrap() error { return e.err }

// WrapHTTPStatus annotates err with the HTTP status code that produced it.
func WrapHTTPStatus(status int, err error) error {
	return &retryableStatus{status: status, err: err}
}

// IsRetryableHTTPError reports whether err represents a transient
// network failure or a 429/408/502/503/504 response worth retrying.
func IsRetryableHTTPError(err error) bool {
	if err == nil {
		return false
	}

	var rs *retryableStatus
	if errors.As(err, &rs) {
		return isRetryableStatus(rs.status)
	}

	msg := err.Error()
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "broken pipe")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}
