package remote

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is the number of extra attempts after a 429.
	DefaultMaxRetries = 2
	// maxBackoff caps the exponential delay when no retry-after is sent.
	maxBackoff = 60 * time.Second
)

// SleepFunc suspends the caller for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// backoff computes the exponential delay for a 1-based retry attempt:
// min(2^attempt, 60) seconds.
func backoff(attempt int) time.Duration {
	secs := math.Pow(2, float64(attempt))
	if secs >= maxBackoff.Seconds() {
		return maxBackoff
	}
	return time.Duration(secs) * time.Second
}

// retryDelay prefers a positive retry-after header (in seconds) and falls
// back to backoff.
func retryDelay(resp *http.Response, attempt int) time.Duration {
	if resp != nil {
		if v := strings.TrimSpace(resp.Header.Get("Retry-After")); v != "" {
			if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return backoff(attempt)
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
