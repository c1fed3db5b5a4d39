package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited matches a RateLimitError via errors.Is.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrAuthExpired matches an AuthExpiredError via errors.Is.
	ErrAuthExpired = errors.New("access token expired")
	// ErrNoCredential is returned when no credential can be produced.
	ErrNoCredential = errors.New("no credential available")
)

// RateLimitError is returned when a request keeps receiving 429 after all
// retries. Attempts counts every request sent, including the first.
type RateLimitError struct {
	Attempts int
	Response *http.Response
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts, try again later", e.Attempts)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// AuthExpiredError is returned on 403. It is never retried.
type AuthExpiredError struct {
	Response *http.Response
}

func (e *AuthExpiredError) Error() string {
	return "auth failed: access token has expired"
}

func (e *AuthExpiredError) Is(target error) bool { return target == ErrAuthExpired }

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status     int
	StatusText string
	Response   *http.Response
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed: %d: %s", e.Status, e.StatusText)
}

// StatusOf returns the HTTP status carried by a transport error, or 0.
func StatusOf(err error) int {
	var (
		rl *RateLimitError
		ae *AuthExpiredError
		he *HTTPError
	)
	switch {
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case errors.As(err, &ae):
		return http.StatusForbidden
	case errors.As(err, &he):
		return he.Status
	}
	return 0
}
