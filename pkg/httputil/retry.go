package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a transient failure: a dropped connection, a 5xx or a
// 429 response. After, when set, is the wait the server asked for.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff controls [Retry]. Delay doubles after each failure up to MaxDelay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration

	// OnRetry is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultBackoff is used by [NewClient].
var DefaultBackoff = Backoff{Attempts: DefaultAttempts, Delay: DefaultDelay, MaxDelay: 30 * time.Second}

// next returns the wait before attempt i+1. A server-requested wait wins over
// the computed one but is still capped.
func (b Backoff) next(i int, err error) time.Duration {
	d := b.Delay << i
	var re *RetryableError
	if errors.As(err, &re) && re.After > 0 {
		d = re.After
	}
	if b.MaxDelay > 0 && (d > b.MaxDelay || d < 0) {
		d = b.MaxDelay
	}
	return d
}

// Retry calls fn until it succeeds, fails with an error that is not a
// [RetryableError], or b.Attempts calls have been made. It returns the last
// error, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := b.next(i, lastErr)
		if b.OnRetry != nil {
			b.OnRetry(i+1, wait, lastErr)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// IsRetryable reports whether err is, or wraps, a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if s, err := strconv.Atoi(v); err == nil && s >= 0 {
		return time.Duration(s) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
