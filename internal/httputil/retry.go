package httputil

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Policy describes how an upstream call is attempted.
type Policy struct {
	Attempts int           // Total attempts, including the first
	Timeout  time.Duration // Deadline for each individual attempt
	Step     time.Duration // Back-off before attempt n+1 is Step*n
	Limiter  *rate.Limiter // Optional throttle waited on before every attempt
}

// linearBackOff grows the delay by one step per failed attempt.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }

// Retry runs op under the policy and reports how many attempts were made.
// Each attempt gets its own timeout derived from ctx. Transport failures,
// 5xx and 429 responses are retried; any other error stops immediately.
func Retry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	tries := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		var zero T
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return zero, backoff.Permanent(err)
			}
		}

		tries++
		attemptCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}

		v, err := op(attemptCtx)
		if err != nil && !Retryable(err) {
			return zero, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(&linearBackOff{step: p.Step}),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
	)

	return res, tries, err
}

// Retryable reports whether an upstream error is worth another attempt.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError || se.Code == http.StatusTooManyRequests
	}
	var ve *ValidationError
	return !errors.As(err, &ve)
}
