package ecount

import (
	"context"
	"math/rand"
	"time"
)

const maxJitter = 200 * time.Millisecond

// Retrier runs an operation up to Attempts times, waiting
// Base*2^attempt plus up to 200ms of jitter after every failure.
type Retrier struct {
	Attempts int
	Base     time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
	Jitter   func() time.Duration
	OnRetry  func(attempt int, wait time.Duration, err error)
}

// Delay is the wait after the given zero-based failed attempt.
func (r Retrier) Delay(attempt int) time.Duration {
	jitter := time.Duration(0)
	if r.Jitter != nil {
		jitter = r.Jitter()
	}
	return r.Base*time.Duration(1<<attempt) + jitter
}

// Do returns the first success or the last error.
func (r Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		if last = fn(ctx); last == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		wait := r.Delay(attempt)
		if r.OnRetry != nil {
			r.OnRetry(attempt, wait, last)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
	return last
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
