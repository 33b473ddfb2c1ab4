// Package retry repeats an operation with exponential backoff for as long as
// its error looks transient.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the backoff
type Options struct {
	MaxRetries    int // attempts after the first one
	InitialDelay  time.Duration
	MaxDelay      time.Duration // 0 leaves the delay uncapped
	BackoffFactor float64
	JitterFactor  float64 // fraction of the delay randomly added or removed

	// RetryableErrors holds message fragments; an error containing one is retried
	RetryableErrors []string
	// IsRetryableFunc replaces the RetryableErrors check when set
	IsRetryableFunc func(error) bool

	// Logger receives one debug line per retry decision; use zerolog.Nop() to silence it
	Logger zerolog.Logger
}

// DefaultOptions returns options suited to reconnecting to a local server
func DefaultOptions() Options {
	return Options{
		MaxRetries:      3,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   2.0,
		JitterFactor:    0.2,
		RetryableErrors: []string{"connection refused"},
		Logger:          zerolog.Nop(),
	}
}

// Do calls fn until it succeeds, returns an error that is not retryable, runs
// out of retries or ctx is done. The last error from fn is returned.
func Do[T any](ctx context.Context, fn func() (T, error), opts Options) (T, error) {
	var zero T
	var delay time.Duration
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 1 {
				opts.Logger.Debug().Int("attempt", attempt).Msg("succeeded after retrying")
			}
			return result, nil
		}

		if !opts.retryable(err) {
			opts.Logger.Debug().Err(err).Msg("error is not retryable")
			return zero, err
		}
		if attempt > opts.MaxRetries {
			opts.Logger.Debug().Err(err).Int("attempts", attempt).Msg("giving up")
			return zero, err
		}

		delay = opts.nextDelay(delay)
		wait := opts.withJitter(delay, rnd)
		opts.Logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether the message of err contains one of fragments
func IsRetryable(err error, fragments []string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, f := range fragments {
		if f != "" && strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

func (o Options) retryable(err error) bool {
	if o.IsRetryableFunc != nil {
		return o.IsRetryableFunc(err)
	}
	return IsRetryable(err, o.RetryableErrors)
}

// nextDelay grows prev by the backoff factor, starting at InitialDelay
func (o Options) nextDelay(prev time.Duration) time.Duration {
	if prev == 0 {
		return o.InitialDelay
	}
	next := time.Duration(float64(prev) * o.BackoffFactor)
	if o.MaxDelay > 0 && next > o.MaxDelay {
		next = o.MaxDelay
	}
	return next
}

func (o Options) withJitter(d time.Duration, rnd *rand.Rand) time.Duration {
	if o.JitterFactor <= 0 {
		return d
	}
	spread := float64(d) * o.JitterFactor
	return time.Duration(float64(d) + (rnd.Float64()*2-1)*spread)
}
