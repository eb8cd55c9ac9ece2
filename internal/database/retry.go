package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRetryDelay is the fixed pause between connection attempts.
const DefaultRetryDelay = 2 * time.Second

// ErrStoreUnavailable is returned when the retry policy gives up on reaching the store.
var ErrStoreUnavailable = errors.New("store unavailable")

// SleepFunc pauses for the given duration or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy describes how connection acquisition waits for the store.
// The delay is fixed; MaxAttempts of zero retries forever.
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts int
	Sleep       SleepFunc
}

// DefaultRetryPolicy retries forever every two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: DefaultRetryDelay}
}

// Do runs op until it succeeds, the attempt limit is reached or ctx is cancelled.
func (p RetryPolicy) Do(ctx context.Context, logger zerolog.Logger, op func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			logger.Error().Err(err).Int("attempt", attempt).Msg("store connection failed, giving up")
			return fmt.Errorf("%w after %d attempts: %w", ErrStoreUnavailable, attempt, err)
		}

		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("store connection failed")

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
