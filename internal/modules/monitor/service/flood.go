package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withFloodRetry runs call and, on a flood wait, sleeps the signalled duration and runs it again.
// At most maxRetries extra attempts are made; the last error is returned as is.
func withFloodRetry[T any](ctx context.Context, maxRetries int, sleep SleepFunc, op string, call func() (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		result, err := call()
		wait, flood := domain.AsFloodWait(err)
		if !flood || attempt >= maxRetries {
			return result, err
		}

		slog.Warn("Flood wait, backing off", "op", op, "wait", wait, "attempt", attempt+1)
		if err := sleep(ctx, wait); err != nil {
			var zero T
			return zero, err
		}
	}
}
