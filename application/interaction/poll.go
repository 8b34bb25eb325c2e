package interaction

import (
	"context"
	"time"
)

// DefaultPollInterval is used when no poll interval is configured
const DefaultPollInterval = 100 * time.Millisecond

// checkFunc reports whether the awaited state holds
type checkFunc func(ctx context.Context) (bool, error)

type pollResult struct {
	satisfied bool
	lastErr   error
}

// poll runs check until it holds or timeout elapses. The last check always runs
// at or after the deadline, so a miss is never reported early. Each check is
// bounded to the deadline plus one interval. The returned error is non-nil only
// when ctx is done.
func poll(ctx context.Context, interval, timeout time.Duration, check checkFunc) (pollResult, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	checkCtx, cancel := context.WithDeadline(ctx, deadline.Add(interval))
	defer cancel()

	var result pollResult
	for {
		ok, err := check(checkCtx)
		if err == nil && ok {
			result.satisfied = true
			result.lastErr = nil
			return result, nil
		}
		if err != nil {
			result.lastErr = err
		}

		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return result, nil
		}

		wait := interval
		if remaining < wait {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}
}
