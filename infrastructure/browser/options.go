package browser

import (
	"context"
	"fmt"
	"time"

	"storefront_e2e/domain/entities"
)

// Options configures a browser engine
type Options struct {
	// Project is the browser to drive: chromium, firefox or webkit
	Project        string
	Headless       bool
	SlowMo         time.Duration
	ViewportWidth  int
	ViewportHeight int
	// ActionTimeout bounds single element operations
	ActionTimeout time.Duration
	// DriverPath points at chromedriver for the selenium engine
	DriverPath string
}

// launchArgs relax isolation so the slow storefront's cross-origin widgets load
var launchArgs = []string{
	"--disable-web-security",
	"--disable-features=IsolateOrigins,site-per-process",
	"--disable-site-isolation-trials",
	"--disable-dev-shm-usage",
}

const stateCheckInterval = 250 * time.Millisecond

// budget returns the time left for an operation: limit, cut short by ctx's deadline
func budget(ctx context.Context, limit time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < limit || limit <= 0 {
			limit = left
		}
	}
	if limit <= 0 {
		return 0, context.DeadlineExceeded
	}
	return limit, nil
}

// readyStateScript reports whether the document reached state. Network idle is
// approximated by a complete document with no jQuery requests in flight.
func readyStateScript(state entities.LoadState) string {
	switch state {
	case entities.LoadStateDOMContentLoaded:
		return `document.readyState === "interactive" || document.readyState === "complete"`
	case entities.LoadStateNetworkIdle:
		return `document.readyState === "complete" && (!window.jQuery || window.jQuery.active === 0)`
	default:
		return `document.readyState === "complete"`
	}
}

// waitUntil polls check until it holds, ctx ends or timeout elapses
func waitUntil(ctx context.Context, timeout time.Duration, what string, check func() (bool, error)) error {
	timeout, err := budget(ctx, timeout)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(stateCheckInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := check()
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		if time.Now().After(deadline) {
			if lastErr != nil {
				return fmt.Errorf("%s not reached within %s: %w", what, timeout, lastErr)
			}
			return fmt.Errorf("%s not reached within %s", what, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func toStrings(result interface{}) []string {
	items, ok := result.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}
