package interaction

import (
	"context"
	"fmt"
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Waiter waits for conditions over a single page
type Waiter struct {
	page     interfaces.Page
	interval time.Duration
	logger   logrus.FieldLogger
}

// NewWaiter - creates new condition waiter polling page every interval
func NewWaiter(page interfaces.Page, interval time.Duration, logger logrus.FieldLogger) *Waiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Waiter{
		page:     page,
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the poll interval
func (w *Waiter) Interval() time.Duration {
	return w.interval
}

// Await - waits until cond holds or its timeout elapses.
// ElementHidden is satisfied by an element that is absent as well as one that is invisible.
func (w *Waiter) Await(ctx context.Context, cond entities.Condition) error {
	if cond.Timeout <= 0 {
		return fmt.Errorf("condition %s: %w", cond, entities.ErrInvalidTimeout)
	}

	if state, ok := cond.LoadState(); ok {
		return w.awaitLoadState(ctx, cond, state)
	}

	started := time.Now()
	result, err := poll(ctx, w.interval, cond.Timeout, func(ctx context.Context) (bool, error) {
		return w.check(ctx, cond)
	})
	if err != nil {
		return fmt.Errorf("await %s: %w", cond, err)
	}
	if !result.satisfied {
		return &entities.TimeoutError{
			Condition: cond.String(),
			Timeout:   cond.Timeout,
			LastErr:   result.lastErr,
		}
	}

	w.logger.WithFields(logrus.Fields{
		"condition": cond.String(),
		"elapsed":   time.Since(started).Round(time.Millisecond),
	}).Debug("Condition satisfied")
	return nil
}

func (w *Waiter) check(ctx context.Context, cond entities.Condition) (bool, error) {
	switch cond.Kind {
	case entities.ConditionElementVisible:
		return w.page.IsVisible(ctx, cond.Selector)
	case entities.ConditionElementHidden:
		visible, err := w.page.IsVisible(ctx, cond.Selector)
		if err != nil {
			return false, err
		}
		return !visible, nil
	case entities.ConditionPredicateTrue:
		if cond.Predicate != nil {
			return cond.Predicate(ctx)
		}
		result, err := w.page.Evaluate(ctx, cond.Script)
		if err != nil {
			return false, err
		}
		return truthy(result), nil
	default:
		return false, fmt.Errorf("unsupported condition kind: %s", cond.Kind)
	}
}

func (w *Waiter) awaitLoadState(ctx context.Context, cond entities.Condition, state entities.LoadState) error {
	err := w.page.WaitForLoadState(ctx, state, cond.Timeout)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("await %s: %w", cond, ctx.Err())
	}
	return &entities.TimeoutError{
		Condition: cond.String(),
		Timeout:   cond.Timeout,
		LastErr:   err,
	}
}

// truthy mirrors JavaScript truthiness for values returned by Evaluate
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
