package interaction

import (
	"context"
	"fmt"
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ReadFunc reads the observed quantity from the page
type ReadFunc func(ctx context.Context) (entities.ObservedValue, error)

// MutateFunc performs the action expected to change the observed quantity
type MutateFunc func(ctx context.Context) error

// Observer confirms that a mutation changed an observed value
type Observer struct {
	interval time.Duration
	logger   logrus.FieldLogger
}

// NewObserver - creates new change observer polling every interval
func NewObserver(interval time.Duration, logger logrus.FieldLogger) *Observer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Observer{
		interval: interval,
		logger:   logger,
	}
}

// ObserveChange - reads a baseline, runs mutate, then polls read until the value
// differs from the baseline. It certifies only that a change happened; whether the
// new value is right is up to the caller.
func (o *Observer) ObserveChange(ctx context.Context, read ReadFunc, mutate MutateFunc, timeout time.Duration) (entities.Change, error) {
	if timeout <= 0 {
		return entities.Change{}, fmt.Errorf("observe change: %w", entities.ErrInvalidTimeout)
	}

	before, err := read(ctx)
	if err != nil {
		return entities.Change{}, fmt.Errorf("failed to read baseline: %w", err)
	}

	if err := mutate(ctx); err != nil {
		return entities.Change{Before: before}, err
	}

	var after entities.ObservedValue
	result, err := poll(ctx, o.interval, timeout, func(ctx context.Context) (bool, error) {
		current, err := read(ctx)
		if err != nil {
			return false, err
		}
		if current.Equal(before) {
			return false, nil
		}
		after = current
		return true, nil
	})
	if err != nil {
		return entities.Change{Before: before}, fmt.Errorf("observe change: %w", err)
	}
	if !result.satisfied {
		stuck := before
		return entities.Change{Before: before}, &entities.TimeoutError{
			Condition: fmt.Sprintf("value to change from %q", before.Text),
			Timeout:   timeout,
			Value:     &stuck,
			LastErr:   result.lastErr,
		}
	}

	o.logger.WithFields(logrus.Fields{
		"before": before.Text,
		"after":  after.Text,
	}).Debug("Observed change")
	return entities.Change{Before: before, After: after}, nil
}

// TextOf - reads the text of selector as a textual value
func TextOf(page interfaces.Page, selector string) ReadFunc {
	return func(ctx context.Context) (entities.ObservedValue, error) {
		text, err := page.ReadText(ctx, selector)
		if err != nil {
			return entities.ObservedValue{}, err
		}
		return entities.TextValue(text), nil
	}
}

// PriceOf - reads the text of selector as a price
func PriceOf(page interfaces.Page, selector string) ReadFunc {
	return func(ctx context.Context) (entities.ObservedValue, error) {
		text, err := page.ReadText(ctx, selector)
		if err != nil {
			return entities.ObservedValue{}, err
		}
		return entities.PriceValue(text), nil
	}
}
