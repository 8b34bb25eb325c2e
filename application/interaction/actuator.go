package interaction

import (
	"context"
	"fmt"
	"time"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// DefaultOverlaySelector is the storefront's loading mask
const DefaultOverlaySelector = ".loading-mask"

// ActOptions tunes a single actuation. Zero fields fall back to the actuator defaults.
type ActOptions struct {
	VisibleTimeout  time.Duration
	OverlaySelector string
	OverlayTimeout  time.Duration
	SkipOverlay     bool
}

func (o ActOptions) merge(defaults ActOptions) ActOptions {
	if o.VisibleTimeout <= 0 {
		o.VisibleTimeout = defaults.VisibleTimeout
	}
	if o.OverlaySelector == "" {
		o.OverlaySelector = defaults.OverlaySelector
	}
	if o.OverlayTimeout <= 0 {
		o.OverlayTimeout = defaults.OverlayTimeout
	}
	if o.OverlaySelector == "" {
		o.OverlaySelector = DefaultOverlaySelector
	}
	return o
}

// Actuator performs actions only once their preconditions hold
type Actuator struct {
	page     interfaces.Page
	waiter   *Waiter
	guard    interfaces.ActionGuard
	defaults ActOptions
	logger   logrus.FieldLogger
}

// NewActuator - creates new resilient actuator
func NewActuator(page interfaces.Page, waiter *Waiter, defaults ActOptions, logger logrus.FieldLogger) *Actuator {
	return &Actuator{
		page:     page,
		waiter:   waiter,
		defaults: defaults,
		logger:   logger,
	}
}

// WithGuard - sets a guard consulted before every action
func (a *Actuator) WithGuard(guard interfaces.ActionGuard) *Actuator {
	a.guard = guard
	return a
}

// Act - waits for selector to be visible, lets the overlay clear, then performs action.
// Overlay wait failures are absorbed; visibility and action failures are not, and
// nothing is retried here.
func (a *Actuator) Act(ctx context.Context, selector string, action entities.Action, opts ActOptions) entities.ActionOutcome {
	opts = opts.merge(a.defaults)
	outcome := entities.ActionOutcome{AttemptsUsed: 1}
	log := a.logger.WithFields(logrus.Fields{
		"selector": selector,
		"action":   action.String(),
	})

	visible, err := entities.ElementVisible(selector, opts.VisibleTimeout)
	if err != nil {
		outcome.LastError = &entities.ElementNotFoundError{Selector: selector, Cause: err}
		return outcome
	}
	if err := a.waiter.Await(ctx, visible); err != nil {
		outcome.LastError = &entities.ElementNotFoundError{Selector: selector, Cause: err}
		return outcome
	}

	if !opts.SkipOverlay {
		a.clearOverlay(ctx, opts, log)
	}

	if a.guard != nil {
		if err := a.guard.Allow(selector, action); err != nil {
			outcome.LastError = &entities.ActionFailedError{Selector: selector, Action: action, Cause: err}
			return outcome
		}
	}

	if err := a.perform(ctx, selector, action); err != nil {
		outcome.LastError = &entities.ActionFailedError{Selector: selector, Action: action, Cause: err}
		return outcome
	}

	log.Debug("Action performed")
	outcome.Succeeded = true
	return outcome
}

// Click - shorthand for Act with a click and default options
func (a *Actuator) Click(ctx context.Context, selector string) error {
	return a.Act(ctx, selector, entities.Click(), ActOptions{}).Err()
}

// Fill - shorthand for Act with a fill and default options
func (a *Actuator) Fill(ctx context.Context, selector string, text string) error {
	return a.Act(ctx, selector, entities.Fill(text), ActOptions{}).Err()
}

// ClearOverlay - best-effort wait for the loading overlay to go away
func (a *Actuator) ClearOverlay(ctx context.Context) {
	a.clearOverlay(ctx, ActOptions{}.merge(a.defaults), a.logger)
}

func (a *Actuator) clearOverlay(ctx context.Context, opts ActOptions, log logrus.FieldLogger) {
	if opts.OverlayTimeout <= 0 {
		return
	}
	hidden, err := entities.ElementHidden(opts.OverlaySelector, opts.OverlayTimeout)
	if err != nil {
		return
	}
	// An overlay that never clears is treated as absent.
	if err := a.waiter.Await(ctx, hidden); err != nil {
		log.WithError(err).Debug("Overlay still present, continuing")
	}
}

func (a *Actuator) perform(ctx context.Context, selector string, action entities.Action) error {
	switch action.Type {
	case entities.ActionClick:
		return a.page.Click(ctx, selector)
	case entities.ActionFill:
		return a.page.Fill(ctx, selector, action.Value)
	case entities.ActionPress:
		return a.page.Press(ctx, selector, action.Value)
	case entities.ActionSelectOption:
		return a.page.SelectOption(ctx, selector, action.Value)
	default:
		return fmt.Errorf("unsupported action type: %s", action.Type)
	}
}
