package interaction

import (
	"context"
	"fmt"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Navigator navigates with bounded retries
type Navigator struct {
	page   interfaces.Page
	waiter *Waiter
	logger logrus.FieldLogger
}

// NewNavigator - creates new retrying navigator
func NewNavigator(page interfaces.Page, waiter *Waiter, logger logrus.FieldLogger) *Navigator {
	return &Navigator{
		page:   page,
		waiter: waiter,
		logger: logger,
	}
}

// Navigate - navigates to target and awaits completion, retrying per policy.
// The completion condition decides what "loaded" means; a zero Condition skips the wait.
// Once the policy is exhausted a *entities.NavigationError is returned.
func (n *Navigator) Navigate(ctx context.Context, target string, completion entities.Condition, policy entities.RetryPolicy) error {
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}

	log := n.logger.WithField("target", target)

	attempts := 0
	var lastCause error
	operation := func() error {
		attempts++
		err := n.attempt(ctx, target, completion, policy)
		if err == nil {
			return nil
		}

		lastCause = err
		log.WithFields(logrus.Fields{
			"attempt":      attempts,
			"max_attempts": policy.MaxAttempts,
		}).WithError(err).Warn("Navigation attempt failed")

		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(newBackOff(policy), ctx)); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("navigation to %s stopped after %d attempt(s): %w", target, attempts, ctx.Err())
		}
		return &entities.NavigationError{
			Target:    target,
			Attempts:  attempts,
			LastCause: lastCause,
		}
	}

	log.WithField("attempts", attempts).Info("Navigation complete")
	return nil
}

func (n *Navigator) attempt(ctx context.Context, target string, completion entities.Condition, policy entities.RetryPolicy) error {
	attemptCtx, cancel := context.WithTimeout(ctx, policy.PerAttemptTimeout)
	defer cancel()

	if err := n.page.Navigate(attemptCtx, target, policy.PerAttemptTimeout); err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}
	if completion.Kind == "" {
		return nil
	}
	return n.waiter.Await(attemptCtx, completion)
}

// newBackOff builds the pause schedule between attempts; it stops after MaxAttempts-1 retries
func newBackOff(policy entities.RetryPolicy) backoff.BackOff {
	var b backoff.BackOff
	if policy.Multiplier > 1 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = policy.Backoff
		exp.Multiplier = policy.Multiplier
		exp.RandomizationFactor = 0
		exp.MaxElapsedTime = 0
		if exp.MaxInterval < policy.Backoff {
			exp.MaxInterval = policy.Backoff
		}
		exp.Reset()
		b = exp
	} else {
		b = backoff.NewConstantBackOff(policy.Backoff)
	}
	return backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1))
}
