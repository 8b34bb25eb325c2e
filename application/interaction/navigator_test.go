package interaction

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront_e2e/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storefront = "https://magento.softwaretestingboard.com/"

func failures(n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = fmt.Errorf("net::ERR_TIMED_OUT (attempt %d)", i+1)
	}
	return errs
}

func newTestNavigator(page *fakePage) *Navigator {
	return NewNavigator(page, NewWaiter(page, testInterval, quietLogger()), quietLogger())
}

func TestNavigateExhaustsExactlyMaxAttempts(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("max=%d", n), func(t *testing.T) {
			page := newFakePage()
			page.navigateErrs = failures(100)
			policy := entities.RetryPolicy{MaxAttempts: n, PerAttemptTimeout: time.Second}

			err := newTestNavigator(page).Navigate(context.Background(), storefront, entities.Condition{}, policy)

			var navErr *entities.NavigationError
			require.ErrorAs(t, err, &navErr)
			assert.Equal(t, n, navErr.Attempts)
			assert.Equal(t, storefront, navErr.Target)
			assert.Contains(t, navErr.LastCause.Error(), fmt.Sprintf("attempt %d", n))
			assert.Equal(t, n, page.navigations)
		})
	}
}

func TestNavigateStopsAtFirstSuccess(t *testing.T) {
	const n = 4
	for k := 1; k <= n; k++ {
		t.Run(fmt.Sprintf("succeeds=%d", k), func(t *testing.T) {
			page := newFakePage()
			page.navigateErrs = failures(k - 1)
			policy := entities.RetryPolicy{MaxAttempts: n, PerAttemptTimeout: time.Second}

			err := newTestNavigator(page).Navigate(context.Background(), storefront, entities.Condition{}, policy)

			require.NoError(t, err)
			assert.Equal(t, k, page.navigations)
		})
	}
}

func TestNavigateTreatsUnmetCompletionAsFailedAttempt(t *testing.T) {
	page := newFakePage()
	page.loadState = func(state entities.LoadState) error { return errors.New("network busy") }
	completion, err := entities.NetworkIdle(20 * time.Millisecond)
	require.NoError(t, err)
	policy := entities.RetryPolicy{MaxAttempts: 2, PerAttemptTimeout: time.Second}

	err = newTestNavigator(page).Navigate(context.Background(), storefront, completion, policy)

	var navErr *entities.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, 2, navErr.Attempts)
	var timeoutErr *entities.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestNavigateWaitsBackoffBetweenAttempts(t *testing.T) {
	page := newFakePage()
	page.navigateErrs = failures(2)
	policy := entities.RetryPolicy{MaxAttempts: 3, Backoff: 25 * time.Millisecond, PerAttemptTimeout: time.Second}

	started := time.Now()
	require.NoError(t, newTestNavigator(page).Navigate(context.Background(), storefront, entities.Condition{}, policy))

	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
	assert.Equal(t, 3, page.navigations)
}

func TestNavigateExponentialBackoff(t *testing.T) {
	page := newFakePage()
	page.navigateErrs = failures(2)
	policy := entities.RetryPolicy{MaxAttempts: 3, Backoff: 20 * time.Millisecond, Multiplier: 2, PerAttemptTimeout: time.Second}

	started := time.Now()
	require.NoError(t, newTestNavigator(page).Navigate(context.Background(), storefront, entities.Condition{}, policy))

	// 20ms then 40ms
	assert.GreaterOrEqual(t, time.Since(started), 60*time.Millisecond)
}

func TestNavigateRejectsInvalidPolicy(t *testing.T) {
	page := newFakePage()
	policy := entities.RetryPolicy{MaxAttempts: 0, PerAttemptTimeout: time.Second}

	err := newTestNavigator(page).Navigate(context.Background(), storefront, entities.Condition{}, policy)

	assert.Error(t, err)
	assert.Zero(t, page.navigations)
}

func TestNavigateStopsWhenContextEnds(t *testing.T) {
	page := newFakePage()
	page.navigateErrs = failures(100)
	policy := entities.RetryPolicy{MaxAttempts: 10, Backoff: time.Second, PerAttemptTimeout: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := newTestNavigator(page).Navigate(ctx, storefront, entities.Condition{}, policy)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, page.navigations)
}
