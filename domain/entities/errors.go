package entities

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error kinds reported alongside failed scenarios
const (
	KindTimeout         = "timeout"
	KindNavigation      = "navigation"
	KindElementNotFound = "element_not_found"
	KindActionFailed    = "action_failed"
	KindAssertion       = "assertion"
	KindUnknown         = "unknown"
)

// ErrActionBlocked is wrapped by ActionFailedError when a guard vetoes an action
var ErrActionBlocked = errors.New("action blocked by guard")

// TimeoutError - a condition never held within its budget
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	// Value is the stuck baseline of a change observation, if any
	Value   *ObservedValue
	LastErr error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
	if e.Value != nil {
		msg += fmt.Sprintf(" (value stuck at %q)", e.Value.Text)
	}
	if e.LastErr != nil {
		msg += fmt.Sprintf(": last error: %v", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

func (e *TimeoutError) Kind() string { return KindTimeout }

// NavigationError - navigation failed after exhausting its retry policy
type NavigationError struct {
	Target    string
	Attempts  int
	LastCause error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %s after %d attempt(s): %v", e.Target, e.Attempts, e.LastCause)
}

func (e *NavigationError) Unwrap() error { return e.LastCause }

func (e *NavigationError) Kind() string { return KindNavigation }

// ElementNotFoundError - a required element never became visible
type ElementNotFoundError struct {
	Selector string
	Cause    error
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found: %v", e.Selector, e.Cause)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Cause }

func (e *ElementNotFoundError) Kind() string { return KindElementNotFound }

// ActionFailedError - the action itself raised, e.g. the element detached between wait and act
type ActionFailedError struct {
	Selector string
	Action   Action
	Cause    error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("failed to %s on %q: %v", e.Action, e.Selector, e.Cause)
}

func (e *ActionFailedError) Unwrap() error { return e.Cause }

func (e *ActionFailedError) Kind() string { return KindActionFailed }

// AssertionFailure - a scenario-level expectation did not match
type AssertionFailure struct {
	Expectation string
	Expected    interface{}
	Actual      interface{}
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("expectation failed: %s: expected %v, got %v", e.Expectation, e.Expected, e.Actual)
}

func (e *AssertionFailure) Kind() string { return KindAssertion }

// ErrorKind returns the kind of the first typed error in err's chain
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}
