package entities

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ConditionKind represents the kind of page state a Condition waits for
type ConditionKind string

const (
	ConditionElementVisible   ConditionKind = "element_visible"
	ConditionElementHidden    ConditionKind = "element_hidden"
	ConditionPredicateTrue    ConditionKind = "predicate_true"
	ConditionNetworkIdle      ConditionKind = "network_idle"
	ConditionDOMContentLoaded ConditionKind = "dom_content_loaded"
	ConditionLoad             ConditionKind = "load"
)

// LoadState represents a document lifecycle state the browser engine can wait for
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// Predicate is evaluated repeatedly until it reports true
type Predicate func(ctx context.Context) (bool, error)

// ErrInvalidTimeout is returned when a condition is built with a non-positive timeout
var ErrInvalidTimeout = errors.New("timeout must be positive")

// Condition represents a named predicate over page state with its own timeout.
// Conditions are values; the With* methods return modified copies.
type Condition struct {
	Kind        ConditionKind
	Selector    string
	Script      string
	Predicate   Predicate
	Description string
	Timeout     time.Duration
}

// ElementVisible - condition satisfied once selector matches a visible element
func ElementVisible(selector string, timeout time.Duration) (Condition, error) {
	return newCondition(Condition{
		Kind:        ConditionElementVisible,
		Selector:    selector,
		Description: fmt.Sprintf("element %q visible", selector),
		Timeout:     timeout,
	})
}

// ElementHidden - condition satisfied once selector matches nothing visible
func ElementHidden(selector string, timeout time.Duration) (Condition, error) {
	return newCondition(Condition{
		Kind:        ConditionElementHidden,
		Selector:    selector,
		Description: fmt.Sprintf("element %q hidden", selector),
		Timeout:     timeout,
	})
}

// PredicateTrue - condition satisfied once predicate reports true
func PredicateTrue(description string, predicate Predicate, timeout time.Duration) (Condition, error) {
	if predicate == nil {
		return Condition{}, errors.New("predicate is required")
	}
	return newCondition(Condition{
		Kind:        ConditionPredicateTrue,
		Predicate:   predicate,
		Description: description,
		Timeout:     timeout,
	})
}

// ScriptTrue - condition satisfied once a JavaScript expression evaluates truthy in the page
func ScriptTrue(description, script string, timeout time.Duration) (Condition, error) {
	if script == "" {
		return Condition{}, errors.New("script is required")
	}
	return newCondition(Condition{
		Kind:        ConditionPredicateTrue,
		Script:      script,
		Description: description,
		Timeout:     timeout,
	})
}

// LoadStateReached - condition satisfied once the document reaches state
func LoadStateReached(state LoadState, timeout time.Duration) (Condition, error) {
	var kind ConditionKind
	switch state {
	case LoadStateNetworkIdle:
		kind = ConditionNetworkIdle
	case LoadStateDOMContentLoaded:
		kind = ConditionDOMContentLoaded
	case LoadStateLoad:
		kind = ConditionLoad
	default:
		return Condition{}, fmt.Errorf("unknown load state: %s", state)
	}
	return newCondition(Condition{
		Kind:        kind,
		Description: fmt.Sprintf("load state %s", state),
		Timeout:     timeout,
	})
}

// NetworkIdle - shorthand for LoadStateReached(LoadStateNetworkIdle)
func NetworkIdle(timeout time.Duration) (Condition, error) {
	return LoadStateReached(LoadStateNetworkIdle, timeout)
}

func newCondition(c Condition) (Condition, error) {
	if c.Timeout <= 0 {
		return Condition{}, fmt.Errorf("condition %s: %w", c.Description, ErrInvalidTimeout)
	}
	return c, nil
}

// WithTimeout returns a copy of the condition with another timeout.
// A non-positive timeout leaves the copy unchanged.
func (c Condition) WithTimeout(timeout time.Duration) Condition {
	if timeout > 0 {
		c.Timeout = timeout
	}
	return c
}

// LoadState returns the document state a load-state condition waits for
func (c Condition) LoadState() (LoadState, bool) {
	switch c.Kind {
	case ConditionNetworkIdle:
		return LoadStateNetworkIdle, true
	case ConditionDOMContentLoaded:
		return LoadStateDOMContentLoaded, true
	case ConditionLoad:
		return LoadStateLoad, true
	}
	return "", false
}

func (c Condition) String() string {
	if c.Description != "" {
		return c.Description
	}
	return string(c.Kind)
}
