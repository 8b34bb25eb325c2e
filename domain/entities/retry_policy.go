package entities

import (
	"fmt"
	"time"
)

// RetryPolicy bounds how often and how patiently an operation is retried
type RetryPolicy struct {
	MaxAttempts       int           `json:"max_attempts"`
	Backoff           time.Duration `json:"backoff"`
	PerAttemptTimeout time.Duration `json:"per_attempt_timeout"`
	// Multiplier grows the backoff between attempts; 0 or 1 keeps it fixed.
	Multiplier float64 `json:"multiplier,omitempty"`
}

// Validate - checks the policy invariants
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Backoff < 0 {
		return fmt.Errorf("backoff must not be negative, got %s", p.Backoff)
	}
	if p.PerAttemptTimeout <= 0 {
		return fmt.Errorf("per-attempt timeout must be positive, got %s", p.PerAttemptTimeout)
	}
	if p.Multiplier < 0 {
		return fmt.Errorf("multiplier must not be negative, got %v", p.Multiplier)
	}
	return nil
}
