package core

import (
	"errors"
	"fmt"
)

// Calculation errors - centralized error definitions
var (
	// ErrDomain marks an input outside its mathematically valid domain
	// (alpha outside (0,1), sd <= 0, dropout >= 1, k < 2, ...).
	ErrDomain = errors.New("input outside valid domain")

	// ErrDegenerateEffect marks inputs that are individually valid but
	// combine into a zero or undefined effect (p1 == p2, OR == 1, r == 0).
	ErrDegenerateEffect = errors.New("degenerate effect size")

	// ErrComputation marks a derived intermediate that left its domain or a
	// numeric solve that failed to converge.
	ErrComputation = errors.New("computation failed")
)

// Error constructors with context
func NewDomainError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrDomain, field, reason)
}

func NewDegenerateEffectError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateEffect, reason)
}

func NewComputationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrComputation, reason)
}

// Error checking helpers
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsDegenerateEffectError(err error) bool {
	return errors.Is(err, ErrDegenerateEffect)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputation)
}

// IsCalculationError reports whether err belongs to the calculation taxonomy.
func IsCalculationError(err error) bool {
	return IsDomainError(err) || IsDegenerateEffectError(err) || IsComputationError(err)
}
