package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the inventory core. Every failure returned by a store or
// service matches exactly one of these under errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidState      = errors.New("invalid state")
	ErrPersistence       = errors.New("persistence failure")
)

// InsufficientStockError reports a reserve/consume/release request that exceeds
// the quantity the part can give. Available is the quantity the caller could retry with.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
	What      string // "available", "reserved" or "on hand"
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %s %d, requested %d", e.SKU, e.What, e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsRetryable reports whether err may succeed when retried unchanged.
// Only persistence failures are transient; business-rule failures are deterministic.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func invalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
