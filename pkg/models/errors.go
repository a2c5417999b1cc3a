package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure the stores can classify. Handlers map
// these to HTTP statuses; anything else is treated as a storage failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrAmountMismatch  = errors.New("amount does not match cart total")
	ErrDuplicateCart   = errors.New("cart already exists for user")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// StorageError wraps a database-layer failure so callers can tell an
// infrastructure problem apart from a domain rejection. The underlying
// error is preserved for logging, never swallowed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError unless it is already one of the
// domain sentinels defined above.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrNotFound, ErrForbidden, ErrUnauthenticated, ErrInvalidQuantity,
		ErrEmptyCart, ErrAmountMismatch, ErrDuplicateCart, ErrDuplicateEmail,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
