package order

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart              = errors.New("cart has no items")
	ErrOrderNotFound          = errors.New("order not found")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrConcurrentModification = errors.New("order was modified concurrently")
	ErrInvalidStatus          = errors.New("invalid order status")
	ErrInvalidInput           = errors.New("invalid input")
)

type NotFoundError struct{ ID int64 }

func (e *NotFoundError) Error() string       { return fmt.Sprintf("order %d not found", e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrOrderNotFound }

type IllegalTransitionError struct {
	From, To Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool { return target == ErrIllegalTransition }

type InvalidStatusError struct{ Value string }

func (e *InvalidStatusError) Error() string       { return fmt.Sprintf("unknown order status %q", e.Value) }
func (e *InvalidStatusError) Is(target error) bool { return target == ErrInvalidStatus }

// invalidInput wraps a validation message so it matches ErrInvalidInput.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
