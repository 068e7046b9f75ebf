package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel business errors. All of them are returned to the caller as typed
// results; none are retried inside the core.
var (
	ErrNotFound        = errors.New("record not found")
	ErrForbidden       = errors.New("access denied")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between %d and %d", CartQuantityMin, CartQuantityMax)
	ErrReorderFailed   = errors.New("none of the items could be added to the cart")
)

// InsufficientStockError rejects a cart mutation or order commit that would
// oversell a product. It always names the offending product.
type InsufficientStockError struct {
	ProductID int64
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Title
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		name, e.Requested, e.Available)
}

// FieldViolation is one field-level validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found, not just the first, so the
// caller can render field-level feedback in one round trip.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// InvalidTransitionError rejects an illegal order status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

// TransientError wraps an unexpected persistence fault after a full rollback.
// It is the only error class the caller may reasonably retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
