package order

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrProductNotFound  = errors.New("product not found")

	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrMustCancelFirst is returned when deleting a pending order: stock
	// release always flows through the cancellation path, so a pending order
	// has to be cancelled before it can be removed.
	ErrMustCancelFirst   = errors.New("pending order must be cancelled before deletion")
	ErrOrderNotDeletable = errors.New("only pending or cancelled orders can be deleted")

	// ErrOrderNumberConflict is returned when order number generation keeps
	// colliding with existing orders after several attempts.
	ErrOrderNumberConflict = errors.New("failed to generate a unique order number")
)

// InsufficientStockError reports a line item that cannot be satisfied by the
// product's current stock.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ValidationError marks malformed or out-of-range caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
