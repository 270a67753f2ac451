package models

import (
	"errors"
	"fmt"
)

// ErrEmptySale is returned when a commit is attempted with no line items.
var ErrEmptySale = errors.New("sale has no line items")

// InvalidQuantityError reports a non-positive line-item quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity: %d (must be positive)", e.Quantity)
}

// UnknownProductError reports a product reference that does not resolve.
type UnknownProductError struct {
	ProductID int64
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product: %d", e.ProductID)
}

// InsufficientStockError reports a requested quantity exceeding the
// product's available stock. Available and Requested always carry the
// exact shortfall so callers can report it per product.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available=%d, requested=%d",
		e.ProductID, e.Available, e.Requested)
}

// PartialReconciliationError reports a reconciliation pass that failed
// after some stock mutations were applied and could not be compensated.
// Applied lists the per-product deltas still in effect (negative means
// stock was taken, positive means stock was returned).
type PartialReconciliationError struct {
	Applied map[int64]int
	Cause   error
}

func (e *PartialReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed with %d uncompensated stock mutations: %v",
		len(e.Applied), e.Cause)
}

func (e *PartialReconciliationError) Unwrap() error {
	return e.Cause
}
