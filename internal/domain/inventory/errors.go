package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// Movement and reservation errors
var (
	ErrMovementAlreadyReversed = shared.NewDomainError("MOVEMENT_ALREADY_REVERSED", "Movement has already been reversed")
	ErrReservationNotActive    = shared.NewDomainError("RESERVATION_NOT_ACTIVE", "Reservation is not active")
	ErrReservationExpired      = shared.NewDomainError("RESERVATION_EXPIRED", "Reservation has expired")
	ErrCountNotInProgress      = shared.NewDomainError("COUNT_NOT_IN_PROGRESS", "Stock count is not in progress")
	ErrDuplicateReservation    = shared.NewDomainError("DUPLICATE_RESERVATION", "A reservation for this reference already exists")
)

// InsufficientStockError is returned when a reservation or issue exceeds
// net-available quantity. It is an expected business outcome, not a fault:
// callers inspect Shortfall to decide between backorder, partial fulfillment
// or skip.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s in warehouse %s: requested %s, available %s",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

// Shortfall returns the quantity that could not be covered
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// NewInsufficientStockError creates a new insufficient stock error
func NewInsufficientStockError(productID, warehouseID uuid.UUID, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}
