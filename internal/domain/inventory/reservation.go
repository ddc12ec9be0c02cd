package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// ReservationType represents the origin of a stock reservation
type ReservationType string

const (
	ReservationTypeSalesOrder    ReservationType = "SALES_ORDER"
	ReservationTypeTransfer      ReservationType = "TRANSFER"
	ReservationTypeManufacturing ReservationType = "MANUFACTURING"
	ReservationTypeManual        ReservationType = "MANUAL"
)

// String returns the string representation of ReservationType
func (t ReservationType) String() string {
	return string(t)
}

// IsValid returns true if the reservation type is valid
func (t ReservationType) IsValid() bool {
	switch t {
	case ReservationTypeSalesOrder, ReservationTypeTransfer,
		ReservationTypeManufacturing, ReservationTypeManual:
		return true
	}
	return false
}

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationStatusActive             ReservationStatus = "ACTIVE"
	ReservationStatusPartiallyFulfilled ReservationStatus = "PARTIALLY_FULFILLED"
	ReservationStatusFulfilled          ReservationStatus = "FULFILLED"
	ReservationStatusReleased           ReservationStatus = "RELEASED"
	ReservationStatusExpired            ReservationStatus = "EXPIRED"
)

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// StockReservation is a soft lock against available stock. It reduces what
// the availability calculation reports as allocatable but does not change
// on-hand quantity until fulfilled.
//
// The unique index over (tenant, reference type, reference id, product)
// makes reservation creation idempotent under event redelivery: a duplicate
// insert fails the constraint and is treated as already handled.
type StockReservation struct {
	shared.TenantAggregateRoot
	ReservationNumber string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_reservation_tenant_number,priority:2"`
	ProductID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservation_product_warehouse,priority:1;uniqueIndex:idx_reservation_tenant_reference,priority:4"`
	WarehouseID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservation_product_warehouse,priority:2"`
	Quantity          decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	FulfilledQuantity decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ReservationType   ReservationType   `gorm:"type:varchar(30);not null"`
	Status            ReservationStatus `gorm:"type:varchar(30);not null;index"`
	ReferenceType     string            `gorm:"type:varchar(50);uniqueIndex:idx_reservation_tenant_reference,priority:2"`
	ReferenceID       string            `gorm:"type:varchar(50);uniqueIndex:idx_reservation_tenant_reference,priority:3"`
	ReferenceNumber   string            `gorm:"type:varchar(50)"`
	Notes             string            `gorm:"type:varchar(500)"`
	CreatedBy         *uuid.UUID        `gorm:"type:uuid"`
	ExpiresAt         time.Time         `gorm:"type:timestamptz;not null;index"`
	ClosedAt          *time.Time        `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// NewStockReservation creates a new active reservation
func NewStockReservation(
	tenantID uuid.UUID,
	reservationNumber string,
	productID uuid.UUID,
	warehouseID uuid.UUID,
	quantity decimal.Decimal,
	reservationType ReservationType,
	ttl time.Duration,
) (*StockReservation, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if reservationNumber == "" {
		return nil, shared.NewDomainError("INVALID_RESERVATION_NUMBER", "Reservation number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if !reservationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RESERVATION_TYPE", "Invalid reservation type")
	}
	if ttl < 0 {
		return nil, shared.NewDomainError("INVALID_TTL", "Reservation TTL cannot be negative")
	}

	return &StockReservation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReservationNumber:   reservationNumber,
		ProductID:           productID,
		WarehouseID:         warehouseID,
		Quantity:            quantity,
		FulfilledQuantity:   decimal.Zero,
		ReservationType:     reservationType,
		Status:              ReservationStatusActive,
		ExpiresAt:           time.Now().Add(ttl),
	}, nil
}

// WithReference sets the originating document reference
func (r *StockReservation) WithReference(refType, refID, refNumber string) *StockReservation {
	r.ReferenceType = refType
	r.ReferenceID = refID
	r.ReferenceNumber = refNumber
	return r
}

// WithNotes sets free-text notes
func (r *StockReservation) WithNotes(notes string) *StockReservation {
	r.Notes = notes
	return r
}

// WithCreatedBy records who requested the reservation
func (r *StockReservation) WithCreatedBy(userID *uuid.UUID) *StockReservation {
	r.CreatedBy = userID
	return r
}

// IsActive returns true while the reservation still counts against
// availability. An expired-but-unswept reservation is not active.
func (r *StockReservation) IsActive(now time.Time) bool {
	if r.Status != ReservationStatusActive && r.Status != ReservationStatusPartiallyFulfilled {
		return false
	}
	return now.Before(r.ExpiresAt)
}

// IsExpired returns true when the expiration has passed and the reservation
// has not been closed another way.
func (r *StockReservation) IsExpired(now time.Time) bool {
	if r.Status != ReservationStatusActive && r.Status != ReservationStatusPartiallyFulfilled {
		return false
	}
	return !now.Before(r.ExpiresAt)
}

// RemainingQuantity returns the quantity still held by this reservation
func (r *StockReservation) RemainingQuantity() decimal.Decimal {
	return r.Quantity.Sub(r.FulfilledQuantity)
}

// Release marks the reservation released. Idempotent: releasing a
// reservation that is already closed is a no-op.
func (r *StockReservation) Release() decimal.Decimal {
	if r.Status != ReservationStatusActive && r.Status != ReservationStatusPartiallyFulfilled {
		return decimal.Zero
	}

	released := r.RemainingQuantity()
	now := time.Now()
	r.Status = ReservationStatusReleased
	r.ClosedAt = &now
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationReleasedEvent(r, released))

	return released
}

// Expire marks the reservation expired. Returns the quantity freed.
func (r *StockReservation) Expire(now time.Time) (decimal.Decimal, error) {
	if !r.IsExpired(now) {
		return decimal.Zero, shared.NewDomainError("RESERVATION_NOT_EXPIRED", "Reservation has not expired yet")
	}

	freed := r.RemainingQuantity()
	r.Status = ReservationStatusExpired
	r.ClosedAt = &now
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationExpiredEvent(r, freed))

	return freed, nil
}

// Fulfill records actual shipment of reserved goods. A partial quantity
// leaves the reservation partially fulfilled; fulfilling the remainder
// closes it. Fails on an expired or closed reservation.
func (r *StockReservation) Fulfill(quantity decimal.Decimal, now time.Time) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfill quantity must be positive")
	}
	if r.Status == ReservationStatusFulfilled || r.Status == ReservationStatusReleased || r.Status == ReservationStatusExpired {
		return ErrReservationNotActive
	}
	if r.IsExpired(now) {
		return ErrReservationExpired
	}
	if quantity.GreaterThan(r.RemainingQuantity()) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfill quantity exceeds remaining reservation")
	}

	r.FulfilledQuantity = r.FulfilledQuantity.Add(quantity)
	if r.FulfilledQuantity.Equal(r.Quantity) {
		r.Status = ReservationStatusFulfilled
		r.ClosedAt = &now
	} else {
		r.Status = ReservationStatusPartiallyFulfilled
	}
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationFulfilledEvent(r, quantity))

	return nil
}
