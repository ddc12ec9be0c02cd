package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// StockItem maintains the running on-hand balance for a product at a
// warehouse, derived from the movement ledger. It is the aggregate root
// the check-then-act reservation sequence locks on: availability reads
// and reservation writes for one (warehouse, product) pair serialize
// through this row.
//
// Reservations are soft locks: they raise ReservedQuantity but never touch
// OnHandQuantity until fulfillment posts the outbound movement.
type StockItem struct {
	shared.TenantAggregateRoot
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_tenant_wh_product,priority:2"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_tenant_wh_product,priority:3"`
	OnHandQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Moving weighted average cost
	MinQuantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Minimum stock threshold for alerts
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a new stock item for a warehouse-product combination
func NewStockItem(tenantID, warehouseID, productID uuid.UUID) (*StockItem, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WarehouseID:         warehouseID,
		ProductID:           productID,
		OnHandQuantity:      decimal.Zero,
		ReservedQuantity:    decimal.Zero,
		UnitCost:            decimal.Zero,
		MinQuantity:         decimal.Zero,
	}, nil
}

// NetAvailable returns on-hand minus active reservations
func (i *StockItem) NetAvailable() decimal.Decimal {
	return i.OnHandQuantity.Sub(i.ReservedQuantity)
}

// Receive increases on-hand stock and recalculates the moving weighted
// average unit cost.
func (i *StockItem) Receive(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	oldCost := i.UnitCost
	oldQuantity := i.OnHandQuantity

	if oldQuantity.LessThanOrEqual(decimal.Zero) {
		i.UnitCost = unitCost
	} else {
		totalValue := oldQuantity.Mul(oldCost).Add(quantity.Mul(unitCost))
		i.UnitCost = totalValue.Div(oldQuantity.Add(quantity)).Round(4)
	}

	i.OnHandQuantity = i.OnHandQuantity.Add(quantity)
	i.Touch()
	i.IncrementVersion()

	if !oldCost.Equal(i.UnitCost) {
		i.AddDomainEvent(NewStockItemCostChangedEvent(i, oldCost, i.UnitCost))
	}

	return nil
}

// Issue decreases on-hand stock. The guard is against on-hand, not
// net-available: issuing reserved stock is the fulfillment path's job and
// goes through FulfillReservation instead.
func (i *StockItem) Issue(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.OnHandQuantity.LessThan(quantity) {
		return NewInsufficientStockError(i.ProductID, i.WarehouseID, quantity, i.OnHandQuantity)
	}

	i.OnHandQuantity = i.OnHandQuantity.Sub(quantity)
	i.Touch()
	i.IncrementVersion()

	if i.MinQuantity.GreaterThan(decimal.Zero) && i.OnHandQuantity.LessThan(i.MinQuantity) {
		i.AddDomainEvent(NewStockBelowMinimumEvent(i))
	}

	return nil
}

// AddReservation raises the reserved quantity after checking net
// availability. Callers must hold the row lock on this item for the whole
// check-then-reserve sequence; the guard here is the last line of defense,
// not the concurrency control.
func (i *StockItem) AddReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	available := i.NetAvailable()
	if available.LessThan(quantity) {
		return NewInsufficientStockError(i.ProductID, i.WarehouseID, quantity, available)
	}

	i.ReservedQuantity = i.ReservedQuantity.Add(quantity)
	i.Touch()
	i.IncrementVersion()

	return nil
}

// ReleaseReservation lowers the reserved quantity when a reservation is
// released or expires. Clamps at zero rather than failing: a sweep racing
// a manual release must not corrupt the balance.
func (i *StockItem) ReleaseReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	i.ReservedQuantity = i.ReservedQuantity.Sub(quantity)
	if i.ReservedQuantity.IsNegative() {
		i.ReservedQuantity = decimal.Zero
	}
	i.Touch()
	i.IncrementVersion()

	return nil
}

// FulfillReservation converts reserved stock into an actual issue:
// both reserved and on-hand decrease by the fulfilled quantity.
func (i *StockItem) FulfillReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfill quantity must be positive")
	}
	if i.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfill quantity exceeds reserved quantity")
	}
	if i.OnHandQuantity.LessThan(quantity) {
		return NewInsufficientStockError(i.ProductID, i.WarehouseID, quantity, i.OnHandQuantity)
	}

	i.ReservedQuantity = i.ReservedQuantity.Sub(quantity)
	i.OnHandQuantity = i.OnHandQuantity.Sub(quantity)
	i.Touch()
	i.IncrementVersion()

	if i.MinQuantity.GreaterThan(decimal.Zero) && i.OnHandQuantity.LessThan(i.MinQuantity) {
		i.AddDomainEvent(NewStockBelowMinimumEvent(i))
	}

	return nil
}

// SetQuantity overwrites the on-hand balance. Used by count reconciliation
// after the correcting movement has been posted.
func (i *StockItem) SetQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "On-hand quantity cannot be negative")
	}

	i.OnHandQuantity = quantity
	i.Touch()
	i.IncrementVersion()

	return nil
}
