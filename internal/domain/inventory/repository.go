package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// StockItemRepository defines the interface for stock item persistence
type StockItemRepository interface {
	// FindByID finds a stock item by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockItem, error)

	// FindByWarehouseAndProduct finds the item for a warehouse-product pair
	FindByWarehouseAndProduct(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*StockItem, error)

	// FindByWarehouseAndProductForUpdate loads the item under a row-level
	// lock (SELECT ... FOR UPDATE). Must be called inside a transaction
	// scope; the lock serializes concurrent check-then-reserve sequences
	// for the same pair and is held until the transaction ends.
	FindByWarehouseAndProductForUpdate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*StockItem, error)

	// FindByWarehouse finds all stock items in a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// FindByProduct finds all stock items for a product across warehouses
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// FindBelowMinimum finds items whose on-hand is under the alert threshold
	FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// Save creates or updates a stock item
	Save(ctx context.Context, item *StockItem) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, item *StockItem) error

	// GetOrCreate gets the existing stock item or creates a zero-balance one
	GetOrCreate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*StockItem, error)

	// SumOnHandByProduct sums on-hand quantity for a product across warehouses
	SumOnHandByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error)
}

// StockMovementRepository defines the interface for ledger persistence.
// Movements are append-only: there is no update or delete; reversal state
// changes go through Save on the original row only to flip its flags.
type StockMovementRepository interface {
	// FindByID finds a movement by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockMovement, error)

	// FindByDocumentNumber finds a movement by document number within a tenant
	FindByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (*StockMovement, error)

	// FindByProductAndWarehouse lists movements for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference lists movements originating from a source document
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string) ([]StockMovement, error)

	// FindByDateRange lists movements in a time window for a tenant
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]StockMovement, error)

	// Save persists a movement (insert) or its reversal flags (update)
	Save(ctx context.Context, movement *StockMovement) error

	// SumSignedQuantity sums signed quantities over the ledger for a
	// product-warehouse pair. Used to rebuild or verify the snapshot.
	SumSignedQuantity(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error)

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateDocumentNumber produces the next document number for a tenant,
	// date-prefixed with a per-day sequence (e.g. SM-20260901-0001)
	GenerateDocumentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// StockReservationRepository defines the interface for reservation persistence
type StockReservationRepository interface {
	// FindByID finds a reservation by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockReservation, error)

	// FindByNumber finds a reservation by its reservation number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*StockReservation, error)

	// FindByReference finds the reservation created for a source document
	// line. Returns shared.ErrNotFound when none exists.
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (*StockReservation, error)

	// FindActiveByProductAndWarehouse lists reservations still counting
	// against availability for a product-warehouse pair
	FindActiveByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) ([]StockReservation, error)

	// FindExpired lists reservations whose expiration has passed but whose
	// status has not yet been swept
	FindExpired(ctx context.Context, now time.Time, limit int) ([]StockReservation, error)

	// SumActiveQuantity sums the remaining quantity of all active
	// reservations for a product-warehouse pair
	SumActiveQuantity(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, now time.Time) (decimal.Decimal, error)

	// Save persists a reservation. Inserting a duplicate
	// (tenant, reference type, reference id, product) fails with
	// ErrDuplicateReservation.
	Save(ctx context.Context, reservation *StockReservation) error

	// ExistsByReference checks whether a reservation already exists for a
	// source document line
	ExistsByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (bool, error)

	// GenerateReservationNumber produces the next reservation number for a
	// tenant (e.g. RSV-20260901-0001)
	GenerateReservationNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// StockCountRepository defines the interface for stock count persistence
type StockCountRepository interface {
	// FindByID finds a count with its items by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockCount, error)

	// FindByNumber finds a count by its count number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*StockCount, error)

	// FindByStatus lists counts by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status StockCountStatus, filter shared.Filter) ([]StockCount, error)

	// FindByWarehouse lists counts for a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]StockCount, error)

	// Save persists the count and its items
	Save(ctx context.Context, count *StockCount) error

	// GenerateCountNumber produces the next count number for a tenant
	// (e.g. SC-20260901-0001)
	GenerateCountNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
