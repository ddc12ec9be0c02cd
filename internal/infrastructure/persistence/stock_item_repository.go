package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormStockItemRepository) WithTx(tx *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: tx}
}

// FindByID finds a stock item by ID within a tenant
func (r *GormStockItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByWarehouseAndProduct finds the item for a warehouse-product pair
func (r *GormStockItemRepository) FindByWarehouseAndProduct(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByWarehouseAndProductForUpdate loads the item under SELECT ... FOR UPDATE.
// The row lock is held until the surrounding transaction ends, serializing
// concurrent check-then-reserve sequences on the same pair.
func (r *GormStockItemRepository) FindByWarehouseAndProductForUpdate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByWarehouse finds all stock items in a warehouse
func (r *GormStockItemRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockItem{}).
			Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter, StockItemSortFields,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByProduct finds all stock items for a product across warehouses
func (r *GormStockItemRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockItem{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter, StockItemSortFields,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBelowMinimum finds items whose on-hand is under the alert threshold
func (r *GormStockItemRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockItem{}).
			Where("tenant_id = ? AND min_quantity > 0 AND on_hand_quantity < min_quantity", tenantID),
		filter, StockItemSortFields,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a stock item
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockItemRepository) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"on_hand_quantity":  item.OnHandQuantity,
			"reserved_quantity": item.ReservedQuantity,
			"unit_cost":         item.UnitCost,
			"min_quantity":      item.MinQuantity,
			"version":           item.Version,
			"updated_at":        item.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock item was modified by another transaction")
	}
	return nil
}

// GetOrCreate gets the existing stock item or creates a zero-balance one
func (r *GormStockItemRepository) GetOrCreate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	item, err := r.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err = inventory.NewStockItem(tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT DO NOTHING handles two callers racing the same pair
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "warehouse_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		return nil, result.Error
	}

	// Zero rows affected means a concurrent caller inserted the row first
	// and our insert was skipped; read back the persisted row.
	if result.RowsAffected == 0 {
		return r.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	}

	return item, nil
}

// SumOnHandByProduct sums on-hand quantity for a product across warehouses
func (r *GormStockItemRepository) SumOnHandByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Select("COALESCE(SUM(on_hand_quantity), 0) as total").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormStockItemRepository implements StockItemRepository
var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)
