package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
)

// GormStockCountRepository implements StockCountRepository using GORM
type GormStockCountRepository struct {
	db *gorm.DB
}

// NewGormStockCountRepository creates a new GormStockCountRepository
func NewGormStockCountRepository(db *gorm.DB) *GormStockCountRepository {
	return &GormStockCountRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormStockCountRepository) WithTx(tx *gorm.DB) *GormStockCountRepository {
	return &GormStockCountRepository{db: tx}
}

// FindByID finds a count with its items by ID within a tenant
func (r *GormStockCountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockCount, error) {
	var count inventory.StockCount
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&count).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindByNumber finds a count by its count number
func (r *GormStockCountRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*inventory.StockCount, error) {
	var count inventory.StockCount
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND count_number = ?", tenantID, number).
		First(&count).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindByStatus lists counts by status for a tenant
func (r *GormStockCountRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status inventory.StockCountStatus, filter shared.Filter) ([]inventory.StockCount, error) {
	var counts []inventory.StockCount
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockCount{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, StockCountSortFields,
	)

	if err := query.Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// FindByWarehouse lists counts for a warehouse
func (r *GormStockCountRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockCount, error) {
	var counts []inventory.StockCount
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockCount{}).
			Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter, StockCountSortFields,
	)

	if err := query.Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// Save persists the count and its items. Item rows are upserted so
// recorded quantities survive repeated saves of the same count.
func (r *GormStockCountRepository) Save(ctx context.Context, count *inventory.StockCount) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Save(count).Error
}

// GenerateCountNumber generates a new unique count number
func (r *GormStockCountRepository) GenerateCountNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Format: SC-YYYYMMDD-NNNN
	today := time.Now().Format("20060102")
	prefix := fmt.Sprintf("SC-%s-", today)

	seq, err := nextDailySequence(ctx, r.db, &inventory.StockCount{}, "count_number", tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// Ensure GormStockCountRepository implements StockCountRepository
var _ inventory.StockCountRepository = (*GormStockCountRepository)(nil)
