package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The movements table is append-only; the only update ever issued is the
// reversal-flag flip on the original row.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: tx}
}

// FindByID finds a movement by ID within a tenant
func (r *GormStockMovementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByDocumentNumber finds a movement by document number within a tenant
func (r *GormStockMovementRepository) FindByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_number = ?", tenantID, documentNumber).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByProductAndWarehouse lists movements for a product-warehouse pair
func (r *GormStockMovementRepository) FindByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID),
		filter, StockMovementSortFields,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference lists movements originating from a source document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_document_type = ? AND reference_document_id = ?", tenantID, refType, refID).
		Order("movement_date ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDateRange lists movements in a time window for a tenant
func (r *GormStockMovementRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("tenant_id = ? AND movement_date >= ? AND movement_date < ?", tenantID, from, to),
		filter, StockMovementSortFields,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Save persists a movement (insert) or its reversal flags (update)
func (r *GormStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Save(movement).Error
}

// SumSignedQuantity sums signed quantities over the ledger for a
// product-warehouse pair. Transfers net to zero and are excluded here the
// same way SignedQuantity treats them.
func (r *GormStockMovementRepository) SumSignedQuantity(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select(`COALESCE(SUM(CASE
			WHEN movement_type IN ? THEN quantity
			WHEN movement_type IN ? THEN -quantity
			ELSE 0
		END), 0) as total`, inboundTypeStrings(), outboundTypeStrings()).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountForTenant counts movements matching the filter
func (r *GormStockMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateDocumentNumber generates a new unique document number
func (r *GormStockMovementRepository) GenerateDocumentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Format: SM-YYYYMMDD-NNNN
	today := time.Now().Format("20060102")
	prefix := fmt.Sprintf("SM-%s-", today)

	seq, err := nextDailySequence(ctx, r.db, &inventory.StockMovement{}, "document_number", tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// nextDailySequence finds the highest numbered document with the given
// prefix and returns the next sequence value. The maximum is taken over
// the numeric suffix rather than the number string: lexicographic ordering
// hands out repeat values once the suffix outgrows its zero padding. The
// per-tenant unique index on the number column catches the rare
// same-millisecond race.
func nextDailySequence(ctx context.Context, db *gorm.DB, model interface{}, column string, tenantID uuid.UUID, prefix string) (int, error) {
	var result struct {
		Seq int
	}
	suffix := fmt.Sprintf("COALESCE(MAX(CAST(SUBSTRING(%s FROM %d) AS INTEGER)), 0) + 1 AS seq", column, len(prefix)+1)
	err := db.WithContext(ctx).Model(model).
		Select(suffix).
		Where(fmt.Sprintf("tenant_id = ? AND %s LIKE ?", column), tenantID, prefix+"%").
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	if result.Seq < 1 {
		result.Seq = 1
	}
	return result.Seq, nil
}

func inboundTypeStrings() []string {
	types := inventory.InboundMovementTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func outboundTypeStrings() []string {
	types := inventory.OutboundMovementTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
