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

// GormStockReservationRepository implements StockReservationRepository using GORM
type GormStockReservationRepository struct {
	db *gorm.DB
}

// NewGormStockReservationRepository creates a new GormStockReservationRepository
func NewGormStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormStockReservationRepository) WithTx(tx *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: tx}
}

// FindByID finds a reservation by ID within a tenant
func (r *GormStockReservationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByNumber finds a reservation by its reservation number
func (r *GormStockReservationRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reservation_number = ?", tenantID, number).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByReference finds the reservation created for a source document line
func (r *GormStockReservationRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ? AND product_id = ?",
			tenantID, refType, refID, productID).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindActiveByProductAndWarehouse lists reservations still counting against
// availability for a product-warehouse pair
func (r *GormStockReservationRepository) FindActiveByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND status IN ?",
			tenantID, productID, warehouseID, activeStatuses()).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindExpired lists reservations whose expiration has passed but whose
// status has not yet been swept
func (r *GormStockReservationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	query := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?", activeStatuses(), now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// SumActiveQuantity sums the remaining quantity of all active reservations
// for a product-warehouse pair. Reservations already past their expiration
// are excluded even before the sweep flips their status.
func (r *GormStockReservationRepository) SumActiveQuantity(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockReservation{}).
		Select("COALESCE(SUM(quantity - fulfilled_quantity), 0) as total").
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND status IN ? AND expires_at >= ?",
			tenantID, productID, warehouseID, activeStatuses(), now).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists a reservation. A duplicate (tenant, reference type,
// reference id, product) insert surfaces as ErrDuplicateReservation so the
// caller can treat the redelivery as already handled.
func (r *GormStockReservationRepository) Save(ctx context.Context, reservation *inventory.StockReservation) error {
	if err := r.db.WithContext(ctx).Save(reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return inventory.ErrDuplicateReservation
		}
		return err
	}
	return nil
}

// ExistsByReference checks whether a reservation already exists for a
// source document line
func (r *GormStockReservationRepository) ExistsByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockReservation{}).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ? AND product_id = ?",
			tenantID, refType, refID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateReservationNumber generates a new unique reservation number
func (r *GormStockReservationRepository) GenerateReservationNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Format: RSV-YYYYMMDD-NNNN
	today := time.Now().Format("20060102")
	prefix := fmt.Sprintf("RSV-%s-", today)

	seq, err := nextDailySequence(ctx, r.db, &inventory.StockReservation{}, "reservation_number", tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func activeStatuses() []inventory.ReservationStatus {
	return []inventory.ReservationStatus{
		inventory.ReservationStatusActive,
		inventory.ReservationStatusPartiallyFulfilled,
	}
}

// Ensure GormStockReservationRepository implements StockReservationRepository
var _ inventory.StockReservationRepository = (*GormStockReservationRepository)(nil)
