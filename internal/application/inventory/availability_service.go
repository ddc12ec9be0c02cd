package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
)

// AvailabilityService computes net-available stock. Pure reads: the numbers
// it returns are advisory outside a transaction — the authoritative check
// happens under the row lock inside ReservationService.Reserve.
type AvailabilityService struct {
	stockItemRepo   inventory.StockItemRepository
	reservationRepo inventory.StockReservationRepository
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	stockItemRepo inventory.StockItemRepository,
	reservationRepo inventory.StockReservationRepository,
) *AvailabilityService {
	return &AvailabilityService{
		stockItemRepo:   stockItemRepo,
		reservationRepo: reservationRepo,
	}
}

// NetAvailable returns on-hand minus active reservations for a
// product/warehouse pair. A missing stock item means zero.
func (s *AvailabilityService) NetAvailable(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	item, err := s.stockItemRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return item.NetAvailable(), nil
}

// OnHand returns the on-hand quantity for a product/warehouse pair
func (s *AvailabilityService) OnHand(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	item, err := s.stockItemRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return item.OnHandQuantity, nil
}

// NetAvailableFromLedger recomputes availability from primary records:
// active reservation rows are summed instead of trusting the snapshot's
// reserved column. Used by reconciliation checks, not the hot path.
func (s *AvailabilityService) NetAvailableFromLedger(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	onHand, err := s.OnHand(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	reserved, err := s.reservationRepo.SumActiveQuantity(ctx, tenantID, productID, warehouseID, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	return onHand.Sub(reserved), nil
}
