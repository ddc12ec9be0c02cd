package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/catalog"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// DealWonHandler reserves stock for the product lines of a won deal.
// Same per-line isolation and redelivery contract as OrderCreatedHandler,
// with simpler lines: deals always carry resolved product IDs.
type DealWonHandler struct {
	reservationService *ReservationService
	productRepo        catalog.ProductRepository
	warehouseRepo      catalog.WarehouseRepository
	reservationTTL     time.Duration
	logger             *zap.Logger
}

// NewDealWonHandler creates a new DealWonHandler
func NewDealWonHandler(
	reservationService *ReservationService,
	productRepo catalog.ProductRepository,
	warehouseRepo catalog.WarehouseRepository,
	logger *zap.Logger,
) *DealWonHandler {
	return &DealWonHandler{
		reservationService: reservationService,
		productRepo:        productRepo,
		warehouseRepo:      warehouseRepo,
		reservationTTL:     DefaultReservationTTL,
		logger:             logger,
	}
}

// SetReservationTTL overrides the reservation time-to-live
func (h *DealWonHandler) SetReservationTTL(ttl time.Duration) {
	if ttl > 0 {
		h.reservationTTL = ttl
	}
}

// EventType returns the event type this handler subscribes to
func (h *DealWonHandler) EventType() string {
	return EventTypeDealWon
}

// Handle processes a DealWonEvent
func (h *DealWonHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	dealEvent, ok := event.(*DealWonEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, EventTypeDealWon)
	}

	warehouse, err := h.resolveWarehouse(ctx, dealEvent.TenantID())
	if err != nil {
		return err
	}
	if warehouse == nil {
		h.logger.Warn("No active warehouse configured, dropping deal event",
			zap.String("tenant_id", dealEvent.TenantID().String()),
			zap.String("deal_id", dealEvent.DealID.String()),
		)
		return nil
	}

	summary := &BatchSummary{
		ReferenceType: ReferenceTypeDeal,
		ReferenceID:   dealEvent.DealID.String(),
	}

	for _, line := range dealEvent.Products {
		outcome, err := h.handleLine(ctx, dealEvent, warehouse, line)
		if err != nil {
			// Infrastructure failure: surface it so the broker redelivers
			// the whole event. Reference dedup keeps the replay safe for
			// lines that were already reserved.
			return fmt.Errorf("reserve deal line %s: %w", line.ProductID, err)
		}
		summary.Add(outcome)
	}

	h.logger.Info("Processed deal reservations",
		zap.String("deal_id", dealEvent.DealID.String()),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)

	return nil
}

// handleLine follows the same outcome-versus-error split as the order
// handler: domain verdicts are per-line, infrastructure errors abort the
// event for redelivery.
func (h *DealWonHandler) handleLine(ctx context.Context, event *DealWonEvent, warehouse *catalog.Warehouse, line DealProduct) (outcome LineOutcome, err error) {
	// Deal payloads may omit the quantity; a won deal moves at least one unit.
	quantity := line.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	outcome = LineOutcome{Quantity: quantity}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = LineOutcomeError
			outcome.Reason = fmt.Sprintf("panic: %v", r)
			err = nil
			h.logger.Error("Panic while reserving deal line",
				zap.String("deal_id", event.DealID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	product, err := h.productRepo.FindByID(ctx, event.TenantID(), line.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			outcome.Status = LineOutcomeProductNotFound
			outcome.Reason = "Product not found in inventory"
			return outcome, nil
		}
		return outcome, err
	}
	outcome.ProductCode = product.Code
	outcome.ProductName = product.Name

	reservation, err := h.reservationService.Reserve(ctx, ReserveInput{
		TenantID:        event.TenantID(),
		ProductID:       product.ID,
		WarehouseID:     warehouse.ID,
		Quantity:        quantity,
		ReservationType: inventory.ReservationTypeManual,
		TTL:             h.reservationTTL,
		ReferenceType:   ReferenceTypeDeal,
		ReferenceID:     event.DealID.String(),
		Notes:           fmt.Sprintf("Deal %s won", event.DealID),
	})
	if err != nil {
		var insufficientErr *inventory.InsufficientStockError
		if errors.As(err, &insufficientErr) {
			outcome.Status = LineOutcomeInsufficientStock
			outcome.Shortfall = insufficientErr.Shortfall()
			outcome.Reason = fmt.Sprintf("Insufficient stock, short %s", insufficientErr.Shortfall())
			return outcome, nil
		}
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			outcome.Status = LineOutcomeError
			outcome.Reason = domainErr.Error()
			return outcome, nil
		}
		return outcome, err
	}

	outcome.Status = LineOutcomeReserved
	outcome.ReservationID = &reservation.ID
	return outcome, nil
}

func (h *DealWonHandler) resolveWarehouse(ctx context.Context, tenantID uuid.UUID) (*catalog.Warehouse, error) {
	warehouse, err := h.warehouseRepo.FindDefault(ctx, tenantID)
	if err == nil {
		return warehouse, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	active, err := h.warehouseRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

var _ shared.EventHandler = (*DealWonHandler)(nil)
