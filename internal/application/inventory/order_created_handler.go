package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stocker/inventory/internal/domain/catalog"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// Reference document types used by event-driven reservations
const (
	ReferenceTypeSalesOrder = "SALES_ORDER"
	ReferenceTypeDeal       = "DEAL"
)

// OrderCreatedHandler reserves stock for each line of a created sales
// order. Lines are isolated: one unresolvable or short line records a
// failed outcome and the loop continues. Only infrastructure errors
// propagate, so the broker redelivers; redelivery is safe because Reserve
// dedupes on the order reference.
type OrderCreatedHandler struct {
	reservationService *ReservationService
	productRepo        catalog.ProductRepository
	warehouseRepo      catalog.WarehouseRepository
	reservationTTL     time.Duration
	logger             *zap.Logger
}

// NewOrderCreatedHandler creates a new OrderCreatedHandler
func NewOrderCreatedHandler(
	reservationService *ReservationService,
	productRepo catalog.ProductRepository,
	warehouseRepo catalog.WarehouseRepository,
	logger *zap.Logger,
) *OrderCreatedHandler {
	return &OrderCreatedHandler{
		reservationService: reservationService,
		productRepo:        productRepo,
		warehouseRepo:      warehouseRepo,
		reservationTTL:     DefaultReservationTTL,
		logger:             logger,
	}
}

// SetReservationTTL overrides the reservation time-to-live
func (h *OrderCreatedHandler) SetReservationTTL(ttl time.Duration) {
	if ttl > 0 {
		h.reservationTTL = ttl
	}
}

// EventType returns the event type this handler subscribes to
func (h *OrderCreatedHandler) EventType() string {
	return EventTypeSalesOrderCreated
}

// Handle processes a SalesOrderCreatedEvent
func (h *OrderCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderEvent, ok := event.(*SalesOrderCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, EventTypeSalesOrderCreated)
	}

	warehouse, err := h.resolveWarehouse(ctx, orderEvent.TenantID())
	if err != nil {
		return err
	}
	if warehouse == nil {
		// Configuration gap, not a transient failure: drop without retry.
		h.logger.Warn("No active warehouse configured, dropping order event",
			zap.String("tenant_id", orderEvent.TenantID().String()),
			zap.String("order_id", orderEvent.OrderID.String()),
			zap.String("order_number", orderEvent.OrderNumber),
		)
		return nil
	}

	summary := &BatchSummary{
		ReferenceType: ReferenceTypeSalesOrder,
		ReferenceID:   orderEvent.OrderID.String(),
	}

	for _, line := range orderEvent.Items {
		outcome, err := h.handleLine(ctx, orderEvent, warehouse, line)
		if err != nil {
			// Infrastructure failure: surface it so the broker redelivers
			// the whole event. Reference dedup keeps the replay safe for
			// lines that were already reserved.
			return fmt.Errorf("reserve order line %q: %w", line.ProductCode, err)
		}
		summary.Add(outcome)
	}

	h.logger.Info("Processed sales order reservations",
		zap.String("order_id", orderEvent.OrderID.String()),
		zap.String("order_number", orderEvent.OrderNumber),
		zap.String("warehouse_id", warehouse.ID.String()),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)

	return nil
}

// handleLine processes one order line. Domain outcomes (short stock,
// unresolvable product, invalid quantity, panic) are recorded per line and
// the loop continues; only infrastructure errors are returned, and those
// abort the event so it can be redelivered.
func (h *OrderCreatedHandler) handleLine(ctx context.Context, event *SalesOrderCreatedEvent, warehouse *catalog.Warehouse, line SalesOrderItem) (outcome LineOutcome, err error) {
	outcome = LineOutcome{
		ProductCode: line.ProductCode,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = LineOutcomeError
			outcome.Reason = fmt.Sprintf("panic: %v", r)
			err = nil
			h.logger.Error("Panic while reserving order line",
				zap.String("order_id", event.OrderID.String()),
				zap.String("product_code", line.ProductCode),
				zap.Any("panic", r),
			)
		}
	}()

	// Service lines have no inventory-product linkage
	if line.ProductID == nil && line.ProductCode == "" {
		outcome.Status = LineOutcomeSkipped
		outcome.Reason = "No inventory product linkage"
		return outcome, nil
	}

	product, err := h.resolveProduct(ctx, event.TenantID(), line)
	if err != nil {
		return outcome, err
	}
	if product == nil {
		outcome.Status = LineOutcomeProductNotFound
		outcome.Reason = "Product not found in inventory"
		return outcome, nil
	}

	reservation, err := h.reservationService.Reserve(ctx, ReserveInput{
		TenantID:        event.TenantID(),
		ProductID:       product.ID,
		WarehouseID:     warehouse.ID,
		Quantity:        line.Quantity,
		ReservationType: inventory.ReservationTypeSalesOrder,
		TTL:             h.reservationTTL,
		ReferenceType:   ReferenceTypeSalesOrder,
		ReferenceID:     event.OrderID.String(),
		ReferenceNumber: event.OrderNumber,
		Notes:           fmt.Sprintf("Order %s for %s", event.OrderNumber, event.CustomerName),
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
			// Validation verdict: redelivery would fail the same way.
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

// resolveWarehouse prefers the tenant's default warehouse, falling back to
// the first active one. Returns nil when none exists.
func (h *OrderCreatedHandler) resolveWarehouse(ctx context.Context, tenantID uuid.UUID) (*catalog.Warehouse, error) {
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

// resolveProduct resolves a line's product by ID, then code, then name
// search. Returns nil when unresolved.
func (h *OrderCreatedHandler) resolveProduct(ctx context.Context, tenantID uuid.UUID, line SalesOrderItem) (*catalog.Product, error) {
	if line.ProductID != nil {
		product, err := h.productRepo.FindByID(ctx, tenantID, *line.ProductID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if line.ProductCode != "" {
		product, err := h.productRepo.FindByCode(ctx, tenantID, line.ProductCode)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if line.ProductName != "" {
		filter := shared.DefaultFilter()
		candidates, err := h.productRepo.FindActive(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if candidates[i].Name == line.ProductName {
				return &candidates[i], nil
			}
		}
	}

	return nil, nil
}

var _ shared.EventHandler = (*OrderCreatedHandler)(nil)
