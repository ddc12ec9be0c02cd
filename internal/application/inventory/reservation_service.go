package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultReservationTTL is the standard time-to-live the event consumers
// apply to sales-order reservations.
const DefaultReservationTTL = 30 * 24 * time.Hour

// ReservationService owns the reservation lifecycle. The availability check
// and the reservation insert happen inside one transaction while holding a
// row lock on the stock item, so concurrent writers for the same
// product/warehouse pair serialize instead of over-reserving.
type ReservationService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(txScope TransactionScope, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Reserve creates a soft lock against available stock.
//
// Redelivery safety: when the input carries a document reference, an
// existing reservation for (reference type, reference id, product) is
// returned as-is instead of creating a duplicate. The unique constraint on
// that key backs this check at the storage layer, so two racing deliveries
// cannot both insert.
//
// Insufficient stock is returned as *inventory.InsufficientStockError with
// the shortfall; the caller decides whether to backorder, partially fulfill
// or skip.
//
// The TTL is applied exactly as given: a zero TTL creates a reservation
// that is already due for expiry. Callers wanting the standard hold pass
// DefaultReservationTTL.
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*inventory.StockReservation, error) {
	var reservation *inventory.StockReservation
	var alreadyExisted bool
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if input.ReferenceType != "" && input.ReferenceID != "" {
			existing, err := repos.ReservationRepo().FindByReference(ctx, input.TenantID,
				input.ReferenceType, input.ReferenceID, input.ProductID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if existing != nil {
				reservation = existing
				alreadyExisted = true
				return nil
			}
		}

		// Row lock on the stock item covers the whole check-then-reserve
		// sequence. Held until the transaction commits.
		item, err := repos.StockItemRepo().FindByWarehouseAndProductForUpdate(ctx,
			input.TenantID, input.WarehouseID, input.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return inventory.NewInsufficientStockError(input.ProductID, input.WarehouseID,
					input.Quantity, decimal.Zero)
			}
			return err
		}

		if err := item.AddReservation(input.Quantity); err != nil {
			return err
		}

		number, err := repos.ReservationRepo().GenerateReservationNumber(ctx, input.TenantID)
		if err != nil {
			return err
		}

		reservation, err = inventory.NewStockReservation(input.TenantID, number,
			input.ProductID, input.WarehouseID, input.Quantity, input.ReservationType, input.TTL)
		if err != nil {
			return err
		}
		reservation.WithReference(input.ReferenceType, input.ReferenceID, input.ReferenceNumber)
		reservation.WithNotes(input.Notes)
		reservation.WithCreatedBy(input.CreatedBy)

		// A unique violation aborts the whole transaction on Postgres, so
		// the duplicate is not recovered here; Reserve retries the lookup
		// in a fresh transaction after this one rolls back.
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}

		if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		events = append(events, inventory.NewStockReservedEvent(reservation))
		return nil
	})
	if err != nil {
		if errors.Is(err, inventory.ErrDuplicateReservation) && input.ReferenceType != "" && input.ReferenceID != "" {
			// Lost the insert race to a concurrent delivery of the same
			// event. The existing reservation wins; look it up in a new
			// transaction, the failed one is already rolled back.
			existing, findErr := s.findByReference(ctx, input)
			if findErr != nil {
				return nil, findErr
			}
			reservation = existing
			alreadyExisted = true
		} else {
			return nil, err
		}
	}

	if alreadyExisted {
		s.logger.Info("Reservation already exists for reference, skipping",
			zap.String("reservation_id", reservation.ID.String()),
			zap.String("reference_type", input.ReferenceType),
			zap.String("reference_id", input.ReferenceID),
		)
		return reservation, nil
	}

	s.publish(ctx, events)

	s.logger.Info("Created stock reservation",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("reservation_number", reservation.ReservationNumber),
		zap.String("product_id", input.ProductID.String()),
		zap.String("warehouse_id", input.WarehouseID.String()),
		zap.String("quantity", input.Quantity.String()),
		zap.Time("expires_at", reservation.ExpiresAt),
	)

	return reservation, nil
}

// Release marks a reservation inactive and returns its quantity to
// availability. Idempotent: releasing an already-closed reservation is a
// no-op. No ledger effect.
func (s *ReservationService) Release(ctx context.Context, tenantID, reservationID uuid.UUID) error {
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByID(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}

		freed := reservation.Release()
		if freed.IsZero() {
			return nil
		}

		item, err := repos.StockItemRepo().FindByWarehouseAndProductForUpdate(ctx,
			tenantID, reservation.WarehouseID, reservation.ProductID)
		if err != nil {
			return err
		}
		if err := item.ReleaseReservation(freed); err != nil {
			return err
		}

		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}
		if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		events = append(events, reservation.GetDomainEvents()...)
		reservation.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

// Fulfill converts the reservation's remaining quantity into an outbound
// sales movement and closes the reservation, atomically. Fails on an
// already fulfilled, released or expired reservation.
func (s *ReservationService) Fulfill(ctx context.Context, tenantID, reservationID uuid.UUID) (uuid.UUID, error) {
	var movementID uuid.UUID
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByID(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}

		quantity := reservation.RemainingQuantity()
		now := time.Now()
		if err := reservation.Fulfill(quantity, now); err != nil {
			return err
		}

		item, err := repos.StockItemRepo().FindByWarehouseAndProductForUpdate(ctx,
			tenantID, reservation.WarehouseID, reservation.ProductID)
		if err != nil {
			return err
		}
		if err := item.FulfillReservation(quantity); err != nil {
			return err
		}

		documentNumber, err := repos.MovementRepo().GenerateDocumentNumber(ctx, tenantID)
		if err != nil {
			return err
		}
		movement, err := inventory.NewStockMovement(tenantID, documentNumber,
			reservation.ProductID, reservation.WarehouseID,
			inventory.MovementTypeSales, quantity, item.UnitCost)
		if err != nil {
			return err
		}
		movement.WithReference("STOCK_RESERVATION", reservation.ID.String(), reservation.ReservationNumber)

		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}
		if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		movementID = movement.ID
		events = append(events, inventory.NewStockMovementPostedEvent(movement))
		events = append(events, reservation.GetDomainEvents()...)
		events = append(events, item.GetDomainEvents()...)
		reservation.ClearDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.publish(ctx, events)

	s.logger.Info("Fulfilled stock reservation",
		zap.String("reservation_id", reservationID.String()),
		zap.String("movement_id", movementID.String()),
	)

	return movementID, nil
}

func (s *ReservationService) findByReference(ctx context.Context, input ReserveInput) (*inventory.StockReservation, error) {
	var existing *inventory.StockReservation
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.ReservationRepo().FindByReference(ctx, input.TenantID,
			input.ReferenceType, input.ReferenceID, input.ProductID)
		if err != nil {
			return err
		}
		existing = found
		return nil
	})
	return existing, err
}

func (s *ReservationService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish reservation events", zap.Error(err))
	}
}
