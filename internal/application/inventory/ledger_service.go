package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerService owns the append-only movement ledger. Every quantity change
// goes through PostMovement: the movement row and the snapshot update on the
// stock item commit in one transaction.
type LedgerService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txScope TransactionScope, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PostMovement appends a movement to the ledger and applies its effect to
// the warehouse/product snapshot. Returns the new movement's ID.
func (s *LedgerService) PostMovement(ctx context.Context, input PostMovementInput) (uuid.UUID, error) {
	var movementID uuid.UUID
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		documentNumber, err := repos.MovementRepo().GenerateDocumentNumber(ctx, input.TenantID)
		if err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(
			input.TenantID,
			documentNumber,
			input.ProductID,
			input.WarehouseID,
			input.MovementType,
			input.Quantity,
			input.UnitCost,
		)
		if err != nil {
			return err
		}
		movement.WithLocations(input.FromLocationID, input.ToLocationID)
		movement.WithReference(input.ReferenceType, input.ReferenceID, input.ReferenceNumber)
		movement.WithSerialLot(input.SerialNumber, input.LotNumber)
		movement.WithDescription(input.Description)
		movement.WithOperator(input.OperatorID)

		item, err := repos.StockItemRepo().GetOrCreate(ctx, input.TenantID, input.WarehouseID, input.ProductID)
		if err != nil {
			return err
		}

		if err := s.applyToSnapshot(item, movement); err != nil {
			return err
		}

		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		movementID = movement.ID
		events = append(events, inventory.NewStockMovementPostedEvent(movement))
		events = append(events, item.GetDomainEvents()...)
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.publish(ctx, events)

	s.logger.Info("Posted stock movement",
		zap.String("movement_id", movementID.String()),
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.String("warehouse_id", input.WarehouseID.String()),
		zap.String("movement_type", input.MovementType.String()),
		zap.String("quantity", input.Quantity.String()),
	)

	return movementID, nil
}

// ReverseMovement flags the original movement reversed and posts the
// offsetting entry. Returns the new movement's ID. Reversing an already
// reversed movement fails.
func (s *LedgerService) ReverseMovement(ctx context.Context, tenantID, movementID uuid.UUID, reason string) (uuid.UUID, error) {
	var reversalID uuid.UUID
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.MovementRepo().FindByID(ctx, tenantID, movementID)
		if err != nil {
			return err
		}

		documentNumber, err := repos.MovementRepo().GenerateDocumentNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		reversal, err := original.Reverse(documentNumber, reason)
		if err != nil {
			return err
		}

		item, err := repos.StockItemRepo().GetOrCreate(ctx, tenantID, original.WarehouseID, original.ProductID)
		if err != nil {
			return err
		}
		if err := s.applyToSnapshot(item, reversal); err != nil {
			return err
		}

		if err := repos.MovementRepo().Save(ctx, reversal); err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, original); err != nil {
			return err
		}
		if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		reversalID = reversal.ID
		events = append(events, inventory.NewStockMovementReversedEvent(original, reversal))
		events = append(events, item.GetDomainEvents()...)
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.publish(ctx, events)

	s.logger.Info("Reversed stock movement",
		zap.String("original_movement_id", movementID.String()),
		zap.String("reversal_movement_id", reversalID.String()),
		zap.String("reason", reason),
	)

	return reversalID, nil
}

// PostTransfer records a stock transfer between two locations of one
// warehouse. The on-hand quantity must cover the transferred amount, but the
// warehouse total is unchanged; the movement carries the location pair.
func (s *LedgerService) PostTransfer(ctx context.Context, input TransferInput) (uuid.UUID, error) {
	if input.FromLocationID == input.ToLocationID {
		return uuid.Nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination locations must differ")
	}

	var movementID uuid.UUID
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItemRepo().FindByWarehouseAndProduct(ctx, input.TenantID, input.WarehouseID, input.ProductID)
		if err != nil {
			return err
		}
		if item.OnHandQuantity.LessThan(input.Quantity) {
			return inventory.NewInsufficientStockError(input.ProductID, input.WarehouseID, input.Quantity, item.OnHandQuantity)
		}

		documentNumber, err := repos.MovementRepo().GenerateDocumentNumber(ctx, input.TenantID)
		if err != nil {
			return err
		}
		movement, err := inventory.NewStockMovement(input.TenantID, documentNumber, input.ProductID,
			input.WarehouseID, inventory.MovementTypeTransfer, input.Quantity, item.UnitCost)
		if err != nil {
			return err
		}
		from := input.FromLocationID
		to := input.ToLocationID
		movement.WithLocations(&from, &to)
		refType := input.ReferenceType
		if refType == "" {
			refType = "TRANSFER"
		}
		movement.WithReference(refType, input.ReferenceID, input.ReferenceNumber)
		movement.WithDescription(input.Description)

		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}

		movementID = movement.ID
		events = append(events, inventory.NewStockMovementPostedEvent(movement))
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.publish(ctx, events)

	return movementID, nil
}

// applyToSnapshot applies one movement's effect to the stock item
func (s *LedgerService) applyToSnapshot(item *inventory.StockItem, movement *inventory.StockMovement) error {
	switch {
	case movement.MovementType.IsInbound():
		return item.Receive(movement.Quantity, movement.UnitCost)
	case movement.MovementType.IsOutbound():
		return item.Issue(movement.Quantity)
	default:
		// Transfer/Counting movements carry no net warehouse effect
		return nil
	}
}

func (s *LedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish ledger events", zap.Error(err))
	}
}
