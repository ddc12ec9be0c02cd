package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// StockCountService drives physical count reconciliation. System quantities
// are frozen when the count is created; completion with auto-adjust posts
// the correcting movements and the state change in one transaction.
type StockCountService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockCountService creates a new StockCountService
func NewStockCountService(txScope TransactionScope, logger *zap.Logger) *StockCountService {
	return &StockCountService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockCountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCount opens a new count in DRAFT status, snapshotting the current
// system quantity of every included product.
func (s *StockCountService) CreateCount(ctx context.Context, input CreateCountInput) (*inventory.StockCount, error) {
	var count *inventory.StockCount

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.CountRepo().GenerateCountNumber(ctx, input.TenantID)
		if err != nil {
			return err
		}

		count, err = inventory.NewStockCount(input.TenantID, number, input.WarehouseID, input.CountType, input.AutoAdjust)
		if err != nil {
			return err
		}

		items, err := s.resolveItems(ctx, repos, input)
		if err != nil {
			return err
		}

		for i := range items {
			product, err := repos.ProductRepo().FindByID(ctx, input.TenantID, items[i].ProductID)
			code, name, unit := "", "", ""
			if err == nil {
				code, name, unit = product.Code, product.Name, product.Unit
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if err := count.AddItem(items[i].ProductID, code, name, unit,
				items[i].OnHandQuantity, items[i].UnitCost); err != nil {
				return err
			}
		}

		return repos.CountRepo().Save(ctx, count)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created stock count",
		zap.String("count_id", count.ID.String()),
		zap.String("count_number", count.CountNumber),
		zap.String("warehouse_id", input.WarehouseID.String()),
		zap.Int("items", len(count.Items)),
	)

	return count, nil
}

// resolveItems loads the stock items included in the count scope
func (s *StockCountService) resolveItems(ctx context.Context, repos TransactionalRepositories, input CreateCountInput) ([]inventory.StockItem, error) {
	if len(input.ProductIDs) == 0 {
		filter := shared.DefaultFilter()
		filter.Limit = 0 // no pagination for a full snapshot
		return repos.StockItemRepo().FindByWarehouse(ctx, input.TenantID, input.WarehouseID, filter)
	}

	items := make([]inventory.StockItem, 0, len(input.ProductIDs))
	for _, productID := range input.ProductIDs {
		item, err := repos.StockItemRepo().FindByWarehouseAndProduct(ctx, input.TenantID, input.WarehouseID, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// No stock record yet: count it against a zero system quantity
				fresh, newErr := inventory.NewStockItem(input.TenantID, input.WarehouseID, productID)
				if newErr != nil {
					return nil, newErr
				}
				items = append(items, *fresh)
				continue
			}
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// StartCount transitions the count to IN_PROGRESS
func (s *StockCountService) StartCount(ctx context.Context, tenantID, countID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		count, err := repos.CountRepo().FindByID(ctx, tenantID, countID)
		if err != nil {
			return err
		}
		if err := count.Start(); err != nil {
			return err
		}
		return repos.CountRepo().Save(ctx, count)
	})
}

// RecordCount stores the physical count for one item
func (s *StockCountService) RecordCount(ctx context.Context, tenantID, countID, itemID uuid.UUID, countedQty decimal.Decimal, remark string) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		count, err := repos.CountRepo().FindByID(ctx, tenantID, countID)
		if err != nil {
			return err
		}
		if err := count.RecordCount(itemID, countedQty, remark); err != nil {
			return err
		}
		return repos.CountRepo().Save(ctx, count)
	})
}

// CompleteCount completes the count. With AutoAdjust set, every item with a
// non-zero difference posts an adjustment movement referencing the count,
// and the snapshot is corrected, all within one transaction.
func (s *StockCountService) CompleteCount(ctx context.Context, tenantID, countID uuid.UUID) (*inventory.StockCountSummary, error) {
	var summary inventory.StockCountSummary
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		count, err := repos.CountRepo().FindByID(ctx, tenantID, countID)
		if err != nil {
			return err
		}
		if err := count.Complete(); err != nil {
			return err
		}

		if count.AutoAdjust {
			for _, item := range count.AdjustableItems() {
				if err := s.postAdjustment(ctx, repos, count, item); err != nil {
					return err
				}
			}
		}

		if err := repos.CountRepo().Save(ctx, count); err != nil {
			return err
		}

		summary = count.Summary()
		events = append(events, count.GetDomainEvents()...)
		count.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)

	s.logger.Info("Completed stock count",
		zap.String("count_id", countID.String()),
		zap.Int("counted_items", summary.CountedItems),
		zap.Int("items_with_positive_difference", summary.ItemsWithPositiveDiff),
		zap.Int("items_with_negative_difference", summary.ItemsWithNegativeDiff),
		zap.String("net_difference", summary.NetDifference.String()),
	)

	return &summary, nil
}

// postAdjustment posts one correcting movement for a differing count item
func (s *StockCountService) postAdjustment(ctx context.Context, repos TransactionalRepositories, count *inventory.StockCount, item inventory.StockCountItem) error {
	diff := item.Difference()

	movementType := inventory.MovementTypeAdjustmentIncrease
	if diff.IsNegative() {
		movementType = inventory.MovementTypeAdjustmentDecrease
	}

	documentNumber, err := repos.MovementRepo().GenerateDocumentNumber(ctx, count.TenantID)
	if err != nil {
		return err
	}
	movement, err := inventory.NewStockMovement(count.TenantID, documentNumber,
		item.ProductID, count.WarehouseID, movementType, diff.Abs(), item.UnitCost)
	if err != nil {
		return err
	}
	movement.WithReference("STOCK_COUNT", count.ID.String(), count.CountNumber)
	movement.WithDescription(item.Remark)

	stockItem, err := repos.StockItemRepo().GetOrCreate(ctx, count.TenantID, count.WarehouseID, item.ProductID)
	if err != nil {
		return err
	}
	if diff.IsPositive() {
		if err := stockItem.Receive(diff, item.UnitCost); err != nil {
			return err
		}
	} else {
		if err := stockItem.Issue(diff.Abs()); err != nil {
			return err
		}
	}

	if err := repos.MovementRepo().Save(ctx, movement); err != nil {
		return err
	}
	return repos.StockItemRepo().SaveWithLock(ctx, stockItem)
}

// CancelCount cancels the count with a reason
func (s *StockCountService) CancelCount(ctx context.Context, tenantID, countID uuid.UUID, reason string) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		count, err := repos.CountRepo().FindByID(ctx, tenantID, countID)
		if err != nil {
			return err
		}
		if err := count.Cancel(reason); err != nil {
			return err
		}
		return repos.CountRepo().Save(ctx, count)
	})
}

// GetSummary returns the aggregated outcome of a count
func (s *StockCountService) GetSummary(ctx context.Context, tenantID, countID uuid.UUID) (*inventory.StockCountSummary, error) {
	var summary inventory.StockCountSummary
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		count, err := repos.CountRepo().FindByID(ctx, tenantID, countID)
		if err != nil {
			return err
		}
		summary = count.Summary()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *StockCountService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish stock count events", zap.Error(err))
	}
}
