package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/catalog"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStockCountService_FullCycle(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()

	env := newTestEnv()
	product, err := catalog.NewProduct(tenantID, "WIDGET-1", "Widget", "pcs")
	require.NoError(t, err)
	env.products.add(product)

	seedStock(t, env, tenantID, warehouseID, product.ID, decimal.NewFromInt(100), decimal.NewFromInt(10))

	service := NewStockCountService(env.scope, zap.NewNop())
	service.SetEventPublisher(env.publisher)

	count, err := service.CreateCount(context.Background(), CreateCountInput{
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		CountType:   inventory.StockCountTypeSpot,
		AutoAdjust:  true,
		ProductIDs:  []uuid.UUID{product.ID},
	})
	require.NoError(t, err)
	require.Len(t, count.Items, 1)
	assert.Equal(t, inventory.StockCountStatusDraft, count.Status)
	assert.True(t, count.Items[0].SystemQuantity.Equal(decimal.NewFromInt(100)), "system quantity frozen at creation")
	assert.Equal(t, "WIDGET-1", count.Items[0].ProductCode)

	// Counting may not start until the count does.
	err = service.RecordCount(context.Background(), tenantID, count.ID, count.Items[0].ID, decimal.NewFromInt(92), "")
	assert.ErrorIs(t, err, inventory.ErrCountNotInProgress)

	require.NoError(t, service.StartCount(context.Background(), tenantID, count.ID))
	require.NoError(t, service.RecordCount(context.Background(), tenantID, count.ID, count.Items[0].ID,
		decimal.NewFromInt(92), "shelf damage"))

	summary, err := service.CompleteCount(context.Background(), tenantID, count.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CountedItems)
	assert.Equal(t, 1, summary.ItemsWithNegativeDiff)
	assert.True(t, summary.TotalNegativeDifference.Equal(decimal.NewFromInt(8)))
	assert.True(t, summary.NetDifference.Equal(decimal.NewFromInt(-8)))
	assert.True(t, summary.ValueImpact.Equal(decimal.NewFromInt(-80)))
	assert.False(t, summary.ValueImpactEstimated)

	// Auto-adjust posted one decrease of the difference and corrected the snapshot.
	adjustments := env.movements.byType(inventory.MovementTypeAdjustmentDecrease)
	require.Len(t, adjustments, 1)
	assert.True(t, adjustments[0].Quantity.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, "STOCK_COUNT", adjustments[0].ReferenceDocumentType)
	assert.Equal(t, count.ID.String(), adjustments[0].ReferenceDocumentID)

	item, err := env.stockItems.FindByWarehouseAndProduct(context.Background(), tenantID, warehouseID, product.ID)
	require.NoError(t, err)
	assert.True(t, item.OnHandQuantity.Equal(decimal.NewFromInt(92)))

	assert.Len(t, env.publisher.byType(inventory.EventTypeStockCountCompleted), 1)
}

func TestStockCountService_CreateCount(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()

	t.Run("covers every item in the warehouse when no products are named", func(t *testing.T) {
		env := newTestEnv()
		productA := uuid.New()
		productB := uuid.New()
		seedStock(t, env, tenantID, warehouseID, productA, decimal.NewFromInt(5), decimal.NewFromInt(1))
		seedStock(t, env, tenantID, warehouseID, productB, decimal.NewFromInt(7), decimal.NewFromInt(1))
		// An item in another warehouse stays out of scope.
		seedStock(t, env, tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(9), decimal.NewFromInt(1))

		service := NewStockCountService(env.scope, zap.NewNop())
		count, err := service.CreateCount(context.Background(), CreateCountInput{
			TenantID:    tenantID,
			WarehouseID: warehouseID,
			CountType:   inventory.StockCountTypeFull,
		})
		require.NoError(t, err)
		assert.Len(t, count.Items, 2)
	})

	t.Run("counts a product without a stock record against zero", func(t *testing.T) {
		env := newTestEnv()
		service := NewStockCountService(env.scope, zap.NewNop())

		count, err := service.CreateCount(context.Background(), CreateCountInput{
			TenantID:    tenantID,
			WarehouseID: warehouseID,
			CountType:   inventory.StockCountTypeSpot,
			ProductIDs:  []uuid.UUID{uuid.New()},
		})
		require.NoError(t, err)
		require.Len(t, count.Items, 1)
		assert.True(t, count.Items[0].SystemQuantity.IsZero())
	})
}

func TestStockCountService_CancelCount(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	env := newTestEnv()
	seedStock(t, env, tenantID, warehouseID, productID, decimal.NewFromInt(10), decimal.NewFromInt(1))

	service := NewStockCountService(env.scope, zap.NewNop())
	count, err := service.CreateCount(context.Background(), CreateCountInput{
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		CountType:   inventory.StockCountTypeSpot,
		ProductIDs:  []uuid.UUID{productID},
	})
	require.NoError(t, err)

	require.NoError(t, service.CancelCount(context.Background(), tenantID, count.ID, "duplicate schedule"))

	stored, err := env.counts.FindByID(context.Background(), tenantID, count.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StockCountStatusCancelled, stored.Status)
	assert.Equal(t, "duplicate schedule", stored.CancelReason)

	// A cancelled count cannot be started.
	require.Error(t, service.StartCount(context.Background(), tenantID, count.ID))
}

func TestStockCountService_ZeroCostFallsBackToQuantityImpact(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	env := newTestEnv()
	seedStock(t, env, tenantID, warehouseID, productID, decimal.NewFromInt(10), decimal.Zero)

	service := NewStockCountService(env.scope, zap.NewNop())
	count, err := service.CreateCount(context.Background(), CreateCountInput{
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		CountType:   inventory.StockCountTypeSpot,
		ProductIDs:  []uuid.UUID{productID},
	})
	require.NoError(t, err)
	require.NoError(t, service.StartCount(context.Background(), tenantID, count.ID))
	require.NoError(t, service.RecordCount(context.Background(), tenantID, count.ID, count.Items[0].ID,
		decimal.NewFromInt(13), ""))

	summary, err := service.CompleteCount(context.Background(), tenantID, count.ID)
	require.NoError(t, err)
	assert.True(t, summary.ValueImpactEstimated)
	assert.True(t, summary.ValueImpact.Equal(decimal.NewFromInt(3)))
}
