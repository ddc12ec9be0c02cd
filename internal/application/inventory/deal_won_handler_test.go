package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/catalog"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDealWonHandler_Handle(t *testing.T) {
	tenantID := uuid.New()

	setup := func(t *testing.T) (*testEnv, *DealWonHandler, *catalog.Warehouse) {
		t.Helper()
		env := newTestEnv()
		warehouse, err := catalog.NewWarehouse(tenantID, "MAIN", "Main Warehouse")
		require.NoError(t, err)
		warehouse.MarkDefault()
		env.warehouses.add(warehouse)

		service := NewReservationService(env.scope, zap.NewNop())
		handler := NewDealWonHandler(service, env.products, env.warehouses, zap.NewNop())
		return env, handler, warehouse
	}

	t.Run("reserves deal products against the default warehouse", func(t *testing.T) {
		env, handler, warehouse := setup(t)

		product, err := catalog.NewProduct(tenantID, "SERVER-1", "Rack Server", "pcs")
		require.NoError(t, err)
		env.products.add(product)
		seedStock(t, env, tenantID, warehouse.ID, product.ID, decimal.NewFromInt(10), decimal.NewFromInt(3000))

		event := NewDealWonEvent(tenantID, uuid.New(), uuid.New(), []DealProduct{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(2)},
		})
		require.NoError(t, handler.Handle(context.Background(), event))

		reservation, err := env.reservations.FindByReference(context.Background(), tenantID,
			ReferenceTypeDeal, event.DealID.String(), product.ID)
		require.NoError(t, err)
		assert.True(t, reservation.Quantity.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, inventory.ReservationTypeManual, reservation.ReservationType)
	})

	t.Run("redelivery creates no duplicate reservations", func(t *testing.T) {
		env, handler, warehouse := setup(t)

		product, err := catalog.NewProduct(tenantID, "ROUTER-1", "Edge Router", "pcs")
		require.NoError(t, err)
		env.products.add(product)
		seedStock(t, env, tenantID, warehouse.ID, product.ID, decimal.NewFromInt(8), decimal.NewFromInt(900))

		event := NewDealWonEvent(tenantID, uuid.New(), uuid.New(), []DealProduct{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(4)},
		})
		require.NoError(t, handler.Handle(context.Background(), event))
		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, 1, env.reservations.count())
		item, err := env.stockItems.FindByWarehouseAndProduct(context.Background(), tenantID, warehouse.ID, product.ID)
		require.NoError(t, err)
		assert.True(t, item.ReservedQuantity.Equal(decimal.NewFromInt(4)))
	})

	t.Run("unknown product records a failure without erroring", func(t *testing.T) {
		env, handler, _ := setup(t)

		event := NewDealWonEvent(tenantID, uuid.New(), uuid.New(), []DealProduct{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		})
		require.NoError(t, handler.Handle(context.Background(), event))
		assert.Equal(t, 0, env.reservations.count())
	})

	t.Run("missing quantity defaults to a single unit", func(t *testing.T) {
		env, handler, warehouse := setup(t)

		product, err := catalog.NewProduct(tenantID, "ROUTER-1", "Edge Router", "pcs")
		require.NoError(t, err)
		env.products.add(product)
		seedStock(t, env, tenantID, warehouse.ID, product.ID, decimal.NewFromInt(5), decimal.NewFromInt(400))

		dealID := uuid.New()
		event := NewDealWonEvent(tenantID, dealID, uuid.New(), []DealProduct{
			{ProductID: product.ID},
		})
		require.NoError(t, handler.Handle(context.Background(), event))

		reservation, err := env.reservations.FindByReference(context.Background(), tenantID,
			ReferenceTypeDeal, dealID.String(), product.ID)
		require.NoError(t, err)
		assert.True(t, reservation.Quantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("surfaces storage failures so the event is redelivered", func(t *testing.T) {
		env, _, _ := setup(t)

		product, err := catalog.NewProduct(tenantID, "SWITCH-1", "Core Switch", "pcs")
		require.NoError(t, err)
		env.products.add(product)

		dbErr := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
		service := NewReservationService(stubErrScope{err: dbErr}, zap.NewNop())
		handler := NewDealWonHandler(service, env.products, env.warehouses, zap.NewNop())

		event := NewDealWonEvent(tenantID, uuid.New(), uuid.New(), []DealProduct{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(1)},
		})

		err = handler.Handle(context.Background(), event)
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
	})
}
