package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockMovement(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("creates movement with total cost", func(t *testing.T) {
		m, err := NewStockMovement(tenantID, "SM-20260901-0001", productID, warehouseID,
			MovementTypePurchase, decimal.NewFromInt(10), decimal.NewFromFloat(2.5))
		require.NoError(t, err)
		assert.Equal(t, "SM-20260901-0001", m.DocumentNumber)
		assert.True(t, m.TotalCost.Equal(decimal.NewFromInt(25)))
		assert.False(t, m.IsReversed)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "SM-1", productID, warehouseID,
			MovementTypePurchase, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "SM-1", productID, warehouseID,
			MovementTypePurchase, decimal.NewFromInt(-5), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects invalid movement type", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "SM-1", productID, warehouseID,
			MovementType("BOGUS"), decimal.NewFromInt(1), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative unit cost", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "SM-1", productID, warehouseID,
			MovementTypePurchase, decimal.NewFromInt(1), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestMovementTypeDirection(t *testing.T) {
	inbound := []MovementType{
		MovementTypePurchase, MovementTypeProduction, MovementTypeSalesReturn,
		MovementTypeAdjustmentIncrease, MovementTypeOpening, MovementTypeFound,
	}
	outbound := []MovementType{
		MovementTypeSales, MovementTypeConsumption, MovementTypePurchaseReturn,
		MovementTypeAdjustmentDecrease, MovementTypeDamage, MovementTypeLoss,
	}

	for _, mt := range inbound {
		assert.True(t, mt.IsInbound(), "%s should be inbound", mt)
		assert.False(t, mt.IsOutbound(), "%s should not be outbound", mt)
	}
	for _, mt := range outbound {
		assert.True(t, mt.IsOutbound(), "%s should be outbound", mt)
		assert.False(t, mt.IsInbound(), "%s should not be inbound", mt)
	}

	// Transfer and Counting carry no net warehouse effect
	assert.False(t, MovementTypeTransfer.IsInbound())
	assert.False(t, MovementTypeTransfer.IsOutbound())
	assert.False(t, MovementTypeCounting.IsInbound())
	assert.False(t, MovementTypeCounting.IsOutbound())
}

func TestStockMovementSignedQuantity(t *testing.T) {
	tenantID := uuid.New()
	qty := decimal.NewFromInt(7)

	in, err := NewStockMovement(tenantID, "SM-1", uuid.New(), uuid.New(), MovementTypePurchase, qty, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, in.SignedQuantity().Equal(qty))

	out, err := NewStockMovement(tenantID, "SM-2", uuid.New(), uuid.New(), MovementTypeSales, qty, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, out.SignedQuantity().Equal(qty.Neg()))
}

func TestStockMovementReverse(t *testing.T) {
	tenantID := uuid.New()

	t.Run("posts equal and opposite entry", func(t *testing.T) {
		original, err := NewStockMovement(tenantID, "SM-1", uuid.New(), uuid.New(),
			MovementTypePurchase, decimal.NewFromInt(10), decimal.NewFromInt(3))
		require.NoError(t, err)

		reversal, err := original.Reverse("SM-2", "posted in error")
		require.NoError(t, err)

		assert.True(t, original.IsReversed)
		require.NotNil(t, original.ReversalMovementID)
		assert.Equal(t, reversal.ID, *original.ReversalMovementID)

		assert.Equal(t, MovementTypePurchaseReturn, reversal.MovementType)
		assert.True(t, reversal.Quantity.Equal(original.Quantity))
		assert.True(t, original.SignedQuantity().Add(reversal.SignedQuantity()).IsZero())
		assert.Equal(t, "STOCK_MOVEMENT", reversal.ReferenceDocumentType)
		assert.Equal(t, original.ID.String(), reversal.ReferenceDocumentID)
	})

	t.Run("rejects reversing twice", func(t *testing.T) {
		original, err := NewStockMovement(tenantID, "SM-1", uuid.New(), uuid.New(),
			MovementTypeSales, decimal.NewFromInt(2), decimal.Zero)
		require.NoError(t, err)

		_, err = original.Reverse("SM-2", "first")
		require.NoError(t, err)

		_, err = original.Reverse("SM-3", "second")
		assert.ErrorIs(t, err, ErrMovementAlreadyReversed)
	})

	t.Run("swaps locations on transfer reversal", func(t *testing.T) {
		from := uuid.New()
		to := uuid.New()
		original, err := NewStockMovement(tenantID, "SM-1", uuid.New(), uuid.New(),
			MovementTypeTransfer, decimal.NewFromInt(5), decimal.Zero)
		require.NoError(t, err)
		original.WithLocations(&from, &to)

		reversal, err := original.Reverse("SM-2", "wrong destination")
		require.NoError(t, err)
		assert.Equal(t, MovementTypeTransfer, reversal.MovementType)
		assert.Equal(t, to, *reversal.FromLocationID)
		assert.Equal(t, from, *reversal.ToLocationID)
	})
}
