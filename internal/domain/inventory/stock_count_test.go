package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCount(t *testing.T) *StockCount {
	t.Helper()
	c, err := NewStockCount(uuid.New(), "SC-20260901-0001", uuid.New(), StockCountTypeFull, true)
	require.NoError(t, err)
	return c
}

func addTestItem(t *testing.T, c *StockCount, systemQty, unitCost int64) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	require.NoError(t, c.AddItem(productID, "P-1", "Product", "pcs",
		decimal.NewFromInt(systemQty), decimal.NewFromInt(unitCost)))
	return productID
}

func itemIDFor(c *StockCount, productID uuid.UUID) uuid.UUID {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return c.Items[i].ID
		}
	}
	return uuid.Nil
}

func TestStockCountStateMachine(t *testing.T) {
	t.Run("draft to in progress requires items", func(t *testing.T) {
		c := newTestCount(t)
		assert.Error(t, c.Start())

		addTestItem(t, c, 100, 0)
		require.NoError(t, c.Start())
		assert.Equal(t, StockCountStatusInProgress, c.Status)
		assert.NotNil(t, c.StartedAt)
	})

	t.Run("items can only be added in draft", func(t *testing.T) {
		c := newTestCount(t)
		addTestItem(t, c, 10, 0)
		require.NoError(t, c.Start())

		err := c.AddItem(uuid.New(), "P-2", "Other", "pcs", decimal.NewFromInt(5), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("only in progress counts accept recordings", func(t *testing.T) {
		c := newTestCount(t)
		pid := addTestItem(t, c, 10, 0)

		err := c.RecordCount(itemIDFor(c, pid), decimal.NewFromInt(9), "")
		assert.ErrorIs(t, err, ErrCountNotInProgress)
	})

	t.Run("completion requires all items counted", func(t *testing.T) {
		c := newTestCount(t)
		pid := addTestItem(t, c, 10, 0)
		addTestItem(t, c, 20, 0)
		require.NoError(t, c.Start())

		require.NoError(t, c.RecordCount(itemIDFor(c, pid), decimal.NewFromInt(10), ""))
		assert.Error(t, c.Complete())
	})

	t.Run("completed is terminal", func(t *testing.T) {
		c := newTestCount(t)
		pid := addTestItem(t, c, 10, 0)
		require.NoError(t, c.Start())
		require.NoError(t, c.RecordCount(itemIDFor(c, pid), decimal.NewFromInt(10), ""))
		require.NoError(t, c.Complete())

		assert.Error(t, c.Cancel("too late"))
		assert.Error(t, c.Start())
	})

	t.Run("cancel requires a reason and is terminal", func(t *testing.T) {
		c := newTestCount(t)
		addTestItem(t, c, 10, 0)

		assert.Error(t, c.Cancel(""))
		require.NoError(t, c.Cancel("duplicate document"))
		assert.Equal(t, StockCountStatusCancelled, c.Status)
		assert.Error(t, c.Start())
	})
}

func TestStockCountDifferences(t *testing.T) {
	t.Run("system quantity stays frozen and difference is derived", func(t *testing.T) {
		c := newTestCount(t)
		pid := addTestItem(t, c, 100, 0)
		require.NoError(t, c.Start())

		itemID := itemIDFor(c, pid)
		require.NoError(t, c.RecordCount(itemID, decimal.NewFromInt(92), "shelf damage"))

		item := c.Items[0]
		assert.True(t, item.SystemQuantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, item.Difference().Equal(decimal.NewFromInt(-8)))
		assert.True(t, item.HasDifference())
	})

	t.Run("recount overwrites previous recording", func(t *testing.T) {
		c := newTestCount(t)
		pid := addTestItem(t, c, 50, 0)
		require.NoError(t, c.Start())

		itemID := itemIDFor(c, pid)
		require.NoError(t, c.RecordCount(itemID, decimal.NewFromInt(48), ""))
		require.NoError(t, c.RecordCount(itemID, decimal.NewFromInt(50), "recounted"))

		assert.False(t, c.Items[0].HasDifference())
	})

	t.Run("adjustable items excludes matching lines", func(t *testing.T) {
		c := newTestCount(t)
		matched := addTestItem(t, c, 10, 0)
		short := addTestItem(t, c, 20, 0)
		require.NoError(t, c.Start())

		require.NoError(t, c.RecordCount(itemIDFor(c, matched), decimal.NewFromInt(10), ""))
		require.NoError(t, c.RecordCount(itemIDFor(c, short), decimal.NewFromInt(18), ""))

		adjustable := c.AdjustableItems()
		require.Len(t, adjustable, 1)
		assert.Equal(t, short, adjustable[0].ProductID)
	})
}

func TestStockCountSummary(t *testing.T) {
	t.Run("aggregates differences", func(t *testing.T) {
		c := newTestCount(t)
		over := addTestItem(t, c, 10, 2)
		under := addTestItem(t, c, 100, 2)
		exact := addTestItem(t, c, 30, 2)
		require.NoError(t, c.Start())

		require.NoError(t, c.RecordCount(itemIDFor(c, over), decimal.NewFromInt(13), ""))
		require.NoError(t, c.RecordCount(itemIDFor(c, under), decimal.NewFromInt(92), ""))
		require.NoError(t, c.RecordCount(itemIDFor(c, exact), decimal.NewFromInt(30), ""))

		summary := c.Summary()
		assert.Equal(t, 3, summary.TotalItems)
		assert.Equal(t, 3, summary.CountedItems)
		assert.Equal(t, 1, summary.ItemsWithNoDifference)
		assert.Equal(t, 1, summary.ItemsWithPositiveDiff)
		assert.Equal(t, 1, summary.ItemsWithNegativeDiff)
		assert.True(t, summary.TotalPositiveDifference.Equal(decimal.NewFromInt(3)))
		assert.True(t, summary.TotalNegativeDifference.Equal(decimal.NewFromInt(8)))
		assert.True(t, summary.NetDifference.Equal(decimal.NewFromInt(-5)))
		assert.True(t, summary.ValueImpact.Equal(decimal.NewFromInt(-10)))
		assert.False(t, summary.ValueImpactEstimated)
	})

	t.Run("flags estimated value impact when cost data missing", func(t *testing.T) {
		c := newTestCount(t)
		pid := addTestItem(t, c, 100, 0)
		require.NoError(t, c.Start())
		require.NoError(t, c.RecordCount(itemIDFor(c, pid), decimal.NewFromInt(92), ""))

		summary := c.Summary()
		assert.Equal(t, 1, summary.ItemsWithNegativeDiff)
		assert.True(t, summary.TotalNegativeDifference.Equal(decimal.NewFromInt(8)))
		assert.True(t, summary.NetDifference.Equal(decimal.NewFromInt(-8)))
		assert.True(t, summary.ValueImpact.Equal(decimal.NewFromInt(-8)))
		assert.True(t, summary.ValueImpactEstimated)
	})
}
