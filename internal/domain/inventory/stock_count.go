package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// StockCountStatus represents the status of a stock count document
type StockCountStatus string

const (
	StockCountStatusDraft      StockCountStatus = "DRAFT"
	StockCountStatusInProgress StockCountStatus = "IN_PROGRESS"
	StockCountStatusCompleted  StockCountStatus = "COMPLETED"
	StockCountStatusCancelled  StockCountStatus = "CANCELLED"
)

// String returns the string representation of StockCountStatus
func (s StockCountStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s StockCountStatus) CanTransitionTo(target StockCountStatus) bool {
	switch s {
	case StockCountStatusDraft:
		return target == StockCountStatusInProgress || target == StockCountStatusCancelled
	case StockCountStatusInProgress:
		return target == StockCountStatusCompleted || target == StockCountStatusCancelled
	case StockCountStatusCompleted, StockCountStatusCancelled:
		return false // Terminal states
	}
	return false
}

// StockCountType represents the scope of a physical count
type StockCountType string

const (
	StockCountTypeFull  StockCountType = "FULL"
	StockCountTypeCycle StockCountType = "CYCLE"
	StockCountTypeSpot  StockCountType = "SPOT"
)

// IsValid returns true if the count type is valid
func (t StockCountType) IsValid() bool {
	switch t {
	case StockCountTypeFull, StockCountTypeCycle, StockCountTypeSpot:
		return true
	}
	return false
}

// StockCountItem represents one product line in a stock count.
// SystemQuantity is frozen at the moment the item is added and never
// recalculated; the difference is derived purely from the two stored
// quantities.
type StockCountItem struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	StockCountID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID        `gorm:"type:uuid;not null"`
	ProductCode     string           `gorm:"type:varchar(50)"`
	ProductName     string           `gorm:"type:varchar(200)"`
	Unit            string           `gorm:"type:varchar(20)"`
	SystemQuantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CountedQuantity *decimal.Decimal `gorm:"type:decimal(18,4)"`
	UnitCost        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Remark          string           `gorm:"type:varchar(255)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (StockCountItem) TableName() string {
	return "stock_count_items"
}

// IsCounted returns true once a physical count has been recorded
func (i *StockCountItem) IsCounted() bool {
	return i.CountedQuantity != nil
}

// Difference returns counted minus system quantity, zero until counted
func (i *StockCountItem) Difference() decimal.Decimal {
	if i.CountedQuantity == nil {
		return decimal.Zero
	}
	return i.CountedQuantity.Sub(i.SystemQuantity)
}

// HasDifference returns true if the counted quantity differs from system
func (i *StockCountItem) HasDifference() bool {
	return i.IsCounted() && !i.Difference().IsZero()
}

// recordCount stores the physical count for this item
func (i *StockCountItem) recordCount(countedQty decimal.Decimal, remark string) error {
	if countedQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}

	i.CountedQuantity = &countedQty
	i.Remark = remark
	i.UpdatedAt = time.Now()

	return nil
}

// StockCountSummary aggregates the outcome of a count
type StockCountSummary struct {
	TotalItems              int             `json:"total_items"`
	CountedItems            int             `json:"counted_items"`
	ItemsWithNoDifference   int             `json:"items_with_no_difference"`
	ItemsWithPositiveDiff   int             `json:"items_with_positive_difference"`
	ItemsWithNegativeDiff   int             `json:"items_with_negative_difference"`
	TotalPositiveDifference decimal.Decimal `json:"total_positive_difference"`
	TotalNegativeDifference decimal.Decimal `json:"total_negative_difference"`
	NetDifference           decimal.Decimal `json:"net_difference"`
	ValueImpact             decimal.Decimal `json:"value_impact"`
	// ValueImpactEstimated is set when one or more items carry a zero unit
	// cost, in which case their contribution falls back to the raw quantity
	// delta rather than a monetary amount.
	ValueImpactEstimated bool `json:"value_impact_estimated"`
}

// StockCount represents a physical inventory count document.
// State machine: Draft -> InProgress -> {Completed, Cancelled}.
type StockCount struct {
	shared.TenantAggregateRoot
	CountNumber  string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_count_tenant_number,priority:2"`
	WarehouseID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	LocationID   *uuid.UUID       `gorm:"type:uuid"`
	CountType    StockCountType   `gorm:"type:varchar(20);not null"`
	Status       StockCountStatus `gorm:"type:varchar(20);not null;index"`
	AutoAdjust   bool             `gorm:"not null;default:false"`
	CountDate    time.Time        `gorm:"type:timestamptz;not null"`
	StartedAt    *time.Time       `gorm:"type:timestamptz"`
	CompletedAt  *time.Time       `gorm:"type:timestamptz"`
	CancelledAt  *time.Time       `gorm:"type:timestamptz"`
	CancelReason string           `gorm:"type:varchar(255)"`
	Remark       string           `gorm:"type:varchar(500)"`
	Items        []StockCountItem `gorm:"foreignKey:StockCountID;references:ID"`
}

// TableName returns the table name for GORM
func (StockCount) TableName() string {
	return "stock_counts"
}

// NewStockCount creates a new stock count in DRAFT status
func NewStockCount(
	tenantID uuid.UUID,
	countNumber string,
	warehouseID uuid.UUID,
	countType StockCountType,
	autoAdjust bool,
) (*StockCount, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if countNumber == "" {
		return nil, shared.NewDomainError("INVALID_COUNT_NUMBER", "Count number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !countType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COUNT_TYPE", "Invalid count type")
	}

	return &StockCount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CountNumber:         countNumber,
		WarehouseID:         warehouseID,
		CountType:           countType,
		Status:              StockCountStatusDraft,
		AutoAdjust:          autoAdjust,
		CountDate:           time.Now(),
		Items:               make([]StockCountItem, 0),
	}, nil
}

// AddItem adds a product line with its frozen system quantity.
// Only allowed in DRAFT status.
func (c *StockCount) AddItem(productID uuid.UUID, productCode, productName, unit string, systemQty, unitCost decimal.Decimal) error {
	if c.Status != StockCountStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only add items in DRAFT status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if systemQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "System quantity cannot be negative")
	}

	for _, item := range c.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in stock count")
		}
	}

	now := time.Now()
	c.Items = append(c.Items, StockCountItem{
		ID:             uuid.New(),
		StockCountID:   c.ID,
		ProductID:      productID,
		ProductCode:    productCode,
		ProductName:    productName,
		Unit:           unit,
		SystemQuantity: systemQty,
		UnitCost:       unitCost,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	c.Touch()
	c.IncrementVersion()

	return nil
}

// Start transitions the count to IN_PROGRESS
func (c *StockCount) Start() error {
	if !c.Status.CanTransitionTo(StockCountStatusInProgress) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to IN_PROGRESS", c.Status))
	}
	if len(c.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot start counting with no items")
	}

	now := time.Now()
	c.Status = StockCountStatusInProgress
	c.StartedAt = &now
	c.Touch()
	c.IncrementVersion()

	return nil
}

// RecordCount records the physical count for one item.
// Only IN_PROGRESS counts accept recordings.
func (c *StockCount) RecordCount(itemID uuid.UUID, countedQty decimal.Decimal, remark string) error {
	if c.Status != StockCountStatusInProgress {
		return ErrCountNotInProgress
	}

	for i := range c.Items {
		if c.Items[i].ID == itemID {
			if err := c.Items[i].recordCount(countedQty, remark); err != nil {
				return err
			}
			c.Touch()
			c.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found in stock count")
}

// Complete transitions the count to COMPLETED. All items must have been
// counted. The caller is responsible for posting adjustment movements for
// differing items when AutoAdjust is set (see AdjustableItems).
func (c *StockCount) Complete() error {
	if !c.Status.CanTransitionTo(StockCountStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to COMPLETED", c.Status))
	}
	for i := range c.Items {
		if !c.Items[i].IsCounted() {
			return shared.NewDomainError("UNCOUNTED_ITEMS", "All items must be counted before completion")
		}
	}

	now := time.Now()
	c.Status = StockCountStatusCompleted
	c.CompletedAt = &now
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewStockCountCompletedEvent(c))

	return nil
}

// Cancel transitions the count to CANCELLED with a mandatory reason
func (c *StockCount) Cancel(reason string) error {
	if !c.Status.CanTransitionTo(StockCountStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to CANCELLED", c.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}

	now := time.Now()
	c.Status = StockCountStatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.Touch()
	c.IncrementVersion()

	return nil
}

// AdjustableItems returns the counted items whose difference is non-zero
func (c *StockCount) AdjustableItems() []StockCountItem {
	var items []StockCountItem
	for i := range c.Items {
		if c.Items[i].HasDifference() {
			items = append(items, c.Items[i])
		}
	}
	return items
}

// Summary aggregates the count outcome. Value impact multiplies each
// difference by the item's unit cost; items without cost data contribute
// their raw quantity delta and flip ValueImpactEstimated.
func (c *StockCount) Summary() StockCountSummary {
	summary := StockCountSummary{
		TotalItems:              len(c.Items),
		TotalPositiveDifference: decimal.Zero,
		TotalNegativeDifference: decimal.Zero,
		NetDifference:           decimal.Zero,
		ValueImpact:             decimal.Zero,
	}

	for i := range c.Items {
		item := &c.Items[i]
		if !item.IsCounted() {
			continue
		}
		summary.CountedItems++

		diff := item.Difference()
		switch {
		case diff.IsZero():
			summary.ItemsWithNoDifference++
		case diff.IsPositive():
			summary.ItemsWithPositiveDiff++
			summary.TotalPositiveDifference = summary.TotalPositiveDifference.Add(diff)
		default:
			summary.ItemsWithNegativeDiff++
			summary.TotalNegativeDifference = summary.TotalNegativeDifference.Add(diff.Abs())
		}
		summary.NetDifference = summary.NetDifference.Add(diff)

		if item.UnitCost.IsZero() {
			summary.ValueImpact = summary.ValueImpact.Add(diff)
			summary.ValueImpactEstimated = true
		} else {
			summary.ValueImpact = summary.ValueImpact.Add(diff.Mul(item.UnitCost))
		}
	}

	return summary
}
