package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypePurchase           MovementType = "PURCHASE"
	MovementTypeSales              MovementType = "SALES"
	MovementTypeProduction         MovementType = "PRODUCTION"
	MovementTypeConsumption        MovementType = "CONSUMPTION"
	MovementTypeSalesReturn        MovementType = "SALES_RETURN"
	MovementTypePurchaseReturn     MovementType = "PURCHASE_RETURN"
	MovementTypeTransfer           MovementType = "TRANSFER"
	MovementTypeAdjustmentIncrease MovementType = "ADJUSTMENT_INCREASE"
	MovementTypeAdjustmentDecrease MovementType = "ADJUSTMENT_DECREASE"
	MovementTypeOpening            MovementType = "OPENING"
	MovementTypeCounting           MovementType = "COUNTING"
	MovementTypeDamage             MovementType = "DAMAGE"
	MovementTypeLoss               MovementType = "LOSS"
	MovementTypeFound              MovementType = "FOUND"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeSales,
		MovementTypeProduction,
		MovementTypeConsumption,
		MovementTypeSalesReturn,
		MovementTypePurchaseReturn,
		MovementTypeTransfer,
		MovementTypeAdjustmentIncrease,
		MovementTypeAdjustmentDecrease,
		MovementTypeOpening,
		MovementTypeCounting,
		MovementTypeDamage,
		MovementTypeLoss,
		MovementTypeFound:
		return true
	}
	return false
}

// IsInbound returns true if this movement type increases on-hand quantity
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeProduction,
		MovementTypeSalesReturn,
		MovementTypeAdjustmentIncrease,
		MovementTypeOpening,
		MovementTypeFound:
		return true
	}
	return false
}

// IsOutbound returns true if this movement type decreases on-hand quantity
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementTypeSales,
		MovementTypeConsumption,
		MovementTypePurchaseReturn,
		MovementTypeAdjustmentDecrease,
		MovementTypeDamage,
		MovementTypeLoss:
		return true
	}
	return false
}

// InboundMovementTypes lists every type that increases on-hand quantity
func InboundMovementTypes() []MovementType {
	return []MovementType{
		MovementTypePurchase,
		MovementTypeProduction,
		MovementTypeSalesReturn,
		MovementTypeAdjustmentIncrease,
		MovementTypeOpening,
		MovementTypeFound,
	}
}

// OutboundMovementTypes lists every type that decreases on-hand quantity
func OutboundMovementTypes() []MovementType {
	return []MovementType{
		MovementTypeSales,
		MovementTypeConsumption,
		MovementTypePurchaseReturn,
		MovementTypeAdjustmentDecrease,
		MovementTypeDamage,
		MovementTypeLoss,
	}
}

// Opposite returns the movement type that offsets this one. Used when
// posting the reversing entry for an erroneous movement.
func (t MovementType) Opposite() MovementType {
	switch t {
	case MovementTypePurchase:
		return MovementTypePurchaseReturn
	case MovementTypePurchaseReturn:
		return MovementTypePurchase
	case MovementTypeSales:
		return MovementTypeSalesReturn
	case MovementTypeSalesReturn:
		return MovementTypeSales
	case MovementTypeProduction:
		return MovementTypeConsumption
	case MovementTypeConsumption:
		return MovementTypeProduction
	case MovementTypeAdjustmentIncrease:
		return MovementTypeAdjustmentDecrease
	case MovementTypeAdjustmentDecrease:
		return MovementTypeAdjustmentIncrease
	case MovementTypeOpening:
		return MovementTypeAdjustmentDecrease
	case MovementTypeFound:
		return MovementTypeLoss
	case MovementTypeDamage, MovementTypeLoss:
		return MovementTypeFound
	default:
		// Transfer and Counting reverse as themselves with locations swapped
		return t
	}
}

// StockMovement is an immutable ledger entry recording one quantity change.
// Once created, its quantity/type/product/warehouse are never mutated;
// corrections are made by posting an offsetting movement and flagging the
// original as reversed.
type StockMovement struct {
	shared.BaseEntity
	TenantID                uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_movement_tenant_doc,priority:1;index:idx_movement_tenant_time,priority:1"`
	DocumentNumber          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_movement_tenant_doc,priority:2"`
	ProductID               uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_warehouse,priority:1"`
	WarehouseID             uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_warehouse,priority:2"`
	FromLocationID          *uuid.UUID      `gorm:"type:uuid"`
	ToLocationID            *uuid.UUID      `gorm:"type:uuid"`
	MovementType            MovementType    `gorm:"type:varchar(30);not null;index"`
	Quantity                decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Always positive, direction implied by type
	UnitCost                decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SerialNumber            string          `gorm:"type:varchar(50)"`
	LotNumber               string          `gorm:"type:varchar(50)"`
	ReferenceDocumentType   string          `gorm:"type:varchar(50);index:idx_movement_reference,priority:1"`
	ReferenceDocumentID     string          `gorm:"type:varchar(50);index:idx_movement_reference,priority:2"`
	ReferenceDocumentNumber string          `gorm:"type:varchar(50)"`
	Description             string          `gorm:"type:varchar(500)"`
	OperatorID              *uuid.UUID      `gorm:"type:uuid"`
	IsReversed              bool            `gorm:"not null;default:false"`
	ReversalMovementID      *uuid.UUID      `gorm:"type:uuid"`
	MovementDate            time.Time       `gorm:"type:timestamptz;not null;index:idx_movement_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement
func NewStockMovement(
	tenantID uuid.UUID,
	documentNumber string,
	productID uuid.UUID,
	warehouseID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.IsNegative() || quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		DocumentNumber: documentNumber,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		MovementType:   movementType,
		Quantity:       quantity,
		UnitCost:       unitCost,
		TotalCost:      quantity.Mul(unitCost),
		MovementDate:   time.Now(),
	}, nil
}

// WithLocations sets the from/to locations for a transfer movement
func (m *StockMovement) WithLocations(from, to *uuid.UUID) *StockMovement {
	m.FromLocationID = from
	m.ToLocationID = to
	return m
}

// WithReference sets the originating document reference
func (m *StockMovement) WithReference(docType, docID, docNumber string) *StockMovement {
	m.ReferenceDocumentType = docType
	m.ReferenceDocumentID = docID
	m.ReferenceDocumentNumber = docNumber
	return m
}

// WithSerialLot sets serial and lot tracking attributes
func (m *StockMovement) WithSerialLot(serialNumber, lotNumber string) *StockMovement {
	m.SerialNumber = serialNumber
	m.LotNumber = lotNumber
	return m
}

// WithDescription sets a free-text description
func (m *StockMovement) WithDescription(description string) *StockMovement {
	m.Description = description
	return m
}

// WithOperator records who triggered the movement
func (m *StockMovement) WithOperator(operatorID *uuid.UUID) *StockMovement {
	m.OperatorID = operatorID
	return m
}

// WithMovementDate overrides the movement timestamp
func (m *StockMovement) WithMovementDate(date time.Time) *StockMovement {
	m.MovementDate = date
	return m
}

// SignedQuantity returns the quantity with the sign implied by the movement
// type. Transfer and Counting movements report zero net effect on the
// warehouse total; their effect is carried by the location pair.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	switch {
	case m.MovementType.IsInbound():
		return m.Quantity
	case m.MovementType.IsOutbound():
		return m.Quantity.Neg()
	default:
		return decimal.Zero
	}
}

// Reverse builds the offsetting movement and flags this one as reversed.
// Returns an error if the movement was already reversed.
func (m *StockMovement) Reverse(documentNumber, reason string) (*StockMovement, error) {
	if m.IsReversed {
		return nil, ErrMovementAlreadyReversed
	}

	reversal, err := NewStockMovement(
		m.TenantID,
		documentNumber,
		m.ProductID,
		m.WarehouseID,
		m.MovementType.Opposite(),
		m.Quantity,
		m.UnitCost,
	)
	if err != nil {
		return nil, err
	}
	reversal.WithReference("STOCK_MOVEMENT", m.ID.String(), m.DocumentNumber)
	reversal.WithDescription(reason)
	if m.MovementType == MovementTypeTransfer {
		reversal.WithLocations(m.ToLocationID, m.FromLocationID)
	}

	m.IsReversed = true
	m.ReversalMovementID = &reversal.ID
	m.Touch()

	return reversal, nil
}
