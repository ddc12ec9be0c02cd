package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stocker/inventory/internal/domain/shared"
)

// WarehouseStatus represents the status of a warehouse
type WarehouseStatus string

const (
	WarehouseStatusActive   WarehouseStatus = "active"
	WarehouseStatusInactive WarehouseStatus = "inactive"
)

// Warehouse represents a physical or logical stock location
type Warehouse struct {
	shared.TenantAggregateRoot
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouse_tenant_code,priority:2"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Address   string          `gorm:"type:text"`
	IsDefault bool            `gorm:"not null;default:false"`
	Status    WarehouseStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(tenantID uuid.UUID, code, name string) (*Warehouse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_CODE", "Warehouse code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_NAME", "Warehouse name is required")
	}

	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              WarehouseStatusActive,
	}, nil
}

// IsActive returns whether the warehouse can receive stock operations
func (w *Warehouse) IsActive() bool {
	return w.Status == WarehouseStatusActive
}

// MarkDefault flags this warehouse as the tenant default
func (w *Warehouse) MarkDefault() {
	w.IsDefault = true
	w.Touch()
}
