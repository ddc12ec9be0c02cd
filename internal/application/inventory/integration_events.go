package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// Integration event type constants. These events originate in other
// modules (Sales, CRM) and arrive over the broker with at-least-once
// delivery; the handlers below must stay safe under redelivery.
const (
	EventTypeSalesOrderCreated = "SalesOrderCreated"
	EventTypeDealWon           = "DealWon"
)

// SalesOrderItem is one line of a created sales order
type SalesOrderItem struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"` // nil for service lines
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// SalesOrderCreatedEvent is published by the Sales module when an order is placed
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID        `json:"order_id"`
	OrderNumber  string           `json:"order_number"`
	CustomerName string           `json:"customer_name"`
	Items        []SalesOrderItem `json:"items"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(tenantID, orderID uuid.UUID, orderNumber, customerName string, items []SalesOrderItem) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, "SalesOrder", orderID, tenantID),
		OrderID:         orderID,
		OrderNumber:     orderNumber,
		CustomerName:    customerName,
		Items:           items,
	}
}

// EventType returns the event type name
func (e *SalesOrderCreatedEvent) EventType() string {
	return EventTypeSalesOrderCreated
}

// DealProduct is one product line of a won deal
type DealProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// DealWonEvent is published by the CRM module when a deal closes as won
type DealWonEvent struct {
	shared.BaseDomainEvent
	DealID     uuid.UUID     `json:"deal_id"`
	CustomerID uuid.UUID     `json:"customer_id"`
	Products   []DealProduct `json:"products"`
}

// NewDealWonEvent creates a new DealWonEvent
func NewDealWonEvent(tenantID, dealID, customerID uuid.UUID, products []DealProduct) *DealWonEvent {
	return &DealWonEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDealWon, "Deal", dealID, tenantID),
		DealID:          dealID,
		CustomerID:      customerID,
		Products:        products,
	}
}

// EventType returns the event type name
func (e *DealWonEvent) EventType() string {
	return EventTypeDealWon
}
