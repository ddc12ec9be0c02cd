package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeStockItem        = "StockItem"
	AggregateTypeStockMovement    = "StockMovement"
	AggregateTypeStockReservation = "StockReservation"
	AggregateTypeStockCount       = "StockCount"
)

// Event type constants
const (
	EventTypeStockMovementPosted   = "StockMovementPosted"
	EventTypeStockMovementReversed = "StockMovementReversed"
	EventTypeStockReserved         = "StockReserved"
	EventTypeReservationReleased   = "ReservationReleased"
	EventTypeReservationExpired    = "ReservationExpired"
	EventTypeReservationFulfilled  = "ReservationFulfilled"
	EventTypeStockCountCompleted   = "StockCountCompleted"
	EventTypeStockItemCostChanged  = "StockItemCostChanged"
	EventTypeStockBelowMinimum     = "StockBelowMinimum"
)

// StockMovementPostedEvent is raised when a movement is appended to the ledger
type StockMovementPostedEvent struct {
	shared.BaseDomainEvent
	MovementID     uuid.UUID       `json:"movement_id"`
	DocumentNumber string          `json:"document_number"`
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	MovementType   MovementType    `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// NewStockMovementPostedEvent creates a new StockMovementPostedEvent
func NewStockMovementPostedEvent(m *StockMovement) *StockMovementPostedEvent {
	return &StockMovementPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementPosted, AggregateTypeStockMovement, m.ID, m.TenantID),
		MovementID:      m.ID,
		DocumentNumber:  m.DocumentNumber,
		ProductID:       m.ProductID,
		WarehouseID:     m.WarehouseID,
		MovementType:    m.MovementType,
		Quantity:        m.Quantity,
	}
}

// EventType returns the event type name
func (e *StockMovementPostedEvent) EventType() string {
	return EventTypeStockMovementPosted
}

// StockMovementReversedEvent is raised when a movement is offset by a reversal
type StockMovementReversedEvent struct {
	shared.BaseDomainEvent
	OriginalMovementID uuid.UUID `json:"original_movement_id"`
	ReversalMovementID uuid.UUID `json:"reversal_movement_id"`
	ProductID          uuid.UUID `json:"product_id"`
	WarehouseID        uuid.UUID `json:"warehouse_id"`
}

// NewStockMovementReversedEvent creates a new StockMovementReversedEvent
func NewStockMovementReversedEvent(original, reversal *StockMovement) *StockMovementReversedEvent {
	return &StockMovementReversedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeStockMovementReversed, AggregateTypeStockMovement, original.ID, original.TenantID),
		OriginalMovementID: original.ID,
		ReversalMovementID: reversal.ID,
		ProductID:          original.ProductID,
		WarehouseID:        original.WarehouseID,
	}
}

// EventType returns the event type name
func (e *StockMovementReversedEvent) EventType() string {
	return EventTypeStockMovementReversed
}

// StockReservedEvent is raised when a reservation is created
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ReservationID     uuid.UUID       `json:"reservation_id"`
	ReservationNumber string          `json:"reservation_number"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReferenceType     string          `json:"reference_type,omitempty"`
	ReferenceID       string          `json:"reference_id,omitempty"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(r *StockReservation) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		Quantity:          r.Quantity,
		ReferenceType:     r.ReferenceType,
		ReferenceID:       r.ReferenceID,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// ReservationReleasedEvent is raised when a reservation is explicitly released
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	ReservationID    uuid.UUID       `json:"reservation_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	ReleasedQuantity decimal.Decimal `json:"released_quantity"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(r *StockReservation, released decimal.Decimal) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:    r.ID,
		ProductID:        r.ProductID,
		WarehouseID:      r.WarehouseID,
		ReleasedQuantity: released,
	}
}

// EventType returns the event type name
func (e *ReservationReleasedEvent) EventType() string {
	return EventTypeReservationReleased
}

// ReservationExpiredEvent is raised when the expiration sweep closes a reservation
type ReservationExpiredEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	FreedQuantity decimal.Decimal `json:"freed_quantity"`
}

// NewReservationExpiredEvent creates a new ReservationExpiredEvent
func NewReservationExpiredEvent(r *StockReservation, freed decimal.Decimal) *ReservationExpiredEvent {
	return &ReservationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationExpired, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		WarehouseID:     r.WarehouseID,
		FreedQuantity:   freed,
	}
}

// EventType returns the event type name
func (e *ReservationExpiredEvent) EventType() string {
	return EventTypeReservationExpired
}

// ReservationFulfilledEvent is raised when reserved goods actually ship
type ReservationFulfilledEvent struct {
	shared.BaseDomainEvent
	ReservationID     uuid.UUID       `json:"reservation_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	FulfilledQuantity decimal.Decimal `json:"fulfilled_quantity"`
}

// NewReservationFulfilledEvent creates a new ReservationFulfilledEvent
func NewReservationFulfilledEvent(r *StockReservation, quantity decimal.Decimal) *ReservationFulfilledEvent {
	return &ReservationFulfilledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReservationFulfilled, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:     r.ID,
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		FulfilledQuantity: quantity,
	}
}

// EventType returns the event type name
func (e *ReservationFulfilledEvent) EventType() string {
	return EventTypeReservationFulfilled
}

// StockCountCompletedEvent is raised when a count reaches COMPLETED
type StockCountCompletedEvent struct {
	shared.BaseDomainEvent
	StockCountID uuid.UUID `json:"stock_count_id"`
	CountNumber  string    `json:"count_number"`
	WarehouseID  uuid.UUID `json:"warehouse_id"`
	AutoAdjust   bool      `json:"auto_adjust"`
}

// NewStockCountCompletedEvent creates a new StockCountCompletedEvent
func NewStockCountCompletedEvent(c *StockCount) *StockCountCompletedEvent {
	return &StockCountCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCountCompleted, AggregateTypeStockCount, c.ID, c.TenantID),
		StockCountID:    c.ID,
		CountNumber:     c.CountNumber,
		WarehouseID:     c.WarehouseID,
		AutoAdjust:      c.AutoAdjust,
	}
}

// EventType returns the event type name
func (e *StockCountCompletedEvent) EventType() string {
	return EventTypeStockCountCompleted
}

// StockItemCostChangedEvent is raised when the moving average cost changes
type StockItemCostChangedEvent struct {
	shared.BaseDomainEvent
	StockItemID uuid.UUID       `json:"stock_item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	OldCost     decimal.Decimal `json:"old_cost"`
	NewCost     decimal.Decimal `json:"new_cost"`
}

// NewStockItemCostChangedEvent creates a new StockItemCostChangedEvent
func NewStockItemCostChangedEvent(i *StockItem, oldCost, newCost decimal.Decimal) *StockItemCostChangedEvent {
	return &StockItemCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockItemCostChanged, AggregateTypeStockItem, i.ID, i.TenantID),
		StockItemID:     i.ID,
		ProductID:       i.ProductID,
		WarehouseID:     i.WarehouseID,
		OldCost:         oldCost,
		NewCost:         newCost,
	}
}

// EventType returns the event type name
func (e *StockItemCostChangedEvent) EventType() string {
	return EventTypeStockItemCostChanged
}

// StockBelowMinimumEvent is raised when on-hand falls under the alert threshold
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	StockItemID    uuid.UUID       `json:"stock_item_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	OnHandQuantity decimal.Decimal `json:"on_hand_quantity"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
}

// NewStockBelowMinimumEvent creates a new StockBelowMinimumEvent
func NewStockBelowMinimumEvent(i *StockItem) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeStockItem, i.ID, i.TenantID),
		StockItemID:     i.ID,
		ProductID:       i.ProductID,
		WarehouseID:     i.WarehouseID,
		OnHandQuantity:  i.OnHandQuantity,
		MinQuantity:     i.MinQuantity,
	}
}

// EventType returns the event type name
func (e *StockBelowMinimumEvent) EventType() string {
	return EventTypeStockBelowMinimum
}
