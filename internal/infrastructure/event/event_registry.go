package event

import (
	appinventory "github.com/stocker/inventory/internal/application/inventory"
	"github.com/stocker/inventory/internal/domain/inventory"
)

// RegisterAllEvents registers all event types with the serializer so
// consumers can deserialize events from their stored JSON form.
func RegisterAllEvents(serializer *EventSerializer) {
	// Inventory domain - ledger events
	serializer.Register(inventory.EventTypeStockMovementPosted, &inventory.StockMovementPostedEvent{})
	serializer.Register(inventory.EventTypeStockMovementReversed, &inventory.StockMovementReversedEvent{})

	// Inventory domain - reservation events
	serializer.Register(inventory.EventTypeStockReserved, &inventory.StockReservedEvent{})
	serializer.Register(inventory.EventTypeReservationReleased, &inventory.ReservationReleasedEvent{})
	serializer.Register(inventory.EventTypeReservationExpired, &inventory.ReservationExpiredEvent{})
	serializer.Register(inventory.EventTypeReservationFulfilled, &inventory.ReservationFulfilledEvent{})

	// Inventory domain - count and snapshot events
	serializer.Register(inventory.EventTypeStockCountCompleted, &inventory.StockCountCompletedEvent{})
	serializer.Register(inventory.EventTypeStockItemCostChanged, &inventory.StockItemCostChangedEvent{})
	serializer.Register(inventory.EventTypeStockBelowMinimum, &inventory.StockBelowMinimumEvent{})

	// Integration events consumed from other services
	serializer.Register(appinventory.EventTypeSalesOrderCreated, &appinventory.SalesOrderCreatedEvent{})
	serializer.Register(appinventory.EventTypeDealWon, &appinventory.DealWonEvent{})
}
