package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/inventory"
)

// PostMovementInput carries the data required to append a ledger entry
type PostMovementInput struct {
	TenantID        uuid.UUID
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	MovementType    inventory.MovementType
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	FromLocationID  *uuid.UUID
	ToLocationID    *uuid.UUID
	ReferenceType   string
	ReferenceID     string
	ReferenceNumber string
	SerialNumber    string
	LotNumber       string
	Description     string
	OperatorID      *uuid.UUID
}

// TransferInput carries the data for a stock transfer between locations
// of one warehouse. Warehouse totals are unaffected; the movement records
// the location pair.
type TransferInput struct {
	TenantID        uuid.UUID
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	FromLocationID  uuid.UUID
	ToLocationID    uuid.UUID
	Quantity        decimal.Decimal
	ReferenceType   string
	ReferenceID     string
	ReferenceNumber string
	Description     string
}

// ReserveInput carries the data required to create a reservation
type ReserveInput struct {
	TenantID        uuid.UUID
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	Quantity        decimal.Decimal
	ReservationType inventory.ReservationType
	TTL             time.Duration
	ReferenceType   string
	ReferenceID     string
	ReferenceNumber string
	Notes           string
	CreatedBy       *uuid.UUID
}

// CreateCountInput carries the data required to open a stock count
type CreateCountInput struct {
	TenantID    uuid.UUID
	WarehouseID uuid.UUID
	CountType   inventory.StockCountType
	AutoAdjust  bool
	ProductIDs  []uuid.UUID // empty means all products with stock in the warehouse
}

// LineOutcomeStatus tags the result of one event line
type LineOutcomeStatus string

const (
	LineOutcomeReserved          LineOutcomeStatus = "RESERVED"
	LineOutcomeAlreadyReserved   LineOutcomeStatus = "ALREADY_RESERVED"
	LineOutcomeInsufficientStock LineOutcomeStatus = "INSUFFICIENT_STOCK"
	LineOutcomeProductNotFound   LineOutcomeStatus = "PRODUCT_NOT_FOUND"
	LineOutcomeSkipped           LineOutcomeStatus = "SKIPPED"
	LineOutcomeError             LineOutcomeStatus = "ERROR"
)

// LineOutcome records what happened to one line of an inbound event.
// Per-line failures are accumulated, not raised: one bad line must not
// abort the rest of the batch.
type LineOutcome struct {
	ProductCode   string            `json:"product_code"`
	ProductName   string            `json:"product_name,omitempty"`
	Quantity      decimal.Decimal   `json:"quantity"`
	Status        LineOutcomeStatus `json:"status"`
	ReservationID *uuid.UUID        `json:"reservation_id,omitempty"`
	Shortfall     decimal.Decimal   `json:"shortfall,omitempty"`
	Reason        string            `json:"reason,omitempty"`
}

// BatchSummary aggregates line outcomes for one consumed event
type BatchSummary struct {
	ReferenceType string        `json:"reference_type"`
	ReferenceID   string        `json:"reference_id"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	Outcomes      []LineOutcome `json:"outcomes"`
}

// Add records one line outcome and updates the counters
func (s *BatchSummary) Add(outcome LineOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Status {
	case LineOutcomeReserved, LineOutcomeAlreadyReserved:
		s.Succeeded++
	case LineOutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}
