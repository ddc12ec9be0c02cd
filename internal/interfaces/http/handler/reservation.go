package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocker/inventory/internal/domain/inventory"
)

// ReservationHandler exposes the read-only reservation endpoints
type ReservationHandler struct {
	BaseHandler
	reservations inventory.StockReservationRepository
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservations inventory.StockReservationRepository) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// ReservationResponse represents a stock reservation in API responses
// @Description Soft lock against net availability with expiry and reference information
type ReservationResponse struct {
	ID                string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ReservationNumber string  `json:"reservation_number" example:"RSV-20260115-0001"`
	ProductID         string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	WarehouseID       string  `json:"warehouse_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity          float64 `json:"quantity" example:"10.0"`
	FulfilledQuantity float64 `json:"fulfilled_quantity" example:"0.0"`
	RemainingQuantity float64 `json:"remaining_quantity" example:"10.0"`
	ReservationType   string  `json:"reservation_type" example:"SALES_ORDER"`
	Status            string  `json:"status" example:"ACTIVE"`
	ReferenceType     string  `json:"reference_type,omitempty" example:"SALES_ORDER"`
	ReferenceID       string  `json:"reference_id,omitempty"`
	ReferenceNumber   string  `json:"reference_number,omitempty" example:"SO-2026-001"`
	Notes             string  `json:"notes,omitempty"`
	CreatedBy         string  `json:"created_by,omitempty"`
	ExpiresAt         string  `json:"expires_at" example:"2026-02-14T10:30:00Z"`
	ClosedAt          string  `json:"closed_at,omitempty"`
	CreatedAt         string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

func toReservationResponse(r *inventory.StockReservation) ReservationResponse {
	return ReservationResponse{
		ID:                r.ID.String(),
		ReservationNumber: r.ReservationNumber,
		ProductID:         r.ProductID.String(),
		WarehouseID:       r.WarehouseID.String(),
		Quantity:          r.Quantity.InexactFloat64(),
		FulfilledQuantity: r.FulfilledQuantity.InexactFloat64(),
		RemainingQuantity: r.RemainingQuantity().InexactFloat64(),
		ReservationType:   string(r.ReservationType),
		Status:            string(r.Status),
		ReferenceType:     r.ReferenceType,
		ReferenceID:       r.ReferenceID,
		ReferenceNumber:   r.ReferenceNumber,
		Notes:             r.Notes,
		CreatedBy:         uuidPtrString(r.CreatedBy),
		ExpiresAt:         r.ExpiresAt.Format(timeFormat),
		ClosedAt:          formatTimePtr(r.ClosedAt),
		CreatedAt:         r.CreatedAt.Format(timeFormat),
	}
}

// Get godoc
// @Summary      Get a reservation
// @Description  Returns one reservation by ID
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=ReservationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	reservation, err := h.reservations.FindByID(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReservationResponse(reservation))
}

// GetByNumber godoc
// @Summary      Get a reservation by number
// @Description  Returns one reservation by its reservation number
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        number path string true "Reservation number" example(RSV-20260115-0001)
// @Success      200 {object} dto.Response{data=ReservationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/reservations/number/{number} [get]
func (h *ReservationHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reservation, err := h.reservations.FindByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReservationResponse(reservation))
}

// ListActive godoc
// @Summary      List active reservations
// @Description  Lists reservations still counting against availability for a product-warehouse pair
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        product_id query string true "Product ID" format(uuid)
// @Param        warehouse_id query string true "Warehouse ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ReservationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/reservations [get]
func (h *ReservationHandler) ListActive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	reservations, err := h.reservations.FindActiveByProductAndWarehouse(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, toReservationResponse(&reservations[i]))
	}
	h.Success(c, responses)
}
