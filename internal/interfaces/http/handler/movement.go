package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"github.com/stocker/inventory/internal/interfaces/http/middleware"
)

// MovementHandler exposes the read-only stock ledger endpoints
type MovementHandler struct {
	BaseHandler
	movements inventory.StockMovementRepository
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movements inventory.StockMovementRepository) *MovementHandler {
	return &MovementHandler{movements: movements}
}

// MovementResponse represents a stock movement in API responses
// @Description Immutable ledger entry with type, quantity, cost and reference information
type MovementResponse struct {
	ID                 string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DocumentNumber     string  `json:"document_number" example:"SM-20260115-0001"`
	ProductID          string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	WarehouseID        string  `json:"warehouse_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	FromLocationID     string  `json:"from_location_id,omitempty"`
	ToLocationID       string  `json:"to_location_id,omitempty"`
	MovementType       string  `json:"movement_type" example:"PURCHASE"`
	Quantity           float64 `json:"quantity" example:"50.0"`
	UnitCost           float64 `json:"unit_cost" example:"15.50"`
	TotalCost          float64 `json:"total_cost" example:"775.00"`
	SerialNumber       string  `json:"serial_number,omitempty"`
	LotNumber          string  `json:"lot_number,omitempty"`
	ReferenceType      string  `json:"reference_type,omitempty" example:"SALES_ORDER"`
	ReferenceID        string  `json:"reference_id,omitempty"`
	ReferenceNumber    string  `json:"reference_number,omitempty" example:"SO-2026-001"`
	Description        string  `json:"description,omitempty"`
	OperatorID         string  `json:"operator_id,omitempty"`
	IsReversed         bool    `json:"is_reversed" example:"false"`
	ReversalMovementID string  `json:"reversal_movement_id,omitempty"`
	MovementDate       string  `json:"movement_date" example:"2026-01-15T10:30:00Z"`
	CreatedAt          string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

// MovementListQuery holds the query parameters for listing movements
type MovementListQuery struct {
	ProductID     string `form:"product_id" binding:"omitempty,uuid"`
	WarehouseID   string `form:"warehouse_id" binding:"omitempty,uuid"`
	ReferenceType string `form:"reference_type"`
	ReferenceID   string `form:"reference_id"`
	From          string `form:"from"`
	To            string `form:"to"`
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID.String(),
		DocumentNumber:     m.DocumentNumber,
		ProductID:          m.ProductID.String(),
		WarehouseID:        m.WarehouseID.String(),
		FromLocationID:     uuidPtrString(m.FromLocationID),
		ToLocationID:       uuidPtrString(m.ToLocationID),
		MovementType:       string(m.MovementType),
		Quantity:           m.Quantity.InexactFloat64(),
		UnitCost:           m.UnitCost.InexactFloat64(),
		TotalCost:          m.TotalCost.InexactFloat64(),
		SerialNumber:       m.SerialNumber,
		LotNumber:          m.LotNumber,
		ReferenceType:      m.ReferenceDocumentType,
		ReferenceID:        m.ReferenceDocumentID,
		ReferenceNumber:    m.ReferenceDocumentNumber,
		Description:        m.Description,
		OperatorID:         uuidPtrString(m.OperatorID),
		IsReversed:         m.IsReversed,
		ReversalMovementID: uuidPtrString(m.ReversalMovementID),
		MovementDate:       m.MovementDate.Format(timeFormat),
		CreatedAt:          m.CreatedAt.Format(timeFormat),
	}
}

// Get godoc
// @Summary      Get a stock movement
// @Description  Returns one ledger entry by ID
// @Tags         movements
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Movement ID" format(uuid)
// @Success      200 {object} dto.Response{data=MovementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/movements/{id} [get]
func (h *MovementHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	movement, err := h.movements.FindByID(c.Request.Context(), tenantID, movementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toMovementResponse(movement))
}

// GetByDocumentNumber godoc
// @Summary      Get a stock movement by document number
// @Description  Returns one ledger entry by its document number
// @Tags         movements
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        number path string true "Document number" example(SM-20260115-0001)
// @Success      200 {object} dto.Response{data=MovementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/movements/number/{number} [get]
func (h *MovementHandler) GetByDocumentNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	movement, err := h.movements.FindByDocumentNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toMovementResponse(movement))
}

// List godoc
// @Summary      List stock movements
// @Description  Lists ledger entries by product-warehouse pair, by source document reference, or by date range
// @Tags         movements
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        warehouse_id query string false "Warehouse ID" format(uuid)
// @Param        reference_type query string false "Source document type"
// @Param        reference_id query string false "Source document ID"
// @Param        from query string false "Start of date range (RFC3339 or YYYY-MM-DD)"
// @Param        to query string false "End of date range (RFC3339 or YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]MovementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/movements [get]
func (h *MovementHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query MovementListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		if details := middleware.ValidationDetails(err); details != nil {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	filter := shared.Filter{
		Offset:   (query.Page - 1) * query.PageSize,
		Limit:    query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	}

	var movements []inventory.StockMovement
	ctx := c.Request.Context()
	switch {
	case query.ReferenceType != "" && query.ReferenceID != "":
		movements, err = h.movements.FindByReference(ctx, tenantID, query.ReferenceType, query.ReferenceID)
	case query.ProductID != "" && query.WarehouseID != "":
		productID, _ := uuid.Parse(query.ProductID)
		warehouseID, _ := uuid.Parse(query.WarehouseID)
		movements, err = h.movements.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID, filter)
	case query.From != "" && query.To != "":
		from, parseErr := parseDateTime(query.From)
		if parseErr != nil {
			h.BadRequest(c, "Invalid from date format")
			return
		}
		to, parseErr := parseDateTime(query.To)
		if parseErr != nil {
			h.BadRequest(c, "Invalid to date format")
			return
		}
		movements, err = h.movements.FindByDateRange(ctx, tenantID, from, to, filter)
	default:
		h.BadRequest(c, "Provide product_id+warehouse_id, reference_type+reference_id, or from+to")
		return
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, toMovementResponse(&movements[i]))
	}
	h.Success(c, responses)
}
