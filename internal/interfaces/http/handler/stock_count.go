package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/stocker/inventory/internal/application/inventory"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"github.com/stocker/inventory/internal/interfaces/http/middleware"
)

// StockCountHandler exposes the read-only stock count endpoints
type StockCountHandler struct {
	BaseHandler
	counts       inventory.StockCountRepository
	countService *inventoryapp.StockCountService
}

// NewStockCountHandler creates a new StockCountHandler
func NewStockCountHandler(
	counts inventory.StockCountRepository,
	countService *inventoryapp.StockCountService,
) *StockCountHandler {
	return &StockCountHandler{
		counts:       counts,
		countService: countService,
	}
}

// StockCountItemResponse represents one line of a stock count
type StockCountItemResponse struct {
	ID              string   `json:"id"`
	ProductID       string   `json:"product_id"`
	ProductCode     string   `json:"product_code,omitempty"`
	ProductName     string   `json:"product_name,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	SystemQuantity  float64  `json:"system_quantity" example:"100.0"`
	CountedQuantity *float64 `json:"counted_quantity,omitempty" example:"92.0"`
	Difference      float64  `json:"difference" example:"-8.0"`
	UnitCost        float64  `json:"unit_cost" example:"15.50"`
	IsCounted       bool     `json:"is_counted"`
	Remark          string   `json:"remark,omitempty"`
}

// StockCountResponse represents a stock count document in API responses
// @Description Physical count document with status, type and per-product lines
type StockCountResponse struct {
	ID           string                   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CountNumber  string                   `json:"count_number" example:"SC-20260115-0001"`
	WarehouseID  string                   `json:"warehouse_id"`
	LocationID   string                   `json:"location_id,omitempty"`
	CountType    string                   `json:"count_type" example:"FULL"`
	Status       string                   `json:"status" example:"IN_PROGRESS"`
	AutoAdjust   bool                     `json:"auto_adjust"`
	CountDate    string                   `json:"count_date"`
	StartedAt    string                   `json:"started_at,omitempty"`
	CompletedAt  string                   `json:"completed_at,omitempty"`
	CancelledAt  string                   `json:"cancelled_at,omitempty"`
	CancelReason string                   `json:"cancel_reason,omitempty"`
	Remark       string                   `json:"remark,omitempty"`
	Items        []StockCountItemResponse `json:"items,omitempty"`
}

// StockCountListQuery holds the query parameters for listing stock counts
type StockCountListQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=DRAFT IN_PROGRESS COMPLETED CANCELLED"`
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toStockCountItemResponse(item *inventory.StockCountItem) StockCountItemResponse {
	resp := StockCountItemResponse{
		ID:             item.ID.String(),
		ProductID:      item.ProductID.String(),
		ProductCode:    item.ProductCode,
		ProductName:    item.ProductName,
		Unit:           item.Unit,
		SystemQuantity: item.SystemQuantity.InexactFloat64(),
		Difference:     item.Difference().InexactFloat64(),
		UnitCost:       item.UnitCost.InexactFloat64(),
		IsCounted:      item.IsCounted(),
		Remark:         item.Remark,
	}
	if item.CountedQuantity != nil {
		counted := item.CountedQuantity.InexactFloat64()
		resp.CountedQuantity = &counted
	}
	return resp
}

func toStockCountResponse(count *inventory.StockCount, includeItems bool) StockCountResponse {
	resp := StockCountResponse{
		ID:           count.ID.String(),
		CountNumber:  count.CountNumber,
		WarehouseID:  count.WarehouseID.String(),
		LocationID:   uuidPtrString(count.LocationID),
		CountType:    string(count.CountType),
		Status:       string(count.Status),
		AutoAdjust:   count.AutoAdjust,
		CountDate:    count.CountDate.Format(timeFormat),
		StartedAt:    formatTimePtr(count.StartedAt),
		CompletedAt:  formatTimePtr(count.CompletedAt),
		CancelledAt:  formatTimePtr(count.CancelledAt),
		CancelReason: count.CancelReason,
		Remark:       count.Remark,
	}
	if includeItems {
		resp.Items = make([]StockCountItemResponse, 0, len(count.Items))
		for i := range count.Items {
			resp.Items = append(resp.Items, toStockCountItemResponse(&count.Items[i]))
		}
	}
	return resp
}

// Get godoc
// @Summary      Get a stock count
// @Description  Returns one count document with its items
// @Tags         stock-counts
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Stock count ID" format(uuid)
// @Success      200 {object} dto.Response{data=StockCountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/stock-counts/{id} [get]
func (h *StockCountHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	countID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stock count ID format")
		return
	}

	count, err := h.counts.FindByID(c.Request.Context(), tenantID, countID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockCountResponse(count, true))
}

// GetSummary godoc
// @Summary      Get a stock count summary
// @Description  Returns aggregate difference totals for one count document
// @Tags         stock-counts
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Stock count ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.StockCountSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/stock-counts/{id}/summary [get]
func (h *StockCountHandler) GetSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	countID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stock count ID format")
		return
	}

	summary, err := h.countService.GetSummary(c.Request.Context(), tenantID, countID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// List godoc
// @Summary      List stock counts
// @Description  Lists count documents by status or warehouse
// @Tags         stock-counts
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        status query string false "Count status" Enums(DRAFT, IN_PROGRESS, COMPLETED, CANCELLED)
// @Param        warehouse_id query string false "Warehouse ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]StockCountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/stock-counts [get]
func (h *StockCountHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StockCountListQuery
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

	var counts []inventory.StockCount
	ctx := c.Request.Context()
	switch {
	case query.Status != "":
		counts, err = h.counts.FindByStatus(ctx, tenantID, inventory.StockCountStatus(query.Status), filter)
	case query.WarehouseID != "":
		warehouseID, _ := uuid.Parse(query.WarehouseID)
		counts, err = h.counts.FindByWarehouse(ctx, tenantID, warehouseID, filter)
	default:
		h.BadRequest(c, "One of status or warehouse_id is required")
		return
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]StockCountResponse, 0, len(counts))
	for i := range counts {
		responses = append(responses, toStockCountResponse(&counts[i], false))
	}
	h.Success(c, responses)
}
