package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/stocker/inventory/internal/application/inventory"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"github.com/stocker/inventory/internal/interfaces/http/middleware"
)

// InventoryHandler exposes the read-only stock item and availability endpoints
type InventoryHandler struct {
	BaseHandler
	availability *inventoryapp.AvailabilityService
	stockItems   inventory.StockItemRepository
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(
	availability *inventoryapp.AvailabilityService,
	stockItems inventory.StockItemRepository,
) *InventoryHandler {
	return &InventoryHandler{
		availability: availability,
		stockItems:   stockItems,
	}
}

// AvailabilityResponse represents the availability of one product in one warehouse
// @Description Net availability for a warehouse-product pair
type AvailabilityResponse struct {
	ProductID    string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	WarehouseID  string  `json:"warehouse_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	OnHand       float64 `json:"on_hand" example:"110.5"`
	Reserved     float64 `json:"reserved" example:"10.0"`
	NetAvailable float64 `json:"net_available" example:"100.5"`
}

// StockItemResponse represents a stock item in API responses
// @Description Stock item snapshot with on-hand, reserved and cost information
type StockItemResponse struct {
	ID               string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WarehouseID      string  `json:"warehouse_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	ProductID        string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	OnHandQuantity   float64 `json:"on_hand_quantity" example:"110.5"`
	ReservedQuantity float64 `json:"reserved_quantity" example:"10.0"`
	NetAvailable     float64 `json:"net_available" example:"100.5"`
	UnitCost         float64 `json:"unit_cost" example:"15.50"`
	MinQuantity      float64 `json:"min_quantity" example:"20.0"`
	IsBelowMinimum   bool    `json:"is_below_minimum" example:"false"`
	Version          int     `json:"version" example:"1"`
	UpdatedAt        string  `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// StockItemListQuery holds the query parameters for listing stock items
type StockItemListQuery struct {
	WarehouseID  string `form:"warehouse_id" binding:"omitempty,uuid"`
	ProductID    string `form:"product_id" binding:"omitempty,uuid"`
	BelowMinimum bool   `form:"below_minimum"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:               item.ID.String(),
		WarehouseID:      item.WarehouseID.String(),
		ProductID:        item.ProductID.String(),
		OnHandQuantity:   item.OnHandQuantity.InexactFloat64(),
		ReservedQuantity: item.ReservedQuantity.InexactFloat64(),
		NetAvailable:     item.NetAvailable().InexactFloat64(),
		UnitCost:         item.UnitCost.InexactFloat64(),
		MinQuantity:      item.MinQuantity.InexactFloat64(),
		IsBelowMinimum:   item.MinQuantity.IsPositive() && item.OnHandQuantity.LessThan(item.MinQuantity),
		Version:          item.Version,
		UpdatedAt:        item.UpdatedAt.Format(timeFormat),
	}
}

// GetAvailability godoc
// @Summary      Get net availability
// @Description  Returns on-hand, reserved and net-available quantity for a warehouse-product pair. Unknown pairs read as zero.
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        product_id query string true "Product ID" format(uuid)
// @Param        warehouse_id query string true "Warehouse ID" format(uuid)
// @Success      200 {object} dto.Response{data=AvailabilityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/availability [get]
func (h *InventoryHandler) GetAvailability(c *gin.Context) {
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

	onHand, err := h.availability.OnHand(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	net, err := h.availability.NetAvailable(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, AvailabilityResponse{
		ProductID:    productID.String(),
		WarehouseID:  warehouseID.String(),
		OnHand:       onHand.InexactFloat64(),
		Reserved:     onHand.Sub(net).InexactFloat64(),
		NetAvailable: net.InexactFloat64(),
	})
}

// GetStockItem godoc
// @Summary      Get a stock item
// @Description  Returns one stock item by ID
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Stock item ID" format(uuid)
// @Success      200 {object} dto.Response{data=StockItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/stock-items/{id} [get]
func (h *InventoryHandler) GetStockItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stock item ID format")
		return
	}

	item, err := h.stockItems.FindByID(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockItemResponse(item))
}

// ListStockItems godoc
// @Summary      List stock items
// @Description  Lists stock items by warehouse, by product, or those below their minimum threshold
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        warehouse_id query string false "Warehouse ID" format(uuid)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        below_minimum query boolean false "Only items below their minimum threshold"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field"
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]StockItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventory/stock-items [get]
func (h *InventoryHandler) ListStockItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StockItemListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		if details := middleware.ValidationDetails(err); details != nil {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}
	if err := query.validate(); err != nil {
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

	var items []inventory.StockItem
	ctx := c.Request.Context()
	switch {
	case query.BelowMinimum:
		items, err = h.stockItems.FindBelowMinimum(ctx, tenantID, filter)
	case query.WarehouseID != "":
		warehouseID, _ := uuid.Parse(query.WarehouseID)
		items, err = h.stockItems.FindByWarehouse(ctx, tenantID, warehouseID, filter)
	default:
		productID, _ := uuid.Parse(query.ProductID)
		items, err = h.stockItems.FindByProduct(ctx, tenantID, productID, filter)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]StockItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, toStockItemResponse(&items[i]))
	}
	h.Success(c, responses)
}

func (q *StockItemListQuery) validate() error {
	if !q.BelowMinimum && q.WarehouseID == "" && q.ProductID == "" {
		return errMissingListScope
	}
	return nil
}
