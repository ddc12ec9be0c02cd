package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocker/inventory/internal/domain/inventory"
)

func newMovementTestRouter(t *testing.T, repo *fakeMovementRepo) *gin.Engine {
	t.Helper()
	h := NewMovementHandler(repo)

	r := gin.New()
	r.GET("/inventory/movements", h.List)
	r.GET("/inventory/movements/:id", h.Get)
	r.GET("/inventory/movements/number/:number", h.GetByDocumentNumber)
	return r
}

func newTestMovement(t *testing.T, tenantID uuid.UUID, doc string, movementType inventory.MovementType) *inventory.StockMovement {
	t.Helper()
	m, err := inventory.NewStockMovement(tenantID, doc, uuid.New(), uuid.New(), movementType,
		decimal.NewFromInt(50), decimal.NewFromFloat(15.5))
	require.NoError(t, err)
	return m
}

func TestMovementHandler_Get(t *testing.T) {
	tenantID := uuid.New()
	movement := newTestMovement(t, tenantID, "SM-20260901-0001", inventory.MovementTypePurchase)

	repo := &fakeMovementRepo{movements: []*inventory.StockMovement{movement}}
	router := newMovementTestRouter(t, repo)

	w := performRequest(router, http.MethodGet, "/inventory/movements/"+movement.ID.String(), tenantID)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "SM-20260901-0001", data["document_number"])
	assert.Equal(t, "PURCHASE", data["movement_type"])
	assert.Equal(t, 50.0, data["quantity"])
	assert.Equal(t, 775.0, data["total_cost"])
	assert.Equal(t, false, data["is_reversed"])
}

func TestMovementHandler_Get_NotFound(t *testing.T) {
	router := newMovementTestRouter(t, &fakeMovementRepo{})

	w := performRequest(router, http.MethodGet, "/inventory/movements/"+uuid.NewString(), uuid.New())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMovementHandler_Get_TenantIsolation(t *testing.T) {
	movement := newTestMovement(t, uuid.New(), "SM-20260901-0002", inventory.MovementTypeSales)
	router := newMovementTestRouter(t, &fakeMovementRepo{movements: []*inventory.StockMovement{movement}})

	// Different tenant must not see the movement
	w := performRequest(router, http.MethodGet, "/inventory/movements/"+movement.ID.String(), uuid.New())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMovementHandler_GetByDocumentNumber(t *testing.T) {
	tenantID := uuid.New()
	movement := newTestMovement(t, tenantID, "SM-20260901-0042", inventory.MovementTypePurchase)
	router := newMovementTestRouter(t, &fakeMovementRepo{movements: []*inventory.StockMovement{movement}})

	w := performRequest(router, http.MethodGet, "/inventory/movements/number/SM-20260901-0042", tenantID)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, movement.ID.String(), data["id"])
}

func TestMovementHandler_List_ByReference(t *testing.T) {
	tenantID := uuid.New()
	m1 := newTestMovement(t, tenantID, "SM-20260901-0001", inventory.MovementTypeSales)
	m1.WithReference("SALES_ORDER", "SO-1", "SO-2026-001")
	m2 := newTestMovement(t, tenantID, "SM-20260901-0002", inventory.MovementTypeSales)
	m2.WithReference("SALES_ORDER", "SO-2", "SO-2026-002")

	router := newMovementTestRouter(t, &fakeMovementRepo{movements: []*inventory.StockMovement{m1, m2}})

	w := performRequest(router, http.MethodGet,
		"/inventory/movements?reference_type=SALES_ORDER&reference_id=SO-1", tenantID)

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "SM-20260901-0001", items[0].(map[string]interface{})["document_number"])
}

func TestMovementHandler_List_ByDateRange(t *testing.T) {
	tenantID := uuid.New()
	movement := newTestMovement(t, tenantID, "SM-20260901-0001", inventory.MovementTypePurchase)

	router := newMovementTestRouter(t, &fakeMovementRepo{movements: []*inventory.StockMovement{movement}})

	from := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	to := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	w := performRequest(router, http.MethodGet, "/inventory/movements?from="+from+"&to="+to, tenantID)

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]interface{})
	assert.Len(t, items, 1)
}

func TestMovementHandler_List_MissingScope(t *testing.T) {
	router := newMovementTestRouter(t, &fakeMovementRepo{})

	w := performRequest(router, http.MethodGet, "/inventory/movements", uuid.New())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMovementHandler_List_InvalidDate(t *testing.T) {
	router := newMovementTestRouter(t, &fakeMovementRepo{})

	w := performRequest(router, http.MethodGet, "/inventory/movements?from=not-a-date&to=also-not", uuid.New())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
