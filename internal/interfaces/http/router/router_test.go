package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) {
	c.Status(http.StatusOK)
}

func TestRouter(t *testing.T) {
	t.Run("mounts groups under the default v1 prefix", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("inventory", "/inventory")
		group.GET("/availability", ok)

		NewRouter(engine).Register(group).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/inventory/availability").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/inventory/availability").Code)
	})

	t.Run("honors a custom api version", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("system", "/system")
		group.GET("/ping", ok)

		NewRouter(engine, WithAPIVersion("v2")).Register(group).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/system/ping").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/system/ping").Code)
	})

	t.Run("registers multiple groups", func(t *testing.T) {
		engine := gin.New()
		inventory := NewDomainGroup("inventory", "/inventory")
		inventory.GET("/movements", ok)
		system := NewDomainGroup("system", "/system")
		system.GET("/info", ok)

		NewRouter(engine).Register(inventory).Register(system).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/inventory/movements").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/system/info").Code)
	})
}

func TestDomainGroup(t *testing.T) {
	t.Run("exposes its name", func(t *testing.T) {
		assert.Equal(t, "inventory", NewDomainGroup("inventory", "/inventory").Name())
	})

	t.Run("routes each registered method", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("inventory", "/inventory")
		group.GET("/reservations/:id", ok)
		group.POST("/reservations", ok)
		group.Handle(http.MethodDelete, "/reservations/:id", ok)

		NewRouter(engine).Register(group).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/inventory/reservations/42").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/v1/inventory/reservations").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodDelete, "/api/v1/inventory/reservations/42").Code)
	})

	t.Run("runs group middleware before handlers", func(t *testing.T) {
		engine := gin.New()
		var order []string

		group := NewDomainGroup("inventory", "/inventory")
		group.Use(func(c *gin.Context) {
			order = append(order, "middleware")
			c.Next()
		})
		group.GET("/availability", func(c *gin.Context) {
			order = append(order, "handler")
			c.Status(http.StatusOK)
		})

		NewRouter(engine).Register(group).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/inventory/availability").Code)
		assert.Equal(t, []string{"middleware", "handler"}, order)
	})
}
