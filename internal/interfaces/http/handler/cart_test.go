package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

func setupCartRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := cache.NewInMemoryCartStore(time.Hour)
	h := NewCartHandler(cartapp.NewCartService(store, nil))
	router := gin.New()
	router.GET("/cart", h.Get)
	router.DELETE("/cart/items", h.RemoveItem)
	router.DELETE("/cart", h.Clear)
	return router
}

func TestCartHandler_Get_EmptyCart(t *testing.T) {
	router := setupCartRouter()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(SessionIDHeader, "sess-test-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "sess-test-1", data["session_id"])
	assert.Equal(t, float64(0), data["item_count"])
}

func TestCartHandler_Get_MissingSession(t *testing.T) {
	router := setupCartRouter()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_RemoveItem_InvalidProductID(t *testing.T) {
	router := setupCartRouter()

	req := httptest.NewRequest(http.MethodDelete, "/cart/items?product_id=nope", nil)
	req.Header.Set(SessionIDHeader, "sess-test-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_Clear(t *testing.T) {
	router := setupCartRouter()

	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	req.Header.Set(SessionIDHeader, "sess-test-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
