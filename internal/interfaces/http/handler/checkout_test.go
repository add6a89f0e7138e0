package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

func setupCheckoutRouter(authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := cache.NewInMemoryCartStore(time.Hour)
	resolver := shipping.NewResolver(nil, decimal.NewFromInt(60))
	svc := checkoutapp.NewCheckoutService(store, nil, nil, nil, nil, resolver, nil)
	h := NewCheckoutHandler(svc)

	router := gin.New()
	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.JWTUserIDKey, uuid.New().String())
			c.Next()
		})
	}
	router.POST("/checkout/submit", h.Submit)
	return router
}

func submitBody(email string) string {
	fields := []string{
		`"customer_name":"Nour Hassan"`,
		`"customer_phone":"+201001234567"`,
		`"governorate":"Cairo"`,
		`"city":"Nasr City"`,
		`"street":"12 Abbas El Akkad"`,
	}
	if email != "" {
		fields = append(fields, `"customer_email":"`+email+`"`)
	}
	return "{" + strings.Join(fields, ",") + "}"
}

func TestCheckoutHandler_Submit_GuestRejected(t *testing.T) {
	router := setupCheckoutRouter(false)

	req := httptest.NewRequest(http.MethodPost, "/checkout/submit", strings.NewReader(submitBody("nour@example.com")))
	req.Header.Set(SessionIDHeader, "sess-test-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutHandler_Submit_MissingEmail(t *testing.T) {
	router := setupCheckoutRouter(true)

	req := httptest.NewRequest(http.MethodPost, "/checkout/submit", strings.NewReader(submitBody("")))
	req.Header.Set(SessionIDHeader, "sess-test-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CustomerEmail")
}

func TestCheckoutHandler_Submit_MalformedEmail(t *testing.T) {
	router := setupCheckoutRouter(true)

	req := httptest.NewRequest(http.MethodPost, "/checkout/submit", strings.NewReader(submitBody("not-an-email")))
	req.Header.Set(SessionIDHeader, "sess-test-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
