package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"djbooks_back_end/internal/cache"
	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/handlers/admin"
	"djbooks_back_end/internal/handlers/payment"
	"djbooks_back_end/internal/handlers/product"
	"djbooks_back_end/internal/handlers/user"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const secret = "routes-test-secret"

// newRouter wires every route with handlers whose services are never reached
// by the requests below.
func newRouter(t *testing.T, checks map[string]handlers.Check) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zaptest.NewLogger(t)
	flashes := notify.NewFlashes(notify.NewCookieStore("0123456789abcdef0123456789abcdef"), logger)

	r := gin.New()
	RegisterRoutes(r, Deps{
		JWTSecret: secret,
		Redis:     cache.New(client, logger),
		Flashes:   flashes,
		Checks:    checks,
		Logger:    logger,
		Auth:      user.NewAuthHandler(nil, logger),
		Cart:      user.NewCartHandler(nil, logger),
		CartWS:    user.NewCartSocket(nil, nil, "", logger),
		Wishlist:  user.NewWishlistHandler(nil, logger),
		Addresses: user.NewAddressHandler(nil, logger),
		Purchases: user.NewPurchasesHandler(nil, logger),
		Catalog:   product.NewCatalogHandler(nil, logger),
		Requests:  product.NewBookRequestHandler(nil, logger),
		Checkout:  payment.NewCheckoutHandler(nil, logger),
		Payments:  payment.NewPaymentHandler(nil, flashes, "http://localhost:3000", logger),
		Books:     admin.NewBookHandler(nil, nil, logger),
	})
	return r
}

func token(t *testing.T, role string) string {
	tok, err := utils.GenerateJWT(models.User{ID: "u-1", Email: "ana@example.com", Role: role}, []byte(secret), time.Hour)
	require.NoError(t, err)
	return tok
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newRouter(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/add/rayuela"},
		{http.MethodGet, "/api/checkout"},
		{http.MethodPost, "/api/checkout"},
		{http.MethodGet, "/api/payment"},
		{http.MethodGet, "/api/wishlist"},
		{http.MethodGet, "/api/addresses"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPost, "/api/admin/books"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAdminRoutesNeedStaff(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/books/rayuela/images", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.UserRoleCustomer))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, map[string]handlers.Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"Service Unavailable","checks":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())
}

func TestMetricsExposed(t *testing.T) {
	r := newRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
