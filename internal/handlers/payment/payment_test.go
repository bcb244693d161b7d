package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"djbooks_back_end/internal/gateway"
	"djbooks_back_end/internal/middleware"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/repository"
	"djbooks_back_end/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testUserID    = "6f1c9a52-2f4e-4b43-9a51-1a2b3c4d5e6f"
	storefrontURL = "https://djbooks.example/"
	flashSecret   = "0123456789abcdef0123456789abcdef"
)

var orderCols = []string{"id", "user_id", "ref_code", "state", "start_date", "ordered_date", "shipping_option", "shipping_address_id"}

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	status    models.PaymentStatus
	lookupErr error
}

func (g *fakeGateway) CreatePreference(context.Context, models.Order) (gateway.Preference, error) {
	return gateway.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}, nil
}

func (g *fakeGateway) LookupPayment(_ context.Context, chargeID string) (models.PaymentStatus, error) {
	if g.lookupErr != nil {
		return models.PaymentStatus{}, g.lookupErr
	}
	s := g.status
	s.ChargeID = chargeID
	return s, nil
}

type fixture struct {
	mock    sqlmock.Sqlmock
	gw      *fakeGateway
	flashes *notify.Flashes
	router  *gin.Engine
}

func setup(t *testing.T) fixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	store := repository.NewStore(db, logger)
	gw := &fakeGateway{}
	flashes := notify.NewFlashes(notify.NewCookieStore(flashSecret), logger)

	checkout := NewCheckoutHandler(services.NewCheckout(store, nil, logger), logger)
	payments := NewPaymentHandler(services.NewPayments(store, gw, nil, nil, logger), flashes, storefrontURL, logger)

	r := gin.New()
	r.Use(flashes.Middleware())
	r.GET("/payments/:outcome", payments.Callback)

	authed := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, testUserID)
		c.Next()
	})
	authed.GET("/checkout", checkout.Render)
	authed.POST("/checkout", checkout.Submit)
	authed.GET("/payment", payments.Page)
	r.GET("/api/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": flashes.Drain(c)})
	})
	return fixture{mock: mock, gw: gw, flashes: flashes, router: r}
}

type response struct {
	Messages []notify.Message  `json:"messages"`
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields"`
	Redirect string            `json:"redirect"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// followFlashes reads the messages a redirect left behind.
func followFlashes(t *testing.T, r http.Handler, redirect *httptest.ResponseRecorder) []notify.Message {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	for _, ck := range redirect.Result().Cookies() {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return decode(t, w).Messages
}

func TestRenderCheckout_NoOrderRedirectsToCart(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery(`SELECT .* FROM orders o WHERE o.user_id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(orderCols))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/checkout", nil))
	resp := decode(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/cart", resp.Redirect)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, notify.Info, resp.Messages[0].Level)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitCheckout_InvalidFormWarns(t *testing.T) {
	f := setup(t)
	form := url.Values{
		"phone":           {"55123456789012345"},
		"email":           {"ana@example.com"},
		"payment_option":  {"mercado_pago"},
		"shipping_option": {"pigeon"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	resp := decode(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Fields, "phone")
	assert.Contains(t, resp.Fields, "shipping_option")
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, notify.Warning, resp.Messages[0].Level)
	assert.True(t, strings.HasPrefix(resp.Messages[0].Text, "Form is not valid "))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPaymentPage_NoOrder(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery(`SELECT .* FROM orders o WHERE o.user_id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(orderCols))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/payment", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/cart", decode(t, w).Redirect)
}

func TestCallback_Failure(t *testing.T) {
	f := setup(t)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/failure", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://djbooks.example/checkout", w.Header().Get("Location"))
	assert.Equal(t, []notify.Message{{Level: notify.Warning, Text: "El pago fue rechazado, intenta de nuevo"}},
		followFlashes(t, f.router, w))
}

func TestCallback_UnknownOutcome(t *testing.T) {
	f := setup(t)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/refunded", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCallback_RejectedAtGateway(t *testing.T) {
	f := setup(t)
	f.gw.status = models.PaymentStatus{Status: "rejected", ExternalReference: "ref-1"}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/payments/approved?payment_id=123&status=approved&external_reference=ref-1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://djbooks.example/checkout", w.Header().Get("Location"))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCallback_GatewayDown(t *testing.T) {
	f := setup(t)
	f.gw.lookupErr = &models.GatewayError{Op: "lookup payment", Err: errors.New("circuit open")}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/approved?payment_id=123", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://djbooks.example/checkout", w.Header().Get("Location"))
	assert.Equal(t, []notify.Message{{Level: notify.Error, Text: msgPaymentUnconfirmed}}, followFlashes(t, f.router, w))
}
