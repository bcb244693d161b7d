package services

import (
	"context"
	"testing"

	"djbooks_back_end/internal/events"
	"djbooks_back_end/internal/gateway"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type paymentFixture struct {
	payments *Payments
	store    *memStore
	gateway  *fakeGateway
	events   *fakeEvents
	mailer   *fakeMailer
	user     models.User
	order    models.Order
	book     models.Book
}

func newPaymentFixture(t *testing.T) paymentFixture {
	store := newMemStore()
	logger := zaptest.NewLogger(t)
	user := store.addUser("lector@example.com")
	book := store.addBook("Canek", "200", 5)

	cart := NewCartEngine(store, nil, logger)
	for i := 0; i < 2; i++ {
		_, err := cart.AddToCart(context.Background(), notify.Discard{}, user.ID, book.Slug)
		require.NoError(t, err)
	}
	order, err := store.OpenOrder(context.Background(), user.ID)
	require.NoError(t, err)

	gw := &fakeGateway{
		preference: gateway.Preference{ID: "pref-1", InitPoint: "https://mp.example/init/pref-1"},
		statuses: map[string]models.PaymentStatus{
			"991": {ChargeID: "991", Status: "approved", ExternalReference: order.RefCode, Amount: decimal.NewFromInt(400)},
			"992": {ChargeID: "992", Status: "rejected", ExternalReference: order.RefCode},
		},
	}
	ev := &fakeEvents{}
	mailer := &fakeMailer{}

	return paymentFixture{
		payments: NewPayments(store, gw, ev, mailer, logger),
		store:    store,
		gateway:  gw,
		events:   ev,
		mailer:   mailer,
		user:     user,
		order:    order,
		book:     book,
	}
}

func TestPaymentPage_CreatesPreference(t *testing.T) {
	f := newPaymentFixture(t)

	page, err := f.payments.Page(context.Background(), &notify.Collector{}, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pref-1", page.Preference.ID)
	assert.Equal(t, "400", page.Total.String())
	assert.Equal(t, f.order.RefCode, page.Order.RefCode)
}

func TestPaymentPage_GatewayFailure(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.prefErr = &models.GatewayError{Op: "create preference", StatusCode: 502}

	_, err := f.payments.Page(context.Background(), &notify.Collector{}, f.user.ID)
	var gerr *models.GatewayError
	assert.ErrorAs(t, err, &gerr)
}

func TestPaymentPage_NoActiveOrder(t *testing.T) {
	f := newPaymentFixture(t)
	n := &notify.Collector{}

	_, err := f.payments.Page(context.Background(), n, "someone-else")
	assert.ErrorIs(t, err, models.ErrNoActiveOrder)
	assert.Equal(t, []string{"You do not have an active order"}, texts(n))
}

func TestHandleCallback_ApprovedRecordsPayment(t *testing.T) {
	f := newPaymentFixture(t)
	n := &notify.Collector{}

	res, err := f.payments.HandleCallback(context.Background(), n, CallbackApproved, CallbackParams{
		PaymentID: "991", Status: "approved", ExternalReference: f.order.RefCode,
	})
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	require.NotNil(t, res.Order)
	assert.Equal(t, models.StatePaid, res.Order.State)
	assert.True(t, res.Order.Flags().Paid)
	assert.True(t, res.Order.Flags().Ordered)

	require.Len(t, f.store.payments, 1)
	p := f.store.payments[0]
	assert.Equal(t, "991", p.ChargeID)
	assert.Equal(t, models.PaymentMercadoPago, p.Method)
	assert.Equal(t, f.user.ID, p.UserID)
	assert.True(t, decimal.NewFromInt(400).Equal(p.Amount))

	assert.Equal(t, 3, f.store.books[f.book.ID].Stock)
	for _, l := range f.store.lines {
		assert.True(t, l.ordered)
	}
	_, err = f.store.OpenOrder(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, models.ErrNoActiveOrder)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.TypePaymentRecorded, f.events.events[0].Type)
	assert.Equal(t, "991", f.events.events[0].ChargeID)
	assert.Equal(t, []sentMail{{to: "lector@example.com", refCode: f.order.RefCode}}, f.mailer.confirmations)
	assert.Equal(t, []string{"Tu pago fue aprobado. ¡Gracias por tu compra!"}, texts(n))
}

func TestHandleCallback_RepeatedCallbackIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	params := CallbackParams{PaymentID: "991", ExternalReference: f.order.RefCode}

	_, err := f.payments.HandleCallback(ctx, notify.Discard{}, CallbackApproved, params)
	require.NoError(t, err)
	res, err := f.payments.HandleCallback(ctx, notify.Discard{}, CallbackApproved, params)
	require.NoError(t, err)

	assert.False(t, res.Recorded)
	assert.Len(t, f.store.payments, 1)
	assert.Equal(t, 3, f.store.books[f.book.ID].Stock)
	assert.Len(t, f.events.events, 1)
	assert.Len(t, f.mailer.confirmations, 1)
}

func TestHandleCallback_RejectedPaymentRecordsNothing(t *testing.T) {
	f := newPaymentFixture(t)
	n := &notify.Collector{}

	res, err := f.payments.HandleCallback(context.Background(), n, CallbackApproved, CallbackParams{PaymentID: "992"})
	require.NoError(t, err)
	assert.Equal(t, CallbackFailure, res.Outcome)
	assert.Empty(t, f.store.payments)
	assert.Equal(t, []string{"El pago fue rechazado, intenta de nuevo"}, texts(n))
}

func TestHandleCallback_ReferenceMismatch(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.payments.HandleCallback(context.Background(), notify.Discard{}, CallbackApproved, CallbackParams{
		PaymentID: "991", ExternalReference: "otra-orden",
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "external_reference")
	assert.Empty(t, f.store.payments)
}

func TestHandleCallback_UnknownPaymentIsGatewayError(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.payments.HandleCallback(context.Background(), notify.Discard{}, CallbackApproved, CallbackParams{PaymentID: "404"})
	var gerr *models.GatewayError
	assert.ErrorAs(t, err, &gerr)
}

func TestHandleCallback_FailureAndPending(t *testing.T) {
	f := newPaymentFixture(t)

	n := &notify.Collector{}
	res, err := f.payments.HandleCallback(context.Background(), n, CallbackFailure, CallbackParams{})
	require.NoError(t, err)
	assert.Equal(t, CallbackFailure, res.Outcome)
	assert.Equal(t, []notify.Message{{Level: notify.Warning, Text: "El pago fue rechazado, intenta de nuevo"}}, n.Messages())

	n = &notify.Collector{}
	_, err = f.payments.HandleCallback(context.Background(), n, CallbackPending, CallbackParams{})
	require.NoError(t, err)
	assert.Equal(t, []notify.Message{{Level: notify.Info, Text: "Tu pago está pendiente de confirmación"}}, n.Messages())

	_, err = f.payments.HandleCallback(context.Background(), notify.Discard{}, "refund", CallbackParams{})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Zero(t, f.gateway.lookups)
	assert.Empty(t, f.store.payments)
}

func TestPurchases_ListsClosedOrders(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	orders, err := f.payments.Purchases(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = f.payments.HandleCallback(ctx, notify.Discard{}, CallbackApproved, CallbackParams{PaymentID: "991"})
	require.NoError(t, err)

	orders, err = f.payments.Purchases(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, f.order.RefCode, orders[0].RefCode)
}
