package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(id int64, price string, discount string) Book {
	b := Book{ID: id, Title: "Book", Price: decimal.RequireFromString(price)}
	if discount != "" {
		b.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	return b
}

func TestOrderTotal_PrefersDiscountPrice(t *testing.T) {
	order := Order{Items: []OrderBook{
		{Book: book(1, "100", ""), Quantity: 2},
		{Book: book(2, "80", "50"), Quantity: 1},
	}}

	assert.True(t, decimal.NewFromInt(250).Equal(order.Total()), "got %s", order.Total())
	assert.Equal(t, 3, order.ItemCount())
}

func TestOrderTotal_EmptyOrder(t *testing.T) {
	assert.True(t, Order{}.Total().IsZero())
}

func TestOrderLine(t *testing.T) {
	order := Order{Items: []OrderBook{{Book: book(7, "10", ""), Quantity: 4}}}

	line, ok := order.Line(7)
	require.True(t, ok)
	assert.Equal(t, 4, line.Quantity)

	_, ok = order.Line(8)
	assert.False(t, ok)
}

func TestOrderTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderState
		to      OrderState
		wantErr bool
	}{
		{"cart to address pending", StateCart, StateAddressPending, false},
		{"cart to awaiting payment", StateCart, StateAwaitingPayment, false},
		{"awaiting payment to paid", StateAwaitingPayment, StatePaid, false},
		{"paid to delivered", StatePaid, StateDelivered, false},
		{"delivered to received", StateDelivered, StateReceived, false},
		{"received to refunded", StateReceived, StateRefunded, false},
		{"cart to cancelled", StateCart, StateCancelled, false},
		{"paid back to cart", StatePaid, StateCart, true},
		{"cart straight to delivered", StateCart, StateDelivered, true},
		{"cancelled is terminal", StateCancelled, StateCart, true},
		{"refunded is terminal", StateRefunded, StatePaid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{State: tt.from}
			err := o.Transition(tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, tt.from, o.State)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.State)
		})
	}
}

func TestOrderFlags(t *testing.T) {
	assert.Equal(t, Flags{}, Order{State: StateCart}.Flags())
	assert.Equal(t, Flags{}, Order{State: StateAwaitingPayment}.Flags())
	assert.Equal(t, Flags{Ordered: true, Paid: true}, Order{State: StatePaid}.Flags())
	assert.Equal(t, Flags{Ordered: true, Paid: true, BeingDelivered: true}, Order{State: StateDelivered}.Flags())
	assert.Equal(t, Flags{Ordered: true, Paid: true, BeingDelivered: true, Received: true}, Order{State: StateReceived}.Flags())
	assert.Equal(t, Flags{Ordered: true}, Order{State: StateCancelled}.Flags())
}

func TestParseOrderState(t *testing.T) {
	st, err := ParseOrderState("awaiting_payment")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, st)

	st, err = ParseOrderState("cancelled")
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, st)

	_, err = ParseOrderState("lost")
	assert.Error(t, err)
}

func TestParseShippingOption(t *testing.T) {
	opt, err := ParseShippingOption("local-pickup")
	require.NoError(t, err)
	assert.Equal(t, ShippingLocalPickup, opt)

	opt, err = ParseShippingOption("DHL")
	require.NoError(t, err)
	assert.Equal(t, ShippingDHL, opt)

	_, err = ParseShippingOption("fedex")
	assert.Error(t, err)
}
