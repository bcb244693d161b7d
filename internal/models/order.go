package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderState string

const (
	StateCart            OrderState = "cart"
	StateAddressPending  OrderState = "address_pending"
	StateAwaitingPayment OrderState = "awaiting_payment"
	StatePaid            OrderState = "paid"
	StateDelivered       OrderState = "delivered"
	StateReceived        OrderState = "received"
	StateCancelled       OrderState = "cancelled"
	StateRefunded        OrderState = "refunded"
)

// OpenStates are the states in which an order still acts as the user's cart.
// The partial unique index on orders(user_id) is defined over exactly these.
var OpenStates = []OrderState{StateCart, StateAddressPending, StateAwaitingPayment}

var transitions = map[OrderState][]OrderState{
	StateCart:            {StateAddressPending, StateAwaitingPayment, StatePaid, StateCancelled},
	StateAddressPending:  {StateAddressPending, StateAwaitingPayment, StatePaid, StateCancelled},
	StateAwaitingPayment: {StateAddressPending, StateAwaitingPayment, StatePaid, StateCancelled},
	StatePaid:            {StateDelivered, StateRefunded},
	StateDelivered:       {StateReceived, StateRefunded},
	StateReceived:        {StateRefunded},
}

func (s OrderState) Open() bool {
	for _, o := range OpenStates {
		if s == o {
			return true
		}
	}
	return false
}

func (s OrderState) CanTransition(to OrderState) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func ParseOrderState(s string) (OrderState, error) {
	st := OrderState(s)
	if _, ok := transitions[st]; ok || st == StateCancelled || st == StateRefunded {
		return st, nil
	}
	return "", fmt.Errorf("unknown order state %q", s)
}

// OrderBook is a cart line: one per distinct book in an order.
type OrderBook struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"order_id"`
	UserID   string `json:"user_id"`
	Book     Book   `json:"book"`
	Quantity int    `json:"quantity"`
	Ordered  bool   `json:"ordered"`
}

func (l OrderBook) LineTotal() decimal.Decimal {
	return l.Book.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID                int64          `json:"id"`
	UserID            string         `json:"user_id"`
	RefCode           string         `json:"ref_code"`
	State             OrderState     `json:"state"`
	Items             []OrderBook    `json:"items"`
	StartDate         time.Time      `json:"start_date"`
	OrderedDate       time.Time      `json:"ordered_date"`
	ShippingOption    ShippingOption `json:"shipping_option,omitempty"`
	ShippingAddressID *int64         `json:"shipping_address_id,omitempty"`
}

// Total sums quantity times effective unit price over every line.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}

func (o Order) ItemCount() int {
	n := 0
	for _, line := range o.Items {
		n += line.Quantity
	}
	return n
}

func (o Order) Line(bookID int64) (OrderBook, bool) {
	for _, line := range o.Items {
		if line.Book.ID == bookID {
			return line, true
		}
	}
	return OrderBook{}, false
}

// Transition moves the order to the given state or returns ErrInvalidTransition.
func (o *Order) Transition(to OrderState) error {
	if !o.State.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.State, to)
	}
	o.State = to
	return nil
}

// Flags are the boolean lifecycle markers derived from the state.
type Flags struct {
	Ordered        bool `json:"ordered"`
	Paid           bool `json:"paid"`
	BeingDelivered bool `json:"being_delivered"`
	Received       bool `json:"received"`
}

func (o Order) Flags() Flags {
	f := Flags{Ordered: !o.State.Open()}
	switch o.State {
	case StatePaid, StateRefunded:
		f.Paid = true
	case StateDelivered:
		f.Paid, f.BeingDelivered = true, true
	case StateReceived:
		f.Paid, f.BeingDelivered, f.Received = true, true, true
	}
	return f
}

func (o Order) Paid() bool {
	return o.Flags().Paid
}
