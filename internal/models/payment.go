package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentPaypal      PaymentMethod = "paypal"
	PaymentMercadoPago PaymentMethod = "mercado_pago"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentPaypal, PaymentMercadoPago:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type Payment struct {
	ID        int64           `json:"id"`
	ChargeID  string          `json:"charge_id"`
	UserID    string          `json:"user_id"`
	OrderID   int64           `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"payment_method"`
	Timestamp time.Time       `json:"timestamp"`
}

// PaymentStatus is the processor's verdict for a charge.
type PaymentStatus struct {
	ChargeID          string
	Status            string
	StatusDetail      string
	ExternalReference string
	Amount            decimal.Decimal
}

func (s PaymentStatus) Approved() bool {
	return s.Status == "approved"
}
