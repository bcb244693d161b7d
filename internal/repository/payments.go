package repository

import (
	"context"

	"djbooks_back_end/internal/models"
)

// CreatePayment records a charge. A charge id seen before yields ErrConflict,
// which callers treat as an already processed callback.
func (q queries) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO payments (charge_id, user_id, order_id, amount, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		p.ChargeID, p.UserID, p.OrderID, p.Amount, string(p.Method),
	).Scan(&p.ID, &p.Timestamp)
	return p, mapError(err)
}

func (q queries) PaymentByCharge(ctx context.Context, chargeID string) (models.Payment, error) {
	var (
		p      models.Payment
		method string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, charge_id, user_id, order_id, amount, payment_method, created_at
		FROM payments WHERE charge_id = $1`, chargeID,
	).Scan(&p.ID, &p.ChargeID, &p.UserID, &p.OrderID, &p.Amount, &method, &p.Timestamp)
	p.Method = models.PaymentMethod(method)
	return p, mapError(err)
}
