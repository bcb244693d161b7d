package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"djbooks_back_end/internal/models"

	"github.com/lib/pq"
)

const orderColumns = `o.id, o.user_id, o.ref_code, o.state, o.start_date, o.ordered_date, o.shipping_option, o.shipping_address_id`

func scanOrder(row rowScanner) (models.Order, error) {
	var (
		o         models.Order
		state     string
		shipping  string
		addressID sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.RefCode, &state, &o.StartDate, &o.OrderedDate, &shipping, &addressID); err != nil {
		return models.Order{}, err
	}

	st, err := models.ParseOrderState(state)
	if err != nil {
		return models.Order{}, err
	}
	o.State = st
	o.ShippingOption = models.ShippingOption(shipping)
	if addressID.Valid {
		id := addressID.Int64
		o.ShippingAddressID = &id
	}
	return o, nil
}

// loadItems fills the order's lines, oldest first.
func (q queries) loadItems(ctx context.Context, o *models.Order) error {
	rows, err := q.db.QueryContext(ctx,
		`SELECT ob.id, ob.order_id, ob.user_id, ob.quantity, ob.ordered, `+bookColumns+`
		FROM order_books ob JOIN books b ON b.id = ob.book_id
		WHERE ob.order_id = $1 ORDER BY ob.id`, o.ID)
	if err != nil {
		return fmt.Errorf("load lines of order %d: %w", o.ID, err)
	}
	defer rows.Close()

	o.Items = []models.OrderBook{}
	for rows.Next() {
		var line models.OrderBook
		b := &line.Book
		err := rows.Scan(&line.ID, &line.OrderID, &line.UserID, &line.Quantity, &line.Ordered,
			&b.ID, &b.Title, &b.Author, &b.Editorial, &b.Edition, &b.Year, &b.Description, &b.Condition,
			&b.Price, &b.DiscountPrice, &b.Stock, &b.Slug, &b.CoverURL, &b.BackURL, pq.Array(&b.Tags), &b.CreatedAt)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, line)
	}
	return rows.Err()
}

func (q queries) orderWhere(ctx context.Context, where string, args ...any) (models.Order, error) {
	o, err := scanOrder(q.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE `+where, args...))
	if err != nil {
		return models.Order{}, mapError(err)
	}
	if err := q.loadItems(ctx, &o); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func noActiveOrder(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNoActiveOrder
	}
	return err
}

// OpenOrder returns the user's cart or models.ErrNoActiveOrder.
func (q queries) OpenOrder(ctx context.Context, userID string) (models.Order, error) {
	o, err := q.orderWhere(ctx, `o.user_id = $1 AND o.state IN `+openStatesSQL, userID)
	return o, noActiveOrder(err)
}

// LockOpenOrder is OpenOrder plus a row lock held until the transaction ends.
// Every cart mutation takes this lock first.
func (q queries) LockOpenOrder(ctx context.Context, userID string) (models.Order, error) {
	o, err := q.orderWhere(ctx, `o.user_id = $1 AND o.state IN `+openStatesSQL+` FOR UPDATE`, userID)
	return o, noActiveOrder(err)
}

// CreateOpenOrder inserts a cart unless one already exists, then locks and
// returns whichever cart won. Concurrent callers converge on a single row.
func (q queries) CreateOpenOrder(ctx context.Context, userID, refCode string, now time.Time) (models.Order, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO orders (user_id, ref_code, state, start_date, ordered_date)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id) WHERE state IN `+openStatesSQL+` DO NOTHING`,
		userID, refCode, string(models.StateCart), now)
	if err != nil {
		return models.Order{}, fmt.Errorf("create open order: %w", mapError(err))
	}
	return q.LockOpenOrder(ctx, userID)
}

func (q queries) LockOrderByRef(ctx context.Context, refCode string) (models.Order, error) {
	return q.orderWhere(ctx, `o.ref_code = $1 FOR UPDATE`, refCode)
}

func (q queries) OrderByRef(ctx context.Context, refCode string) (models.Order, error) {
	return q.orderWhere(ctx, `o.ref_code = $1`, refCode)
}

// ClosedOrders lists the user's orders that left the cart, newest first.
func (q queries) ClosedOrders(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders o
		WHERE o.user_id = $1 AND o.state NOT IN `+openStatesSQL+` ORDER BY o.ordered_date DESC`, userID)
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range orders {
		if err := q.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (q queries) InsertLine(ctx context.Context, orderID int64, userID string, bookID int64, quantity int) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO order_books (order_id, user_id, book_id, quantity) VALUES ($1, $2, $3, $4)`,
		orderID, userID, bookID, quantity)
	return mapError(err)
}

func (q queries) UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	res, err := q.db.ExecContext(ctx, `UPDATE order_books SET quantity = $2 WHERE id = $1`, lineID, quantity)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotInCart
	}
	return nil
}

func (q queries) DeleteLine(ctx context.Context, lineID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM order_books WHERE id = $1`, lineID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotInCart
	}
	return nil
}

func (q queries) MarkLinesOrdered(ctx context.Context, orderID int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE order_books SET ordered = true WHERE order_id = $1`, orderID)
	return err
}

// UpdateOrder persists the mutable order fields.
func (q queries) UpdateOrder(ctx context.Context, o models.Order) error {
	var addressID sql.NullInt64
	if o.ShippingAddressID != nil {
		addressID = sql.NullInt64{Int64: *o.ShippingAddressID, Valid: true}
	}

	res, err := q.db.ExecContext(ctx,
		`UPDATE orders SET state = $2, ordered_date = $3, shipping_option = $4, shipping_address_id = $5
		WHERE id = $1`,
		o.ID, string(o.State), o.OrderedDate, string(o.ShippingOption), addressID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
