package services

import (
	"context"
	"errors"
	"time"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgAddedToCart     = "Libro añadido al carrito."
	msgNewCart         = "This book was added to your cart."
	msgRemovedFromCart = "Libro retirado del carrito"
	msgNotInCart       = "This item was not in your cart"
	msgNoActiveOrder   = "You do not have an active order"
	msgOutOfStock      = "Lo sentimos, ya no hay ejemplares disponibles"
	msgEmptyCart       = "Tu carrito está vacío"
)

type CartStore interface {
	TxRunner
	BookReader
	OrderReader
}

// CartPublisher fans a cart change out to the user's live connections.
type CartPublisher interface {
	PublishCartUpdate(ctx context.Context, userID string, payload any) error
}

// CartSummary is what the cart page and the live cart socket render.
type CartSummary struct {
	Order     *models.Order   `json:"order"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func summarize(o *models.Order) CartSummary {
	if o == nil {
		return CartSummary{Total: decimal.Zero}
	}
	return CartSummary{Order: o, Total: GetTotal(*o), ItemCount: o.ItemCount()}
}

type CartEngine struct {
	store   CartStore
	updates CartPublisher
	logger  *zap.Logger
	now     func() time.Time
	newRef  func() string
}

func NewCartEngine(store CartStore, updates CartPublisher, logger *zap.Logger) *CartEngine {
	return &CartEngine{
		store:   store,
		updates: updates,
		logger:  logger,
		now:     time.Now,
		newRef:  uuid.NewString,
	}
}

// GetTotal is the sum of quantity times effective unit price over the lines.
func GetTotal(order models.Order) decimal.Decimal {
	return order.Total()
}

// AddToCart puts one copy of the book in the user's open order, creating the
// order on the first add.
func (e *CartEngine) AddToCart(ctx context.Context, n notify.Notifier, userID, slug string) (models.Order, error) {
	ctx, span := tracer.Start(ctx, "cart.add")
	defer span.End()
	span.SetAttributes(attribute.String("book.slug", slug))

	book, err := e.store.BookBySlug(ctx, slug)
	if err != nil {
		cartMutations.WithLabelValues("add", "not_found").Inc()
		return models.Order{}, err
	}
	if !book.InStock() {
		n.Notify(notify.Warning, msgOutOfStock)
		cartMutations.WithLabelValues("add", "out_of_stock").Inc()
		return models.Order{}, models.ErrOutOfStock
	}

	created := false
	err = e.store.InTx(ctx, func(tx repository.Tx) error {
		order, err := tx.LockOpenOrder(ctx, userID)
		if errors.Is(err, models.ErrNoActiveOrder) {
			created = true
			order, err = tx.CreateOpenOrder(ctx, userID, e.newRef(), e.now())
		}
		if err != nil {
			return err
		}

		if line, ok := order.Line(book.ID); ok {
			return tx.UpdateLineQuantity(ctx, line.ID, line.Quantity+1)
		}
		return tx.InsertLine(ctx, order.ID, userID, book.ID, 1)
	})
	if err != nil {
		cartMutations.WithLabelValues("add", "error").Inc()
		e.logger.Error("add to cart failed",
			zap.String("user_id", userID), zap.String("slug", slug), zap.Error(err))
		return models.Order{}, err
	}

	if created {
		n.Notify(notify.Info, msgNewCart)
	} else {
		n.Notify(notify.Info, msgAddedToCart)
	}
	cartMutations.WithLabelValues("add", "ok").Inc()
	return e.afterMutation(ctx, userID)
}

// RemoveFromCart drops the book's whole line. A missing order or line is
// reported to the user and is not an error.
func (e *CartEngine) RemoveFromCart(ctx context.Context, n notify.Notifier, userID, slug string) (models.Order, error) {
	return e.shrink(ctx, n, "remove", userID, slug, func(tx repository.Tx, line models.OrderBook) error {
		return tx.DeleteLine(ctx, line.ID)
	})
}

// DecrementCartItem takes one copy off the book's line and deletes the line
// when its last copy goes.
func (e *CartEngine) DecrementCartItem(ctx context.Context, n notify.Notifier, userID, slug string) (models.Order, error) {
	return e.shrink(ctx, n, "decrement", userID, slug, func(tx repository.Tx, line models.OrderBook) error {
		if line.Quantity > 1 {
			return tx.UpdateLineQuantity(ctx, line.ID, line.Quantity-1)
		}
		return tx.DeleteLine(ctx, line.ID)
	})
}

func (e *CartEngine) shrink(ctx context.Context, n notify.Notifier, op, userID, slug string, apply func(repository.Tx, models.OrderBook) error) (models.Order, error) {
	ctx, span := tracer.Start(ctx, "cart."+op)
	defer span.End()
	span.SetAttributes(attribute.String("book.slug", slug))

	book, err := e.store.BookBySlug(ctx, slug)
	if err != nil {
		cartMutations.WithLabelValues(op, "not_found").Inc()
		return models.Order{}, err
	}

	var order models.Order
	err = e.store.InTx(ctx, func(tx repository.Tx) error {
		order, err = tx.LockOpenOrder(ctx, userID)
		if err != nil {
			return err
		}
		line, ok := order.Line(book.ID)
		if !ok {
			return models.ErrNotInCart
		}
		return apply(tx, line)
	})

	switch {
	case errors.Is(err, models.ErrNoActiveOrder):
		n.Notify(notify.Info, msgNoActiveOrder)
		cartMutations.WithLabelValues(op, "no_order").Inc()
		return models.Order{}, nil
	case errors.Is(err, models.ErrNotInCart):
		n.Notify(notify.Info, msgNotInCart)
		cartMutations.WithLabelValues(op, "not_in_cart").Inc()
		return order, nil
	case err != nil:
		cartMutations.WithLabelValues(op, "error").Inc()
		e.logger.Error("cart update failed",
			zap.String("op", op), zap.String("user_id", userID), zap.String("slug", slug), zap.Error(err))
		return models.Order{}, err
	}

	n.Notify(notify.Info, msgRemovedFromCart)
	cartMutations.WithLabelValues(op, "ok").Inc()
	return e.afterMutation(ctx, userID)
}

// afterMutation re-reads the committed cart and pushes it to live listeners.
func (e *CartEngine) afterMutation(ctx context.Context, userID string) (models.Order, error) {
	order, err := e.store.OpenOrder(ctx, userID)
	if errors.Is(err, models.ErrNoActiveOrder) {
		err = nil
	}
	if err != nil {
		return models.Order{}, err
	}

	if e.updates != nil {
		payload := summarize(nil)
		if order.ID != 0 {
			payload = summarize(&order)
		}
		if err := e.updates.PublishCartUpdate(ctx, userID, payload); err != nil {
			e.logger.Warn("publish cart update failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return order, nil
}

// Summary returns the open cart with its total, or warns that it is empty.
func (e *CartEngine) Summary(ctx context.Context, n notify.Notifier, userID string) (CartSummary, error) {
	order, err := e.store.OpenOrder(ctx, userID)
	if errors.Is(err, models.ErrNoActiveOrder) {
		n.Notify(notify.Warning, msgEmptyCart)
		return summarize(nil), nil
	}
	if err != nil {
		return CartSummary{}, err
	}
	return summarize(&order), nil
}
