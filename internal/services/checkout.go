package services

import (
	"context"
	"errors"
	"time"

	"djbooks_back_end/internal/events"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	msgFormInvalid       = "Form is not valid"
	msgAddressIncomplete = "Please fill in the required shipping address fields"
	msgPaypal            = "Pago con Paypal"
	msgInvalidPayment    = "Invalid payment option selected"
)

// CheckoutOutcome tells the caller where the user goes next.
type CheckoutOutcome string

const (
	OutcomeRedirectPayment CheckoutOutcome = "payment"
	OutcomeStayOnCheckout  CheckoutOutcome = "checkout"
)

type CheckoutStore interface {
	TxRunner
	OrderReader
	AddressReader
}

// EventPublisher emits order lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, e events.OrderEvent) error
}

type CheckoutView struct {
	Order           models.Order            `json:"order"`
	Total           decimal.Decimal         `json:"total"`
	ShippingChoices []models.ShippingChoice `json:"shipping_choices"`
	DefaultShipping *models.Address         `json:"default_shipping_address,omitempty"`
	DefaultBilling  *models.Address         `json:"default_billing_address,omitempty"`
}

type CheckoutResult struct {
	Outcome CheckoutOutcome `json:"outcome"`
	Order   models.Order    `json:"order"`
	Address *models.Address `json:"address,omitempty"`
}

type Checkout struct {
	store  CheckoutStore
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewCheckout(store CheckoutStore, events EventPublisher, logger *zap.Logger) *Checkout {
	return &Checkout{store: store, events: events, logger: logger, now: time.Now}
}

// RenderCheckout loads what the checkout page shows: the open order, its
// total, the shipping options and the user's default addresses.
func (c *Checkout) RenderCheckout(ctx context.Context, n notify.Notifier, userID string) (CheckoutView, error) {
	order, err := c.store.OpenOrder(ctx, userID)
	if errors.Is(err, models.ErrNoActiveOrder) {
		n.Notify(notify.Info, msgNoActiveOrder)
		return CheckoutView{}, err
	}
	if err != nil {
		return CheckoutView{}, err
	}

	view := CheckoutView{
		Order:           order,
		Total:           GetTotal(order),
		ShippingChoices: models.ShippingChoices,
	}
	if view.DefaultShipping, err = c.defaultAddress(ctx, userID, models.AddressShipping); err != nil {
		return CheckoutView{}, err
	}
	if view.DefaultBilling, err = c.defaultAddress(ctx, userID, models.AddressBilling); err != nil {
		return CheckoutView{}, err
	}
	return view, nil
}

func (c *Checkout) defaultAddress(ctx context.Context, userID string, typ models.AddressType) (*models.Address, error) {
	addr, err := c.store.DefaultAddress(ctx, userID, typ)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// SubmitCheckout validates the form, optionally saves the shipping address
// onto the order and picks the next step from the payment option.
func (c *Checkout) SubmitCheckout(ctx context.Context, n notify.Notifier, userID string, form models.CheckoutForm) (CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "checkout.submit")
	defer span.End()

	if err := models.Validate(form); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			n.Notify(notify.Warning, msgFormInvalid+" "+verr.FieldsText())
		}
		return CheckoutResult{}, err
	}
	shipping, err := models.ParseShippingOption(form.ShippingOption)
	if err != nil {
		return CheckoutResult{}, models.NewValidationError(map[string]string{"shipping_option": err.Error()})
	}

	var (
		order  models.Order
		saved  *models.Address
		placed bool
	)
	err = c.store.InTx(ctx, func(tx repository.Tx) error {
		order, err = tx.LockOpenOrder(ctx, userID)
		if err != nil {
			return err
		}

		if !form.SaveAddress {
			if order.ShippingAddressID == nil && order.State != models.StateAddressPending {
				if err := order.Transition(models.StateAddressPending); err != nil {
					return err
				}
				return tx.UpdateOrder(ctx, order)
			}
			return nil
		}

		addr, err := models.NewAddress(userID, form.ShippingAddress())
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			n.Notify(notify.Warning, msgAddressIncomplete)
			if order.State == models.StateAddressPending {
				return nil
			}
			order.ShippingAddressID = nil
			if err := order.Transition(models.StateAddressPending); err != nil {
				return err
			}
			return tx.UpdateOrder(ctx, order)
		}
		if err != nil {
			return err
		}

		addr, err = tx.CreateAddress(ctx, addr)
		if err != nil {
			return err
		}
		if err := order.Transition(models.StateAwaitingPayment); err != nil {
			return err
		}
		order.ShippingAddressID = &addr.ID
		order.ShippingOption = shipping
		saved, placed = &addr, true
		return tx.UpdateOrder(ctx, order)
	})
	if errors.Is(err, models.ErrNoActiveOrder) {
		n.Notify(notify.Warning, msgNoActiveOrder)
		return CheckoutResult{}, err
	}
	if err != nil {
		c.logger.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
		return CheckoutResult{}, err
	}

	if placed {
		c.publish(ctx, events.OrderEvent{
			Type:       events.TypeOrderPlaced,
			OrderID:    order.ID,
			RefCode:    order.RefCode,
			UserID:     userID,
			Amount:     GetTotal(order),
			OccurredAt: c.now(),
		})
	}

	result := CheckoutResult{Outcome: OutcomeStayOnCheckout, Order: order, Address: saved}
	switch models.PaymentMethod(form.PaymentOption) {
	case models.PaymentMercadoPago:
		result.Outcome = OutcomeRedirectPayment
	case models.PaymentPaypal:
		n.Notify(notify.Info, msgPaypal)
	default:
		n.Notify(notify.Warning, msgInvalidPayment)
	}
	return result, nil
}

func (c *Checkout) publish(ctx context.Context, e events.OrderEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, e); err != nil {
		c.logger.Warn("publish order event failed",
			zap.String("type", e.Type), zap.Int64("order_id", e.OrderID), zap.Error(err))
	}
}
