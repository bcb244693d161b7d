package services

import (
	"context"
	"errors"
	"time"

	"djbooks_back_end/internal/events"
	"djbooks_back_end/internal/gateway"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgPaymentApproved = "Tu pago fue aprobado. ¡Gracias por tu compra!"
	msgPaymentRejected = "El pago fue rechazado, intenta de nuevo"
	msgPaymentPending  = "Tu pago está pendiente de confirmación"
)

// Callback outcomes, as they appear in the gateway back URLs.
const (
	CallbackApproved = "approved"
	CallbackFailure  = "failure"
	CallbackPending  = "pending"
)

type PaymentGateway interface {
	CreatePreference(ctx context.Context, order models.Order) (gateway.Preference, error)
	LookupPayment(ctx context.Context, chargeID string) (models.PaymentStatus, error)
}

type ConfirmationMailer interface {
	SendOrderConfirmation(ctx context.Context, to string, order models.Order) error
}

type PaymentStore interface {
	TxRunner
	OrderReader
	UserByID(ctx context.Context, id string) (models.User, error)
}

type PaymentPage struct {
	Order      models.Order       `json:"order"`
	Total      decimal.Decimal    `json:"total"`
	Preference gateway.Preference `json:"preference"`
}

// CallbackParams are the query parameters the gateway appends to a back URL.
type CallbackParams struct {
	PaymentID         string `form:"payment_id"`
	Status            string `form:"status"`
	ExternalReference string `form:"external_reference"`
}

type CallbackResult struct {
	Outcome  string        `json:"outcome"`
	Recorded bool          `json:"recorded"`
	Order    *models.Order `json:"order,omitempty"`
}

type Payments struct {
	store   PaymentStore
	gateway PaymentGateway
	events  EventPublisher
	mailer  ConfirmationMailer
	logger  *zap.Logger
	now     func() time.Time
}

func NewPayments(store PaymentStore, gw PaymentGateway, events EventPublisher, mailer ConfirmationMailer, logger *zap.Logger) *Payments {
	return &Payments{store: store, gateway: gw, events: events, mailer: mailer, logger: logger, now: time.Now}
}

// Page creates the hosted checkout preference for the user's open order.
func (p *Payments) Page(ctx context.Context, n notify.Notifier, userID string) (PaymentPage, error) {
	order, err := p.store.OpenOrder(ctx, userID)
	if errors.Is(err, models.ErrNoActiveOrder) {
		n.Notify(notify.Info, msgNoActiveOrder)
		return PaymentPage{}, err
	}
	if err != nil {
		return PaymentPage{}, err
	}

	pref, err := p.gateway.CreatePreference(ctx, order)
	if err != nil {
		p.logger.Error("create preference failed", zap.String("ref_code", order.RefCode), zap.Error(err))
		return PaymentPage{}, err
	}
	return PaymentPage{Order: order, Total: GetTotal(order), Preference: pref}, nil
}

var errAlreadyRecorded = errors.New("payment already recorded")

// HandleCallback settles the order behind an approved payment. The payment
// is looked up at the gateway; the query string alone is never trusted.
// Repeated callbacks for the same charge record it once.
func (p *Payments) HandleCallback(ctx context.Context, n notify.Notifier, outcome string, params CallbackParams) (CallbackResult, error) {
	switch outcome {
	case CallbackFailure:
		n.Notify(notify.Warning, msgPaymentRejected)
		paymentsRecorded.WithLabelValues("failure").Inc()
		return CallbackResult{Outcome: outcome}, nil
	case CallbackPending:
		n.Notify(notify.Info, msgPaymentPending)
		paymentsRecorded.WithLabelValues("pending").Inc()
		return CallbackResult{Outcome: outcome}, nil
	case CallbackApproved:
	default:
		return CallbackResult{}, models.ErrNotFound
	}

	ctx, span := tracer.Start(ctx, "payment.callback")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", params.PaymentID))

	if params.PaymentID == "" {
		return CallbackResult{}, models.NewValidationError(map[string]string{"payment_id": "This field is required."})
	}

	status, err := p.gateway.LookupPayment(ctx, params.PaymentID)
	if err != nil {
		return CallbackResult{}, err
	}
	if !status.Approved() {
		n.Notify(notify.Warning, msgPaymentRejected)
		paymentsRecorded.WithLabelValues("rejected").Inc()
		return CallbackResult{Outcome: CallbackFailure}, nil
	}
	if params.ExternalReference != "" && params.ExternalReference != status.ExternalReference {
		return CallbackResult{}, models.NewValidationError(map[string]string{
			"external_reference": "Does not match the payment.",
		})
	}

	var order models.Order
	err = p.store.InTx(ctx, func(tx repository.Tx) error {
		order, err = tx.LockOrderByRef(ctx, status.ExternalReference)
		if err != nil {
			return err
		}
		if !order.State.Open() {
			return errAlreadyRecorded
		}

		amount := status.Amount
		if amount.IsZero() {
			amount = GetTotal(order)
		}
		_, err := tx.CreatePayment(ctx, models.Payment{
			ChargeID:  status.ChargeID,
			UserID:    order.UserID,
			OrderID:   order.ID,
			Amount:    amount,
			Method:    models.PaymentMercadoPago,
			Timestamp: p.now(),
		})
		if errors.Is(err, repository.ErrConflict) {
			return errAlreadyRecorded
		}
		if err != nil {
			return err
		}

		if err := order.Transition(models.StatePaid); err != nil {
			return err
		}
		order.OrderedDate = p.now()
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.MarkLinesOrdered(ctx, order.ID); err != nil {
			return err
		}
		for _, line := range order.Items {
			if err := tx.DecrementStock(ctx, line.Book.ID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errAlreadyRecorded) {
		n.Notify(notify.Success, msgPaymentApproved)
		paymentsRecorded.WithLabelValues("duplicate").Inc()
		return CallbackResult{Outcome: outcome, Order: &order}, nil
	}
	if err != nil {
		paymentsRecorded.WithLabelValues("error").Inc()
		p.logger.Error("record payment failed", zap.String("charge_id", status.ChargeID), zap.Error(err))
		return CallbackResult{}, err
	}

	paymentsRecorded.WithLabelValues("ok").Inc()
	n.Notify(notify.Success, msgPaymentApproved)
	p.afterPayment(ctx, order, status)
	return CallbackResult{Outcome: outcome, Recorded: true, Order: &order}, nil
}

// afterPayment runs the side effects of a committed payment. None of them
// can undo it, so failures are only logged.
func (p *Payments) afterPayment(ctx context.Context, order models.Order, status models.PaymentStatus) {
	if p.events != nil {
		err := p.events.Publish(ctx, events.OrderEvent{
			Type:       events.TypePaymentRecorded,
			OrderID:    order.ID,
			RefCode:    order.RefCode,
			UserID:     order.UserID,
			Amount:     GetTotal(order),
			ChargeID:   status.ChargeID,
			OccurredAt: p.now(),
		})
		if err != nil {
			p.logger.Warn("publish payment event failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	if p.mailer == nil {
		return
	}
	user, err := p.store.UserByID(ctx, order.UserID)
	if err != nil {
		p.logger.Warn("load buyer for confirmation failed", zap.String("user_id", order.UserID), zap.Error(err))
		return
	}
	if err := p.mailer.SendOrderConfirmation(ctx, user.Email, order); err != nil {
		p.logger.Warn("send order confirmation failed", zap.String("ref_code", order.RefCode), zap.Error(err))
	}
}

// Purchases lists the user's orders that left the cart, newest first.
func (p *Payments) Purchases(ctx context.Context, userID string) ([]models.Order, error) {
	return p.store.ClosedOrders(ctx, userID)
}
