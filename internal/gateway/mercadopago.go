package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"djbooks_back_end/internal/applog"
	"djbooks_back_end/internal/config"
	"djbooks_back_end/internal/models"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/mercadopago/sdk-go/pkg/requester"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var preferencesCreated = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "preferences_created_total",
		Help: "Mercado Pago preferences by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(preferencesCreated)
}

var tracer = otel.Tracer("djbooks/gateway")

// Preference is the hosted checkout created for an order.
type Preference struct {
	ID        string `json:"preference_id"`
	InitPoint string `json:"init_point"`
}

// MercadoPago creates checkout preferences and looks up payments. Calls are
// bounded by a timeout, retried with exponential backoff on transport errors
// and 5xx answers, and guarded by a circuit breaker.
type MercadoPago struct {
	preferences preference.Client
	payments    payment.Client
	cfg         config.MercadoPago
	breaker     *gobreaker.CircuitBreaker
	logger      *zap.Logger
	sleep       func(context.Context, time.Duration) error
}

func NewMercadoPago(cfg config.MercadoPago, logger *zap.Logger) (*MercadoPago, error) {
	return newMercadoPago(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

func newMercadoPago(cfg config.MercadoPago, r requester.Requester, logger *zap.Logger) (*MercadoPago, error) {
	mpCfg, err := mpconfig.New(cfg.AccessToken, mpconfig.WithHTTPClient(r))
	if err != nil {
		return nil, fmt.Errorf("mercado pago config: %w", err)
	}

	return &MercadoPago{
		preferences: preference.NewClient(mpCfg),
		payments:    payment.NewClient(mpCfg),
		cfg:         cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "mercadopago",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
			},
		}),
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BuildPreferenceRequest maps an order to a preference with one item per line.
// UnitPrice holds the line total while Quantity stays the line quantity.
func BuildPreferenceRequest(order models.Order, cfg config.MercadoPago) preference.Request {
	items := make([]preference.ItemRequest, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, preference.ItemRequest{
			ID:          strconv.FormatInt(line.Book.ID, 10),
			Title:       line.Book.Title,
			Description: line.Book.Description,
			PictureURL:  line.Book.CoverURL,
			CurrencyID:  cfg.Currency,
			Quantity:    line.Quantity,
			UnitPrice:   line.LineTotal().InexactFloat64(),
		})
	}

	return preference.Request{
		Items: items,
		BackURLs: &preference.BackURLsRequest{
			Success: cfg.SuccessURL,
			Failure: cfg.FailureURL,
			Pending: cfg.PendingURL,
		},
		AutoReturn:        "approved",
		ExternalReference: order.RefCode,
		NotificationURL:   cfg.NotificationURL,
	}
}

// CreatePreference returns a zero Preference for an order already paid.
func (g *MercadoPago) CreatePreference(ctx context.Context, order models.Order) (Preference, error) {
	if order.Flags().Paid {
		return Preference{}, nil
	}

	ctx, span := tracer.Start(ctx, "mercadopago.CreatePreference")
	defer span.End()
	span.SetAttributes(attribute.String("order.ref_code", order.RefCode), attribute.Int("order.lines", len(order.Items)))

	req := BuildPreferenceRequest(order, g.cfg)
	res, err := executeWithBreaker(g.breaker, func() (*preference.Response, error) {
		return withRetry(ctx, g, "create preference", func(ctx context.Context) (*preference.Response, error) {
			return g.preferences.Create(ctx, req)
		})
	})
	if err != nil {
		preferencesCreated.WithLabelValues("error").Inc()
		span.RecordError(err)
		return Preference{}, gatewayError("create preference", err)
	}

	preferencesCreated.WithLabelValues("ok").Inc()
	applog.Info(ctx, g.logger, "preference created",
		zap.String("ref_code", order.RefCode), zap.String("preference_id", res.ID))
	return Preference{ID: res.ID, InitPoint: res.InitPoint}, nil
}

// LookupPayment fetches the processor's view of a charge.
func (g *MercadoPago) LookupPayment(ctx context.Context, chargeID string) (models.PaymentStatus, error) {
	id, err := strconv.Atoi(chargeID)
	if err != nil {
		return models.PaymentStatus{}, &models.GatewayError{Op: "lookup payment", Err: fmt.Errorf("invalid payment id %q", chargeID)}
	}

	ctx, span := tracer.Start(ctx, "mercadopago.LookupPayment")
	defer span.End()

	res, err := executeWithBreaker(g.breaker, func() (*payment.Response, error) {
		return withRetry(ctx, g, "lookup payment", func(ctx context.Context) (*payment.Response, error) {
			return g.payments.Get(ctx, id)
		})
	})
	if err != nil {
		span.RecordError(err)
		return models.PaymentStatus{}, gatewayError("lookup payment", err)
	}

	return models.PaymentStatus{
		ChargeID:          strconv.Itoa(res.ID),
		Status:            res.Status,
		StatusDetail:      res.StatusDetail,
		ExternalReference: res.ExternalReference,
		Amount:            decimal.NewFromFloat(res.TransactionAmount).Round(2),
	}, nil
}

func withRetry[T any](ctx context.Context, g *MercadoPago, op string, call func(context.Context) (T, error)) (T, error) {
	var (
		res T
		err error
	)
	backoff := g.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		res, err = call(attemptCtx)
		cancel()

		if err == nil || !retryable(err) || attempt >= g.cfg.MaxRetries {
			return res, err
		}

		applog.Warn(ctx, g.logger, "mercado pago call failed, retrying",
			zap.String("op", op), zap.Int("attempt", attempt+1), zap.Duration("backoff", backoff), zap.Error(err))
		if serr := g.sleep(ctx, backoff); serr != nil {
			return res, err
		}
		backoff *= 2
	}
}

// retryable is true for transport failures and 5xx/429 answers.
func retryable(err error) bool {
	var respErr *mperror.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= 500 || respErr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}

func gatewayError(op string, err error) error {
	ge := &models.GatewayError{Op: op, Err: err}
	var respErr *mperror.ResponseError
	if errors.As(err, &respErr) {
		ge.StatusCode = respErr.StatusCode
	}
	return ge
}
