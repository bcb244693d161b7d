package payment

import (
	"errors"
	"net/http"
	"strings"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	purchasesPath = "/purchases"

	msgPaymentUnconfirmed = "No pudimos confirmar tu pago, intenta de nuevo"
)

type PaymentHandler struct {
	payments      *services.Payments
	flashes       *notify.Flashes
	storefrontURL string
	logger        *zap.Logger
}

func NewPaymentHandler(payments *services.Payments, flashes *notify.Flashes, storefrontURL string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		flashes:       flashes,
		storefrontURL: strings.TrimRight(storefrontURL, "/"),
		logger:        logger,
	}
}

// GET /api/payment
func (h *PaymentHandler) Page(c *gin.Context) {
	page, err := h.payments.Page(c.Request.Context(), notify.FromContext(c), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"payment": page})
}

// GET /payments/:outcome
// The gateway sends the buyer's browser here. Messages survive the redirect
// back to the storefront as flashes.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var params services.CallbackParams
	if err := c.ShouldBindQuery(&params); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	n := notify.FromContext(c)
	res, err := h.payments.HandleCallback(c.Request.Context(), n, c.Param("outcome"), params)
	if errors.Is(err, models.ErrNotFound) {
		handlers.RespondError(c, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn("payment callback not settled",
			zap.String("payment_id", params.PaymentID),
			zap.String("external_reference", params.ExternalReference),
			zap.Error(err))
		n.Notify(notify.Error, msgPaymentUnconfirmed)
	}

	target := checkoutPath
	if err == nil && res.Outcome == services.CallbackApproved {
		target = purchasesPath
	}
	h.flashes.Persist(c)
	c.Redirect(http.StatusFound, h.storefrontURL+target)
}
