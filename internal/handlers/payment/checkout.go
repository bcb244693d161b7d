package payment

import (
	"net/http"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	checkoutPath = "/checkout"
	paymentPath  = "/payment"
)

type CheckoutHandler struct {
	checkout *services.Checkout
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout *services.Checkout, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// GET /api/checkout
func (h *CheckoutHandler) Render(c *gin.Context) {
	view, err := h.checkout.RenderCheckout(c.Request.Context(), notify.FromContext(c), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"checkout": view})
}

// POST /api/checkout
// Accepts the checkout form as JSON or form-encoded.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var form models.CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	res, err := h.checkout.SubmitCheckout(c.Request.Context(), notify.FromContext(c), handlers.UserID(c), form)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}

	redirect := checkoutPath
	if res.Outcome == services.OutcomeRedirectPayment {
		redirect = paymentPath
	}
	handlers.Respond(c, http.StatusOK, gin.H{"result": res, "redirect": redirect})
}
