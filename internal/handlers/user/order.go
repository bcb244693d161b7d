package user

import (
	"net/http"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchasesHandler struct {
	payments *services.Payments
	logger   *zap.Logger
}

func NewPurchasesHandler(payments *services.Payments, logger *zap.Logger) *PurchasesHandler {
	return &PurchasesHandler{payments: payments, logger: logger}
}

// GET /api/purchases
func (h *PurchasesHandler) List(c *gin.Context) {
	orders, err := h.payments.Purchases(c.Request.Context(), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"orders": orders})
}
