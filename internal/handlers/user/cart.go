package user

import (
	"net/http"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	cart   *services.CartEngine
	logger *zap.Logger
}

func NewCartHandler(cart *services.CartEngine, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

// GET /api/cart
func (h *CartHandler) Summary(c *gin.Context) {
	summary, err := h.cart.Summary(c.Request.Context(), notify.FromContext(c), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"cart": summary})
}

// POST /api/cart/add/:slug
func (h *CartHandler) Add(c *gin.Context) {
	order, err := h.cart.AddToCart(c.Request.Context(), notify.FromContext(c), handlers.UserID(c), c.Param("slug"))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"order": order, "total": services.GetTotal(order), "redirect": handlers.CartPath})
}

// POST /api/cart/remove/:slug
func (h *CartHandler) Remove(c *gin.Context) {
	_, err := h.cart.RemoveFromCart(c.Request.Context(), notify.FromContext(c), handlers.UserID(c), c.Param("slug"))
	h.afterShrink(c, err)
}

// POST /api/cart/remove-item/:slug
func (h *CartHandler) Decrement(c *gin.Context) {
	_, err := h.cart.DecrementCartItem(c.Request.Context(), notify.FromContext(c), handlers.UserID(c), c.Param("slug"))
	h.afterShrink(c, err)
}

func (h *CartHandler) afterShrink(c *gin.Context, err error) {
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	summary, err := h.cart.Summary(c.Request.Context(), notify.Discard{}, handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"cart": summary, "redirect": handlers.CartPath})
}
