package user

import (
	"net/http"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WishlistHandler struct {
	wishlists *services.Wishlists
	logger    *zap.Logger
}

func NewWishlistHandler(wishlists *services.Wishlists, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, logger: logger}
}

// GET /api/wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	wishlist, err := h.wishlists.List(c.Request.Context(), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"wishlist": wishlist})
}

// POST /api/wishlist/:slug
func (h *WishlistHandler) Add(c *gin.Context) {
	if err := h.wishlists.AddToWishlist(c.Request.Context(), notify.FromContext(c), handlers.UserID(c), c.Param("slug")); err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	h.List(c)
}

// DELETE /api/wishlist/:slug
func (h *WishlistHandler) Remove(c *gin.Context) {
	if err := h.wishlists.RemoveFromWishlist(c.Request.Context(), notify.FromContext(c), handlers.UserID(c), c.Param("slug")); err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	h.List(c)
}
