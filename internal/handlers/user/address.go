package user

import (
	"net/http"
	"strconv"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AddressHandler struct {
	addresses *services.Addresses
	logger    *zap.Logger
}

func NewAddressHandler(addresses *services.Addresses, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{addresses: addresses, logger: logger}
}

// GET /api/addresses
func (h *AddressHandler) List(c *gin.Context) {
	addrs, err := h.addresses.List(c.Request.Context(), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"addresses": addrs})
}

// POST /api/addresses
func (h *AddressHandler) Create(c *gin.Context) {
	var in models.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	addr, err := h.addresses.Create(c.Request.Context(), handlers.UserID(c), in)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusCreated, gin.H{"address": addr})
}

// POST /api/addresses/:id/default
func (h *AddressHandler) MakeDefault(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handlers.BadRequest(c, err)
		return
	}

	addr, err := h.addresses.MakeDefault(c.Request.Context(), handlers.UserID(c), id)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"address": addr})
}
