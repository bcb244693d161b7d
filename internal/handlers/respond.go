package handlers

import (
	"errors"
	"net/http"

	"djbooks_back_end/internal/applog"
	"djbooks_back_end/internal/middleware"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartPath is where the storefront shows the cart.
const CartPath = "/cart"

// Respond writes body with the request's messages and presentation added.
func Respond(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["messages"] = notify.FromContext(c).Messages()
	body["presentation"] = middleware.PresentationFrom(c)
	c.JSON(status, body)
}

// RespondError maps service errors onto HTTP answers. Anything unknown is a
// 500 and gets logged.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr *models.ValidationError
		gerr *models.GatewayError
	)
	switch {
	case errors.As(err, &verr):
		Respond(c, http.StatusUnprocessableEntity, gin.H{"error": "form is not valid", "fields": verr.Fields})
	case errors.As(err, &gerr):
		applog.Error(c.Request.Context(), logger, "payment gateway failure", zap.Error(err))
		Respond(c, http.StatusBadGateway, gin.H{"error": "payment failed", "detail": gerr.Op})
	case errors.Is(err, models.ErrNotFound):
		Respond(c, http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrNoActiveOrder):
		Respond(c, http.StatusOK, gin.H{"redirect": CartPath})
	case errors.Is(err, models.ErrOutOfStock):
		Respond(c, http.StatusConflict, gin.H{"error": err.Error(), "redirect": CartPath})
	case errors.Is(err, models.ErrInvalidTransition):
		Respond(c, http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		Respond(c, http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		applog.Error(c.Request.Context(), logger, "request failed", zap.String("path", c.FullPath()), zap.Error(err))
		Respond(c, http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// BadRequest answers a body or query that could not be decoded at all.
func BadRequest(c *gin.Context, err error) {
	Respond(c, http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
}

func UserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
