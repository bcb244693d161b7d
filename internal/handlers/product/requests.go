package product

import (
	"net/http"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookRequestHandler struct {
	requests *services.BookRequests
	logger   *zap.Logger
}

func NewBookRequestHandler(requests *services.BookRequests, logger *zap.Logger) *BookRequestHandler {
	return &BookRequestHandler{requests: requests, logger: logger}
}

// POST /api/book-requests
func (h *BookRequestHandler) Submit(c *gin.Context) {
	var req models.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	if err := h.requests.Submit(c.Request.Context(), notify.FromContext(c), req); err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusCreated, gin.H{"request": req})
}
