package user

import (
	"net/http"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/middleware"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *services.Accounts
	logger   *zap.Logger
}

func NewAuthHandler(accounts *services.Accounts, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var in models.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	res, err := h.accounts.Signup(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", res.User.ID))
	handlers.Respond(c, http.StatusCreated, gin.H{"token": res.Token, "user": res.User})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in models.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID := c.GetString(middleware.ContextTokenID)
	if err := h.accounts.Logout(c.Request.Context(), tokenID, middleware.TokenExpiry(c)); err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.accounts.User(c.Request.Context(), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"user": u})
}
