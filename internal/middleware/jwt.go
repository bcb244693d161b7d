package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"djbooks_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired.
const (
	ContextUserID       = "user_id"
	ContextEmail        = "email"
	ContextRole         = "role"
	ContextTokenID      = "token_id"
	ContextTokenExpires = "token_expires_at"
)

type Revocations interface {
	IsTokenBlacklisted(ctx context.Context, tokenID string) bool
}

// AuthRequired accepts "Authorization: Bearer <jwt>". WebSocket upgrades
// may pass the token as ?token= since browsers cannot set the header.
func AuthRequired(secret string, revoked Revocations) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			return
		}

		claims, err := utils.ParseJWT(tokenString, key)
		if err != nil || claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if revoked != nil && revoked.IsTokenBlacklisted(c.Request.Context(), claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpires, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		if t := c.Query("token"); t != "" {
			return t, true
		}
	}
	return "", false
}

// TokenExpiry returns the expiry of the request's token.
func TokenExpiry(c *gin.Context) time.Time {
	v, _ := c.Get(ContextTokenExpires)
	t, _ := v.(time.Time)
	return t
}
