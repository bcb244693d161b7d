package middleware

import (
	"net/http"

	"djbooks_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireStaff must run after AuthRequired.
func RequireStaff(c *gin.Context) {
	if c.GetString(ContextRole) != models.UserRoleStaff {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
		return
	}
	c.Next()
}
