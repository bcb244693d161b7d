package handlers

import (
	"context"
	"net/http"
	"time"

	"djbooks_back_end/internal/notify"

	"github.com/gin-gonic/gin"
)

// GET /api/messages
func Messages(flashes *notify.Flashes) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": flashes.Drain(c)})
	}
}

// Check is one dependency probed by Health.
type Check func(ctx context.Context) error

// GET /healthz
func Health(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}
