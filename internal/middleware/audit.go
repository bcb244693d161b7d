package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditStaffAction logs every catalog change made by staff. A JSON body that
// sets a price is logged with the new price. Multipart bodies are not read.
func AuditStaffAction(logger *zap.Logger, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var newPrice any
		if c.ContentType() == gin.MIMEJSON {
			body, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
				var fields map[string]any
				if json.Unmarshal(body, &fields) == nil {
					newPrice = fields["price"]
				}
			}
		}

		c.Next()

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("staff_id", c.GetString(ContextUserID)),
			zap.String("slug", c.Param("slug")),
			zap.Int("status", c.Writer.Status()),
		}
		if newPrice != nil {
			fields = append(fields, zap.Any("new_price", newPrice))
		}

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			logger.Info("staff action", fields...)
		} else {
			logger.Warn("staff action failed", fields...)
		}
	}
}
