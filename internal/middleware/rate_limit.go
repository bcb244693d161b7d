package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	CartMaxRequests     = 20
	SearchMaxRequests   = 30

	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	throttleWindow   = time.Minute
)

// Limiter is the redis-backed counter store behind every limit.
type Limiter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
	GetRateLimit(ctx context.Context, key string) (int64, error)
	Cooldown(ctx context.Context, key string) time.Duration
	StartCooldown(ctx context.Context, key string, d time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

func tooMany(c *gin.Context, msg string, retryAfter time.Duration) {
	c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       msg,
		"retry_after": int(retryAfter.Seconds()),
	})
}

// LoginRateLimit counts failed logins per email and locks the email out for
// LoginCooldown after LoginMaxAttempts failures.
func LoginRateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(body, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if ttl := l.Cooldown(ctx, cooldownKey); ttl > 0 {
			tooMany(c, fmt.Sprintf("too many failed logins, try again in %d minutes", int(ttl.Minutes())+1), ttl)
			return
		}
		if attempts, err := l.GetRateLimit(ctx, key); err == nil {
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", LoginMaxAttempts-attempts))
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			attempts, err := l.IncrementRateLimit(ctx, key, LoginCooldown)
			if err != nil {
				return
			}
			if attempts >= LoginMaxAttempts {
				_ = l.StartCooldown(ctx, cooldownKey, LoginCooldown)
				l.Delete(ctx, key)
			}
		case http.StatusOK:
			l.Delete(ctx, key, cooldownKey)
		}
	}
}

// RegisterRateLimit allows RegisterMaxAttempts signups per IP every
// RegisterCooldown.
func RegisterRateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "register_attempts:" + c.ClientIP()
		cooldownKey := "register_cooldown:" + c.ClientIP()

		if ttl := l.Cooldown(ctx, cooldownKey); ttl > 0 {
			tooMany(c, "too many signups from this address", ttl)
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			n, err := l.IncrementRateLimit(ctx, key, RegisterCooldown)
			if err == nil && n >= RegisterMaxAttempts {
				_ = l.StartCooldown(ctx, cooldownKey, RegisterCooldown)
				l.Delete(ctx, key)
			}
		}
	}
}

// throttle allows max requests per key and minute. Redis failures let the
// request through.
func throttle(l Limiter, prefix string, max int64, keyOf func(*gin.Context) string, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := keyOf(c)
		if id == "" {
			c.Next()
			return
		}

		n, err := l.IncrementRateLimit(c.Request.Context(), prefix+id, throttleWindow)
		if err != nil {
			c.Next()
			return
		}
		if n > max {
			tooMany(c, msg, throttleWindow)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max-n))
		c.Next()
	}
}

func CartRateLimit(l Limiter) gin.HandlerFunc {
	return throttle(l, "cart_updates:", CartMaxRequests, func(c *gin.Context) string {
		return c.GetString(ContextUserID)
	}, "too many cart updates, slow down")
}

func SearchRateLimit(l Limiter) gin.HandlerFunc {
	return throttle(l, "search_requests:", SearchMaxRequests, func(c *gin.Context) string {
		return c.ClientIP()
	}, "too many searches, try again in a minute")
}
