package user

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingInterval = 30 * time.Second

// CartSubscriber hands out a subscription to a user's cart channel.
type CartSubscriber interface {
	SubscribeCart(ctx context.Context, userID string) *redis.PubSub
}

type CartSocket struct {
	cart     *services.CartEngine
	updates  CartSubscriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewCartSocket accepts connections from allowedOrigin only. An empty origin
// accepts any.
func NewCartSocket(cart *services.CartEngine, updates CartSubscriber, allowedOrigin string, logger *zap.Logger) *CartSocket {
	return &CartSocket{
		cart:    cart,
		updates: updates,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
		logger: logger,
	}
}

type cartFrame struct {
	Type string          `json:"type"`
	Cart json.RawMessage `json:"cart,omitempty"`
}

// GET /api/cart/ws
func (s *CartSocket) Serve(c *gin.Context) {
	userID := handlers.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := s.updates.SubscribeCart(ctx, userID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		s.logger.Error("cart subscription failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	summary, err := s.cart.Summary(ctx, notify.Discard{}, userID)
	if err != nil {
		s.logger.Error("initial cart summary failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	initial, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := conn.WriteJSON(cartFrame{Type: "connected", Cart: initial}); err != nil {
		return
	}

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	ch := pubsub.Channel()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(cartFrame{Type: "cart_updated", Cart: json.RawMessage(msg.Payload)}); err != nil {
				s.logger.Debug("websocket write failed", zap.String("user_id", userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
