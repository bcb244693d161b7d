package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func blacklistKey(tokenID string) string { return "blacklist:" + tokenID }

// BlacklistToken revokes a JWT until it would have expired anyway.
func (c *Cache) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err()
}

// IsTokenBlacklisted fails open when redis is unreachable.
func (c *Cache) IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	n, err := c.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		c.logger.Warn("blacklist check failed", zap.Error(err))
		return false
	}
	return n > 0
}
