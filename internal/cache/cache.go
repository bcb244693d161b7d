package cache

import (
	"context"
	"time"

	"djbooks_back_end/internal/models"

	"go.uber.org/zap"
)

const (
	CollectionCacheTTL = 10 * time.Minute
	WishlistCacheTTL   = 10 * time.Minute
	BookCacheTTL       = 5 * time.Minute

	collectionKey = "collection:counts"
)

func wishlistKey(userID string) string { return "wishlist:" + userID }
func bookKey(slug string) string       { return "book:" + slug }

func (c *Cache) CategoryCounts(ctx context.Context) ([]models.CategoryCount, bool) {
	var counts []models.CategoryCount
	ok, err := c.GetJSON(ctx, collectionKey, &counts)
	if err != nil {
		c.logger.Warn("collection cache read failed", zap.Error(err))
		return nil, false
	}
	return counts, ok
}

func (c *Cache) SetCategoryCounts(ctx context.Context, counts []models.CategoryCount) {
	if err := c.SetJSON(ctx, collectionKey, counts, CollectionCacheTTL); err != nil {
		c.logger.Warn("collection cache write failed", zap.Error(err))
	}
}

func (c *Cache) Wishlist(ctx context.Context, userID string) (models.Wishlist, bool) {
	var w models.Wishlist
	ok, err := c.GetJSON(ctx, wishlistKey(userID), &w)
	if err != nil {
		c.logger.Warn("wishlist cache read failed", zap.String("user_id", userID), zap.Error(err))
		return models.Wishlist{}, false
	}
	return w, ok
}

func (c *Cache) SetWishlist(ctx context.Context, w models.Wishlist) {
	if err := c.SetJSON(ctx, wishlistKey(w.UserID), w, WishlistCacheTTL); err != nil {
		c.logger.Warn("wishlist cache write failed", zap.String("user_id", w.UserID), zap.Error(err))
	}
}

func (c *Cache) InvalidateWishlist(ctx context.Context, userID string) {
	c.Delete(ctx, wishlistKey(userID))
}

func (c *Cache) Book(ctx context.Context, slug string) (models.Book, bool) {
	var b models.Book
	ok, err := c.GetJSON(ctx, bookKey(slug), &b)
	if err != nil {
		return models.Book{}, false
	}
	return b, ok
}

func (c *Cache) SetBook(ctx context.Context, b models.Book) {
	if err := c.SetJSON(ctx, bookKey(b.Slug), b, BookCacheTTL); err != nil {
		c.logger.Warn("book cache write failed", zap.String("slug", b.Slug), zap.Error(err))
	}
}

// InvalidateBook drops the book page and the collection counts, both of which
// change when a book is saved.
func (c *Cache) InvalidateBook(ctx context.Context, slug string) {
	c.Delete(ctx, bookKey(slug), collectionKey)
}
