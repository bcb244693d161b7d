package services

import (
	"context"
	"time"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"

	"go.uber.org/zap"
)

type WishlistCache interface {
	Wishlist(ctx context.Context, userID string) (models.Wishlist, bool)
	SetWishlist(ctx context.Context, w models.Wishlist)
	InvalidateWishlist(ctx context.Context, userID string)
}

type Wishlists struct {
	store  WishlistStore
	books  BookReader
	cache  WishlistCache
	logger *zap.Logger
	now    func() time.Time
}

func NewWishlists(store WishlistStore, books BookReader, cache WishlistCache, logger *zap.Logger) *Wishlists {
	return &Wishlists{store: store, books: books, cache: cache, logger: logger, now: time.Now}
}

func (w *Wishlists) List(ctx context.Context, userID string) (models.Wishlist, error) {
	if list, ok := w.cache.Wishlist(ctx, userID); ok {
		return list, nil
	}

	ids, err := w.store.BookIDs(ctx, userID)
	if err != nil {
		return models.Wishlist{}, err
	}
	books, err := w.books.BooksByIDs(ctx, ids)
	if err != nil {
		return models.Wishlist{}, err
	}

	list := models.Wishlist{UserID: userID, Items: orderByIDs(books, ids)}
	w.cache.SetWishlist(ctx, list)
	return list, nil
}

// AddToWishlist adds the book unless it is already there. Only an actual
// change is announced.
func (w *Wishlists) AddToWishlist(ctx context.Context, n notify.Notifier, userID, slug string) error {
	book, present, err := w.lookup(ctx, userID, slug)
	if err != nil || present {
		return err
	}
	if err := w.store.Add(ctx, userID, book.ID, w.now()); err != nil {
		return err
	}
	w.cache.InvalidateWishlist(ctx, userID)
	n.Notify(notify.Success, "Agregaste "+book.Title+" a tu wishlist")
	return nil
}

func (w *Wishlists) RemoveFromWishlist(ctx context.Context, n notify.Notifier, userID, slug string) error {
	book, present, err := w.lookup(ctx, userID, slug)
	if err != nil || !present {
		return err
	}
	if err := w.store.Remove(ctx, userID, book.ID); err != nil {
		return err
	}
	w.cache.InvalidateWishlist(ctx, userID)
	n.Notify(notify.Success, "Quitaste "+book.Title+" de tu wishlist")
	return nil
}

func (w *Wishlists) lookup(ctx context.Context, userID, slug string) (models.Book, bool, error) {
	book, err := w.books.BookBySlug(ctx, slug)
	if err != nil {
		return models.Book{}, false, err
	}
	ids, err := w.store.BookIDs(ctx, userID)
	if err != nil {
		return models.Book{}, false, err
	}
	for _, id := range ids {
		if id == book.ID {
			return book, true, nil
		}
	}
	return book, false, nil
}
