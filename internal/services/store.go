package services

import (
	"context"
	"time"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/repository"
)

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

type BookReader interface {
	BookBySlug(ctx context.Context, slug string) (models.Book, error)
	BooksByIDs(ctx context.Context, ids []int64) ([]models.Book, error)
}

type OrderReader interface {
	OpenOrder(ctx context.Context, userID string) (models.Order, error)
	OrderByRef(ctx context.Context, refCode string) (models.Order, error)
	ClosedOrders(ctx context.Context, userID string) ([]models.Order, error)
}

type AddressReader interface {
	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	DefaultAddress(ctx context.Context, userID string, typ models.AddressType) (models.Address, error)
}

type CatalogReader interface {
	BookReader
	LatestBooks(ctx context.Context, limit int) ([]models.Book, error)
	SearchBooks(ctx context.Context, term string, limit int) ([]models.Book, error)
	BooksByCategory(ctx context.Context, categorySlug string, limit, offset int) ([]models.Book, int, error)
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (models.Category, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

// WishlistStore is implemented by the postgres and the scylla wishlist.
type WishlistStore interface {
	Add(ctx context.Context, userID string, bookID int64, at time.Time) error
	Remove(ctx context.Context, userID string, bookID int64) error
	BookIDs(ctx context.Context, userID string) ([]int64, error)
}

var _ interface {
	TxRunner
	CatalogReader
	OrderReader
	AddressReader
	UserStore
} = (*repository.Store)(nil)

var (
	_ ImageStore    = (*repository.Store)(nil)
	_ ObjectStorage = (*ImageStorage)(nil)
	_ WishlistStore = (*repository.PostgresWishlist)(nil)
	_ WishlistStore = (*repository.ScyllaWishlist)(nil)
)
