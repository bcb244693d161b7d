package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/repository"

	"go.uber.org/zap"
)

const (
	homeBooks        = 10
	homeNewBooks     = 5
	CategoryPageSize = 4
	maxQueryLength   = 100
	searchLimit      = 50
)

type CatalogStore interface {
	TxRunner
	CatalogReader
}

type CatalogCache interface {
	Book(ctx context.Context, slug string) (models.Book, bool)
	SetBook(ctx context.Context, b models.Book)
	InvalidateBook(ctx context.Context, slug string)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, bool)
	SetCategoryCounts(ctx context.Context, counts []models.CategoryCount)
}

type BookIndex interface {
	IndexBook(ctx context.Context, b models.Book) error
	SearchBookIDs(ctx context.Context, query string, limit int) ([]int64, error)
}

type HomePage struct {
	Books      []models.Book     `json:"books"`
	NewBooks   []models.Book     `json:"new_books"`
	Categories []models.Category `json:"categories"`
}

type CategoryPage struct {
	Category models.Category `json:"category"`
	Books    []models.Book   `json:"books"`
	Page     int             `json:"page"`
	NumPages int             `json:"num_pages"`
	Total    int             `json:"total"`
	HasNext  bool            `json:"has_next"`
	HasPrev  bool            `json:"has_previous"`
}

type Catalog struct {
	store  CatalogStore
	cache  CatalogCache
	index  BookIndex
	logger *zap.Logger
}

func NewCatalog(store CatalogStore, cache CatalogCache, index BookIndex, logger *zap.Logger) *Catalog {
	return &Catalog{store: store, cache: cache, index: index, logger: logger}
}

func (c *Catalog) Home(ctx context.Context) (HomePage, error) {
	books, err := c.store.LatestBooks(ctx, homeBooks)
	if err != nil {
		return HomePage{}, err
	}
	categories, err := c.store.Categories(ctx)
	if err != nil {
		return HomePage{}, err
	}

	newBooks := books
	if len(newBooks) > homeNewBooks {
		newBooks = newBooks[:homeNewBooks]
	}
	return HomePage{Books: books, NewBooks: newBooks, Categories: categories}, nil
}

// Book returns a book with its categories and related books.
func (c *Catalog) Book(ctx context.Context, slug string) (models.Book, error) {
	if b, ok := c.cache.Book(ctx, slug); ok {
		return b, nil
	}
	b, err := c.store.BookBySlug(ctx, slug)
	if err != nil {
		return models.Book{}, err
	}
	c.cache.SetBook(ctx, b)
	return b, nil
}

// Category pages a category's books, CategoryPageSize per page. Pages are
// 1-based; a page past the end is ErrNotFound except page 1 of an empty
// category.
func (c *Catalog) Category(ctx context.Context, slug string, page int) (CategoryPage, error) {
	if page < 1 {
		return CategoryPage{}, models.ErrNotFound
	}
	category, err := c.store.CategoryBySlug(ctx, slug)
	if err != nil {
		return CategoryPage{}, err
	}

	books, total, err := c.store.BooksByCategory(ctx, slug, CategoryPageSize, (page-1)*CategoryPageSize)
	if err != nil {
		return CategoryPage{}, err
	}

	numPages := (total + CategoryPageSize - 1) / CategoryPageSize
	if numPages == 0 {
		numPages = 1
	}
	if page > numPages {
		return CategoryPage{}, models.ErrNotFound
	}

	return CategoryPage{
		Category: category,
		Books:    books,
		Page:     page,
		NumPages: numPages,
		Total:    total,
		HasNext:  page < numPages,
		HasPrev:  page > 1,
	}, nil
}

// Collection lists every category with its number of books.
func (c *Catalog) Collection(ctx context.Context) ([]models.CategoryCount, error) {
	if counts, ok := c.cache.CategoryCounts(ctx); ok {
		return counts, nil
	}
	counts, err := c.store.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetCategoryCounts(ctx, counts)
	return counts, nil
}

// Search matches the query against title, author and tags. The search index
// answers when it is reachable; otherwise the database does.
func (c *Catalog) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Book{}, nil
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, models.NewValidationError(map[string]string{
			"query": "Ensure this value has at most 100 characters.",
		})
	}

	ids, err := c.index.SearchBookIDs(ctx, query, searchLimit)
	if errors.Is(err, ErrSearchUnavailable) {
		c.logger.Debug("search index unavailable, using database", zap.String("query", query))
		return c.store.SearchBooks(ctx, query, searchLimit)
	}
	if err != nil {
		return nil, err
	}

	books, err := c.store.BooksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(books, ids), nil
}

// orderByIDs puts books in the order of ids, dropping ids that no longer exist.
func orderByIDs(books []models.Book, ids []int64) []models.Book {
	byID := make(map[int64]models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	ordered := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

// SaveBook creates or updates a book, then refreshes the caches and the
// search index. An index failure leaves the book saved.
func (c *Catalog) SaveBook(ctx context.Context, b models.Book) (models.Book, error) {
	oldSlug := b.Slug
	var saved models.Book
	err := c.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		saved, err = tx.SaveBook(ctx, b)
		return err
	})
	if err != nil {
		return models.Book{}, err
	}

	if oldSlug != "" && oldSlug != saved.Slug {
		c.cache.InvalidateBook(ctx, oldSlug)
	}
	c.cache.InvalidateBook(ctx, saved.Slug)
	if err := c.index.IndexBook(ctx, saved); err != nil {
		c.logger.Warn("index book failed", zap.Int64("book_id", saved.ID), zap.Error(err))
	}
	return saved, nil
}
