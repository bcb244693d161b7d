package repository

import (
	"context"
	"fmt"

	"djbooks_back_end/internal/models"

	"github.com/lib/pq"
)

const bookColumns = `b.id, b.title, b.author, b.editorial, b.edition, b.year, b.description, b.condition,
	b.price, b.discount_price, b.stock, b.slug, b.cover_url, b.back_url, b.tags, b.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (models.Book, error) {
	var b models.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Editorial, &b.Edition, &b.Year, &b.Description, &b.Condition,
		&b.Price, &b.DiscountPrice, &b.Stock, &b.Slug, &b.CoverURL, &b.BackURL, pq.Array(&b.Tags), &b.CreatedAt,
	)
	return b, err
}

func (q queries) listBooks(ctx context.Context, query string, args ...any) ([]models.Book, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BookBySlug loads a book with its categories and related books.
func (q queries) BookBySlug(ctx context.Context, slug string) (models.Book, error) {
	b, err := scanBook(q.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.slug = $1`, slug))
	if err != nil {
		return models.Book{}, mapError(err)
	}

	if b.Categories, err = q.bookCategories(ctx, b.ID); err != nil {
		return models.Book{}, err
	}
	if b.RelatedBooks, err = q.listBooks(ctx,
		`SELECT `+bookColumns+` FROM books b JOIN related_books r ON r.related_id = b.id
		WHERE r.book_id = $1 ORDER BY b.id`, b.ID); err != nil {
		return models.Book{}, err
	}
	return b, nil
}

func (q queries) BookByID(ctx context.Context, id int64) (models.Book, error) {
	b, err := scanBook(q.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = $1`, id))
	return b, mapError(err)
}

func (q queries) BooksByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	if len(ids) == 0 {
		return []models.Book{}, nil
	}
	return q.listBooks(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ANY($1) ORDER BY b.title`, pq.Array(ids))
}

func (q queries) LatestBooks(ctx context.Context, limit int) ([]models.Book, error) {
	return q.listBooks(ctx, `SELECT `+bookColumns+` FROM books b ORDER BY b.id DESC LIMIT $1`, limit)
}

// SearchBooks matches title or author case-insensitively, or an exact tag.
func (q queries) SearchBooks(ctx context.Context, term string, limit int) ([]models.Book, error) {
	return q.listBooks(ctx,
		`SELECT `+bookColumns+` FROM books b
		WHERE b.title ILIKE '%' || $1 || '%' OR b.author ILIKE '%' || $1 || '%' OR $1 = ANY(b.tags)
		ORDER BY b.id DESC LIMIT $2`, term, limit)
}

func (q queries) BooksByCategory(ctx context.Context, categorySlug string, limit, offset int) ([]models.Book, int, error) {
	var total int
	err := q.db.QueryRowContext(ctx,
		`SELECT count(*) FROM book_categories bc JOIN categories c ON c.id = bc.category_id WHERE c.slug = $1`,
		categorySlug).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	books, err := q.listBooks(ctx,
		`SELECT `+bookColumns+` FROM books b
		JOIN book_categories bc ON bc.book_id = b.id
		JOIN categories c ON c.id = bc.category_id
		WHERE c.slug = $1 ORDER BY b.id LIMIT $2 OFFSET $3`, categorySlug, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (q queries) bookCategories(ctx context.Context, bookID int64) ([]models.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.slug, c.image_url FROM categories c
		JOIN book_categories bc ON bc.category_id = c.id
		WHERE bc.book_id = $1 ORDER BY c.name`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SaveBook inserts or updates a book. The slug is always regenerated from the
// title.
func (q queries) SaveBook(ctx context.Context, b models.Book) (models.Book, error) {
	b.RefreshSlug()
	if b.Tags == nil {
		b.Tags = []string{}
	}

	if b.ID == 0 {
		err := q.db.QueryRowContext(ctx,
			`INSERT INTO books (title, author, editorial, edition, year, description, condition,
				price, discount_price, stock, slug, cover_url, back_url, tags)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, created_at`,
			b.Title, b.Author, b.Editorial, b.Edition, b.Year, b.Description, b.Condition,
			b.Price, b.DiscountPrice, b.Stock, b.Slug, b.CoverURL, b.BackURL, pq.Array(b.Tags),
		).Scan(&b.ID, &b.CreatedAt)
		return b, mapError(err)
	}

	res, err := q.db.ExecContext(ctx,
		`UPDATE books SET title = $2, author = $3, editorial = $4, edition = $5, year = $6,
			description = $7, condition = $8, price = $9, discount_price = $10, stock = $11,
			slug = $12, cover_url = $13, back_url = $14, tags = $15
		WHERE id = $1`,
		b.ID, b.Title, b.Author, b.Editorial, b.Edition, b.Year, b.Description, b.Condition,
		b.Price, b.DiscountPrice, b.Stock, b.Slug, b.CoverURL, b.BackURL, pq.Array(b.Tags))
	if err != nil {
		return models.Book{}, mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Book{}, models.ErrNotFound
	}
	return b, nil
}

// DecrementStock never takes stock below zero.
func (q queries) DecrementStock(ctx context.Context, bookID int64, quantity int) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE books SET stock = GREATEST(stock - $2, 0) WHERE id = $1`, bookID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock of book %d: %w", bookID, err)
	}
	return nil
}

func (q queries) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, slug, image_url FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q queries) CategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	var c models.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, image_url FROM categories WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL)
	return c, mapError(err)
}

// CategoryCounts returns every category with the number of books in it,
// including empty categories.
func (q queries) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.slug, c.image_url, count(bc.book_id)
		FROM categories c LEFT JOIN book_categories bc ON bc.category_id = c.id
		GROUP BY c.id ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Category.ID, &cc.Category.Name, &cc.Category.Slug, &cc.Category.ImageURL, &cc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}
