package repository

import (
	"context"
	"time"
)

// PostgresWishlist keeps wishlist entries next to the catalog.
type PostgresWishlist struct {
	db DBTX
}

func NewPostgresWishlist(db DBTX) *PostgresWishlist {
	return &PostgresWishlist{db: db}
}

func (w *PostgresWishlist) Add(ctx context.Context, userID string, bookID int64, at time.Time) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO wishlist (user_id, book_id, added_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id) DO NOTHING`, userID, bookID, at)
	return mapError(err)
}

func (w *PostgresWishlist) Remove(ctx context.Context, userID string, bookID int64) error {
	_, err := w.db.ExecContext(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	return err
}

func (w *PostgresWishlist) BookIDs(ctx context.Context, userID string) ([]int64, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT book_id FROM wishlist WHERE user_id = $1 ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
