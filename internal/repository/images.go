package repository

import (
	"context"

	"djbooks_back_end/internal/models"
)

func (q queries) CreateImage(ctx context.Context, img models.ExtraImage) (models.ExtraImage, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO book_images (book_id, object_key, url, role) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		img.BookID, img.Key, img.URL, img.Role.String(),
	).Scan(&img.ID, &img.CreatedAt)
	return img, mapError(err)
}

func (q queries) ImagesForBook(ctx context.Context, bookID int64) ([]models.ExtraImage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, book_id, object_key, url, role, created_at FROM book_images
		WHERE book_id = $1 ORDER BY id`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.ExtraImage{}
	for rows.Next() {
		var (
			img  models.ExtraImage
			role string
		)
		if err := rows.Scan(&img.ID, &img.BookID, &img.Key, &img.URL, &role, &img.CreatedAt); err != nil {
			return nil, err
		}
		if img.Role, err = models.ParseImageRole(role); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
