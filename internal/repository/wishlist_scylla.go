package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// SessionSource hands out a live session for the per-user keyspace.
type SessionSource interface {
	UsersSession() (*gocql.Session, error)
}

// ScyllaWishlist stores wishlists in ScyllaDB, partitioned by user.
type ScyllaWishlist struct {
	sessions SessionSource
}

func NewScyllaWishlist(sessions SessionSource) *ScyllaWishlist {
	return &ScyllaWishlist{sessions: sessions}
}

func (w *ScyllaWishlist) EnsureTable(ctx context.Context) error {
	session, err := w.sessions.UsersSession()
	if err != nil {
		return err
	}
	return session.Query(`CREATE TABLE IF NOT EXISTS wishlist (
		user_id text,
		book_id bigint,
		added_at timestamp,
		PRIMARY KEY (user_id, book_id)
	)`).WithContext(ctx).Exec()
}

func (w *ScyllaWishlist) Add(ctx context.Context, userID string, bookID int64, at time.Time) error {
	session, err := w.sessions.UsersSession()
	if err != nil {
		return err
	}
	err = session.Query(`INSERT INTO wishlist (user_id, book_id, added_at) VALUES (?, ?, ?)`,
		userID, bookID, at).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("add book %d to wishlist: %w", bookID, err)
	}
	return nil
}

func (w *ScyllaWishlist) Remove(ctx context.Context, userID string, bookID int64) error {
	session, err := w.sessions.UsersSession()
	if err != nil {
		return err
	}
	return session.Query(`DELETE FROM wishlist WHERE user_id = ? AND book_id = ?`,
		userID, bookID).WithContext(ctx).Exec()
}

func (w *ScyllaWishlist) BookIDs(ctx context.Context, userID string) ([]int64, error) {
	session, err := w.sessions.UsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT book_id FROM wishlist WHERE user_id = ?`, userID).WithContext(ctx).Iter()
	ids := []int64{}
	var id int64
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("read wishlist: %w", err)
	}
	return ids, nil
}
