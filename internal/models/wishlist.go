package models

import "time"

type WishlistItem struct {
	UserID  string    `json:"user_id" db:"user_id"`
	BookID  int64     `json:"book_id" db:"book_id"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
}

type Wishlist struct {
	UserID string `json:"user_id"`
	Items  []Book `json:"items"`
}
