package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'customer',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		image_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		editorial TEXT NOT NULL DEFAULT '',
		edition TEXT NOT NULL DEFAULT '',
		year INT NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		condition TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL,
		discount_price NUMERIC(10,2),
		stock INT NOT NULL DEFAULT 1 CHECK (stock >= 0),
		slug TEXT UNIQUE NOT NULL,
		cover_url TEXT NOT NULL DEFAULT '',
		back_url TEXT NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS book_categories (
		book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		PRIMARY KEY (book_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS related_books (
		book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		related_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		PRIMARY KEY (book_id, related_id)
	)`,
	`CREATE TABLE IF NOT EXISTS book_images (
		id BIGSERIAL PRIMARY KEY,
		book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		object_key TEXT NOT NULL,
		url TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'gallery',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		names TEXT NOT NULL DEFAULT '',
		last_names TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		street_address TEXT NOT NULL,
		country TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		zip TEXT NOT NULL,
		address_type TEXT NOT NULL CHECK (address_type IN ('billing', 'shipping')),
		is_default BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		ref_code TEXT UNIQUE NOT NULL,
		state TEXT NOT NULL DEFAULT 'cart',
		start_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		ordered_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		shipping_option TEXT NOT NULL DEFAULT '',
		shipping_address_id BIGINT REFERENCES addresses(id) ON DELETE SET NULL
	)`,
	// At most one open order (cart) per user.
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_one_open_per_user
		ON orders (user_id) WHERE state IN ('cart', 'address_pending', 'awaiting_payment')`,
	`CREATE TABLE IF NOT EXISTS order_books (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		book_id BIGINT NOT NULL REFERENCES books(id),
		quantity INT NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		ordered BOOLEAN NOT NULL DEFAULT false,
		UNIQUE (order_id, book_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		charge_id TEXT UNIQUE NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id),
		order_id BIGINT NOT NULL REFERENCES orders(id),
		amount NUMERIC(10,2) NOT NULL,
		payment_method TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, book_id)
	)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
