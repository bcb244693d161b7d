package repository

import (
	"context"
	"strings"

	"djbooks_back_end/internal/models"
)

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	return u, mapError(err)
}

// CreateUser stores a user whose Password already holds the hash.
func (q queries) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.Role == "" {
		u.Role = models.UserRoleCustomer
	}
	return scanUser(q.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		u.Username, strings.ToLower(u.Email), u.Password, u.Role))
}

func (q queries) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (q queries) UserByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}
