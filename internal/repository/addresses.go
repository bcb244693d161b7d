package repository

import (
	"context"

	"djbooks_back_end/internal/models"
)

const addressColumns = `id, user_id, names, last_names, phone, email, street_address, country, state, city, zip,
	address_type, is_default, created_at`

func scanAddress(row rowScanner) (models.Address, error) {
	var (
		a   models.Address
		typ string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Names, &a.LastNames, &a.Phone, &a.Email, &a.StreetAddress,
		&a.Country, &a.State, &a.City, &a.Zip, &typ, &a.Default, &a.CreatedAt)
	a.Type = models.AddressType(typ)
	return a, err
}

func (q queries) CreateAddress(ctx context.Context, a models.Address) (models.Address, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO addresses (user_id, names, last_names, phone, email, street_address, country, state,
			city, zip, address_type, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		a.UserID, a.Names, a.LastNames, a.Phone, a.Email, a.StreetAddress, a.Country, a.State,
		a.City, a.Zip, string(a.Type), a.Default,
	).Scan(&a.ID, &a.CreatedAt)
	return a, mapError(err)
}

func (q queries) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

// DefaultAddress returns the most recent address of that type flagged
// default. Several may carry the flag; the newest wins.
func (q queries) DefaultAddress(ctx context.Context, userID string, typ models.AddressType) (models.Address, error) {
	a, err := scanAddress(q.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses
		WHERE user_id = $1 AND address_type = $2 AND is_default
		ORDER BY created_at DESC, id DESC LIMIT 1`, userID, string(typ)))
	return a, mapError(err)
}

// SetDefaultAddress flags one address as default and clears the flag on the
// user's other addresses of the same type.
func (q queries) SetDefaultAddress(ctx context.Context, userID string, addressID int64) (models.Address, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE addresses SET is_default = false
		WHERE user_id = $1 AND id <> $2 AND is_default
		AND address_type = (SELECT address_type FROM addresses WHERE id = $2 AND user_id = $1)`,
		userID, addressID)
	if err != nil {
		return models.Address{}, err
	}

	a, err := scanAddress(q.db.QueryRowContext(ctx,
		`UPDATE addresses SET is_default = true WHERE id = $2 AND user_id = $1
		RETURNING `+addressColumns, userID, addressID))
	return a, mapError(err)
}
