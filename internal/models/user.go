package models

import "time"

const (
	UserRoleCustomer = "customer"
	UserRoleStaff    = "staff"
)

type User struct {
	ID        string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) IsStaff() bool {
	return u.Role == UserRoleStaff
}
