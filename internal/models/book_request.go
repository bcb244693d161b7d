package models

// BookRequest is a customer asking the store to source a title.
type BookRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Author  string `json:"author" validate:"max=200"`
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=14"`
	Message string `json:"message" validate:"max=2000"`
}
