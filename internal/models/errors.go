package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoActiveOrder     = errors.New("you do not have an active order")
	ErrNotInCart         = errors.New("this item was not in your cart")
	ErrOutOfStock        = errors.New("lo sentimos, ya no hay ejemplares disponibles")
	ErrInvalidTransition = errors.New("invalid order state transition")
)

// ValidationError carries every field error of a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "form is not valid: " + e.FieldsText()
}

// FieldsText renders the field errors as "field: message" pairs sorted by
// field name.
func (e *ValidationError) FieldsText() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// GatewayError wraps any failure talking to the payment processor.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
