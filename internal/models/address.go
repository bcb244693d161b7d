package models

import (
	"fmt"
	"strings"
	"time"
)

type AddressType string

const (
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
)

func ParseAddressType(s string) (AddressType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "billing", "b":
		return AddressBilling, nil
	case "shipping", "s":
		return AddressShipping, nil
	}
	return "", fmt.Errorf("unknown address type %q", s)
}

type Address struct {
	ID            int64       `json:"id"`
	UserID        string      `json:"user_id"`
	Names         string      `json:"names,omitempty"`
	LastNames     string      `json:"last_names,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Email         string      `json:"email,omitempty"`
	StreetAddress string      `json:"street_address"`
	Country       string      `json:"shipping_country"`
	State         string      `json:"shipping_state,omitempty"`
	City          string      `json:"shipping_city"`
	Zip           string      `json:"shipping_zip"`
	Type          AddressType `json:"address_type"`
	Default       bool        `json:"default"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AddressInput is the raw, unvalidated shape of an address.
type AddressInput struct {
	Names         string      `json:"names"`
	LastNames     string      `json:"last_names"`
	Phone         string      `json:"phone" validate:"max=14"`
	Email         string      `json:"email" validate:"omitempty,email"`
	StreetAddress string      `json:"street_address" validate:"required"`
	Country       string      `json:"shipping_country" validate:"required"`
	State         string      `json:"shipping_state"`
	City          string      `json:"shipping_city" validate:"required"`
	Zip           string      `json:"shipping_zip" validate:"required,max=5"`
	Type          AddressType `json:"address_type" validate:"oneof=billing shipping"`
	Default       bool        `json:"default"`
}

// NewAddress builds a valid Address or fails with a *ValidationError naming
// every invalid field. A single empty required field rejects the whole address.
func NewAddress(userID string, in AddressInput) (Address, error) {
	in.Names = strings.TrimSpace(in.Names)
	in.LastNames = strings.TrimSpace(in.LastNames)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.StreetAddress = strings.TrimSpace(in.StreetAddress)
	in.Country = strings.TrimSpace(in.Country)
	in.State = strings.TrimSpace(in.State)
	in.City = strings.TrimSpace(in.City)
	in.Zip = strings.TrimSpace(in.Zip)
	if in.Type == "" {
		in.Type = AddressShipping
	}

	if err := Validate(in); err != nil {
		return Address{}, err
	}

	return Address{
		UserID:        userID,
		Names:         in.Names,
		LastNames:     in.LastNames,
		Phone:         in.Phone,
		Email:         in.Email,
		StreetAddress: in.StreetAddress,
		Country:       in.Country,
		State:         in.State,
		City:          in.City,
		Zip:           in.Zip,
		Type:          in.Type,
		Default:       in.Default,
	}, nil
}
