package models

import (
	"fmt"
	"strings"
)

type ShippingOption string

const (
	ShippingDHL         ShippingOption = "dhl"
	ShippingSepomex     ShippingOption = "sepomex"
	ShippingLocalPickup ShippingOption = "local_pickup"
)

// ParseShippingOption accepts the stored values and the hyphenated form
// value "local-pickup".
func ParseShippingOption(s string) (ShippingOption, error) {
	switch ShippingOption(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")) {
	case ShippingDHL:
		return ShippingDHL, nil
	case ShippingSepomex:
		return ShippingSepomex, nil
	case ShippingLocalPickup:
		return ShippingLocalPickup, nil
	}
	return "", fmt.Errorf("unknown shipping option %q", s)
}

type ShippingChoice struct {
	ID          ShippingOption `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
}

var ShippingChoices = []ShippingChoice{
	{ID: ShippingDHL, Name: "DHL", Description: "Envío express a domicilio"},
	{ID: ShippingSepomex, Name: "Sepomex", Description: "Correos de México"},
	{ID: ShippingLocalPickup, Name: "Recoger en tienda", Description: "Sin costo de envío"},
}
