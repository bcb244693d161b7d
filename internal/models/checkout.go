package models

// CheckoutForm is the submitted checkout page.
type CheckoutForm struct {
	Names              string `json:"names" form:"names"`
	LastNames          string `json:"last_names" form:"last_names"`
	Phone              string `json:"phone" form:"phone" validate:"required,max=14"`
	Email              string `json:"email" form:"email" validate:"required,email"`
	StreetAddress      string `json:"street_address" form:"street_address"`
	Country            string `json:"shipping_country" form:"shipping_country"`
	State              string `json:"shipping_state" form:"shipping_state"`
	City               string `json:"shipping_city" form:"shipping_city"`
	Zip                string `json:"shipping_zip" form:"shipping_zip" validate:"max=5"`
	SaveAddress        bool   `json:"save_address" form:"save_address"`
	SetDefaultShipping bool   `json:"set_default_shipping" form:"set_default_shipping"`
	PaymentOption      string `json:"payment_option" form:"payment_option" validate:"required"`
	ShippingOption     string `json:"shipping_option" form:"shipping_option" validate:"required,oneof=dhl sepomex local_pickup local-pickup"`
}

const DefaultCountry = "México"

// ShippingAddress extracts the address part of the form. An empty country
// falls back to DefaultCountry.
func (f CheckoutForm) ShippingAddress() AddressInput {
	country := f.Country
	if country == "" {
		country = DefaultCountry
	}
	return AddressInput{
		Names:         f.Names,
		LastNames:     f.LastNames,
		Phone:         f.Phone,
		Email:         f.Email,
		StreetAddress: f.StreetAddress,
		Country:       country,
		State:         f.State,
		City:          f.City,
		Zip:           f.Zip,
		Type:          AddressShipping,
		Default:       f.SetDefaultShipping,
	}
}

type SignupInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
