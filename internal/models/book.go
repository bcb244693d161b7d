package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type Book struct {
	ID            int64               `json:"id"`
	Title         string              `json:"title"`
	Author        string              `json:"author"`
	Editorial     string              `json:"editorial,omitempty"`
	Edition       string              `json:"edition,omitempty"`
	Year          int                 `json:"year,omitempty"`
	Description   string              `json:"description,omitempty"`
	Condition     string              `json:"condition,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	Stock         int                 `json:"stock"`
	Slug          string              `json:"slug"`
	CoverURL      string              `json:"cover_url,omitempty"`
	BackURL       string              `json:"back_url,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
	Categories    []Category          `json:"categories,omitempty"`
	RelatedBooks  []Book              `json:"related_books,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// EffectivePrice is the discount price when one is set, the list price otherwise.
func (b Book) EffectivePrice() decimal.Decimal {
	if b.DiscountPrice.Valid {
		return b.DiscountPrice.Decimal
	}
	return b.Price
}

func (b Book) InStock() bool {
	return b.Stock > 0
}

// RefreshSlug derives the slug from the current title. Called on every save.
func (b *Book) RefreshSlug() {
	b.Slug = Slugify(b.Title)
}

func Slugify(s string) string {
	return slug.Make(s)
}

// FormatPrice renders an amount with thousands separators and two decimals,
// e.g. 1234.5 -> "1,234.50".
func FormatPrice(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
