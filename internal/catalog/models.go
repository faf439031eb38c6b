package catalog

import (
	"fmt"
	"time"
)

type ProductType string

const (
	TypeBox    ProductType = "BOX"    // booster box
	TypeSingle ProductType = "SINGLE" // single card
	TypeSealed ProductType = "SEALED" // sealed product
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          string      `json:"id"`
	CategoryID  *string     `json:"category_id,omitempty"` // nullable; kategori dihapus -> NULL
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	PriceCents  int         `json:"price_cents"`
	Currency    string      `json:"currency"`
	Image       string      `json:"image"`
	IsPreorder  bool        `json:"is_preorder"`
	ProductType ProductType `json:"product_type"`
	Available   bool        `json:"available"`
	Stock       int         `json:"stock"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// FormatCents renders integer cents as a decimal string, e.g. 3500 -> "35.00".
func FormatCents(c int) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
