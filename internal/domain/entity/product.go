package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryNew  Category = "new"
	CategoryTop  Category = "top"
	CategorySale Category = "sale"
)

// ParseCategory accepts an empty string as "all categories".
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CategoryNew, CategoryTop, CategorySale:
		return c, nil
	default:
		return "", fmt.Errorf("unknown product category %q", s)
	}
}

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price,omitempty"`
	Category    Category         `json:"category"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Badge       string           `json:"badge,omitempty"`
}

// Matches reports whether term occurs in the name or description, ignoring case.
func (p Product) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func (p Product) CartLine(quantity int) CartLine {
	return CartLine{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: quantity,
	}
}

// SampleProducts is the catalog installed into an empty products collection.
func SampleProducts() []Product {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	old := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	return []Product{
		{ID: "1", Name: "Modern Sofa Set", Price: price("100.00"), Category: CategoryNew,
			Description: "Comfortable modern sofa set for your living room", Image: "fa-couch", Badge: "New"},
		{ID: "2", Name: "Dining Chair", Price: price("15.00"), OldPrice: old("20.00"), Category: CategoryTop,
			Description: "Elegant dining chair with premium finish", Image: "fa-chair", Badge: "Popular"},
		{ID: "3", Name: "Queen Size Bed", Price: price("15.00"), OldPrice: old("30.00"), Category: CategorySale,
			Description: "Comfortable queen size bed with storage", Image: "fa-bed", Badge: "Sale"},
		{ID: "4", Name: "Dining Table", Price: price("120.00"), Category: CategoryNew,
			Description: "Modern dining table with glass top", Image: "fa-table", Badge: "New"},
		{ID: "5", Name: "Office Desk", Price: price("89.99"), Category: CategoryTop,
			Description: "Ergonomic office desk with storage", Image: "fa-desktop", Badge: "Popular"},
		{ID: "6", Name: "Bookshelf", Price: price("75.00"), OldPrice: old("90.00"), Category: CategorySale,
			Description: "Modern bookshelf with 5 shelves", Image: "fa-book", Badge: "Sale"},
	}
}
