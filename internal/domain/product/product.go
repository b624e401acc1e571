package product

import (
	"time"

	"github.com/brocantio/checkout/internal/domain/errors"
)

// Category represents the product category
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryFurniture   Category = "Furniture"
	CategoryToys        Category = "Toys"
	CategoryBooks       Category = "Books"
	CategorySports      Category = "Sports"
	CategoryPlants      Category = "Plants"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryFurniture,
	CategoryToys,
	CategoryBooks,
	CategorySports,
	CategoryPlants,
}

// IsValid reports whether the category is one of the known values.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a marketplace listing as served by the backend of record.
// BuyerID and BuyerEmail are set exactly once, when a transaction completes.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	SellerID    string    `json:"sellerId"`
	BuyerID     *string   `json:"buyerId,omitempty"`
	BuyerEmail  *string   `json:"buyerEmail,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"date"`
}

// Available reports whether the product can still be purchased.
func (p *Product) Available() bool {
	return p.BuyerID == nil
}

// Validate checks the invariants the checkout flow relies on.
func (p *Product) Validate() error {
	if p.ID == "" {
		return errors.NewValidationError("id", "cannot be empty")
	}
	if p.SellerID == "" {
		return errors.NewValidationError("sellerId", "cannot be empty")
	}
	if p.Price < 0 {
		return errors.NewValidationError("price", "must not be negative")
	}
	if p.Category != "" && !p.Category.IsValid() {
		return errors.ErrInvalidCategory
	}
	return nil
}
