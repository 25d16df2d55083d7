// Package catalog owns product identity, running stock quantity and the
// brand/category naming registries for a shop.
package catalog

import (
	"encoding/json"
	"errors"
	"time"
)

// Product is a shop-scoped catalog entry. Quantity is the running on-hand
// count; it is never set directly, only adjusted through restock and
// sale/return deltas.
type Product struct {
	ID           int64      `json:"id"`
	ShopID       int64      `json:"shop_id"`
	BrandID      *int64     `json:"brand_id,omitempty"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	Name         string     `json:"name"`
	Price        float64    `json:"price"`
	Quantity     int        `json:"quantity"`
	ReorderLevel int        `json:"reorder_level"`
	CreatedAt    time.Time  `json:"created_at"`
	BrandName    *string    `json:"brand_name,omitempty"`
	CategoryName *string    `json:"category_name,omitempty"`
}

// LowStock reports whether the product sits at or below its reorder level.
// Advisory only; nothing blocks selling below the threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// MarshalJSON adds the derived stock signals to the wire form.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		LowStock   bool `json:"low_stock"`
		OutOfStock bool `json:"out_of_stock"`
	}{alias(p), p.LowStock(), p.Quantity == 0})
}

// Brand is a shop-scoped display label.
type Brand struct {
	ID        int64     `json:"id"`
	ShopID    int64     `json:"shop_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a shop-scoped display label.
type Category struct {
	ID        int64     `json:"id"`
	ShopID    int64     `json:"shop_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductInput carries validated fields for registering or updating a product.
type ProductInput struct {
	Name         string
	BrandID      *int64
	CategoryID   *int64
	ReorderLevel int
}

// ErrCategoryRequired is returned when a product is registered without a
// category. The column is nullable; the rule lives here, once.
var ErrCategoryRequired = errors.New("catalog: category is required")
