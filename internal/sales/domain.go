// Package sales is the transaction ledger: every commercial event is a
// header plus immutable lines plus a monotonic returned-so-far counter per
// line. Quantity effects on the catalog happen in the same transaction as
// the ledger insert.
package sales

import (
	"time"
)

// Sale types.
const (
	TypeSale   = "sale"
	TypeReturn = "return"
)

// Sale is a transaction header. TotalAmount is computed at recording time
// and stored; it is never recomputed from the lines afterwards.
type Sale struct {
	ID              int64     `json:"id"`
	ShopID          int64     `json:"shop_id"`
	Type            string    `json:"sale_type"`
	TotalAmount     float64   `json:"total_amount"`
	CustomerID      *int64    `json:"customer_id,omitempty"`
	CustomerName    *string   `json:"customer_name,omitempty"`
	ReferenceSaleID *int64    `json:"reference_sale_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Item is one transaction line. ProductID goes nil if the product is later
// deleted; ProductName is a snapshot taken at recording time so history
// stays readable.
type Item struct {
	ID               int64      `json:"id"`
	SaleID           int64      `json:"sale_id"`
	ProductID        *int64     `json:"product_id,omitempty"`
	ProductName      string     `json:"product_name"`
	Quantity         int        `json:"quantity"`
	UnitPrice        float64    `json:"unit_price"`
	ReturnedQuantity int        `json:"returned_quantity"`
	ReturnedAt       *time.Time `json:"returned_at,omitempty"`
}

// Remaining is the quantity still eligible for return on this line.
func (i Item) Remaining() int {
	return i.Quantity - i.ReturnedQuantity
}

// FullyReturned reports whether the whole line has come back.
func (i Item) FullyReturned() bool {
	return i.ReturnedQuantity >= i.Quantity
}

// SaleWithItems pairs a header with its lines for read paths.
type SaleWithItems struct {
	Sale
	Items []Item `json:"items"`
}

// LineInput is one validated line of a sale or standalone return.
type LineInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// ReturnLineInput requests a return against one line of an existing sale.
// A nil UnitPrice means refund at the original line's price.
type ReturnLineInput struct {
	SaleItemID int64    `json:"sale_item_id"`
	Quantity   int      `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
}

// Customer is a shop-scoped label attached to sales for reporting. Deleting
// one unsets the reference on past sales, never invalidates them.
type Customer struct {
	ID        int64     `json:"id"`
	ShopID    int64     `json:"shop_id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
