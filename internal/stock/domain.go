// Package stock is the append-only restock ledger. Every discrete purchase
// becomes an immutable batch row; the matching product quantity bump happens
// in the same transaction, never independently.
package stock

import (
	"fmt"
	"time"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Batch is one immutable restock event for a product.
type Batch struct {
	ID           int64       `json:"id"`
	ShopID       int64       `json:"shop_id"`
	ProductID    int64       `json:"product_id"`
	ProductName  string      `json:"product_name"`
	Quantity     int         `json:"quantity"`
	PurchaseRate float64     `json:"purchase_rate"`
	SalePrice    float64     `json:"sale_price"`
	BatchDate    shared.Date `json:"batch_date"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Entry is one validated line of a restock request.
type Entry struct {
	ProductID    int64
	Quantity     int
	PurchaseRate float64
	SalePrice    float64
}

// Input is a normalized restock request: one batch date shared by one or
// more entries.
type Input struct {
	BatchDate shared.Date
	Entries   []Entry
}

// Form is the raw restock request before normalization. Two shapes are
// accepted: a single product with top-level fields, or a parallel entries
// list sharing one batch date. Exactly one shape must be present.
type Form struct {
	BatchDate string `json:"batch_date"`

	ProductID    *int64   `json:"product_id"`
	Quantity     *int     `json:"quantity"`
	PurchaseRate *float64 `json:"purchase_rate"`
	SalePrice    *float64 `json:"sale_price"`

	Entries []EntryForm `json:"entries"`
}

// EntryForm is one line of the multi-product shape.
type EntryForm struct {
	ProductID    int64   `json:"product_id"`
	Quantity     int     `json:"quantity"`
	PurchaseRate float64 `json:"purchase_rate"`
	SalePrice    float64 `json:"sale_price"`
}

// Normalize reduces either form shape to a single entries list, defaulting
// the batch date to today. Every entry is validated here so the ledger only
// ever sees well-formed input.
func (f Form) Normalize() (Input, error) {
	var in Input

	if f.BatchDate == "" {
		in.BatchDate = shared.Today()
	} else {
		d, err := shared.ParseDate(f.BatchDate)
		if err != nil {
			return Input{}, err
		}
		in.BatchDate = d
	}

	single := f.ProductID != nil
	if single && len(f.Entries) > 0 {
		return Input{}, fmt.Errorf("%w: provide either a single product or an entries list, not both", shared.ErrValidation)
	}

	switch {
	case single:
		e := EntryForm{ProductID: *f.ProductID}
		if f.Quantity != nil {
			e.Quantity = *f.Quantity
		}
		if f.PurchaseRate != nil {
			e.PurchaseRate = *f.PurchaseRate
		}
		if f.SalePrice != nil {
			e.SalePrice = *f.SalePrice
		}
		entry, err := e.validate(0)
		if err != nil {
			return Input{}, err
		}
		in.Entries = []Entry{entry}
	case len(f.Entries) > 0:
		for i, e := range f.Entries {
			entry, err := e.validate(i)
			if err != nil {
				return Input{}, err
			}
			in.Entries = append(in.Entries, entry)
		}
	default:
		return Input{}, fmt.Errorf("%w: no restock entries provided", shared.ErrValidation)
	}

	return in, nil
}

func (e EntryForm) validate(i int) (Entry, error) {
	if e.ProductID <= 0 {
		return Entry{}, fmt.Errorf("%w: entry %d: product id is required", shared.ErrValidation, i+1)
	}
	if e.Quantity <= 0 {
		return Entry{}, fmt.Errorf("%w: entry %d: quantity must be positive", shared.ErrValidation, i+1)
	}
	if e.PurchaseRate < 0 {
		return Entry{}, fmt.Errorf("%w: entry %d: purchase rate must not be negative", shared.ErrValidation, i+1)
	}
	if e.SalePrice < 0 {
		return Entry{}, fmt.Errorf("%w: entry %d: sale price must not be negative", shared.ErrValidation, i+1)
	}
	return Entry{
		ProductID:    e.ProductID,
		Quantity:     e.Quantity,
		PurchaseRate: e.PurchaseRate,
		SalePrice:    e.SalePrice,
	}, nil
}
