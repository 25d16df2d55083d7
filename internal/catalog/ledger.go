package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// Quantity mutations run against a row locked with SELECT ... FOR UPDATE so
// that concurrent sales cannot both pass a stock check against a stale read.
// The stock and sales ledgers call these helpers inside their own
// transactions; the products.quantity CHECK constraint is the last line of
// defense if a caller skips the lock.

// LockedProduct is the slice of a product row needed for quantity decisions.
type LockedProduct struct {
	ID       int64
	Name     string
	Quantity int
	Price    float64
}

// GetForUpdate loads and row-locks a product within the caller's transaction.
func GetForUpdate(ctx context.Context, q db.Queryer, shopID, productID int64) (LockedProduct, error) {
	var p LockedProduct
	err := q.QueryRow(ctx,
		`SELECT id, name, quantity, price FROM products WHERE shop_id = $1 AND id = $2 FOR UPDATE`,
		shopID, productID,
	).Scan(&p.ID, &p.Name, &p.Quantity, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LockedProduct{}, shared.ErrNotFound
		}
		return LockedProduct{}, err
	}
	return p, nil
}

// ApplyQuantityDelta adjusts the running quantity of a locked product.
// Negative deltas that would drive the count below zero fail with
// ErrInsufficientStock, either through the guard here or through the
// quantity CHECK constraint under concurrent pressure.
func ApplyQuantityDelta(ctx context.Context, q db.Queryer, shopID, productID int64, delta int) error {
	tag, err := q.Exec(ctx,
		`UPDATE products SET quantity = quantity + $3 WHERE shop_id = $1 AND id = $2 AND quantity + $3 >= 0`,
		shopID, productID, delta,
	)
	if err != nil {
		if db.IsCheckViolation(err, "products_quantity_check") {
			return shared.ErrInsufficientStock
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		if delta < 0 {
			return shared.ErrInsufficientStock
		}
		return shared.ErrNotFound
	}
	return nil
}

// AddStock increases the running quantity and, when salePrice is non-nil,
// refreshes the product's displayed reference price to the newest batch's
// sale price. Used by restock only.
func AddStock(ctx context.Context, q db.Queryer, shopID, productID int64, quantity int, salePrice *float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: restock quantity must be positive", shared.ErrValidation)
	}
	tag, err := q.Exec(ctx,
		`UPDATE products SET quantity = quantity + $3, price = COALESCE($4, price) WHERE shop_id = $1 AND id = $2`,
		shopID, productID, quantity, salePrice,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
