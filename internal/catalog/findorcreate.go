package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ezzystore/ezzystore/internal/platform/db"
)

// Find-or-create helpers used by the spreadsheet importer. They run over a
// Queryer so the whole import can share one transaction.

// FindOrCreateBrand returns the id of the brand with the given name,
// inserting it if absent. The bool reports whether a row was created.
func FindOrCreateBrand(ctx context.Context, q db.Queryer, shopID int64, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO brands (shop_id, name) VALUES ($1, $2)
		 ON CONFLICT (shop_id, name) DO NOTHING RETURNING id`,
		shopID, name,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}
	err = q.QueryRow(ctx,
		`SELECT id FROM brands WHERE shop_id = $1 AND name = $2`, shopID, name).Scan(&id)
	return id, false, err
}

// FindOrCreateCategory returns the id of the category with the given name,
// inserting it if absent. The bool reports whether a row was created.
func FindOrCreateCategory(ctx context.Context, q db.Queryer, shopID int64, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO categories (shop_id, name) VALUES ($1, $2)
		 ON CONFLICT (shop_id, name) DO NOTHING RETURNING id`,
		shopID, name,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}
	err = q.QueryRow(ctx,
		`SELECT id FROM categories WHERE shop_id = $1 AND name = $2`, shopID, name).Scan(&id)
	return id, false, err
}

// FindOrCreateProduct returns the id of the named product, inserting a new
// row with zero quantity when no product of that name exists in the shop.
// The bool reports whether a row was created.
func FindOrCreateProduct(ctx context.Context, q db.Queryer, shopID int64, name string, brandID, categoryID *int64, reorderLevel int) (int64, bool, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO products (shop_id, brand_id, category_id, name, reorder_level)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (shop_id, name) DO NOTHING RETURNING id`,
		shopID, brandID, categoryID, name, reorderLevel,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}
	err = q.QueryRow(ctx,
		`SELECT id FROM products WHERE shop_id = $1 AND name = $2`, shopID, name).Scan(&id)
	return id, false, err
}
