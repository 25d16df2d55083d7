package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// Repository persists the catalog in PostgreSQL.
type Repository interface {
	CreateProduct(ctx context.Context, shopID int64, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, shopID, productID int64, in ProductInput) error
	DeleteProduct(ctx context.Context, shopID, productID int64) error
	ListProducts(ctx context.Context, shopID int64) ([]Product, error)
	GetProduct(ctx context.Context, shopID, productID int64) (Product, error)

	CreateBrand(ctx context.Context, shopID int64, name string) (Brand, error)
	RenameBrand(ctx context.Context, shopID, brandID int64, name string) error
	ListBrands(ctx context.Context, shopID int64) ([]Brand, error)
	GetBrand(ctx context.Context, shopID, brandID int64) (Brand, error)

	CreateCategory(ctx context.Context, shopID int64, name string) (Category, error)
	RenameCategory(ctx context.Context, shopID, categoryID int64, name string) error
	ListCategories(ctx context.Context, shopID int64) ([]Category, error)
	GetCategory(ctx context.Context, shopID, categoryID int64) (Category, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productSelect = `
SELECT p.id, p.shop_id, p.brand_id, p.category_id, p.name, p.price, p.quantity, p.reorder_level, p.created_at,
       b.name AS brand_name, c.name AS category_name
FROM products p
LEFT JOIN brands b ON b.id = p.brand_id
LEFT JOIN categories c ON c.id = p.category_id`

func (r *repository) CreateProduct(ctx context.Context, shopID int64, in ProductInput) (Product, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (shop_id, brand_id, category_id, name, reorder_level)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		shopID, in.BrandID, in.CategoryID, in.Name, in.ReorderLevel,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, shared.ErrDuplicateName
		}
		return Product{}, err
	}
	return r.GetProduct(ctx, shopID, id)
}

func (r *repository) UpdateProduct(ctx context.Context, shopID, productID int64, in ProductInput) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $3, brand_id = $4, category_id = $5, reorder_level = $6
		 WHERE shop_id = $1 AND id = $2`,
		shopID, productID, in.Name, in.BrandID, in.CategoryID, in.ReorderLevel,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product. Its batches cascade-delete; historical
// sale items keep their name snapshot and lose only the product reference.
func (r *repository) DeleteProduct(ctx context.Context, shopID, productID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE shop_id = $1 AND id = $2`, shopID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListProducts(ctx context.Context, shopID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.shop_id = $1 ORDER BY p.id DESC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *repository) GetProduct(ctx context.Context, shopID, productID int64) (Product, error) {
	row := r.pool.QueryRow(ctx, productSelect+` WHERE p.shop_id = $1 AND p.id = $2`, shopID, productID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ShopID, &p.BrandID, &p.CategoryID, &p.Name, &p.Price, &p.Quantity,
		&p.ReorderLevel, &p.CreatedAt, &p.BrandName, &p.CategoryName)
	return p, err
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) CreateBrand(ctx context.Context, shopID int64, name string) (Brand, error) {
	var b Brand
	err := r.pool.QueryRow(ctx,
		`INSERT INTO brands (shop_id, name) VALUES ($1, $2) RETURNING id, shop_id, name, created_at`,
		shopID, name,
	).Scan(&b.ID, &b.ShopID, &b.Name, &b.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Brand{}, shared.ErrDuplicateName
		}
		return Brand{}, err
	}
	return b, nil
}

func (r *repository) RenameBrand(ctx context.Context, shopID, brandID int64, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE brands SET name = $3 WHERE shop_id = $1 AND id = $2`, shopID, brandID, name)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListBrands(ctx context.Context, shopID int64) ([]Brand, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, shop_id, name, created_at FROM brands WHERE shop_id = $1 ORDER BY name ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []Brand{}
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.ShopID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *repository) GetBrand(ctx context.Context, shopID, brandID int64) (Brand, error) {
	var b Brand
	err := r.pool.QueryRow(ctx,
		`SELECT id, shop_id, name, created_at FROM brands WHERE shop_id = $1 AND id = $2`,
		shopID, brandID,
	).Scan(&b.ID, &b.ShopID, &b.Name, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Brand{}, shared.ErrNotFound
		}
		return Brand{}, err
	}
	return b, nil
}

func (r *repository) CreateCategory(ctx context.Context, shopID int64, name string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (shop_id, name) VALUES ($1, $2) RETURNING id, shop_id, name, created_at`,
		shopID, name,
	).Scan(&c.ID, &c.ShopID, &c.Name, &c.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, shared.ErrDuplicateName
		}
		return Category{}, err
	}
	return c, nil
}

func (r *repository) RenameCategory(ctx context.Context, shopID, categoryID int64, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $3 WHERE shop_id = $1 AND id = $2`, shopID, categoryID, name)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListCategories(ctx context.Context, shopID int64) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, shop_id, name, created_at FROM categories WHERE shop_id = $1 ORDER BY name ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) GetCategory(ctx context.Context, shopID, categoryID int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, shop_id, name, created_at FROM categories WHERE shop_id = $1 AND id = $2`,
		shopID, categoryID,
	).Scan(&c.ID, &c.ShopID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

var _ Repository = (*repository)(nil)
