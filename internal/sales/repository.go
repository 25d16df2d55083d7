package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/catalog"
	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// Repository persists the sales ledger and the customer registry.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	GetSale(ctx context.Context, shopID, saleID int64) (Sale, error)
	GetItems(ctx context.Context, saleID int64) ([]Item, error)
	Recent(ctx context.Context, shopID int64, limit int) ([]SaleWithItems, error)
	ByDateRange(ctx context.Context, shopID int64, start, end shared.Date) ([]SaleWithItems, error)

	CreateCustomer(ctx context.Context, shopID int64, name string, phone *string) (Customer, error)
	UpdateCustomer(ctx context.Context, shopID, customerID int64, name string, phone *string) error
	DeleteCustomer(ctx context.Context, shopID, customerID int64) error
	ListCustomers(ctx context.Context, shopID int64) ([]Customer, error)
	GetCustomer(ctx context.Context, shopID, customerID int64) (Customer, error)
}

// TxRepository is the mutation surface inside one ledger transaction.
type TxRepository interface {
	LockProduct(ctx context.Context, shopID, productID int64) (catalog.LockedProduct, error)
	ApplyQuantityDelta(ctx context.Context, shopID, productID int64, delta int) error
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	GetSaleForUpdate(ctx context.Context, shopID, saleID int64) (Sale, error)
	GetItemsForUpdate(ctx context.Context, saleID int64) ([]Item, error)
	AddReturnedQuantity(ctx context.Context, itemID int64, quantity int, now time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (t *txRepository) LockProduct(ctx context.Context, shopID, productID int64) (catalog.LockedProduct, error) {
	return catalog.GetForUpdate(ctx, t.tx, shopID, productID)
}

func (t *txRepository) ApplyQuantityDelta(ctx context.Context, shopID, productID int64, delta int) error {
	return catalog.ApplyQuantityDelta(ctx, t.tx, shopID, productID, delta)
}

func (t *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (shop_id, sale_type, total_amount, customer_id, reference_sale_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sale.ShopID, sale.Type, sale.TotalAmount, sale.CustomerID, sale.ReferenceSaleID,
	).Scan(&id)
	return id, err
}

func (t *txRepository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.SaleID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice,
	).Scan(&id)
	return id, err
}

const saleSelect = `
SELECT s.id, s.shop_id, s.sale_type, s.total_amount, s.customer_id, c.name, s.reference_sale_id, s.created_at
FROM sales s
LEFT JOIN customers c ON c.id = s.customer_id`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.ShopID, &s.Type, &s.TotalAmount, &s.CustomerID, &s.CustomerName,
		&s.ReferenceSaleID, &s.CreatedAt)
	return s, err
}

func (t *txRepository) GetSaleForUpdate(ctx context.Context, shopID, saleID int64) (Sale, error) {
	// FOR UPDATE cannot lock the nullable side of an outer join, so the
	// customer name is left unresolved here. Callers re-read after commit.
	var s Sale
	err := t.tx.QueryRow(ctx,
		`SELECT id, shop_id, sale_type, total_amount, customer_id, reference_sale_id, created_at
		 FROM sales WHERE shop_id = $1 AND id = $2 FOR UPDATE`,
		shopID, saleID,
	).Scan(&s.ID, &s.ShopID, &s.Type, &s.TotalAmount, &s.CustomerID, &s.ReferenceSaleID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

const itemSelect = `
SELECT id, sale_id, product_id, product_name, quantity, unit_price, returned_quantity, returned_at
FROM sale_items`

func scanItems(rows pgx.Rows) ([]Item, error) {
	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.ReturnedQuantity, &it.ReturnedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *txRepository) GetItemsForUpdate(ctx context.Context, saleID int64) ([]Item, error) {
	rows, err := t.tx.Query(ctx, itemSelect+` WHERE sale_id = $1 ORDER BY id FOR UPDATE`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// AddReturnedQuantity bumps a line's returned counter. returned_at is set
// once, the first time the counter reaches the full quantity, and never
// cleared afterwards.
func (t *txRepository) AddReturnedQuantity(ctx context.Context, itemID int64, quantity int, now time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE sale_items
		 SET returned_quantity = returned_quantity + $2,
		     returned_at = CASE
		         WHEN returned_at IS NULL AND returned_quantity + $2 >= quantity THEN $3
		         ELSE returned_at
		     END
		 WHERE id = $1 AND returned_quantity + $2 <= quantity`,
		itemID, quantity, now,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidReturnAmount
	}
	return nil
}

func (r *repository) GetSale(ctx context.Context, shopID, saleID int64) (Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, saleSelect+` WHERE s.shop_id = $1 AND s.id = $2`, shopID, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

func (r *repository) GetItems(ctx context.Context, saleID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemSelect+` WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *repository) Recent(ctx context.Context, shopID int64, limit int) ([]SaleWithItems, error) {
	rows, err := r.pool.Query(ctx,
		saleSelect+` WHERE s.shop_id = $1 ORDER BY s.created_at DESC, s.id DESC LIMIT $2`, shopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales, err := scanSales(rows)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, sales)
}

func (r *repository) ByDateRange(ctx context.Context, shopID int64, start, end shared.Date) ([]SaleWithItems, error) {
	rows, err := r.pool.Query(ctx,
		saleSelect+` WHERE s.shop_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		 ORDER BY s.created_at DESC, s.id DESC`,
		shopID, start.Time, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales, err := scanSales(rows)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, sales)
}

func scanSales(rows pgx.Rows) ([]Sale, error) {
	sales := []Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *repository) attachItems(ctx context.Context, sales []Sale) ([]SaleWithItems, error) {
	if len(sales) == 0 {
		return []SaleWithItems{}, nil
	}

	ids := make([]int64, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}

	rows, err := r.pool.Query(ctx, itemSelect+` WHERE sale_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}

	bySale := make(map[int64][]Item, len(sales))
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}

	out := make([]SaleWithItems, len(sales))
	for i, s := range sales {
		out[i] = SaleWithItems{Sale: s, Items: bySale[s.ID]}
	}
	return out, nil
}

func (r *repository) CreateCustomer(ctx context.Context, shopID int64, name string, phone *string) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (shop_id, name, phone) VALUES ($1, $2, $3)
		 RETURNING id, shop_id, name, phone, created_at`,
		shopID, name, phone,
	).Scan(&c.ID, &c.ShopID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Customer{}, shared.ErrDuplicateName
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *repository) UpdateCustomer(ctx context.Context, shopID, customerID int64, name string, phone *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $3, phone = $4 WHERE shop_id = $1 AND id = $2`,
		shopID, customerID, name, phone)
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

// DeleteCustomer removes the registry entry. Past sales keep their rows; the
// customer reference goes NULL through the foreign key's SET NULL rule.
func (r *repository) DeleteCustomer(ctx context.Context, shopID, customerID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE shop_id = $1 AND id = $2`, shopID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListCustomers(ctx context.Context, shopID int64) ([]Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, shop_id, name, phone, created_at FROM customers WHERE shop_id = $1 ORDER BY name ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *repository) GetCustomer(ctx context.Context, shopID, customerID int64) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, shop_id, name, phone, created_at FROM customers WHERE shop_id = $1 AND id = $2`,
		shopID, customerID,
	).Scan(&c.ID, &c.ShopID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

var _ Repository = (*repository)(nil)
