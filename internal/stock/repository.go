package stock

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/catalog"
	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// Repository persists the batch ledger. Mutations run through WithTx so a
// batch insert and its product quantity bump commit or roll back together.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	ListByShop(ctx context.Context, shopID int64) ([]Batch, error)
	ListByProduct(ctx context.Context, shopID, productID int64) ([]Batch, error)
	ListByDate(ctx context.Context, shopID int64, date shared.Date) ([]Batch, error)
}

// TxRepository is the mutation surface available inside a restock transaction.
type TxRepository interface {
	LockProduct(ctx context.Context, shopID, productID int64) (catalog.LockedProduct, error)
	InsertBatch(ctx context.Context, shopID int64, e Entry, date shared.Date) (int64, error)
	AddProductStock(ctx context.Context, shopID, productID int64, quantity int, salePrice *float64) error
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

func (t *txRepository) InsertBatch(ctx context.Context, shopID int64, e Entry, date shared.Date) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO stock_batches (shop_id, product_id, quantity, purchase_rate, sale_price, batch_date)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		shopID, e.ProductID, e.Quantity, e.PurchaseRate, e.SalePrice, date.Time,
	).Scan(&id)
	return id, err
}

func (t *txRepository) AddProductStock(ctx context.Context, shopID, productID int64, quantity int, salePrice *float64) error {
	return catalog.AddStock(ctx, t.tx, shopID, productID, quantity, salePrice)
}

const batchSelect = `
SELECT sb.id, sb.shop_id, sb.product_id, p.name, sb.quantity, sb.purchase_rate, sb.sale_price, sb.batch_date, sb.created_at
FROM stock_batches sb
JOIN products p ON p.id = sb.product_id`

// Batches list most recent first: batch date descending, then creation time
// descending as the tie break. The first batch per product in this order is
// authoritative for "current cost".
const batchOrder = ` ORDER BY sb.batch_date DESC, sb.created_at DESC`

func (r *repository) ListByShop(ctx context.Context, shopID int64) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, batchSelect+` WHERE sb.shop_id = $1`+batchOrder, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

func (r *repository) ListByProduct(ctx context.Context, shopID, productID int64) ([]Batch, error) {
	rows, err := r.pool.Query(ctx,
		batchSelect+` WHERE sb.shop_id = $1 AND sb.product_id = $2`+batchOrder, shopID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

func (r *repository) ListByDate(ctx context.Context, shopID int64, date shared.Date) ([]Batch, error) {
	rows, err := r.pool.Query(ctx,
		batchSelect+` WHERE sb.shop_id = $1 AND sb.batch_date = $2`+batchOrder, shopID, date.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

func scanBatches(rows pgx.Rows) ([]Batch, error) {
	batches := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.ShopID, &b.ProductID, &b.ProductName, &b.Quantity,
			&b.PurchaseRate, &b.SalePrice, &b.BatchDate.Time, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

var _ Repository = (*repository)(nil)
