package reports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Repository fetches raw ledger rows for aggregation.
type Repository interface {
	Headers(ctx context.Context, shopID int64, start, end shared.Date) ([]HeaderRow, error)
	Lines(ctx context.Context, shopID int64, start, end shared.Date) ([]LineRow, error)
	SaleLinesAllTime(ctx context.Context, shopID int64) ([]LineRow, error)
	Batches(ctx context.Context, shopID int64) ([]BatchRow, error)
	ProductStats(ctx context.Context, shopID int64) (ProductStats, error)
	ProductCountsByBrand(ctx context.Context, shopID int64) ([]GroupCount, error)
	ProductCountsByCategory(ctx context.Context, shopID int64) ([]GroupCount, error)
	CountCustomers(ctx context.Context, shopID int64) (int, error)
	CountBatches(ctx context.Context, shopID int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Headers(ctx context.Context, shopID int64, start, end shared.Date) ([]HeaderRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_type, total_amount, customer_id, created_at
		 FROM sales
		 WHERE shop_id = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at`,
		shopID, start.Time, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HeaderRow{}
	for rows.Next() {
		var h HeaderRow
		if err := rows.Scan(&h.SaleID, &h.SaleType, &h.TotalAmount, &h.CustomerID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const lineSelect = `
SELECT si.sale_id, s.sale_type, s.customer_id, c.name, si.product_id, si.quantity, si.unit_price, s.created_at
FROM sale_items si
JOIN sales s ON s.id = si.sale_id
LEFT JOIN customers c ON c.id = s.customer_id`

func scanLines(rows pgx.Rows) ([]LineRow, error) {
	out := []LineRow{}
	for rows.Next() {
		var l LineRow
		if err := rows.Scan(&l.SaleID, &l.SaleType, &l.CustomerID, &l.CustomerName,
			&l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Lines(ctx context.Context, shopID int64, start, end shared.Date) ([]LineRow, error) {
	rows, err := r.pool.Query(ctx,
		lineSelect+` WHERE s.shop_id = $1 AND s.created_at >= $2 AND s.created_at < $3`,
		shopID, start.Time, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

func (r *repository) SaleLinesAllTime(ctx context.Context, shopID int64) ([]LineRow, error) {
	rows, err := r.pool.Query(ctx,
		lineSelect+` WHERE s.shop_id = $1 AND s.sale_type = 'sale'`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

// Batches returns every batch most recent first; the aggregators rely on
// this ordering when picking latest rates and previews.
func (r *repository) Batches(ctx context.Context, shopID int64) ([]BatchRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sb.product_id, p.name, sb.quantity, sb.purchase_rate, sb.sale_price, sb.batch_date, sb.created_at
		 FROM stock_batches sb
		 JOIN products p ON p.id = sb.product_id
		 WHERE sb.shop_id = $1
		 ORDER BY sb.batch_date DESC, sb.created_at DESC`,
		shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BatchRow{}
	for rows.Next() {
		var b BatchRow
		if err := rows.Scan(&b.ProductID, &b.ProductName, &b.Quantity, &b.PurchaseRate,
			&b.SalePrice, &b.BatchDate.Time, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) ProductStats(ctx context.Context, shopID int64) (ProductStats, error) {
	var st ProductStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE quantity <= reorder_level),
		        COUNT(*) FILTER (WHERE quantity = 0),
		        COALESCE(SUM(quantity), 0)
		 FROM products WHERE shop_id = $1`, shopID).
		Scan(&st.Total, &st.LowStock, &st.OutOfStock, &st.StockUnits)
	return st, err
}

func (r *repository) ProductCountsByBrand(ctx context.Context, shopID int64) ([]GroupCount, error) {
	return r.groupCounts(ctx,
		`SELECT COALESCE(b.name, ''), COUNT(*)
		 FROM products p
		 LEFT JOIN brands b ON b.id = p.brand_id
		 WHERE p.shop_id = $1
		 GROUP BY b.name
		 ORDER BY COUNT(*) DESC, COALESCE(b.name, '')`, shopID)
}

func (r *repository) ProductCountsByCategory(ctx context.Context, shopID int64) ([]GroupCount, error) {
	return r.groupCounts(ctx,
		`SELECT COALESCE(c.name, ''), COUNT(*)
		 FROM products p
		 LEFT JOIN categories c ON c.id = p.category_id
		 WHERE p.shop_id = $1
		 GROUP BY c.name
		 ORDER BY COUNT(*) DESC, COALESCE(c.name, '')`, shopID)
}

func (r *repository) groupCounts(ctx context.Context, query string, shopID int64) ([]GroupCount, error) {
	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GroupCount{}
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repository) CountCustomers(ctx context.Context, shopID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE shop_id = $1`, shopID).Scan(&n)
	return n, err
}

func (r *repository) CountBatches(ctx context.Context, shopID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stock_batches WHERE shop_id = $1`, shopID).Scan(&n)
	return n, err
}

var _ Repository = (*repository)(nil)
