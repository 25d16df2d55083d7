package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockScanJob reports products sitting at or below their reorder level.
type LowStockScanJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLowStockScanJob constructs the job.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{pool: pool, logger: logger}
}

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	query := `
		SELECT p.shop_id, s.name, p.id, p.name, p.quantity, p.reorder_level
		FROM products p
		JOIN shops s ON s.id = p.shop_id
		WHERE p.quantity <= p.reorder_level`
	args := []any{}
	if payload.ShopID > 0 {
		query += ` AND p.shop_id = $1`
		args = append(args, payload.ShopID)
	}

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var shopID, productID int64
		var shopName, productName string
		var quantity, reorderLevel int
		if err := rows.Scan(&shopID, &shopName, &productID, &productName, &quantity, &reorderLevel); err != nil {
			return err
		}
		flagged++
		j.logger.Warn("low stock",
			slog.Int64("shop_id", shopID),
			slog.String("shop", shopName),
			slog.Int64("product_id", productID),
			slog.String("product", productName),
			slog.Int("quantity", quantity),
			slog.Int("reorder_level", reorderLevel))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	j.logger.Info("low stock scan finished", slog.Int("flagged", flagged))
	return nil
}
