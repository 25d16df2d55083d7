package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/reports"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// DailyDigestJob logs each shop's summary for one calendar date, by default
// yesterday. It reuses the report aggregator so the numbers match what the
// dashboard shows.
type DailyDigestJob struct {
	pool    *pgxpool.Pool
	service *reports.Service
	logger  *slog.Logger
}

// NewDailyDigestJob constructs the job.
func NewDailyDigestJob(pool *pgxpool.Pool, service *reports.Service, logger *slog.Logger) *DailyDigestJob {
	return &DailyDigestJob{pool: pool, service: service, logger: logger}
}

// Handle processes TaskDailyDigest tasks.
func (j *DailyDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DailyDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	day := shared.NewDate(time.Now().AddDate(0, 0, -1))
	if payload.Date != "" {
		parsed, err := shared.ParseDate(payload.Date)
		if err != nil {
			return asynq.SkipRetry
		}
		day = parsed
	}

	rows, err := j.pool.Query(ctx, `SELECT id, name FROM shops ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type shopRef struct {
		id   int64
		name string
	}
	shops := []shopRef{}
	for rows.Next() {
		var s shopRef
		if err := rows.Scan(&s.id, &s.name); err != nil {
			return err
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, shop := range shops {
		days, err := j.service.DailySummary(ctx, shop.id, day, day)
		if err != nil {
			return err
		}
		summary := reports.DaySummary{Date: day}
		if len(days) > 0 {
			summary = days[0]
		}
		j.logger.Info("daily digest",
			slog.String("date", day.String()),
			slog.Int64("shop_id", shop.id),
			slog.String("shop", shop.name),
			slog.Int("sales", summary.SaleCount),
			slog.Int("returns", summary.ReturnCount),
			slog.Float64("sale_amount", summary.SaleAmount),
			slog.Float64("return_amount", summary.ReturnAmount),
			slog.Int("units_sold", summary.UnitsSold))
	}
	return nil
}
