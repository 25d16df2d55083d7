package stock

import (
	"context"
	"log/slog"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Service validates and applies restock requests.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Restock appends one batch per entry and bumps each product's quantity,
// refreshing its reference price to the entry's sale price. Every product is
// locked and checked before the first insert; any failure rolls the whole
// request back.
func (s *Service) Restock(ctx context.Context, shopID int64, in Input) ([]Batch, error) {
	if len(in.Entries) == 0 {
		return nil, shared.ErrValidation
	}

	ids := make([]int64, 0, len(in.Entries))
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, e := range in.Entries {
			if _, err := tx.LockProduct(ctx, shopID, e.ProductID); err != nil {
				return err
			}
		}
		for _, e := range in.Entries {
			id, err := tx.InsertBatch(ctx, shopID, e, in.BatchDate)
			if err != nil {
				return err
			}
			salePrice := e.SalePrice
			if err := tx.AddProductStock(ctx, shopID, e.ProductID, e.Quantity, &salePrice); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock recorded",
		slog.Int64("shop_id", shopID),
		slog.Int("entries", len(in.Entries)),
		slog.String("batch_date", in.BatchDate.String()))

	batches, err := s.repo.ListByDate(ctx, shopID, in.BatchDate)
	if err != nil {
		return nil, err
	}
	created := []Batch{}
	for _, b := range batches {
		for _, id := range ids {
			if b.ID == id {
				created = append(created, b)
				break
			}
		}
	}
	return created, nil
}

// ListByShop returns every batch in the shop, most recent first.
func (s *Service) ListByShop(ctx context.Context, shopID int64) ([]Batch, error) {
	return s.repo.ListByShop(ctx, shopID)
}

// ListByProduct returns a product's batch history, most recent first.
func (s *Service) ListByProduct(ctx context.Context, shopID, productID int64) ([]Batch, error) {
	return s.repo.ListByProduct(ctx, shopID, productID)
}

// ListByDate returns every batch recorded for a calendar date.
func (s *Service) ListByDate(ctx context.Context, shopID int64, date shared.Date) ([]Batch, error) {
	return s.repo.ListByDate(ctx, shopID, date)
}
