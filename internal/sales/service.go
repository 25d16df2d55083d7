package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Service records sales and returns and owns the customer registry.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one line is required", shared.ErrValidation)
	}
	for i, l := range lines {
		if l.ProductID <= 0 {
			return fmt.Errorf("%w: line %d: product id is required", shared.ErrValidation, i+1)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity must be positive", shared.ErrValidation, i+1)
		}
		if l.UnitPrice < 0 {
			return fmt.Errorf("%w: line %d: unit price must not be negative", shared.ErrValidation, i+1)
		}
	}
	return nil
}

// lockOrder locks products in ascending id order so two concurrent
// multi-line transactions cannot deadlock on each other.
func lockOrder(lines []LineInput) []LineInput {
	ordered := make([]LineInput, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
	return ordered
}

// RecordSale writes a sale header plus lines and decrements each product's
// quantity. Every line is checked against row-locked state before the first
// mutation; an insufficient line fails the whole call with no effects.
func (s *Service) RecordSale(ctx context.Context, shopID int64, lines []LineInput, customerID *int64) (SaleWithItems, error) {
	return s.record(ctx, shopID, TypeSale, lines, customerID)
}

// RecordStandaloneReturn writes a return header not tied to any tracked
// sale and increments product quantities.
func (s *Service) RecordStandaloneReturn(ctx context.Context, shopID int64, lines []LineInput, customerID *int64) (SaleWithItems, error) {
	return s.record(ctx, shopID, TypeReturn, lines, customerID)
}

func (s *Service) record(ctx context.Context, shopID int64, saleType string, lines []LineInput, customerID *int64) (SaleWithItems, error) {
	if err := validateLines(lines); err != nil {
		return SaleWithItems{}, err
	}
	if customerID != nil {
		if _, err := s.repo.GetCustomer(ctx, shopID, *customerID); err != nil {
			return SaleWithItems{}, fmt.Errorf("%w: unknown customer", shared.ErrValidation)
		}
	}

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		names := make(map[int64]string, len(lines))
		for _, l := range lockOrder(lines) {
			p, err := tx.LockProduct(ctx, shopID, l.ProductID)
			if err != nil {
				return err
			}
			if saleType == TypeSale && p.Quantity < l.Quantity {
				return shared.ErrInsufficientStock
			}
			names[l.ProductID] = p.Name
		}

		total := 0.0
		for _, l := range lines {
			total += float64(l.Quantity) * l.UnitPrice
		}

		id, err := tx.InsertSale(ctx, Sale{
			ShopID:      shopID,
			Type:        saleType,
			TotalAmount: total,
			CustomerID:  customerID,
		})
		if err != nil {
			return err
		}
		saleID = id

		for _, l := range lines {
			delta := -l.Quantity
			if saleType == TypeReturn {
				delta = l.Quantity
			}
			if err := tx.ApplyQuantityDelta(ctx, shopID, l.ProductID, delta); err != nil {
				return err
			}
			productID := l.ProductID
			if _, err := tx.InsertItem(ctx, Item{
				SaleID:      saleID,
				ProductID:   &productID,
				ProductName: names[l.ProductID],
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SaleWithItems{}, err
	}

	s.logger.Info("transaction recorded",
		slog.Int64("shop_id", shopID),
		slog.Int64("sale_id", saleID),
		slog.String("type", saleType),
		slog.Int("lines", len(lines)))

	return s.GetWithItems(ctx, shopID, saleID)
}

// RecordReturnAgainstSale returns quantities against specific lines of an
// existing sale. Each requested quantity must land in (0, remaining] for its
// line; product quantities come back, the lines' returned counters advance,
// and a return header referencing the original is written, atomically.
func (s *Service) RecordReturnAgainstSale(ctx context.Context, shopID, saleID int64, lines []ReturnLineInput) (SaleWithItems, error) {
	if len(lines) == 0 {
		return SaleWithItems{}, fmt.Errorf("%w: at least one line is required", shared.ErrValidation)
	}
	for i, l := range lines {
		if l.SaleItemID <= 0 {
			return SaleWithItems{}, fmt.Errorf("%w: line %d: sale item id is required", shared.ErrValidation, i+1)
		}
		if l.UnitPrice != nil && *l.UnitPrice < 0 {
			return SaleWithItems{}, fmt.Errorf("%w: line %d: unit price must not be negative", shared.ErrValidation, i+1)
		}
	}

	var returnID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetSaleForUpdate(ctx, shopID, saleID)
		if err != nil {
			return err
		}
		if original.Type != TypeSale {
			return fmt.Errorf("%w: returns can only target a sale", shared.ErrValidation)
		}

		items, err := tx.GetItemsForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		byID := make(map[int64]Item, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}

		for _, l := range lines {
			it, ok := byID[l.SaleItemID]
			if !ok {
				return shared.ErrNotFound
			}
			if l.Quantity <= 0 || l.Quantity > it.Remaining() {
				return shared.ErrInvalidReturnAmount
			}
		}

		total := 0.0
		for _, l := range lines {
			price := byID[l.SaleItemID].UnitPrice
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			total += float64(l.Quantity) * price
		}

		id, err := tx.InsertSale(ctx, Sale{
			ShopID:          shopID,
			Type:            TypeReturn,
			TotalAmount:     total,
			CustomerID:      original.CustomerID,
			ReferenceSaleID: &saleID,
		})
		if err != nil {
			return err
		}
		returnID = id

		now := s.now()
		for _, l := range lines {
			it := byID[l.SaleItemID]

			// The product may have been deleted since the sale; the
			// returned counter still advances, stock just cannot come back.
			if it.ProductID != nil {
				if err := tx.ApplyQuantityDelta(ctx, shopID, *it.ProductID, l.Quantity); err != nil {
					return err
				}
			}

			price := it.UnitPrice
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			if _, err := tx.InsertItem(ctx, Item{
				SaleID:      returnID,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    l.Quantity,
				UnitPrice:   price,
			}); err != nil {
				return err
			}
			if err := tx.AddReturnedQuantity(ctx, it.ID, l.Quantity, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SaleWithItems{}, err
	}

	s.logger.Info("return recorded",
		slog.Int64("shop_id", shopID),
		slog.Int64("sale_id", saleID),
		slog.Int64("return_id", returnID),
		slog.Int("lines", len(lines)))

	return s.GetWithItems(ctx, shopID, returnID)
}

// GetWithItems loads one transaction and its lines.
func (s *Service) GetWithItems(ctx context.Context, shopID, saleID int64) (SaleWithItems, error) {
	sale, err := s.repo.GetSale(ctx, shopID, saleID)
	if err != nil {
		return SaleWithItems{}, err
	}
	items, err := s.repo.GetItems(ctx, saleID)
	if err != nil {
		return SaleWithItems{}, err
	}
	return SaleWithItems{Sale: sale, Items: items}, nil
}

// RecentWithItems loads the newest transactions, header plus lines.
func (s *Service) RecentWithItems(ctx context.Context, shopID int64, limit int) ([]SaleWithItems, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return s.repo.Recent(ctx, shopID, limit)
}

// ByDateRangeWithItems loads transactions created within [start, end].
func (s *Service) ByDateRangeWithItems(ctx context.Context, shopID int64, start, end shared.Date) ([]SaleWithItems, error) {
	if end.Before(start.Time) {
		return nil, fmt.Errorf("%w: end date before start date", shared.ErrValidation)
	}
	return s.repo.ByDateRange(ctx, shopID, start, end)
}

// CreateCustomer adds a customer label to the shop.
func (s *Service) CreateCustomer(ctx context.Context, shopID int64, name string, phone *string) (Customer, error) {
	if name == "" {
		return Customer{}, fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	return s.repo.CreateCustomer(ctx, shopID, name, phone)
}

// UpdateCustomer renames a customer or changes their phone.
func (s *Service) UpdateCustomer(ctx context.Context, shopID, customerID int64, name string, phone *string) (Customer, error) {
	if name == "" {
		return Customer{}, fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	if err := s.repo.UpdateCustomer(ctx, shopID, customerID, name, phone); err != nil {
		return Customer{}, err
	}
	return s.repo.GetCustomer(ctx, shopID, customerID)
}

// DeleteCustomer removes a customer; their past sales keep their history.
func (s *Service) DeleteCustomer(ctx context.Context, shopID, customerID int64) error {
	return s.repo.DeleteCustomer(ctx, shopID, customerID)
}

// ListCustomers returns the shop's customer registry ordered by name.
func (s *Service) ListCustomers(ctx context.Context, shopID int64) ([]Customer, error) {
	return s.repo.ListCustomers(ctx, shopID)
}
