package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Service applies catalog business rules on top of the repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterProduct creates a product with zero quantity and price. A category
// is mandatory; a brand is optional. Both references must belong to the shop.
func (s *Service) RegisterProduct(ctx context.Context, shopID int64, in ProductInput) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Product{}, fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if in.CategoryID == nil {
		return Product{}, fmt.Errorf("%w: %s", shared.ErrValidation, ErrCategoryRequired)
	}
	if in.ReorderLevel < 0 {
		return Product{}, fmt.Errorf("%w: reorder level must not be negative", shared.ErrValidation)
	}
	if err := s.checkRefs(ctx, shopID, in); err != nil {
		return Product{}, err
	}

	p, err := s.repo.CreateProduct(ctx, shopID, in)
	if err != nil {
		return Product{}, err
	}
	s.logger.Info("product registered",
		slog.Int64("shop_id", shopID),
		slog.Int64("product_id", p.ID),
		slog.String("name", p.Name))
	return p, nil
}

// UpdateProduct renames or reclassifies a product. Quantity and price are not
// touched here; they move only through the stock and sales ledgers.
func (s *Service) UpdateProduct(ctx context.Context, shopID, productID int64, in ProductInput) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Product{}, fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if in.CategoryID == nil {
		return Product{}, fmt.Errorf("%w: %s", shared.ErrValidation, ErrCategoryRequired)
	}
	if in.ReorderLevel < 0 {
		return Product{}, fmt.Errorf("%w: reorder level must not be negative", shared.ErrValidation)
	}
	if err := s.checkRefs(ctx, shopID, in); err != nil {
		return Product{}, err
	}

	if err := s.repo.UpdateProduct(ctx, shopID, productID, in); err != nil {
		return Product{}, err
	}
	return s.repo.GetProduct(ctx, shopID, productID)
}

func (s *Service) checkRefs(ctx context.Context, shopID int64, in ProductInput) error {
	if in.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, shopID, *in.CategoryID); err != nil {
			return fmt.Errorf("%w: unknown category", shared.ErrValidation)
		}
	}
	if in.BrandID != nil {
		if _, err := s.repo.GetBrand(ctx, shopID, *in.BrandID); err != nil {
			return fmt.Errorf("%w: unknown brand", shared.ErrValidation)
		}
	}
	return nil
}

// RemoveProduct deletes a product together with its batch history.
func (s *Service) RemoveProduct(ctx context.Context, shopID, productID int64) error {
	if err := s.repo.DeleteProduct(ctx, shopID, productID); err != nil {
		return err
	}
	s.logger.Info("product removed",
		slog.Int64("shop_id", shopID),
		slog.Int64("product_id", productID))
	return nil
}

// ListProducts returns every product in the shop, newest first.
func (s *Service) ListProducts(ctx context.Context, shopID int64) ([]Product, error) {
	return s.repo.ListProducts(ctx, shopID)
}

// GetProduct returns a single product.
func (s *Service) GetProduct(ctx context.Context, shopID, productID int64) (Product, error) {
	return s.repo.GetProduct(ctx, shopID, productID)
}

// LowStockProducts returns products at or below their reorder level.
func (s *Service) LowStockProducts(ctx context.Context, shopID int64) ([]Product, error) {
	all, err := s.repo.ListProducts(ctx, shopID)
	if err != nil {
		return nil, err
	}
	low := []Product{}
	for _, p := range all {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// CreateBrand adds a brand label to the shop.
func (s *Service) CreateBrand(ctx context.Context, shopID int64, name string) (Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Brand{}, fmt.Errorf("%w: brand name is required", shared.ErrValidation)
	}
	return s.repo.CreateBrand(ctx, shopID, name)
}

// RenameBrand changes a brand label.
func (s *Service) RenameBrand(ctx context.Context, shopID, brandID int64, name string) (Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Brand{}, fmt.Errorf("%w: brand name is required", shared.ErrValidation)
	}
	if err := s.repo.RenameBrand(ctx, shopID, brandID, name); err != nil {
		return Brand{}, err
	}
	return s.repo.GetBrand(ctx, shopID, brandID)
}

// ListBrands returns the shop's brands ordered by name.
func (s *Service) ListBrands(ctx context.Context, shopID int64) ([]Brand, error) {
	return s.repo.ListBrands(ctx, shopID)
}

// CreateCategory adds a category label to the shop.
func (s *Service) CreateCategory(ctx context.Context, shopID int64, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return s.repo.CreateCategory(ctx, shopID, name)
}

// RenameCategory changes a category label.
func (s *Service) RenameCategory(ctx context.Context, shopID, categoryID int64, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	if err := s.repo.RenameCategory(ctx, shopID, categoryID, name); err != nil {
		return Category{}, err
	}
	return s.repo.GetCategory(ctx, shopID, categoryID)
}

// ListCategories returns the shop's categories ordered by name.
func (s *Service) ListCategories(ctx context.Context, shopID int64) ([]Category, error) {
	return s.repo.ListCategories(ctx, shopID)
}
