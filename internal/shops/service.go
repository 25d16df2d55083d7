package shops

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// Service carries the admin-side shop operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new shop with a globally unique name.
func (s *Service) Create(ctx context.Context, name string, createdBy int64) (Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Shop{}, fmt.Errorf("%w: shop name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, name, createdBy)
}

// List returns all shops.
func (s *Service) List(ctx context.Context) ([]Shop, error) {
	return s.repo.List(ctx)
}

// Delete removes a shop and everything scoped to it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid shop id", shared.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// AssignManager binds a manager to a shop. One shop per manager and one
// manager per shop; violating either reads as a duplicate.
func (s *Service) AssignManager(ctx context.Context, shopID, managerUserID, createdBy int64) error {
	if shopID <= 0 || managerUserID <= 0 {
		return fmt.Errorf("%w: shop and manager are required", shared.ErrValidation)
	}
	if _, err := s.repo.Get(ctx, shopID); err != nil {
		return err
	}
	return s.repo.AssignManager(ctx, shopID, managerUserID, createdBy)
}

// UnassignManager releases a shop's manager slot.
func (s *Service) UnassignManager(ctx context.Context, shopID int64) error {
	return s.repo.UnassignManager(ctx, shopID)
}

// GetSettings loads a shop's settings, zero-valued when never saved.
func (s *Service) GetSettings(ctx context.Context, shop Shop) (Settings, error) {
	return s.repo.GetSettings(ctx, shop.ID)
}

// SaveSettings upserts a shop's expense percent.
func (s *Service) SaveSettings(ctx context.Context, shop Shop, expensePercent float64) error {
	if expensePercent < 0 || expensePercent > 100 {
		return fmt.Errorf("%w: expense percent must be between 0 and 100", shared.ErrValidation)
	}
	return s.repo.UpsertSettings(ctx, shop.ID, expensePercent)
}
