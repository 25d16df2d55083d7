package shops

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// Repository persists shops, manager assignments and settings.
type Repository interface {
	Create(ctx context.Context, name string, createdBy int64) (Shop, error)
	Get(ctx context.Context, id int64) (Shop, error)
	List(ctx context.Context) ([]Shop, error)
	Delete(ctx context.Context, id int64) error
	AssignManager(ctx context.Context, shopID, managerUserID, createdBy int64) error
	UnassignManager(ctx context.Context, shopID int64) error
	ShopForManager(ctx context.Context, managerUserID int64) (Shop, error)
	GetSettings(ctx context.Context, shopID int64) (Settings, error)
	UpsertSettings(ctx context.Context, shopID int64, expensePercent float64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, name string, createdBy int64) (Shop, error) {
	var shop Shop
	err := r.pool.QueryRow(ctx,
		`INSERT INTO shops (name, created_by) VALUES ($1, $2)
		 RETURNING id, name, created_by, created_at`,
		name, createdBy,
	).Scan(&shop.ID, &shop.Name, &shop.CreatedBy, &shop.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Shop{}, shared.ErrDuplicateName
		}
		return Shop{}, err
	}
	return shop, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Shop, error) {
	var shop Shop
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_by, created_at FROM shops WHERE id = $1`, id,
	).Scan(&shop.ID, &shop.Name, &shop.CreatedBy, &shop.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shop{}, shared.ErrNotFound
		}
		return Shop{}, err
	}
	return shop, nil
}

func (r *repository) List(ctx context.Context) ([]Shop, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_by, created_at FROM shops ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []Shop{}
	for rows.Next() {
		var shop Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.CreatedBy, &shop.CreatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

// Delete removes a shop. Products, batches, sales, customers and the
// manager assignment disappear with it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AssignManager(ctx context.Context, shopID, managerUserID, createdBy int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO shop_managers (shop_id, manager_user_id, created_by) VALUES ($1, $2, $3)`,
		shopID, managerUserID, createdBy,
	)
	if err != nil && db.IsUniqueViolation(err) {
		return shared.ErrDuplicateName
	}
	return err
}

func (r *repository) UnassignManager(ctx context.Context, shopID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shop_managers WHERE shop_id = $1`, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ShopForManager(ctx context.Context, managerUserID int64) (Shop, error) {
	var shop Shop
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.name, s.created_by, s.created_at
		 FROM shops s
		 JOIN shop_managers sm ON sm.shop_id = s.id
		 WHERE sm.manager_user_id = $1`,
		managerUserID,
	).Scan(&shop.ID, &shop.Name, &shop.CreatedBy, &shop.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shop{}, shared.ErrNoShopAssigned
		}
		return Shop{}, err
	}
	return shop, nil
}

func (r *repository) GetSettings(ctx context.Context, shopID int64) (Settings, error) {
	var settings Settings
	err := r.pool.QueryRow(ctx,
		`SELECT shop_id, expense_percent, updated_at FROM shop_settings WHERE shop_id = $1`, shopID,
	).Scan(&settings.ShopID, &settings.ExpensePercent, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{ShopID: shopID}, nil
		}
		return Settings{}, err
	}
	return settings, nil
}

func (r *repository) UpsertSettings(ctx context.Context, shopID int64, expensePercent float64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO shop_settings (shop_id, expense_percent, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (shop_id) DO UPDATE SET expense_percent = EXCLUDED.expense_percent, updated_at = NOW()`,
		shopID, expensePercent,
	)
	return err
}
