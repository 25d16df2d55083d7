package shops

import "time"

// Shop is the tenant root. Every ledger row is scoped to exactly one shop.
type Shop struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings holds per-shop reporting knobs.
type Settings struct {
	ShopID         int64     `json:"shop_id"`
	ExpensePercent float64   `json:"expense_percent"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Assignment links a shop to the single manager operating it.
type Assignment struct {
	ShopID        int64     `json:"shop_id"`
	ManagerUserID int64     `json:"manager_user_id"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
