// Package reports computes read-side summaries over the ledgers. Nothing is
// materialized; every report is recomputed from raw rows per request, which
// keeps the aggregation logic in plain Go where it can be unit tested.
package reports

import (
	"time"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// HeaderRow is a sale header as fetched for aggregation.
type HeaderRow struct {
	SaleID      int64
	SaleType    string
	TotalAmount float64
	CustomerID  *int64
	CreatedAt   time.Time
}

// LineRow is a sale line joined with its header as fetched for aggregation.
type LineRow struct {
	SaleID       int64
	SaleType     string
	CustomerID   *int64
	CustomerName *string
	ProductID    *int64
	Quantity     int
	UnitPrice    float64
	CreatedAt    time.Time
}

// BatchRow is a stock batch as fetched for aggregation, most recent first.
type BatchRow struct {
	ProductID    int64
	ProductName  string
	Quantity     int
	PurchaseRate float64
	SalePrice    float64
	BatchDate    shared.Date
	CreatedAt    time.Time
}

// DaySummary is one day of the daily summary report.
type DaySummary struct {
	Date          shared.Date `json:"date"`
	SaleCount     int         `json:"sale_count"`
	ReturnCount   int         `json:"return_count"`
	SaleAmount    float64     `json:"sale_amount"`
	ReturnAmount  float64     `json:"return_amount"`
	UnitsSold     int         `json:"units_sold"`
	UnitsReturned int         `json:"units_returned"`
}

// ProductPurchases summarizes a product's batch history.
type ProductPurchases struct {
	ProductID     int64      `json:"product_id"`
	ProductName   string     `json:"product_name"`
	TotalBatches  int        `json:"total_batches"`
	TotalQuantity int        `json:"total_quantity"`
	TotalSpend    float64    `json:"total_spend"`
	RecentBatches []BatchRef `json:"recent_batches"`
}

// BatchRef is a compact batch preview inside a purchase summary.
type BatchRef struct {
	Quantity     int         `json:"quantity"`
	PurchaseRate float64     `json:"purchase_rate"`
	SalePrice    float64     `json:"sale_price"`
	BatchDate    shared.Date `json:"batch_date"`
}

// LatestRates carries a product's most recent batch cost and price, used as
// defaults when composing new sale forms.
type LatestRates struct {
	ProductID    int64   `json:"product_id"`
	PurchaseRate float64 `json:"purchase_rate"`
	SalePrice    float64 `json:"sale_price"`
}

// BatchDateSummary summarizes one calendar date of restocking.
type BatchDateSummary struct {
	Date             shared.Date `json:"date"`
	DistinctProducts int         `json:"distinct_products"`
	TotalSpend       float64     `json:"total_spend"`
}

// CustomerInsight aggregates one customer's sale-type transactions. The
// implied cost prices every unit at the product's latest known purchase
// rate, an approximation rather than a historical cost trace.
type CustomerInsight struct {
	CustomerID    int64     `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	TotalItems    int       `json:"total_items"`
	TotalRevenue  float64   `json:"total_revenue"`
	ImpliedCost   float64   `json:"implied_cost"`
	ProfitPercent *float64  `json:"profit_percent,omitempty"`
	LastPurchase  time.Time `json:"last_purchase"`
}

// ProductStats holds the catalog-wide counters shown on the dashboard.
type ProductStats struct {
	Total      int `json:"total"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
	StockUnits int `json:"stock_units"`
}

// GroupCount is a product count under one brand or category name.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard is the landing-page snapshot for a shop.
type Dashboard struct {
	Products       ProductStats `json:"products"`
	ByBrand        []GroupCount `json:"by_brand"`
	ByCategory     []GroupCount `json:"by_category"`
	CustomerCount  int          `json:"customer_count"`
	BatchCount     int          `json:"batch_count"`
	Today          DaySummary   `json:"today"`
	TodayRevenue   string       `json:"today_revenue"`
	ExpensePercent float64      `json:"expense_percent"`
}
