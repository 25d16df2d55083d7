package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezzystore/ezzystore/internal/shared"
)

func date(t *testing.T, s string) shared.Date {
	t.Helper()
	d, err := shared.ParseDate(s)
	require.NoError(t, err)
	return d
}

func at(t *testing.T, s string, hour int) time.Time {
	t.Helper()
	return date(t, s).Add(time.Duration(hour) * time.Hour)
}

func ptr[T any](v T) *T { return &v }

func TestSummarizeDaysMatchesDirectSummation(t *testing.T) {
	headers := []HeaderRow{
		{SaleID: 1, SaleType: "sale", TotalAmount: 300, CreatedAt: at(t, "2026-08-01", 9)},
		{SaleID: 2, SaleType: "sale", TotalAmount: 200, CreatedAt: at(t, "2026-08-01", 15)},
		{SaleID: 3, SaleType: "return", TotalAmount: 50, CreatedAt: at(t, "2026-08-01", 17)},
		{SaleID: 4, SaleType: "sale", TotalAmount: 700, CreatedAt: at(t, "2026-08-03", 11)},
	}
	lines := []LineRow{
		{SaleID: 1, SaleType: "sale", Quantity: 3, UnitPrice: 100, CreatedAt: at(t, "2026-08-01", 9)},
		{SaleID: 2, SaleType: "sale", Quantity: 2, UnitPrice: 100, CreatedAt: at(t, "2026-08-01", 15)},
		{SaleID: 3, SaleType: "return", Quantity: 1, UnitPrice: 50, CreatedAt: at(t, "2026-08-01", 17)},
		{SaleID: 4, SaleType: "sale", Quantity: 7, UnitPrice: 100, CreatedAt: at(t, "2026-08-03", 11)},
	}

	days := summarizeDays(headers, lines)
	require.Len(t, days, 2)

	first := days[0]
	require.Equal(t, "2026-08-01", first.Date.String())
	require.Equal(t, 2, first.SaleCount)
	require.Equal(t, 1, first.ReturnCount)
	require.Equal(t, 500.0, first.SaleAmount)
	require.Equal(t, 50.0, first.ReturnAmount)
	require.Equal(t, 5, first.UnitsSold)
	require.Equal(t, 1, first.UnitsReturned)

	second := days[1]
	require.Equal(t, "2026-08-03", second.Date.String())
	require.Equal(t, 1, second.SaleCount)
	require.Equal(t, 0, second.ReturnCount)
	require.Equal(t, 700.0, second.SaleAmount)
	require.Equal(t, 7, second.UnitsSold)
}

func TestSummarizeDaysBucketsByUTCDay(t *testing.T) {
	// 2026-08-29 22:00 UTC carried in a UTC+5 location reads as 03:00 on
	// the 30th locally; the bucket must follow the UTC day the repository
	// window filters on.
	east := time.FixedZone("UTC+5", 5*60*60)
	stamp := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC).In(east)

	headers := []HeaderRow{
		{SaleID: 1, SaleType: "sale", TotalAmount: 120, CreatedAt: stamp},
	}
	lines := []LineRow{
		{SaleID: 1, SaleType: "sale", Quantity: 2, UnitPrice: 60, CreatedAt: stamp},
	}

	days := summarizeDays(headers, lines)
	require.Len(t, days, 1)
	require.Equal(t, "2026-08-29", days[0].Date.String())
	require.Equal(t, 1, days[0].SaleCount)
	require.Equal(t, 2, days[0].UnitsSold)
}

func TestSummarizePurchases(t *testing.T) {
	batches := []BatchRow{
		{ProductID: 7, ProductName: "Sneaker", Quantity: 5, PurchaseRate: 100, SalePrice: 150, BatchDate: date(t, "2026-08-04")},
		{ProductID: 7, ProductName: "Sneaker", Quantity: 3, PurchaseRate: 90, SalePrice: 140, BatchDate: date(t, "2026-08-03")},
		{ProductID: 7, ProductName: "Sneaker", Quantity: 2, PurchaseRate: 80, SalePrice: 130, BatchDate: date(t, "2026-08-02")},
		{ProductID: 7, ProductName: "Sneaker", Quantity: 1, PurchaseRate: 70, SalePrice: 120, BatchDate: date(t, "2026-08-01")},
		{ProductID: 8, ProductName: "Boot", Quantity: 4, PurchaseRate: 200, SalePrice: 260, BatchDate: date(t, "2026-08-01")},
	}

	out := summarizePurchases(batches)
	require.Len(t, out, 2)

	sneaker := out[0]
	require.Equal(t, int64(7), sneaker.ProductID)
	require.Equal(t, 4, sneaker.TotalBatches)
	require.Equal(t, 11, sneaker.TotalQuantity)
	require.Equal(t, 5*100.0+3*90+2*80+1*70, sneaker.TotalSpend)
	require.Len(t, sneaker.RecentBatches, 3)
	require.Equal(t, 100.0, sneaker.RecentBatches[0].PurchaseRate)

	boot := out[1]
	require.Equal(t, 1, boot.TotalBatches)
	require.Len(t, boot.RecentBatches, 1)
}

func TestLatestRatesPicksNewestBatch(t *testing.T) {
	batches := []BatchRow{
		{ProductID: 7, Quantity: 5, PurchaseRate: 100, SalePrice: 150, BatchDate: date(t, "2026-08-04")},
		{ProductID: 7, Quantity: 3, PurchaseRate: 90, SalePrice: 140, BatchDate: date(t, "2026-08-03")},
		{ProductID: 8, Quantity: 4, PurchaseRate: 200, SalePrice: 260, BatchDate: date(t, "2026-08-01")},
	}

	rates := latestRates(batches)
	require.Len(t, rates, 2)
	require.Equal(t, 100.0, rates[7].PurchaseRate)
	require.Equal(t, 150.0, rates[7].SalePrice)
	require.Equal(t, 200.0, rates[8].PurchaseRate)
}

func TestSummarizeBatchDate(t *testing.T) {
	batches := []BatchRow{
		{ProductID: 7, Quantity: 5, PurchaseRate: 100, BatchDate: date(t, "2026-08-04")},
		{ProductID: 7, Quantity: 2, PurchaseRate: 100, BatchDate: date(t, "2026-08-04")},
		{ProductID: 8, Quantity: 4, PurchaseRate: 200, BatchDate: date(t, "2026-08-04")},
		{ProductID: 9, Quantity: 1, PurchaseRate: 50, BatchDate: date(t, "2026-08-01")},
	}

	out := summarizeBatchDate(batches, date(t, "2026-08-04"))
	require.Equal(t, 2, out.DistinctProducts)
	require.Equal(t, 5*100.0+2*100+4*200, out.TotalSpend)
}

func TestCustomerInsights(t *testing.T) {
	alice := int64(1)
	bob := int64(2)
	lines := []LineRow{
		{SaleType: "sale", CustomerID: &alice, CustomerName: ptr("Alice"), ProductID: ptr(int64(7)), Quantity: 2, UnitPrice: 150, CreatedAt: at(t, "2026-08-01", 9)},
		{SaleType: "sale", CustomerID: &alice, CustomerName: ptr("Alice"), ProductID: ptr(int64(7)), Quantity: 1, UnitPrice: 150, CreatedAt: at(t, "2026-08-02", 9)},
		{SaleType: "sale", CustomerID: &bob, CustomerName: ptr("Bob"), ProductID: nil, Quantity: 1, UnitPrice: 90, CreatedAt: at(t, "2026-08-01", 10)},
		// Anonymous sales and returns stay out of the insight.
		{SaleType: "sale", CustomerID: nil, ProductID: ptr(int64(7)), Quantity: 5, UnitPrice: 150, CreatedAt: at(t, "2026-08-01", 11)},
	}
	rates := map[int64]LatestRates{7: {ProductID: 7, PurchaseRate: 100, SalePrice: 150}}

	out := customerInsights(lines, rates)
	require.Len(t, out, 2)

	require.Equal(t, "Alice", out[0].CustomerName)
	require.Equal(t, 3, out[0].TotalItems)
	require.Equal(t, 450.0, out[0].TotalRevenue)
	require.Equal(t, 300.0, out[0].ImpliedCost)
	require.NotNil(t, out[0].ProfitPercent)
	require.InDelta(t, 50.0, *out[0].ProfitPercent, 0.0001)
	require.Equal(t, at(t, "2026-08-02", 9), out[0].LastPurchase)

	// Bob's product is gone; implied cost is zero so profit is omitted.
	require.Equal(t, "Bob", out[1].CustomerName)
	require.Equal(t, 90.0, out[1].TotalRevenue)
	require.Equal(t, 0.0, out[1].ImpliedCost)
	require.Nil(t, out[1].ProfitPercent)
}

type fakeRepo struct {
	headers    []HeaderRow
	lines      []LineRow
	batches    []BatchRow
	stats      ProductStats
	byBrand    []GroupCount
	byCategory []GroupCount
	customers  int
}

func (f *fakeRepo) Headers(ctx context.Context, shopID int64, start, end shared.Date) ([]HeaderRow, error) {
	return f.headers, nil
}

func (f *fakeRepo) Lines(ctx context.Context, shopID int64, start, end shared.Date) ([]LineRow, error) {
	return f.lines, nil
}

func (f *fakeRepo) SaleLinesAllTime(ctx context.Context, shopID int64) ([]LineRow, error) {
	return f.lines, nil
}

func (f *fakeRepo) Batches(ctx context.Context, shopID int64) ([]BatchRow, error) {
	return f.batches, nil
}

func (f *fakeRepo) ProductStats(ctx context.Context, shopID int64) (ProductStats, error) {
	return f.stats, nil
}

func (f *fakeRepo) ProductCountsByBrand(ctx context.Context, shopID int64) ([]GroupCount, error) {
	return f.byBrand, nil
}

func (f *fakeRepo) ProductCountsByCategory(ctx context.Context, shopID int64) ([]GroupCount, error) {
	return f.byCategory, nil
}

func (f *fakeRepo) CountCustomers(ctx context.Context, shopID int64) (int, error) {
	return f.customers, nil
}

func (f *fakeRepo) CountBatches(ctx context.Context, shopID int64) (int, error) {
	return len(f.batches), nil
}

func TestDashboard(t *testing.T) {
	today := shared.Today()
	repo := &fakeRepo{
		headers: []HeaderRow{
			{SaleID: 1, SaleType: "sale", TotalAmount: 1250.5, CreatedAt: today.Add(9 * time.Hour)},
		},
		lines: []LineRow{
			{SaleID: 1, SaleType: "sale", Quantity: 2, UnitPrice: 625.25, CreatedAt: today.Add(9 * time.Hour)},
		},
		batches:    []BatchRow{{ProductID: 7, Quantity: 1, PurchaseRate: 10, BatchDate: today}},
		stats:      ProductStats{Total: 12, LowStock: 3, OutOfStock: 2, StockUnits: 80},
		byBrand:    []GroupCount{{Name: "Acme", Count: 8}, {Name: "", Count: 4}},
		byCategory: []GroupCount{{Name: "Snacks", Count: 12}},
		customers:  4,
	}
	svc := NewService(repo, func(ctx context.Context, shopID int64) (float64, error) { return 7.5, nil })

	d, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, ProductStats{Total: 12, LowStock: 3, OutOfStock: 2, StockUnits: 80}, d.Products)
	require.Equal(t, repo.byBrand, d.ByBrand)
	require.Equal(t, repo.byCategory, d.ByCategory)
	require.Equal(t, 4, d.CustomerCount)
	require.Equal(t, 1, d.BatchCount)
	require.Equal(t, 1, d.Today.SaleCount)
	require.Equal(t, 1250.5, d.Today.SaleAmount)
	require.Equal(t, "1,250.50", d.TodayRevenue)
	require.Equal(t, 7.5, d.ExpensePercent)
}
