package reports

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ezzystore/ezzystore/internal/shared"
)

// SettingsFunc resolves a shop's configured expense percentage.
type SettingsFunc func(ctx context.Context, shopID int64) (float64, error)

// Service aggregates ledger rows into reports.
type Service struct {
	repo     Repository
	settings SettingsFunc
	printer  *message.Printer
}

// NewService constructs a Service. settings may be nil when no expense
// configuration exists.
func NewService(repo Repository, settings SettingsFunc) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		printer:  message.NewPrinter(language.English),
	}
}

// DailySummary groups transactions by calendar date and type within the
// inclusive range.
func (s *Service) DailySummary(ctx context.Context, shopID int64, start, end shared.Date) ([]DaySummary, error) {
	headers, err := s.repo.Headers(ctx, shopID, start, end)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.Lines(ctx, shopID, start, end)
	if err != nil {
		return nil, err
	}
	return summarizeDays(headers, lines), nil
}

func summarizeDays(headers []HeaderRow, lines []LineRow) []DaySummary {
	byDay := map[string]*DaySummary{}
	// The repository filters on UTC-midnight windows; bucketing must read
	// the calendar date in UTC too, or rows near midnight land in the
	// neighboring day.
	day := func(t time.Time) *DaySummary {
		d := shared.NewDate(t.UTC())
		key := d.String()
		if _, ok := byDay[key]; !ok {
			byDay[key] = &DaySummary{Date: d}
		}
		return byDay[key]
	}

	for _, h := range headers {
		ds := day(h.CreatedAt)
		if h.SaleType == "return" {
			ds.ReturnCount++
			ds.ReturnAmount += h.TotalAmount
		} else {
			ds.SaleCount++
			ds.SaleAmount += h.TotalAmount
		}
	}
	for _, l := range lines {
		ds := day(l.CreatedAt)
		if l.SaleType == "return" {
			ds.UnitsReturned += l.Quantity
		} else {
			ds.UnitsSold += l.Quantity
		}
	}

	out := make([]DaySummary, 0, len(byDay))
	for _, ds := range byDay {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// maxBatchPreviews caps the per-product batch previews in purchase summaries.
const maxBatchPreviews = 3

// PurchaseSummary totals each product's batch history with up to three
// most-recent batch previews.
func (s *Service) PurchaseSummary(ctx context.Context, shopID int64) ([]ProductPurchases, error) {
	batches, err := s.repo.Batches(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return summarizePurchases(batches), nil
}

func summarizePurchases(batches []BatchRow) []ProductPurchases {
	byProduct := map[int64]*ProductPurchases{}
	order := []int64{}
	for _, b := range batches {
		pp, ok := byProduct[b.ProductID]
		if !ok {
			pp = &ProductPurchases{ProductID: b.ProductID, ProductName: b.ProductName, RecentBatches: []BatchRef{}}
			byProduct[b.ProductID] = pp
			order = append(order, b.ProductID)
		}
		pp.TotalBatches++
		pp.TotalQuantity += b.Quantity
		pp.TotalSpend += float64(b.Quantity) * b.PurchaseRate
		if len(pp.RecentBatches) < maxBatchPreviews {
			pp.RecentBatches = append(pp.RecentBatches, BatchRef{
				Quantity:     b.Quantity,
				PurchaseRate: b.PurchaseRate,
				SalePrice:    b.SalePrice,
				BatchDate:    b.BatchDate,
			})
		}
	}

	out := make([]ProductPurchases, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	return out
}

// LatestRatesPerProduct returns each product's most recent batch cost and
// price, keyed by product id.
func (s *Service) LatestRatesPerProduct(ctx context.Context, shopID int64) (map[int64]LatestRates, error) {
	batches, err := s.repo.Batches(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return latestRates(batches), nil
}

func latestRates(batches []BatchRow) map[int64]LatestRates {
	out := map[int64]LatestRates{}
	for _, b := range batches {
		if _, seen := out[b.ProductID]; seen {
			continue
		}
		out[b.ProductID] = LatestRates{
			ProductID:    b.ProductID,
			PurchaseRate: b.PurchaseRate,
			SalePrice:    b.SalePrice,
		}
	}
	return out
}

// BatchDateSummary summarizes restocking on one calendar date.
func (s *Service) BatchDateSummary(ctx context.Context, shopID int64, date shared.Date) (BatchDateSummary, error) {
	batches, err := s.repo.Batches(ctx, shopID)
	if err != nil {
		return BatchDateSummary{}, err
	}
	return summarizeBatchDate(batches, date), nil
}

func summarizeBatchDate(batches []BatchRow, date shared.Date) BatchDateSummary {
	out := BatchDateSummary{Date: date}
	seen := map[int64]bool{}
	for _, b := range batches {
		if !b.BatchDate.Equal(date.Time) {
			continue
		}
		if !seen[b.ProductID] {
			seen[b.ProductID] = true
			out.DistinctProducts++
		}
		out.TotalSpend += float64(b.Quantity) * b.PurchaseRate
	}
	return out
}

// CustomerInsights aggregates each customer's sale-type transactions.
// Customers with no recorded items are excluded; profit percent is omitted
// when the implied cost is zero.
func (s *Service) CustomerInsights(ctx context.Context, shopID int64) ([]CustomerInsight, error) {
	var lines []LineRow
	var batches []BatchRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = s.repo.SaleLinesAllTime(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		batches, err = s.repo.Batches(gctx, shopID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return customerInsights(lines, latestRates(batches)), nil
}

func customerInsights(lines []LineRow, rates map[int64]LatestRates) []CustomerInsight {
	byCustomer := map[int64]*CustomerInsight{}
	for _, l := range lines {
		if l.CustomerID == nil || l.SaleType != "sale" || l.Quantity <= 0 {
			continue
		}
		ci, ok := byCustomer[*l.CustomerID]
		if !ok {
			ci = &CustomerInsight{CustomerID: *l.CustomerID}
			if l.CustomerName != nil {
				ci.CustomerName = *l.CustomerName
			}
			byCustomer[*l.CustomerID] = ci
		}
		ci.TotalItems += l.Quantity
		ci.TotalRevenue += float64(l.Quantity) * l.UnitPrice
		if l.ProductID != nil {
			if rate, ok := rates[*l.ProductID]; ok {
				ci.ImpliedCost += float64(l.Quantity) * rate.PurchaseRate
			}
		}
		if l.CreatedAt.After(ci.LastPurchase) {
			ci.LastPurchase = l.CreatedAt
		}
	}

	out := make([]CustomerInsight, 0, len(byCustomer))
	for _, ci := range byCustomer {
		if ci.TotalItems == 0 {
			continue
		}
		if ci.ImpliedCost > 0 {
			pct := (ci.TotalRevenue - ci.ImpliedCost) / ci.ImpliedCost * 100
			ci.ProfitPercent = &pct
		}
		out = append(out, *ci)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out
}

// Dashboard composes the shop's landing-page counters. The independent
// counts run concurrently.
func (s *Service) Dashboard(ctx context.Context, shopID int64) (Dashboard, error) {
	var d Dashboard
	today := shared.Today()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Products, err = s.repo.ProductStats(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		d.ByBrand, err = s.repo.ProductCountsByBrand(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		d.ByCategory, err = s.repo.ProductCountsByCategory(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		d.CustomerCount, err = s.repo.CountCustomers(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		d.BatchCount, err = s.repo.CountBatches(gctx, shopID)
		return err
	})
	g.Go(func() error {
		days, err := s.DailySummary(gctx, shopID, today, today)
		if err != nil {
			return err
		}
		if len(days) > 0 {
			d.Today = days[0]
		} else {
			d.Today = DaySummary{Date: today}
		}
		return nil
	})
	if s.settings != nil {
		g.Go(func() error {
			var err error
			d.ExpensePercent, err = s.settings(gctx, shopID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d.TodayRevenue = s.printer.Sprintf("%.2f", d.Today.SaleAmount)
	return d, nil
}
