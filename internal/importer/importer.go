// Package importer ingests spreadsheet exports into one shop's catalog and
// batch ledger. The whole file commits or rolls back as one transaction; dry
// runs execute every lookup and insert, then roll back instead of committing.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ezzystore/ezzystore/internal/catalog"
	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/shared"
)

// Row is one parsed spreadsheet line.
type Row struct {
	Brand        string
	Category     string
	Product      string
	Quantity     int
	PurchaseRate float64
	SalePrice    float64
	ReorderLevel int
}

// Summary counts what an import did, or would have done on a dry run.
type Summary struct {
	Rows              int  `json:"rows"`
	BrandsCreated     int  `json:"brands_created"`
	CategoriesCreated int  `json:"categories_created"`
	ProductsCreated   int  `json:"products_created"`
	BatchesAppended   int  `json:"batches_appended"`
	UnitsAdded        int  `json:"units_added"`
	DryRun            bool `json:"dry_run"`
}

// errDryRun aborts the transaction after a successful dry run.
var errDryRun = errors.New("importer: dry run rollback")

// header aliases accepted in the first CSV row, lowercased.
var headerAliases = map[string]string{
	"brand":         "brand",
	"category":      "category",
	"product":       "product",
	"product_name":  "product",
	"name":          "product",
	"quantity":      "quantity",
	"qty":           "quantity",
	"purchase_rate": "purchase_rate",
	"rate":          "purchase_rate",
	"cost":          "purchase_rate",
	"sale_price":    "sale_price",
	"price":         "sale_price",
	"reorder_level": "reorder_level",
	"reorder":       "reorder_level",
}

// ParseCSV reads spreadsheet rows. The first record must be a header naming
// at least the product, category, quantity, purchase rate and sale price
// columns; column order is free.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", shared.ErrValidation)
	}

	cols := map[string]int{}
	for i, name := range header {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if ok {
			cols[key] = i
		}
	}
	for _, required := range []string{"product", "category", "quantity", "purchase_rate", "sale_price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", shared.ErrValidation, required)
		}
	}

	field := func(record []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := []Row{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrValidation, line+1, err)
		}
		line++

		row := Row{
			Brand:    field(record, "brand"),
			Category: field(record, "category"),
			Product:  field(record, "product"),
		}
		if row.Product == "" {
			return nil, fmt.Errorf("%w: line %d: product name is required", shared.ErrValidation, line)
		}
		if row.Category == "" {
			return nil, fmt.Errorf("%w: line %d: category is required", shared.ErrValidation, line)
		}

		row.Quantity, err = strconv.Atoi(field(record, "quantity"))
		if err != nil || row.Quantity < 0 {
			return nil, fmt.Errorf("%w: line %d: invalid quantity", shared.ErrValidation, line)
		}
		row.PurchaseRate, err = strconv.ParseFloat(field(record, "purchase_rate"), 64)
		if err != nil || row.PurchaseRate < 0 {
			return nil, fmt.Errorf("%w: line %d: invalid purchase rate", shared.ErrValidation, line)
		}
		row.SalePrice, err = strconv.ParseFloat(field(record, "sale_price"), 64)
		if err != nil || row.SalePrice < 0 {
			return nil, fmt.Errorf("%w: line %d: invalid sale price", shared.ErrValidation, line)
		}
		if raw := field(record, "reorder_level"); raw != "" {
			row.ReorderLevel, err = strconv.Atoi(raw)
			if err != nil || row.ReorderLevel < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid reorder level", shared.ErrValidation, line)
			}
		}

		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", shared.ErrValidation)
	}
	return rows, nil
}

// Importer runs parsed rows against the database.
type Importer struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New constructs an Importer.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Importer {
	return &Importer{pool: pool, logger: logger}
}

// Run imports rows into shopID, stamping new batches with batchDate. Rows
// with zero quantity only ensure the product exists. With dryRun set, all
// work executes and then rolls back; the summary reflects what a real run
// would have done.
func (im *Importer) Run(ctx context.Context, shopID int64, rows []Row, batchDate shared.Date, dryRun bool) (Summary, error) {
	summary := Summary{Rows: len(rows), DryRun: dryRun}

	err := db.WithTx(ctx, im.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			var brandID *int64
			if row.Brand != "" {
				id, created, err := catalog.FindOrCreateBrand(ctx, tx, shopID, row.Brand)
				if err != nil {
					return fmt.Errorf("brand %q: %w", row.Brand, err)
				}
				if created {
					summary.BrandsCreated++
				}
				brandID = &id
			}

			categoryID, created, err := catalog.FindOrCreateCategory(ctx, tx, shopID, row.Category)
			if err != nil {
				return fmt.Errorf("category %q: %w", row.Category, err)
			}
			if created {
				summary.CategoriesCreated++
			}

			productID, created, err := catalog.FindOrCreateProduct(ctx, tx, shopID, row.Product, brandID, &categoryID, row.ReorderLevel)
			if err != nil {
				return fmt.Errorf("product %q: %w", row.Product, err)
			}
			if created {
				summary.ProductsCreated++
			}

			if row.Quantity == 0 {
				continue
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO stock_batches (shop_id, product_id, quantity, purchase_rate, sale_price, batch_date)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				shopID, productID, row.Quantity, row.PurchaseRate, row.SalePrice, batchDate.Time)
			if err != nil {
				return fmt.Errorf("batch for %q: %w", row.Product, err)
			}
			salePrice := row.SalePrice
			if err := catalog.AddStock(ctx, tx, shopID, productID, row.Quantity, &salePrice); err != nil {
				return fmt.Errorf("stock for %q: %w", row.Product, err)
			}
			summary.BatchesAppended++
			summary.UnitsAdded += row.Quantity
		}

		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return Summary{}, err
	}

	im.logger.Info("import finished",
		slog.Int64("shop_id", shopID),
		slog.Int("rows", summary.Rows),
		slog.Int("batches", summary.BatchesAppended),
		slog.Bool("dry_run", dryRun))
	return summary, nil
}
