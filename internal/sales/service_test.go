package sales

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezzystore/ezzystore/internal/catalog"
	"github.com/ezzystore/ezzystore/internal/shared"
)

type memoryProduct struct {
	shopID   int64
	name     string
	quantity int
	price    float64
}

type memoryState struct {
	products  map[int64]memoryProduct
	sales     map[int64]Sale
	items     map[int64]Item
	customers map[int64]Customer
	nextID    int64
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		products:  make(map[int64]memoryProduct, len(s.products)),
		sales:     make(map[int64]Sale, len(s.sales)),
		items:     make(map[int64]Item, len(s.items)),
		customers: make(map[int64]Customer, len(s.customers)),
		nextID:    s.nextID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	return c
}

type memoryRepo struct {
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: &memoryState{
		products:  make(map[int64]memoryProduct),
		sales:     make(map[int64]Sale),
		items:     make(map[int64]Item),
		customers: make(map[int64]Customer),
	}}
}

type memoryTx struct {
	state *memoryState
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{state: r.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

func (t *memoryTx) LockProduct(ctx context.Context, shopID, productID int64) (catalog.LockedProduct, error) {
	p, ok := t.state.products[productID]
	if !ok || p.shopID != shopID {
		return catalog.LockedProduct{}, shared.ErrNotFound
	}
	return catalog.LockedProduct{ID: productID, Name: p.name, Quantity: p.quantity, Price: p.price}, nil
}

func (t *memoryTx) ApplyQuantityDelta(ctx context.Context, shopID, productID int64, delta int) error {
	p, ok := t.state.products[productID]
	if !ok || p.shopID != shopID {
		return shared.ErrNotFound
	}
	if p.quantity+delta < 0 {
		return shared.ErrInsufficientStock
	}
	p.quantity += delta
	t.state.products[productID] = p
	return nil
}

func (t *memoryTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	t.state.nextID++
	sale.ID = t.state.nextID
	sale.CreatedAt = time.Now()
	t.state.sales[sale.ID] = sale
	return sale.ID, nil
}

func (t *memoryTx) InsertItem(ctx context.Context, item Item) (int64, error) {
	t.state.nextID++
	item.ID = t.state.nextID
	t.state.items[item.ID] = item
	return item.ID, nil
}

func (t *memoryTx) GetSaleForUpdate(ctx context.Context, shopID, saleID int64) (Sale, error) {
	s, ok := t.state.sales[saleID]
	if !ok || s.ShopID != shopID {
		return Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (t *memoryTx) GetItemsForUpdate(ctx context.Context, saleID int64) ([]Item, error) {
	items := []Item{}
	for _, it := range t.state.items {
		if it.SaleID == saleID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (t *memoryTx) AddReturnedQuantity(ctx context.Context, itemID int64, quantity int, now time.Time) error {
	it, ok := t.state.items[itemID]
	if !ok || it.ReturnedQuantity+quantity > it.Quantity {
		return shared.ErrInvalidReturnAmount
	}
	it.ReturnedQuantity += quantity
	if it.ReturnedAt == nil && it.ReturnedQuantity >= it.Quantity {
		at := now
		it.ReturnedAt = &at
	}
	t.state.items[itemID] = it
	return nil
}

func (r *memoryRepo) GetSale(ctx context.Context, shopID, saleID int64) (Sale, error) {
	s, ok := r.state.sales[saleID]
	if !ok || s.ShopID != shopID {
		return Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) GetItems(ctx context.Context, saleID int64) ([]Item, error) {
	items := []Item{}
	for _, it := range r.state.items {
		if it.SaleID == saleID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *memoryRepo) Recent(ctx context.Context, shopID int64, limit int) ([]SaleWithItems, error) {
	out := []SaleWithItems{}
	for _, s := range r.state.sales {
		if s.ShopID != shopID {
			continue
		}
		items, _ := r.GetItems(ctx, s.ID)
		out = append(out, SaleWithItems{Sale: s, Items: items})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepo) ByDateRange(ctx context.Context, shopID int64, start, end shared.Date) ([]SaleWithItems, error) {
	out := []SaleWithItems{}
	for _, s := range r.state.sales {
		if s.ShopID != shopID {
			continue
		}
		if s.CreatedAt.Before(start.Time) || !s.CreatedAt.Before(end.AddDate(0, 0, 1)) {
			continue
		}
		items, _ := r.GetItems(ctx, s.ID)
		out = append(out, SaleWithItems{Sale: s, Items: items})
	}
	return out, nil
}

func (r *memoryRepo) CreateCustomer(ctx context.Context, shopID int64, name string, phone *string) (Customer, error) {
	for _, c := range r.state.customers {
		if c.ShopID == shopID && c.Name == name {
			return Customer{}, shared.ErrDuplicateName
		}
	}
	r.state.nextID++
	c := Customer{ID: r.state.nextID, ShopID: shopID, Name: name, Phone: phone, CreatedAt: time.Now()}
	r.state.customers[c.ID] = c
	return c, nil
}

func (r *memoryRepo) UpdateCustomer(ctx context.Context, shopID, customerID int64, name string, phone *string) error {
	c, ok := r.state.customers[customerID]
	if !ok || c.ShopID != shopID {
		return shared.ErrNotFound
	}
	c.Name = name
	c.Phone = phone
	r.state.customers[customerID] = c
	return nil
}

func (r *memoryRepo) DeleteCustomer(ctx context.Context, shopID, customerID int64) error {
	c, ok := r.state.customers[customerID]
	if !ok || c.ShopID != shopID {
		return shared.ErrNotFound
	}
	delete(r.state.customers, customerID)
	for id, s := range r.state.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID {
			s.CustomerID = nil
			r.state.sales[id] = s
		}
	}
	return nil
}

func (r *memoryRepo) ListCustomers(ctx context.Context, shopID int64) ([]Customer, error) {
	out := []Customer{}
	for _, c := range r.state.customers {
		if c.ShopID == shopID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetCustomer(ctx context.Context, shopID, customerID int64) (Customer, error) {
	c, ok := r.state.customers[customerID]
	if !ok || c.ShopID != shopID {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.DiscardHandler))
}

func seedProduct(repo *memoryRepo, id, shopID int64, name string, quantity int) {
	repo.state.products[id] = memoryProduct{shopID: shopID, name: name, quantity: quantity, price: 100}
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)

	sale, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 3, UnitPrice: 150},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeSale, sale.Type)
	require.Equal(t, 450.0, sale.TotalAmount)
	require.Len(t, sale.Items, 1)
	require.Equal(t, "Sneaker", sale.Items[0].ProductName)
	require.Equal(t, 3, sale.Items[0].Remaining())

	require.Equal(t, 7, repo.state.products[7].quantity)
}

func TestRecordSaleMultiLineTotal(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	seedProduct(repo, 8, 1, "Boot", 5)
	svc := newTestService(repo)

	sale, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 2, UnitPrice: 150},
		{ProductID: 8, Quantity: 1, UnitPrice: 200},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 500.0, sale.TotalAmount)
	require.Equal(t, 8, repo.state.products[7].quantity)
	require.Equal(t, 4, repo.state.products[8].quantity)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 2)
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 3, UnitPrice: 150},
	}, nil)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.Equal(t, 2, repo.state.products[7].quantity)
	require.Empty(t, repo.state.sales)
}

func TestRecordSaleDuplicateLinesExceedingStock(t *testing.T) {
	// Two lines for the same product each pass the per-line check; only
	// the quantity guard on the second decrement catches the combined
	// oversell.
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 5)
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 3, UnitPrice: 150},
		{ProductID: 7, Quantity: 3, UnitPrice: 150},
	}, nil)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.Equal(t, 5, repo.state.products[7].quantity)
	require.Empty(t, repo.state.sales)
	require.Empty(t, repo.state.items)
}

func TestRecordSaleFailingLineRollsBackAll(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	seedProduct(repo, 8, 1, "Boot", 1)
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 2, UnitPrice: 150},
		{ProductID: 8, Quantity: 5, UnitPrice: 200},
	}, nil)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.Equal(t, 10, repo.state.products[7].quantity)
	require.Equal(t, 1, repo.state.products[8].quantity)
	require.Empty(t, repo.state.sales)
}

func TestRecordSaleCrossShopProduct(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 2, "Sneaker", 10)
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 1, UnitPrice: 150},
	}, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordSaleUnknownCustomer(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)

	missing := int64(42)
	_, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 1, UnitPrice: 150},
	}, &missing)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestStandaloneReturnIncrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 2)
	svc := newTestService(repo)

	ret, err := svc.RecordStandaloneReturn(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 3, UnitPrice: 150},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeReturn, ret.Type)
	require.Nil(t, ret.ReferenceSaleID)
	require.Equal(t, 5, repo.state.products[7].quantity)
}

func recordSaleOfTen(t *testing.T, svc *Service) SaleWithItems {
	t.Helper()
	sale, err := svc.RecordSale(context.Background(), 1, []LineInput{
		{ProductID: 7, Quantity: 10, UnitPrice: 150},
	}, nil)
	require.NoError(t, err)
	return sale
}

func TestReturnAgainstSaleLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)
	ctx := context.Background()

	sale := recordSaleOfTen(t, svc)
	require.Equal(t, 0, repo.state.products[7].quantity)
	itemID := sale.Items[0].ID

	// Partial return of 4 leaves 6 remaining.
	ret, err := svc.RecordReturnAgainstSale(ctx, 1, sale.ID, []ReturnLineInput{
		{SaleItemID: itemID, Quantity: 4},
	})
	require.NoError(t, err)
	require.Equal(t, TypeReturn, ret.Type)
	require.Equal(t, sale.ID, *ret.ReferenceSaleID)
	require.Equal(t, 600.0, ret.TotalAmount)
	require.Equal(t, 4, repo.state.products[7].quantity)

	line := repo.state.items[itemID]
	require.Equal(t, 4, line.ReturnedQuantity)
	require.Equal(t, 6, line.Remaining())
	require.Nil(t, line.ReturnedAt)

	// Asking for 7 exceeds the remaining 6.
	_, err = svc.RecordReturnAgainstSale(ctx, 1, sale.ID, []ReturnLineInput{
		{SaleItemID: itemID, Quantity: 7},
	})
	require.ErrorIs(t, err, shared.ErrInvalidReturnAmount)
	require.Equal(t, 4, repo.state.items[itemID].ReturnedQuantity)
	require.Equal(t, 4, repo.state.products[7].quantity)

	// Returning the remaining 6 fully returns the line.
	_, err = svc.RecordReturnAgainstSale(ctx, 1, sale.ID, []ReturnLineInput{
		{SaleItemID: itemID, Quantity: 6},
	})
	require.NoError(t, err)

	line = repo.state.items[itemID]
	require.Equal(t, 10, line.ReturnedQuantity)
	require.True(t, line.FullyReturned())
	require.NotNil(t, line.ReturnedAt)
	require.Equal(t, 10, repo.state.products[7].quantity)
}

func TestReturnAgainstSaleRejectsZeroQuantity(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)

	sale := recordSaleOfTen(t, svc)
	_, err := svc.RecordReturnAgainstSale(context.Background(), 1, sale.ID, []ReturnLineInput{
		{SaleItemID: sale.Items[0].ID, Quantity: 0},
	})
	require.ErrorIs(t, err, shared.ErrInvalidReturnAmount)
}

func TestReturnAgainstReturnRejected(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)
	ctx := context.Background()

	ret, err := svc.RecordStandaloneReturn(ctx, 1, []LineInput{
		{ProductID: 7, Quantity: 1, UnitPrice: 150},
	}, nil)
	require.NoError(t, err)

	_, err = svc.RecordReturnAgainstSale(ctx, 1, ret.ID, []ReturnLineInput{
		{SaleItemID: ret.Items[0].ID, Quantity: 1},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReturnAgainstSaleCrossShop(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)

	sale := recordSaleOfTen(t, svc)
	_, err := svc.RecordReturnAgainstSale(context.Background(), 2, sale.ID, []ReturnLineInput{
		{SaleItemID: sale.Items[0].ID, Quantity: 1},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerRegistry(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, 1, "Alice", nil)
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, 1, "Alice", nil)
	require.ErrorIs(t, err, shared.ErrDuplicateName)

	phone := "555-0100"
	updated, err := svc.UpdateCustomer(ctx, 1, c.ID, "Alicia", &phone)
	require.NoError(t, err)
	require.Equal(t, "Alicia", updated.Name)

	require.NoError(t, svc.DeleteCustomer(ctx, 1, c.ID))
	_, err = svc.UpdateCustomer(ctx, 1, c.ID, "Alicia", nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteCustomerUnsetsSaleReference(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 7, 1, "Sneaker", 10)
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, 1, "Alice", nil)
	require.NoError(t, err)

	sale, err := svc.RecordSale(ctx, 1, []LineInput{
		{ProductID: 7, Quantity: 1, UnitPrice: 150},
	}, &c.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, 1, c.ID))

	got, err := svc.GetWithItems(ctx, 1, sale.ID)
	require.NoError(t, err)
	require.Nil(t, got.CustomerID)
}
