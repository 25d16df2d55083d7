package stock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ezzystore/ezzystore/internal/shared"
)

func TestNormalizeSingleShape(t *testing.T) {
	productID := int64(7)
	qty := 5
	rate := 120.0
	price := 150.0

	in, err := Form{
		BatchDate:    "2026-08-01",
		ProductID:    &productID,
		Quantity:     &qty,
		PurchaseRate: &rate,
		SalePrice:    &price,
	}.Normalize()
	require.NoError(t, err)
	require.Equal(t, "2026-08-01", in.BatchDate.String())
	require.Equal(t, []Entry{{ProductID: 7, Quantity: 5, PurchaseRate: 120, SalePrice: 150}}, in.Entries)
}

func TestNormalizeEntriesShape(t *testing.T) {
	in, err := Form{
		BatchDate: "2026-08-01",
		Entries: []EntryForm{
			{ProductID: 7, Quantity: 5, PurchaseRate: 120, SalePrice: 150},
			{ProductID: 8, Quantity: 2, PurchaseRate: 80, SalePrice: 100},
		},
	}.Normalize()
	require.NoError(t, err)
	require.Len(t, in.Entries, 2)
	require.Equal(t, Entry{ProductID: 7, Quantity: 5, PurchaseRate: 120, SalePrice: 150}, in.Entries[0])
}

func TestNormalizeShapesAgree(t *testing.T) {
	productID := int64(7)
	qty := 5
	rate := 120.0
	price := 150.0

	single, err := Form{
		BatchDate:    "2026-08-01",
		ProductID:    &productID,
		Quantity:     &qty,
		PurchaseRate: &rate,
		SalePrice:    &price,
	}.Normalize()
	require.NoError(t, err)

	multi, err := Form{
		BatchDate: "2026-08-01",
		Entries:   []EntryForm{{ProductID: 7, Quantity: 5, PurchaseRate: 120, SalePrice: 150}},
	}.Normalize()
	require.NoError(t, err)

	require.Equal(t, single, multi)
}

func TestNormalizeDefaultsDateToToday(t *testing.T) {
	productID := int64(7)
	qty := 1

	in, err := Form{ProductID: &productID, Quantity: &qty}.Normalize()
	require.NoError(t, err)
	require.Equal(t, shared.Today(), in.BatchDate)
}

func TestNormalizeRejections(t *testing.T) {
	productID := int64(7)
	qty := 5

	cases := map[string]Form{
		"no entries":     {BatchDate: "2026-08-01"},
		"both shapes":    {ProductID: &productID, Quantity: &qty, Entries: []EntryForm{{ProductID: 8, Quantity: 1}}},
		"bad date":       {BatchDate: "01/08/2026", ProductID: &productID, Quantity: &qty},
		"zero quantity":  {Entries: []EntryForm{{ProductID: 7, Quantity: 0}}},
		"negative rate":  {Entries: []EntryForm{{ProductID: 7, Quantity: 1, PurchaseRate: -1}}},
		"negative price": {Entries: []EntryForm{{ProductID: 7, Quantity: 1, SalePrice: -1}}},
		"no product id":  {Entries: []EntryForm{{Quantity: 1}}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := form.Normalize()
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}
