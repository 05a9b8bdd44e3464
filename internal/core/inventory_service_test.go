package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core"
)

func TestAddStock_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		item core.StockItem
	}{
		{"missing name", core.StockItem{Category: "General", Quantity: 1, Date: "2024-01-01"}},
		{"missing category", core.StockItem{Name: "x", Quantity: 1, Date: "2024-01-01"}},
		{"zero quantity", core.StockItem{Name: "x", Category: "General", Date: "2024-01-01"}},
		{"negative price", core.StockItem{Name: "x", Category: "General", Quantity: 1, Price: dec("-1"), Date: "2024-01-01"}},
		{"bad date", core.StockItem{Name: "x", Category: "General", Quantity: 1, Date: "01-01-2024"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.stock.AddStock(ctx, tc.item)
			var verr *core.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestAdjustQuantity_MissingLotIsNoOp(t *testing.T) {
	f := newFixture()
	err := f.stock.AdjustQuantity(context.Background(), "deleted-lot", -5)
	assert.NoError(t, err)
}

func TestAdjustQuantity_ZeroDeltaSkipsStorage(t *testing.T) {
	f := newFixture()
	err := f.stock.AdjustQuantity(context.Background(), "anything", 0)
	assert.NoError(t, err)
}

func TestAvailableQuantity_SumsLotsByName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addStock(t, "Red Shirt", 60, "250")
	f.addStock(t, "Red Shirt", 40, "300")
	f.addStock(t, "Blue Cap", 10, "120")

	total, err := f.stock.AvailableQuantity(ctx, "Red Shirt")
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}

func TestSummary_PoolsByNameWithWeightedAverage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addStock(t, "Red Shirt", 60, "200")
	f.addStock(t, "Red Shirt", 40, "300")

	pools, err := f.stock.Summary(ctx, core.StockFilter{})
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, int64(100), pools[0].TotalQuantity)
	assert.True(t, pools[0].TotalValue.Equal(dec("24000")))
	assert.True(t, pools[0].AveragePrice.Equal(dec("240")))
}

func TestAvailableProducts_ExcludesDepletedPools(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 10, "250")
	f.addStock(t, "Blue Cap", 5, "120")

	// Drain the shirt pool to zero through a sale.
	c := f.addCustomer(t, "Rahim")
	_, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)

	products, err := f.stock.AvailableProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Blue Cap", products[0].Name)
	assert.Equal(t, int64(5), products[0].Available)
}

func TestListStock_FiltersAndNumericSort(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addStock(t, "Red Shirt", 9, "250")
	f.addStock(t, "Blue Cap", 100, "120")

	items, err := f.stock.ListStock(ctx, core.StockFilter{SortBy: "quantity"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(9), items[0].Quantity, "9 sorts before 100 numerically")

	filtered, err := f.stock.ListStock(ctx, core.StockFilter{Name: "shirt"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Red Shirt", filtered[0].Name)
}

func TestUpdateStock_PatchMergesFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")

	price := dec("275")
	ok, err := f.stock.UpdateStock(ctx, shirt.ID, core.StockPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := f.stock.GetStock(ctx, shirt.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(dec("275")))
	assert.Equal(t, int64(100), got.Quantity, "unpatched field survives")
}
