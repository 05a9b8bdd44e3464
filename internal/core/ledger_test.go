package core_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core"
	"ledgerbook/internal/docstore"
)

// fixture bundles the service graph over a fresh in-memory store.
type fixture struct {
	store     *docstore.MemoryStore
	stock     core.StockService
	ledger    core.LedgerService
	customers core.CustomerService
	expenses  core.ExpenseService
}

func newFixture() *fixture {
	store := docstore.NewMemoryStore()
	stock := core.NewStockService(store)
	ledger := core.NewLedgerService(store, stock)
	return &fixture{
		store:     store,
		stock:     stock,
		ledger:    ledger,
		customers: core.NewCustomerService(store, ledger),
		expenses:  core.NewExpenseService(store),
	}
}

func (f *fixture) addStock(t *testing.T, name string, qty int64, price string) core.StockItem {
	t.Helper()
	item, err := f.stock.AddStock(context.Background(), core.StockItem{
		Name:     name,
		Category: "General",
		Quantity: qty,
		Price:    dec(price),
		Date:     "2024-01-01",
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) addCustomer(t *testing.T, name string) core.Customer {
	t.Helper()
	c, err := f.customers.AddCustomer(context.Background(), core.Customer{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) quantity(t *testing.T, stockID string) int64 {
	t.Helper()
	item, err := f.stock.GetStock(context.Background(), stockID)
	require.NoError(t, err)
	return item.Quantity
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func saleEntry(customerID, productID string, qty int64, amount string) core.LedgerEntry {
	return core.LedgerEntry{
		CustomerID:      customerID,
		Title:           "Sale",
		Amount:          dec(amount),
		Type:            core.Debit,
		Date:            "2024-03-01",
		ProductID:       productID,
		ProductQuantity: qty,
	}
}

func TestCreateEntry_DebitConsumesStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	entry, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Red Shirt", entry.ProductName, "product name snapshot filled in")
	assert.Equal(t, int64(90), f.quantity(t, shirt.ID))
}

func TestCreateEntry_CreditReturnsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	entry := saleEntry(c.ID, shirt.ID, 5, "1250")
	entry.Type = core.Credit
	entry.Title = "Return"
	_, err := f.ledger.CreateEntry(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(105), f.quantity(t, shirt.ID))
}

func TestCreateEntry_NoProductLeavesStockAlone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: c.ID,
		Title:      "Cash payment",
		Amount:     dec("500"),
		Type:       core.Credit,
		Date:       "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, shirt.ID))
}

func TestCreateEntry_OverdrawIsAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 3, "250")
	c := f.addCustomer(t, "Rahim")

	// Requesting more than available logs a warning but goes through.
	_, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)
	assert.Equal(t, int64(-7), f.quantity(t, shirt.ID))
}

func TestCreateEntry_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.addCustomer(t, "Rahim")

	cases := []struct {
		name  string
		entry core.LedgerEntry
	}{
		{"missing customer", core.LedgerEntry{Title: "x", Amount: dec("1"), Type: core.Debit, Date: "2024-03-01"}},
		{"missing title", core.LedgerEntry{CustomerID: c.ID, Amount: dec("1"), Type: core.Debit, Date: "2024-03-01"}},
		{"zero amount", core.LedgerEntry{CustomerID: c.ID, Title: "x", Type: core.Debit, Date: "2024-03-01"}},
		{"negative amount", core.LedgerEntry{CustomerID: c.ID, Title: "x", Amount: dec("-5"), Type: core.Debit, Date: "2024-03-01"}},
		{"bad type", core.LedgerEntry{CustomerID: c.ID, Title: "x", Amount: dec("1"), Type: "transfer", Date: "2024-03-01"}},
		{"bad date", core.LedgerEntry{CustomerID: c.ID, Title: "x", Amount: dec("1"), Type: core.Debit, Date: "03/01/2024"}},
		{"product without quantity", core.LedgerEntry{CustomerID: c.ID, Title: "x", Amount: dec("1"), Type: core.Debit, Date: "2024-03-01", ProductID: "p1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.CreateEntry(ctx, tc.entry)
			var verr *core.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

// The full lifecycle against one product: sell 10 of 100, shrink the sale to
// 4, then delete the entry. Stock must read 90, 96, and 100 in turn.
func TestEntryLifecycle_ReverseThenApply(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	entry, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)
	assert.Equal(t, int64(90), f.quantity(t, shirt.ID))

	qty := int64(4)
	_, err = f.ledger.UpdateEntry(ctx, entry.ID, core.LedgerPatch{ProductQuantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, int64(96), f.quantity(t, shirt.ID))

	ok, err := f.ledger.DeleteEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(100), f.quantity(t, shirt.ID))
}

func TestUpdateEntry_ProductSwitchMovesBothStocks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	blueCap := f.addStock(t, "Blue Cap", 50, "120")
	c := f.addCustomer(t, "Rahim")

	entry, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)

	// Reversal restores the shirt pool, application hits the cap pool.
	qty := int64(3)
	_, err = f.ledger.UpdateEntry(ctx, entry.ID, core.LedgerPatch{
		ProductID:       &blueCap.ID,
		ProductName:     &blueCap.Name,
		ProductQuantity: &qty,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, shirt.ID))
	assert.Equal(t, int64(47), f.quantity(t, blueCap.ID))
}

func TestUpdateEntry_TypeFlipReversesDirection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	entry, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)
	assert.Equal(t, int64(90), f.quantity(t, shirt.ID))

	// Debit→credit: +10 reversal then +10 application.
	credit := core.Credit
	_, err = f.ledger.UpdateEntry(ctx, entry.ID, core.LedgerPatch{Type: &credit})
	require.NoError(t, err)
	assert.Equal(t, int64(110), f.quantity(t, shirt.ID))
}

func TestUpdateEntry_DetachFromProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	entry, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)

	empty := ""
	_, err = f.ledger.UpdateEntry(ctx, entry.ID, core.LedgerPatch{ProductID: &empty})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, shirt.ID), "reversal applied, no new effect")
}

func TestUpdateEntry_UnknownID(t *testing.T) {
	f := newFixture()
	title := "x"
	_, err := f.ledger.UpdateEntry(context.Background(), "missing", core.LedgerPatch{Title: &title})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteEntry_UnknownID(t *testing.T) {
	f := newFixture()
	_, err := f.ledger.DeleteEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteEntry_AfterStockRemoved(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	entry, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)

	_, err = f.stock.DeleteStock(ctx, shirt.ID)
	require.NoError(t, err)

	// The reversal target is gone; deletion still succeeds.
	ok, err := f.ledger.DeleteEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Stock invariant: after any sequence of entry mutations, each lot's
// quantity equals its opening quantity plus the stock effects of the entries
// that still exist.
func TestInvariant_QuantityTracksLiveEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")
	d := f.addCustomer(t, "Karim")

	e1, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)
	e2, err := f.ledger.CreateEntry(ctx, saleEntry(d.ID, shirt.ID, 7, "1750"))
	require.NoError(t, err)

	ret := saleEntry(c.ID, shirt.ID, 2, "500")
	ret.Type = core.Credit
	_, err = f.ledger.CreateEntry(ctx, ret)
	require.NoError(t, err)

	qty := int64(5)
	_, err = f.ledger.UpdateEntry(ctx, e1.ID, core.LedgerPatch{ProductQuantity: &qty})
	require.NoError(t, err)

	_, err = f.ledger.DeleteEntry(ctx, e2.ID)
	require.NoError(t, err)

	// 100 − 5 (e1 updated) + 2 (credit return); e2 deleted and reversed.
	assert.Equal(t, int64(97), f.quantity(t, shirt.ID))
}

func TestLedgerView_RunningBalanceIsChronological(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.addCustomer(t, "Rahim")

	add := func(title string, amount string, typ core.EntryType, date string) {
		_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
			CustomerID: c.ID, Title: title, Amount: dec(amount), Type: typ, Date: date,
		})
		require.NoError(t, err)
	}
	// Inserted out of date order on purpose.
	add("Sale B", "300", core.Debit, "2024-03-10")
	add("Sale A", "1000", core.Debit, "2024-03-01")
	add("Payment", "400", core.Credit, "2024-03-05")

	view, err := f.ledger.LedgerView(ctx, c.ID, core.LedgerFilter{SortBy: "date", SortDesc: false})
	require.NoError(t, err)
	require.Len(t, view.Entries, 3)

	// Chronological: 1000, 600, 900.
	assert.Equal(t, "Sale A", view.Entries[0].Title)
	assert.True(t, view.Entries[0].Balance.Equal(dec("1000")))
	assert.True(t, view.Entries[1].Balance.Equal(dec("600")))
	assert.True(t, view.Entries[2].Balance.Equal(dec("900")))

	assert.True(t, view.TotalDebit.Equal(dec("1300")))
	assert.True(t, view.TotalCredit.Equal(dec("400")))
	assert.True(t, view.Balance.Equal(dec("900")))
}

func TestLedgerView_DisplaySortDoesNotChangeBalances(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.addCustomer(t, "Rahim")

	for _, e := range []struct {
		title, amount, date string
	}{
		{"Zeta", "100", "2024-03-01"},
		{"Alpha", "200", "2024-03-02"},
	} {
		_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
			CustomerID: c.ID, Title: e.title, Amount: dec(e.amount), Type: core.Debit, Date: e.date,
		})
		require.NoError(t, err)
	}

	byTitle, err := f.ledger.LedgerView(ctx, c.ID, core.LedgerFilter{SortBy: "title"})
	require.NoError(t, err)
	require.Len(t, byTitle.Entries, 2)

	// Alpha sorts first but keeps the balance from its chronological slot.
	assert.Equal(t, "Alpha", byTitle.Entries[0].Title)
	assert.True(t, byTitle.Entries[0].Balance.Equal(dec("300")))
	assert.True(t, byTitle.Entries[1].Balance.Equal(dec("100")))
}

func TestLedgerView_SameDateEntriesKeepInsertionOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.addCustomer(t, "Rahim")

	for _, title := range []string{"first", "second", "third"} {
		_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
			CustomerID: c.ID, Title: title, Amount: dec("100"), Type: core.Debit, Date: "2024-03-01",
		})
		require.NoError(t, err)
	}

	view, err := f.ledger.LedgerView(ctx, c.ID, core.LedgerFilter{SortBy: "date", SortDesc: false})
	require.NoError(t, err)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, "first", view.Entries[0].Title)
	assert.True(t, view.Entries[0].Balance.Equal(dec("100")))
	assert.True(t, view.Entries[2].Balance.Equal(dec("300")))
}

func TestLedgerView_FiltersNarrowTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.addCustomer(t, "Rahim")

	_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: c.ID, Title: "Sale", Amount: dec("1000"), Type: core.Debit, Date: "2024-03-01",
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: c.ID, Title: "Payment", Amount: dec("400"), Type: core.Credit, Date: "2024-03-05",
	})
	require.NoError(t, err)

	onlyDebits, err := f.ledger.LedgerView(ctx, c.ID, core.LedgerFilter{Type: core.Debit})
	require.NoError(t, err)
	assert.Len(t, onlyDebits.Entries, 1)
	assert.True(t, onlyDebits.TotalCredit.IsZero())
}

// Sell 5 shirts on credit terms, take a partial payment, then void the sale:
// the stock returns and the remaining payment flips the balance to payable.
func TestScenario_VoidedSaleLeavesPayableBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 10, "500")
	c := f.addCustomer(t, "Rahim")

	sale, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 5, "2500"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.quantity(t, shirt.ID))

	totals, err := f.ledger.CustomerTotals(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, totals.Balance.Equal(dec("2500")), "receivable")

	_, err = f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: c.ID, Title: "Payment", Amount: dec("1000"), Type: core.Credit, Date: "2024-03-05",
	})
	require.NoError(t, err)

	totals, err = f.ledger.CustomerTotals(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, totals.Balance.Equal(dec("1500")))

	_, err = f.ledger.DeleteEntry(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.quantity(t, shirt.ID))

	totals, err = f.ledger.CustomerTotals(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, totals.Balance.Equal(dec("-1000")), "payable")
}

func TestCustomerTotals_IgnoreFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.addCustomer(t, "Rahim")

	_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: c.ID, Title: "Sale", Amount: dec("1000"), Type: core.Debit, Date: "2024-03-01",
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: c.ID, Title: "Payment", Amount: dec("400"), Type: core.Credit, Date: "2024-03-05",
	})
	require.NoError(t, err)

	totals, err := f.ledger.CustomerTotals(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, totals.TotalDebit.Equal(dec("1000")))
	assert.True(t, totals.TotalCredit.Equal(dec("400")))
	assert.True(t, totals.Balance.Equal(dec("600")))
}
