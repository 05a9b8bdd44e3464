package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core"
)

func TestAddCustomer_RequiresName(t *testing.T) {
	f := newFixture()
	_, err := f.customers.AddCustomer(context.Background(), core.Customer{Phone: "017"})
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateCustomer_UnknownID(t *testing.T) {
	f := newFixture()
	phone := "018"
	_, err := f.customers.UpdateCustomer(context.Background(), "missing", core.CustomerPatch{Phone: &phone})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// Deleting a customer drops their entries without reversing stock effects:
// goods sold through the deleted ledger stay gone from inventory.
func TestDeleteCustomer_CascadeKeepsStockConsumed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shirt := f.addStock(t, "Red Shirt", 100, "250")
	c := f.addCustomer(t, "Rahim")

	_, err := f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 10, "2500"))
	require.NoError(t, err)
	_, err = f.ledger.CreateEntry(ctx, saleEntry(c.ID, shirt.ID, 5, "1250"))
	require.NoError(t, err)
	require.Equal(t, int64(85), f.quantity(t, shirt.ID))

	deleted, removed, err := f.customers.DeleteCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
	assert.Equal(t, 2, removed)

	// Entries are gone, stock is untouched.
	view, err := f.ledger.LedgerView(ctx, c.ID, core.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, view.Entries)
	assert.Equal(t, int64(85), f.quantity(t, shirt.ID))
}

func TestListCustomers_TotalsIgnoreListFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	rahim := f.addCustomer(t, "Rahim Traders")
	f.addCustomer(t, "Karim & Sons")

	_, err := f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: rahim.ID, Title: "Sale", Amount: dec("1000"), Type: core.Debit, Date: "2024-03-01",
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateEntry(ctx, core.LedgerEntry{
		CustomerID: rahim.ID, Title: "Payment", Amount: dec("300"), Type: core.Credit, Date: "2024-03-02",
	})
	require.NoError(t, err)

	list, err := f.customers.ListCustomers(ctx, core.CustomerFilter{Name: "rahim"})
	require.NoError(t, err)
	require.Len(t, list, 1, "name filter narrows the customer list")
	assert.True(t, list[0].Balance.Equal(dec("700")), "totals cover the whole ledger")
}

func TestListCustomers_SortedByNameByDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addCustomer(t, "Karim")
	f.addCustomer(t, "Abdul")

	list, err := f.customers.ListCustomers(ctx, core.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Abdul", list[0].Name)
}
