package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core"
)

func addExpense(t *testing.T, f *fixture, category, title, amount string, typ core.EntryType, date string) core.Expense {
	t.Helper()
	e, err := f.expenses.AddExpense(context.Background(), core.Expense{
		Category: category,
		Title:    title,
		Amount:   dec(amount),
		Type:     typ,
		Date:     date,
	})
	require.NoError(t, err)
	return e
}

func TestAddExpense_Validation(t *testing.T) {
	f := newFixture()
	_, err := f.expenses.AddExpense(context.Background(), core.Expense{
		Category: "Shop Expense", Title: "Rent", Amount: dec("0"), Type: core.Debit, Date: "2024-03-01",
	})
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestListExpenses_TotalsOverFilteredSet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	addExpense(t, f, "Shop Expense", "Rent", "5000", core.Debit, "2024-03-01")
	addExpense(t, f, "Shop Expense", "Scrap sale", "800", core.Credit, "2024-03-10")
	addExpense(t, f, "Car Expense", "Fuel", "1200", core.Debit, "2024-04-01")

	list, err := f.expenses.ListExpenses(ctx, core.ExpenseFilter{DateFrom: "2024-03-01", DateTo: "2024-03-31"})
	require.NoError(t, err)
	assert.Len(t, list.Expenses, 2)
	assert.True(t, list.TotalDebit.Equal(dec("5000")))
	assert.True(t, list.TotalCredit.Equal(dec("800")))
}

func TestCategorySummary_RowsAndTotal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	addExpense(t, f, "Shop Expense", "Rent", "5000", core.Debit, "2024-03-01")
	addExpense(t, f, "Shop Expense", "Scrap sale", "800", core.Credit, "2024-03-10")
	addExpense(t, f, "Car Expense", "Fuel", "1200", core.Debit, "2024-03-15")

	rows, err := f.expenses.CategorySummary(ctx, core.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3, "two categories plus the TOTAL row")

	byName := map[string]core.ExpenseCategorySummary{}
	for _, r := range rows {
		byName[r.Category] = r
	}

	shop := byName["Shop Expense"]
	assert.True(t, shop.Debit.Equal(dec("5000")))
	assert.True(t, shop.Credit.Equal(dec("800")))
	assert.True(t, shop.Net.Equal(dec("-4200")))
	assert.Equal(t, 2, shop.Count)

	total := byName[core.TotalRowName]
	assert.True(t, total.Debit.Equal(dec("6200")))
	assert.True(t, total.Credit.Equal(dec("800")))
	assert.True(t, total.Net.Equal(dec("-5400")))
	assert.Equal(t, 3, total.Count)

	// TOTAL is always the last row.
	assert.Equal(t, core.TotalRowName, rows[len(rows)-1].Category)
}

func TestCategorySummary_EmptyHasNoTotalRow(t *testing.T) {
	f := newFixture()
	rows, err := f.expenses.CategorySummary(context.Background(), core.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateExpense_UnknownID(t *testing.T) {
	f := newFixture()
	title := "x"
	_, err := f.expenses.UpdateExpense(context.Background(), "missing", core.ExpensePatch{Title: &title})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteExpense_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := addExpense(t, f, "Shop Expense", "Rent", "5000", core.Debit, "2024-03-01")

	ok, err := f.expenses.DeleteExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.expenses.GetExpense(ctx, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
