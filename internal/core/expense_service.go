package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/docstore"
)

// ExpenseService owns expense/income records, which live apart from the
// customer ledger and never touch stock.
type ExpenseService interface {
	// AddExpense validates and persists a record, returning it with its
	// identifier set.
	AddExpense(ctx context.Context, e Expense) (Expense, error)

	// GetExpense fetches one record. ErrNotFound when id is unknown.
	GetExpense(ctx context.Context, id string) (Expense, error)

	// UpdateExpense applies the patch. ErrNotFound when id is unknown.
	UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (bool, error)

	// DeleteExpense removes the record. ErrNotFound when id is unknown.
	DeleteExpense(ctx context.Context, id string) (bool, error)

	// ListExpenses returns records matching the filter with debit/credit
	// totals computed over the filtered set.
	ListExpenses(ctx context.Context, filter ExpenseFilter) (*ExpenseList, error)

	// CategorySummary aggregates the filtered records per category, plus a
	// TOTAL row across all of them. Net is credit − debit (income minus
	// spend). Categories appear in first-seen insertion order.
	CategorySummary(ctx context.Context, filter ExpenseFilter) ([]ExpenseCategorySummary, error)
}

// ExpenseFilter narrows and orders expense listings.
type ExpenseFilter struct {
	Title    string    // case-insensitive substring
	Category string    // exact match
	Type     EntryType // empty for both
	DateFrom string
	DateTo   string
	SortBy   string // date, title, category, amount
	SortDesc bool
}

// ExpenseList is the expense listing read model.
type ExpenseList struct {
	Expenses    []Expense       `json:"expenses"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// ExpenseCategorySummary is one row of the per-category report. The final
// row uses TotalRowName as its category.
type ExpenseCategorySummary struct {
	Category string          `json:"category"`
	Debit    decimal.Decimal `json:"debit"`
	Credit   decimal.Decimal `json:"credit"`
	Net      decimal.Decimal `json:"net"` // credit − debit
	Count    int             `json:"count"`
}

// TotalRowName labels the aggregate row appended by CategorySummary.
const TotalRowName = "TOTAL"

type expenseService struct {
	store docstore.Store
}

func NewExpenseService(store docstore.Store) ExpenseService {
	return &expenseService{store: store}
}

func (s *expenseService) AddExpense(ctx context.Context, e Expense) (Expense, error) {
	if err := validateExpense(e); err != nil {
		return Expense{}, err
	}
	e.CreatedAt = time.Now()
	doc, err := s.store.Insert(ctx, docstore.Expenses, e.toDocument())
	if err != nil {
		return Expense{}, classify("expense insert", err)
	}
	e.ID = doc.ID()
	return e, nil
}

func validateExpense(e Expense) error {
	if e.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if e.Category == "" {
		return &ValidationError{Field: "category", Reason: "required"}
	}
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if !e.Type.valid() {
		return &ValidationError{Field: "type", Reason: `must be "debit" or "credit"`}
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be formatted 2006-01-02"}
	}
	return nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (Expense, error) {
	doc, err := s.store.Get(ctx, docstore.Expenses, id)
	if err != nil {
		return Expense{}, classify("expense fetch", err)
	}
	return expenseFromDocument(doc), nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (bool, error) {
	if patch.Title != nil && *patch.Title == "" {
		return false, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return false, &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if patch.Type != nil && !patch.Type.valid() {
		return false, &ValidationError{Field: "type", Reason: `must be "debit" or "credit"`}
	}
	if patch.Date != nil {
		if _, err := time.Parse(dateLayout, *patch.Date); err != nil {
			return false, &ValidationError{Field: "date", Reason: "must be formatted 2006-01-02"}
		}
	}
	updated, err := s.store.Update(ctx, docstore.Expenses, id, patch.toDocument())
	if err != nil {
		return false, classify("expense update", err)
	}
	if !updated {
		return false, ErrNotFound
	}
	return true, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id string) (bool, error) {
	existed, err := s.store.Remove(ctx, docstore.Expenses, id)
	if err != nil {
		return false, classify("expense delete", err)
	}
	if !existed {
		return false, ErrNotFound
	}
	return true, nil
}

func (s *expenseService) find(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	q := docstore.Query{
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
		SortBy:   expenseSortField(filter.SortBy),
		SortDesc: filter.SortDesc,
	}
	if filter.SortBy == "" {
		q.SortDesc = true
	}
	if filter.SortBy == "amount" {
		q.SortNumeric = true
	}
	if filter.Category != "" || filter.Type != "" {
		q.Equals = map[string]string{}
		if filter.Category != "" {
			q.Equals["category"] = filter.Category
		}
		if filter.Type != "" {
			q.Equals["type"] = string(filter.Type)
		}
	}
	if filter.Title != "" {
		q.Contains = map[string]string{"title": filter.Title}
	}

	docs, err := s.store.Find(ctx, docstore.Expenses, q)
	if err != nil {
		return nil, classify("expense list", err)
	}
	expenses := make([]Expense, 0, len(docs))
	for _, d := range docs {
		expenses = append(expenses, expenseFromDocument(d))
	}
	return expenses, nil
}

func expenseSortField(field string) string {
	switch field {
	case "title", "category", "amount":
		return field
	default:
		return "date"
	}
}

func (s *expenseService) ListExpenses(ctx context.Context, filter ExpenseFilter) (*ExpenseList, error) {
	expenses, err := s.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	list := &ExpenseList{Expenses: expenses}
	for _, e := range expenses {
		if e.Type == Debit {
			list.TotalDebit = list.TotalDebit.Add(e.Amount)
		} else {
			list.TotalCredit = list.TotalCredit.Add(e.Amount)
		}
	}
	return list, nil
}

func (s *expenseService) CategorySummary(ctx context.Context, filter ExpenseFilter) ([]ExpenseCategorySummary, error) {
	expenses, err := s.find(ctx, filter)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var rows []ExpenseCategorySummary
	total := ExpenseCategorySummary{Category: TotalRowName}

	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(rows)
			index[e.Category] = i
			rows = append(rows, ExpenseCategorySummary{Category: e.Category})
		}
		rows[i].Count++
		total.Count++
		if e.Type == Debit {
			rows[i].Debit = rows[i].Debit.Add(e.Amount)
			total.Debit = total.Debit.Add(e.Amount)
		} else {
			rows[i].Credit = rows[i].Credit.Add(e.Amount)
			total.Credit = total.Credit.Add(e.Amount)
		}
	}
	for i := range rows {
		rows[i].Net = rows[i].Credit.Sub(rows[i].Debit)
	}
	if len(rows) > 0 {
		total.Net = total.Credit.Sub(total.Debit)
		rows = append(rows, total)
	}
	return rows, nil
}
