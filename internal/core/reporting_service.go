package core

import (
	"context"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/docstore"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DashboardSummary is the landing-page aggregate: headline figures plus the
// per-category breakdowns the charts are drawn from.
type DashboardSummary struct {
	TotalStockValue   decimal.Decimal  `json:"totalStockValue"` // sum of quantity×price over lots
	CustomerCount     int              `json:"customerCount"`
	TotalExpenses     decimal.Decimal  `json:"totalExpenses"` // debit records only
	StockByCategory   []CategoryAmount `json:"stockByCategory"`
	ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
}

// CategoryAmount is one slice of a per-category breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// StockReport pairs the pooled summary with the individual lots that fall in
// the requested date range.
type StockReport struct {
	Pools []StockPool `json:"pools"`
	Lots  []StockItem `json:"lots"`
}

// CustomerReportRow is one customer's position computed over entries dated
// within the report range.
type CustomerReportRow struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Totals
}

// CustomerLedgerReport is a chronological statement for one customer.
type CustomerLedgerReport struct {
	Customer Customer `json:"customer"`
	LedgerView
}

// ExpenseReport pairs the per-category summary (TOTAL row included) with the
// individual records in range.
type ExpenseReport struct {
	Summary  []ExpenseCategorySummary `json:"summary"`
	Expenses []Expense                `json:"expenses"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService is the read-only report generator. Every method takes
// optional from/to date bounds (inclusive, 2006-01-02); pass empty strings
// for no bound.
type ReportingService interface {
	// DashboardSummary aggregates current figures across all collections.
	DashboardSummary(ctx context.Context) (*DashboardSummary, error)

	// StockReport returns pooled summary rows and the lots dated in range.
	// The pools are computed over the same in-range lots.
	StockReport(ctx context.Context, from, to string) (*StockReport, error)

	// CustomersReport returns every customer with debit/credit/balance
	// computed over their entries dated in range. Customers without
	// in-range entries appear with zero totals.
	CustomersReport(ctx context.Context, from, to string) ([]CustomerReportRow, error)

	// CustomerLedgerReport returns one customer's chronological statement
	// with running balances. ErrNotFound when the customer is unknown.
	CustomerLedgerReport(ctx context.Context, customerID, from, to string) (*CustomerLedgerReport, error)

	// ExpenseReport returns the category summary plus records in range.
	ExpenseReport(ctx context.Context, from, to string) (*ExpenseReport, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	store     docstore.Store
	stock     StockService
	ledger    LedgerService
	customers CustomerService
	expenses  ExpenseService
}

func NewReportingService(store docstore.Store, stock StockService, ledger LedgerService, customers CustomerService, expenses ExpenseService) ReportingService {
	return &reportingService{
		store:     store,
		stock:     stock,
		ledger:    ledger,
		customers: customers,
		expenses:  expenses,
	}
}

func (s *reportingService) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	lots, err := s.stock.ListStock(ctx, StockFilter{})
	if err != nil {
		return nil, err
	}
	summary := &DashboardSummary{}
	stockByCat := newCategoryTally()
	for _, lot := range lots {
		value := lot.Price.Mul(decimal.NewFromInt(lot.Quantity))
		summary.TotalStockValue = summary.TotalStockValue.Add(value)
		stockByCat.add(lot.Category, value)
	}
	summary.StockByCategory = stockByCat.rows()

	customers, err := s.store.Find(ctx, docstore.Customers, docstore.Query{})
	if err != nil {
		return nil, classify("dashboard customers", err)
	}
	summary.CustomerCount = len(customers)

	list, err := s.expenses.ListExpenses(ctx, ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	summary.TotalExpenses = list.TotalDebit
	expenseByCat := newCategoryTally()
	for _, e := range list.Expenses {
		if e.Type == Debit {
			expenseByCat.add(e.Category, e.Amount)
		}
	}
	summary.ExpenseByCategory = expenseByCat.rows()
	return summary, nil
}

// categoryTally accumulates amounts per category preserving first-seen order.
type categoryTally struct {
	index map[string]int
	out   []CategoryAmount
}

func newCategoryTally() *categoryTally {
	return &categoryTally{index: map[string]int{}}
}

func (t *categoryTally) add(category string, amount decimal.Decimal) {
	i, ok := t.index[category]
	if !ok {
		i = len(t.out)
		t.index[category] = i
		t.out = append(t.out, CategoryAmount{Category: category})
	}
	t.out[i].Amount = t.out[i].Amount.Add(amount)
}

func (t *categoryTally) rows() []CategoryAmount {
	if t.out == nil {
		return []CategoryAmount{}
	}
	return t.out
}

func (s *reportingService) StockReport(ctx context.Context, from, to string) (*StockReport, error) {
	lots, err := s.stock.ListStock(ctx, StockFilter{DateFrom: from, DateTo: to, SortBy: "date"})
	if err != nil {
		return nil, err
	}
	report := &StockReport{Lots: lots, Pools: poolStock(lots)}
	return report, nil
}

func (s *reportingService) CustomersReport(ctx context.Context, from, to string) ([]CustomerReportRow, error) {
	docs, err := s.store.Find(ctx, docstore.Customers, docstore.Query{SortBy: "name"})
	if err != nil {
		return nil, classify("customers report", err)
	}
	rows := make([]CustomerReportRow, 0, len(docs))
	for _, d := range docs {
		c := customerFromDocument(d)
		view, err := s.ledger.LedgerView(ctx, c.ID, LedgerFilter{DateFrom: from, DateTo: to})
		if err != nil {
			return nil, err
		}
		rows = append(rows, CustomerReportRow{
			CustomerID: c.ID,
			Name:       c.Name,
			Phone:      c.Phone,
			Totals: Totals{
				TotalDebit:  view.TotalDebit,
				TotalCredit: view.TotalCredit,
				Balance:     view.Balance,
			},
		})
	}
	return rows, nil
}

func (s *reportingService) CustomerLedgerReport(ctx context.Context, customerID, from, to string) (*CustomerLedgerReport, error) {
	c, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	view, err := s.ledger.LedgerView(ctx, customerID, LedgerFilter{
		DateFrom: from,
		DateTo:   to,
		SortBy:   "date", // statement reads oldest-first
	})
	if err != nil {
		return nil, err
	}
	return &CustomerLedgerReport{Customer: c, LedgerView: *view}, nil
}

func (s *reportingService) ExpenseReport(ctx context.Context, from, to string) (*ExpenseReport, error) {
	filter := ExpenseFilter{DateFrom: from, DateTo: to, SortBy: "date"}
	list, err := s.expenses.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary, err := s.expenses.CategorySummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ExpenseReport{Summary: summary, Expenses: list.Expenses}, nil
}
