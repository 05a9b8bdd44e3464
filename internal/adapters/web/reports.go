package web

import (
	"net/http"
	"strconv"

	"ledgerbook/internal/core"
)

func (h *Handler) dashboardReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Reports.DashboardSummary(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	tables := []reportTable{
		{
			Name:   "Summary",
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Total Stock Value", summary.TotalStockValue.String()},
				{"Customers", strconv.Itoa(summary.CustomerCount)},
				{"Total Expenses", summary.TotalExpenses.String()},
			},
		},
		{
			Name:   "Stock by Category",
			Header: []string{"Category", "Value"},
			Rows:   categoryAmountRows(summary.StockByCategory),
		},
		{
			Name:   "Expenses by Category",
			Header: []string{"Category", "Amount"},
			Rows:   categoryAmountRows(summary.ExpenseByCategory),
		},
	}
	writeReport(w, r, "dashboard", summary, tables)
}

func categoryAmountRows(in []core.CategoryAmount) [][]string {
	rows := make([][]string, 0, len(in))
	for _, c := range in {
		rows = append(rows, []string{c.Category, c.Amount.String()})
	}
	return rows
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	report, err := h.svc.Reports.StockReport(r.Context(), from, to)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	poolRows := make([][]string, 0, len(report.Pools))
	for _, p := range report.Pools {
		poolRows = append(poolRows, []string{
			p.Name, p.Category,
			strconv.FormatInt(p.TotalQuantity, 10),
			p.AveragePrice.String(), p.TotalValue.String(),
		})
	}
	lotRows := make([][]string, 0, len(report.Lots))
	for _, lot := range report.Lots {
		lotRows = append(lotRows, []string{
			lot.Date, lot.Name, lot.Category,
			strconv.FormatInt(lot.Quantity, 10), lot.Price.String(),
		})
	}
	tables := []reportTable{
		{Name: "Stock Summary", Header: []string{"Name", "Category", "Quantity", "Avg Price", "Total Value"}, Rows: poolRows},
		{Name: "Lots", Header: []string{"Date", "Name", "Category", "Quantity", "Price"}, Rows: lotRows},
	}
	writeReport(w, r, "stock_report", report, tables)
}

func (h *Handler) customersReport(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	rows, err := h.svc.Reports.CustomersReport(r.Context(), from, to)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	tableRows := make([][]string, 0, len(rows))
	for _, c := range rows {
		tableRows = append(tableRows, []string{
			c.Name, c.Phone,
			c.TotalDebit.String(), c.TotalCredit.String(), c.Balance.String(),
		})
	}
	tables := []reportTable{
		{Name: "Customers", Header: []string{"Name", "Phone", "Debit", "Credit", "Balance"}, Rows: tableRows},
	}
	writeReport(w, r, "customers_report", struct {
		Customers []core.CustomerReportRow `json:"customers"`
	}{rows}, tables)
}

func (h *Handler) customerLedgerReport(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	report, err := h.svc.Reports.CustomerLedgerReport(r.Context(), urlID(r), from, to)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	entryRows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		debit, credit := "", ""
		if e.Type == core.Debit {
			debit = e.Amount.String()
		} else {
			credit = e.Amount.String()
		}
		entryRows = append(entryRows, []string{
			e.Date, e.Title, e.Reference, e.ProductName, debit, credit, e.Balance.String(),
		})
	}
	tables := []reportTable{
		{
			Name:   "Ledger",
			Header: []string{"Date", "Title", "Reference", "Product", "Debit", "Credit", "Balance"},
			Rows:   entryRows,
		},
		{
			Name:   "Totals",
			Header: []string{"Debit", "Credit", "Balance"},
			Rows: [][]string{{
				report.TotalDebit.String(), report.TotalCredit.String(), report.Balance.String(),
			}},
		},
	}
	writeReport(w, r, "ledger_"+report.Customer.Name, report, tables)
}

func (h *Handler) expenseReport(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	report, err := h.svc.Reports.ExpenseReport(r.Context(), from, to)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	summaryRows := make([][]string, 0, len(report.Summary))
	for _, s := range report.Summary {
		summaryRows = append(summaryRows, []string{
			s.Category, s.Debit.String(), s.Credit.String(), s.Net.String(), strconv.Itoa(s.Count),
		})
	}
	expenseRows := make([][]string, 0, len(report.Expenses))
	for _, e := range report.Expenses {
		expenseRows = append(expenseRows, []string{
			e.Date, e.Category, e.Title, string(e.Type), e.Amount.String(),
		})
	}
	tables := []reportTable{
		{Name: "By Category", Header: []string{"Category", "Debit", "Credit", "Net", "Count"}, Rows: summaryRows},
		{Name: "Expenses", Header: []string{"Date", "Category", "Title", "Type", "Amount"}, Rows: expenseRows},
	}
	writeReport(w, r, "expense_report", report, tables)
}
