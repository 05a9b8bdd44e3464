package web

import (
	"net/http"

	"ledgerbook/internal/core"
)

func expenseFilterFromRequest(r *http.Request) core.ExpenseFilter {
	q := r.URL.Query()
	sortBy, desc := sortParams(r)
	from, to := dateRange(r)
	return core.ExpenseFilter{
		Title:    q.Get("title"),
		Category: q.Get("category"),
		Type:     core.EntryType(q.Get("type")),
		DateFrom: from,
		DateTo:   to,
		SortBy:   sortBy,
		SortDesc: desc,
	}
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Expenses.ListExpenses(r.Context(), expenseFilterFromRequest(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	page, total := slicePage(list.Expenses, parsePageParams(r))
	writeJSON(w, struct {
		Expenses    []core.Expense `json:"expenses"`
		Total       int            `json:"total"`
		TotalDebit  string         `json:"totalDebit"`
		TotalCredit string         `json:"totalCredit"`
	}{page, total, list.TotalDebit.String(), list.TotalCredit.String()})
}

func (h *Handler) expenseSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Expenses.CategorySummary(r.Context(), expenseFilterFromRequest(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Summary []core.ExpenseCategorySummary `json:"summary"`
	}{rows})
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if !decodeJSON(w, r, &e) {
		return
	}
	created, err := h.svc.Expenses.AddExpense(r.Context(), e)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeCreated(w, created)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var patch core.ExpensePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, err := h.svc.Expenses.UpdateExpense(r.Context(), urlID(r), patch); err != nil {
		writeCoreError(w, r, err)
		return
	}
	e, err := h.svc.Expenses.GetExpense(r.Context(), urlID(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, e)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Expenses.DeleteExpense(r.Context(), urlID(r)); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
