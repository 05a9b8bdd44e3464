package web

import (
	"net/http"

	"ledgerbook/internal/core"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy, desc := sortParams(r)
	filter := core.CustomerFilter{
		Name:     q.Get("name"),
		Phone:    q.Get("phone"),
		SortBy:   sortBy,
		SortDesc: desc,
	}
	customers, err := h.svc.Customers.ListCustomers(r.Context(), filter)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	page, total := slicePage(customers, parsePageParams(r))
	writeJSON(w, struct {
		Customers []core.CustomerWithTotals `json:"customers"`
		Total     int                       `json:"total"`
	}{page, total})
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var c core.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	created, err := h.svc.Customers.AddCustomer(r.Context(), c)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeCreated(w, created)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var patch core.CustomerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, err := h.svc.Customers.UpdateCustomer(r.Context(), urlID(r), patch); err != nil {
		writeCoreError(w, r, err)
		return
	}
	c, err := h.svc.Customers.GetCustomer(r.Context(), urlID(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	c, removedEntries, err := h.svc.Customers.DeleteCustomer(r.Context(), urlID(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Customer       core.Customer `json:"customer"`
		RemovedEntries int           `json:"removedEntries"`
	}{c, removedEntries})
}

func ledgerFilterFromRequest(r *http.Request) core.LedgerFilter {
	q := r.URL.Query()
	sortBy, desc := sortParams(r)
	from, to := dateRange(r)
	return core.LedgerFilter{
		Title:    q.Get("title"),
		Type:     core.EntryType(q.Get("type")),
		DateFrom: from,
		DateTo:   to,
		SortBy:   sortBy,
		SortDesc: desc,
	}
}

func (h *Handler) customerLedger(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Ledger.LedgerView(r.Context(), urlID(r), ledgerFilterFromRequest(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	page, total := slicePage(view.Entries, parsePageParams(r))
	writeJSON(w, struct {
		Entries     []core.LedgerEntry `json:"entries"`
		Total       int                `json:"total"`
		TotalDebit  string             `json:"totalDebit"`
		TotalCredit string             `json:"totalCredit"`
		Balance     string             `json:"balance"`
	}{page, total, view.TotalDebit.String(), view.TotalCredit.String(), view.Balance.String()})
}

func (h *Handler) createLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var entry core.LedgerEntry
	if !decodeJSON(w, r, &entry) {
		return
	}
	created, err := h.svc.Ledger.CreateEntry(r.Context(), entry)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeCreated(w, created)
}

func (h *Handler) updateLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var patch core.LedgerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, err := h.svc.Ledger.UpdateEntry(r.Context(), urlID(r), patch); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteLedgerEntry(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Ledger.DeleteEntry(r.Context(), urlID(r)); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
