package web

import (
	"context"
	"net/http"

	"ledgerbook/internal/core"
)

func stockFilterFromRequest(r *http.Request) core.StockFilter {
	q := r.URL.Query()
	sortBy, desc := sortParams(r)
	from, to := dateRange(r)
	return core.StockFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
		DateFrom: from,
		DateTo:   to,
		SortBy:   sortBy,
		SortDesc: desc,
	}
}

func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Stock.ListStock(r.Context(), stockFilterFromRequest(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	page, total := slicePage(items, parsePageParams(r))
	writeJSON(w, struct {
		Stocks []core.StockItem `json:"stocks"`
		Total  int              `json:"total"`
	}{page, total})
}

func (h *Handler) stockSummary(w http.ResponseWriter, r *http.Request) {
	pools, err := h.svc.Stock.Summary(r.Context(), stockFilterFromRequest(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Pools []core.StockPool `json:"pools"`
	}{pools})
}

func (h *Handler) availableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Stock.AvailableProducts(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Products []core.Product `json:"products"`
	}{products})
}

func (h *Handler) createStock(w http.ResponseWriter, r *http.Request) {
	var item core.StockItem
	if !decodeJSON(w, r, &item) {
		return
	}
	created, err := h.svc.Stock.AddStock(r.Context(), item)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeCreated(w, created)
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	var patch core.StockPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, err := h.svc.Stock.UpdateStock(r.Context(), urlID(r), patch); err != nil {
		writeCoreError(w, r, err)
		return
	}
	item, err := h.svc.Stock.GetStock(r.Context(), urlID(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, item)
}

func (h *Handler) deleteStock(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Stock.DeleteStock(r.Context(), urlID(r)); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listStockCategories(w http.ResponseWriter, r *http.Request) {
	h.writeCategories(w, r, h.svc.Categories.ListStockCategories)
}

func (h *Handler) createStockCategory(w http.ResponseWriter, r *http.Request) {
	h.createCategory(w, r, h.svc.Categories.AddStockCategory)
}

func (h *Handler) deleteStockCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteCategory(w, r, h.svc.Categories.DeleteStockCategory)
}

func (h *Handler) listExpenseCategories(w http.ResponseWriter, r *http.Request) {
	h.writeCategories(w, r, h.svc.Categories.ListExpenseCategories)
}

func (h *Handler) createExpenseCategory(w http.ResponseWriter, r *http.Request) {
	h.createCategory(w, r, h.svc.Categories.AddExpenseCategory)
}

func (h *Handler) deleteExpenseCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteCategory(w, r, h.svc.Categories.DeleteExpenseCategory)
}

func (h *Handler) writeCategories(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]core.Category, error)) {
	categories, err := list(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Categories []core.Category `json:"categories"`
	}{categories})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request, add func(ctx context.Context, name string) (core.Category, error)) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := add(r.Context(), req.Name)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeCreated(w, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, id string) (bool, error)) {
	if _, err := remove(r.Context(), urlID(r)); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
