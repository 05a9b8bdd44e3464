package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"ledgerbook/internal/app"
)

// Handler holds the service bundle and the chi router.
type Handler struct {
	svc      *app.Services
	router   chi.Router
	currency string
}

// NewHandler creates and wires the chi router with all routes.
// allowedOrigins is a comma-separated origin list; empty disables CORS.
// currency is the display currency code reported by the health endpoint.
func NewHandler(svc *app.Services, allowedOrigins, currency string) http.Handler {
	h := &Handler{svc: svc, currency: currency}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	if origins := splitAndTrim(allowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}))
	}

	r.Get("/api/health", h.health)

	// Restore uploads are full database snapshots; give them more headroom
	// than regular requests.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(32 << 20)) // 32 MB
		r.Get("/api/backup", h.downloadBackup)
		r.Post("/api/restore", h.restoreBackup)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Stock
		r.Get("/api/stocks", h.listStocks)
		r.Get("/api/stocks/summary", h.stockSummary)
		r.Get("/api/stocks/available", h.availableProducts)
		r.Post("/api/stocks", h.createStock)
		r.Patch("/api/stocks/{id}", h.updateStock)
		r.Delete("/api/stocks/{id}", h.deleteStock)
		r.Get("/api/categories", h.listStockCategories)
		r.Post("/api/categories", h.createStockCategory)
		r.Delete("/api/categories/{id}", h.deleteStockCategory)

		// Customers and their ledgers
		r.Get("/api/customers", h.listCustomers)
		r.Post("/api/customers", h.createCustomer)
		r.Patch("/api/customers/{id}", h.updateCustomer)
		r.Delete("/api/customers/{id}", h.deleteCustomer)
		r.Get("/api/customers/{id}/ledger", h.customerLedger)
		r.Post("/api/ledger", h.createLedgerEntry)
		r.Patch("/api/ledger/{id}", h.updateLedgerEntry)
		r.Delete("/api/ledger/{id}", h.deleteLedgerEntry)

		// Expenses
		r.Get("/api/expenses", h.listExpenses)
		r.Get("/api/expenses/summary", h.expenseSummary)
		r.Post("/api/expenses", h.createExpense)
		r.Patch("/api/expenses/{id}", h.updateExpense)
		r.Delete("/api/expenses/{id}", h.deleteExpense)
		r.Get("/api/expense-categories", h.listExpenseCategories)
		r.Post("/api/expense-categories", h.createExpenseCategory)
		r.Delete("/api/expense-categories/{id}", h.deleteExpenseCategory)

		// Reports; each accepts from/to and format=json|csv|xlsx
		r.Get("/api/reports/dashboard", h.dashboardReport)
		r.Get("/api/reports/stock", h.stockReport)
		r.Get("/api/reports/customers", h.customersReport)
		r.Get("/api/reports/customers/{id}/ledger", h.customerLedgerReport)
		r.Get("/api/reports/expenses", h.expenseReport)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Currency string `json:"currency"`
	}
	writeJSON(w, response{Status: "ok", Currency: h.currency})
}

// urlID extracts the {id} URL parameter.
func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
