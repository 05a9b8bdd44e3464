// Package app wires the core services into the single bundle the adapters
// consume. It holds no business logic of its own.
package app

import (
	"context"

	"ledgerbook/internal/core"
	"ledgerbook/internal/docstore"
)

// Services is the composition root handed to every adapter. All fields are
// constructed by New and non-nil.
type Services struct {
	Stock      core.StockService
	Ledger     core.LedgerService
	Customers  core.CustomerService
	Expenses   core.ExpenseService
	Categories core.CategoryService
	Reports    core.ReportingService
	Backup     core.BackupService
}

// New builds the full service graph on top of one document store.
func New(store docstore.Store) *Services {
	stock := core.NewStockService(store)
	ledger := core.NewLedgerService(store, stock)
	customers := core.NewCustomerService(store, ledger)
	expenses := core.NewExpenseService(store)
	return &Services{
		Stock:      stock,
		Ledger:     ledger,
		Customers:  customers,
		Expenses:   expenses,
		Categories: core.NewCategoryService(store),
		Reports:    core.NewReportingService(store, stock, ledger, customers, expenses),
		Backup:     core.NewBackupService(store),
	}
}

// Init performs first-run setup: seeding default category names.
func (s *Services) Init(ctx context.Context) error {
	return s.Categories.EnsureDefaults(ctx)
}
