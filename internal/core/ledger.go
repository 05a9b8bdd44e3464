package core

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/docstore"
)

// LedgerService owns ledger entries and the stock side effects they imply.
// Every entry tied to a product moves that product's quantity exactly once
// while the entry exists; edits and deletes reverse the prior effect before
// applying the new one.
//
// Mutations are sequences of independent storage calls. A storage failure
// mid-sequence abandons the operation where it stands — there is no rollback
// of steps already applied, so the stock invariant can drift until the
// failed operation is repeated or corrected.
type LedgerService interface {
	// CreateEntry validates, persists, and applies the entry's stock effect.
	// Returns the persisted entry including its identifier.
	CreateEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error)

	// UpdateEntry merges the patch onto the entry, reverses the original
	// entry's stock effect, then applies the merged entry's effect. The two
	// steps may target different stock items when the product changed.
	// Returns whether a record was updated; ErrNotFound when id is unknown.
	UpdateEntry(ctx context.Context, id string, patch LedgerPatch) (bool, error)

	// DeleteEntry removes the entry and reverses its stock effect.
	// ErrNotFound when id is unknown.
	DeleteEntry(ctx context.Context, id string) (bool, error)

	// LedgerView returns a customer's entries narrowed by filter, each
	// stamped with its running balance, plus debit/credit totals over the
	// filtered set. The running balance is computed in chronological order
	// regardless of the requested display sort; entries sharing a date keep
	// insertion order.
	LedgerView(ctx context.Context, customerID string, filter LedgerFilter) (*LedgerView, error)

	// CustomerTotals sums debit and credit across all of the customer's
	// entries, ignoring any filters.
	CustomerTotals(ctx context.Context, customerID string) (Totals, error)
}

// LedgerFilter narrows and orders a customer's ledger listing.
type LedgerFilter struct {
	Title    string    // case-insensitive substring
	Type     EntryType // empty for both
	DateFrom string
	DateTo   string
	SortBy   string // date, title, reference, productName, amount, balance
	SortDesc bool
}

// LedgerView is the presentation read model for one customer's ledger.
type LedgerView struct {
	Entries     []LedgerEntry   `json:"entries"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"` // TotalDebit − TotalCredit
}

// Totals is the unfiltered aggregate for the customer list view. Positive
// Balance is receivable, negative payable.
type Totals struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"`
}

type ledgerService struct {
	store docstore.Store
	stock StockService
}

func NewLedgerService(store docstore.Store, stock StockService) LedgerService {
	return &ledgerService{store: store, stock: stock}
}

func (s *ledgerService) CreateEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error) {
	if err := validateEntry(entry); err != nil {
		return LedgerEntry{}, err
	}

	if entry.ProductID != "" {
		item, err := s.stock.GetStock(ctx, entry.ProductID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return LedgerEntry{}, err
		}
		if err == nil {
			if entry.ProductName == "" {
				entry.ProductName = item.Name
			}
			// Availability is advisory only: the UI caps the selectable
			// quantity, but the engine accepts overdraw (legacy behavior).
			available, err := s.stock.AvailableQuantity(ctx, item.Name)
			if err != nil {
				return LedgerEntry{}, err
			}
			if entry.Type == Debit && entry.ProductQuantity > available {
				log.Printf("ledger entry overdraws stock %q: requested %d, available %d",
					item.Name, entry.ProductQuantity, available)
			}
		}
	}

	entry.CreatedAt = time.Now()
	doc, err := s.store.Insert(ctx, docstore.Ledger, entry.toDocument())
	if err != nil {
		return LedgerEntry{}, classify("ledger insert", err)
	}
	entry.ID = doc.ID()

	if entry.ProductID != "" {
		if err := s.stock.AdjustQuantity(ctx, entry.ProductID, entry.stockEffect()); err != nil {
			return LedgerEntry{}, err
		}
	}
	return entry, nil
}

func validateEntry(entry LedgerEntry) error {
	if entry.CustomerID == "" {
		return &ValidationError{Field: "customerId", Reason: "required"}
	}
	if entry.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if !entry.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if !entry.Type.valid() {
		return &ValidationError{Field: "type", Reason: `must be "debit" or "credit"`}
	}
	if _, err := time.Parse(dateLayout, entry.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be formatted 2006-01-02"}
	}
	if entry.ProductID != "" && entry.ProductQuantity <= 0 {
		return &ValidationError{Field: "productQuantity", Reason: "required and positive when a product is set"}
	}
	return nil
}

func validatePatch(patch LedgerPatch) error {
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if patch.Type != nil && !patch.Type.valid() {
		return &ValidationError{Field: "type", Reason: `must be "debit" or "credit"`}
	}
	if patch.Date != nil {
		if _, err := time.Parse(dateLayout, *patch.Date); err != nil {
			return &ValidationError{Field: "date", Reason: "must be formatted 2006-01-02"}
		}
	}
	if patch.ProductQuantity != nil && *patch.ProductQuantity <= 0 {
		return &ValidationError{Field: "productQuantity", Reason: "must be a positive integer"}
	}
	return nil
}

func (s *ledgerService) UpdateEntry(ctx context.Context, id string, patch LedgerPatch) (bool, error) {
	if err := validatePatch(patch); err != nil {
		return false, err
	}

	doc, err := s.store.Get(ctx, docstore.Ledger, id)
	if err != nil {
		return false, classify("ledger fetch", err)
	}
	original := entryFromDocument(doc)

	merged := patch.apply(original)
	if merged.ProductID != "" && merged.ProductQuantity <= 0 {
		return false, &ValidationError{Field: "productQuantity", Reason: "required and positive when a product is set"}
	}

	updated, err := s.store.Update(ctx, docstore.Ledger, id, patch.toDocument())
	if err != nil {
		return false, classify("ledger update", err)
	}

	// Undo the original effect first, then apply the new one. Reversal
	// always targets the original product, application the merged one.
	if original.ProductID != "" {
		if err := s.stock.AdjustQuantity(ctx, original.ProductID, -original.stockEffect()); err != nil {
			return updated, err
		}
	}
	if merged.ProductID != "" {
		if err := s.stock.AdjustQuantity(ctx, merged.ProductID, merged.stockEffect()); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *ledgerService) DeleteEntry(ctx context.Context, id string) (bool, error) {
	doc, err := s.store.Get(ctx, docstore.Ledger, id)
	if err != nil {
		return false, classify("ledger fetch", err)
	}
	entry := entryFromDocument(doc)

	existed, err := s.store.Remove(ctx, docstore.Ledger, id)
	if err != nil {
		return false, classify("ledger delete", err)
	}
	if existed && entry.ProductID != "" {
		if err := s.stock.AdjustQuantity(ctx, entry.ProductID, -entry.stockEffect()); err != nil {
			return existed, err
		}
	}
	return existed, nil
}

func (s *ledgerService) LedgerView(ctx context.Context, customerID string, filter LedgerFilter) (*LedgerView, error) {
	q := docstore.Query{
		Equals:   map[string]string{"customerId": customerID},
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}
	if filter.Type != "" {
		q.Equals["type"] = string(filter.Type)
	}
	if filter.Title != "" {
		q.Contains = map[string]string{"title": filter.Title}
	}

	// Fetched in insertion order; the balance pass relies on that for the
	// same-date tie-break.
	docs, err := s.store.Find(ctx, docstore.Ledger, q)
	if err != nil {
		return nil, classify("ledger list", err)
	}
	entries := make([]LedgerEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, entryFromDocument(d))
	}

	view := &LedgerView{}
	view.TotalDebit, view.TotalCredit = stampRunningBalance(entries)
	view.Balance = view.TotalDebit.Sub(view.TotalCredit)

	sortEntriesForDisplay(entries, filter.SortBy, filter.SortDesc)
	view.Entries = entries
	return view, nil
}

// stampRunningBalance orders entries chronologically (stable, so same-date
// entries keep insertion order), walks them accumulating debit−credit, and
// writes the cumulative value into each entry's Balance. Returns total debit
// and credit. The input slice ends up in chronological order.
func stampRunningBalance(entries []LedgerEntry) (totalDebit, totalCredit decimal.Decimal) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	running := decimal.Zero
	for i := range entries {
		if entries[i].Type == Debit {
			running = running.Add(entries[i].Amount)
			totalDebit = totalDebit.Add(entries[i].Amount)
		} else {
			running = running.Sub(entries[i].Amount)
			totalCredit = totalCredit.Add(entries[i].Amount)
		}
		entries[i].Balance = running
	}
	return totalDebit, totalCredit
}

// sortEntriesForDisplay reorders entries for presentation. The Balance
// stamped by the chronological pass travels with each entry.
func sortEntriesForDisplay(entries []LedgerEntry, sortBy string, desc bool) {
	if sortBy == "" {
		sortBy, desc = "date", true
	}
	sort.SliceStable(entries, func(i, j int) bool {
		c := compareEntries(entries[i], entries[j], sortBy)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareEntries(a, b LedgerEntry, field string) int {
	switch field {
	case "title":
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "description":
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case "reference":
		return strings.Compare(strings.ToLower(a.Reference), strings.ToLower(b.Reference))
	case "productName", "product":
		return strings.Compare(strings.ToLower(a.ProductName), strings.ToLower(b.ProductName))
	case "amount":
		return a.Amount.Cmp(b.Amount)
	case "balance":
		return a.Balance.Cmp(b.Balance)
	default: // date
		return strings.Compare(a.Date, b.Date)
	}
}

func (s *ledgerService) CustomerTotals(ctx context.Context, customerID string) (Totals, error) {
	docs, err := s.store.Find(ctx, docstore.Ledger, docstore.Query{
		Equals: map[string]string{"customerId": customerID},
	})
	if err != nil {
		return Totals{}, classify("ledger totals", err)
	}
	var t Totals
	for _, d := range docs {
		entry := entryFromDocument(d)
		if entry.Type == Debit {
			t.TotalDebit = t.TotalDebit.Add(entry.Amount)
		} else {
			t.TotalCredit = t.TotalCredit.Add(entry.Amount)
		}
	}
	t.Balance = t.TotalDebit.Sub(t.TotalCredit)
	return t, nil
}
