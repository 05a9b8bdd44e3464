package core

import (
	"context"
	"time"

	"ledgerbook/internal/docstore"
)

// CustomerService owns customer records and their list view.
type CustomerService interface {
	// AddCustomer validates and persists a customer, returning it with its
	// identifier set.
	AddCustomer(ctx context.Context, c Customer) (Customer, error)

	// GetCustomer fetches one customer. ErrNotFound when id is unknown.
	GetCustomer(ctx context.Context, id string) (Customer, error)

	// UpdateCustomer applies the patch. Returns whether a record changed;
	// ErrNotFound when id is unknown.
	UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (bool, error)

	// DeleteCustomer removes the customer and all of their ledger entries.
	// The entries are dropped wholesale: their stock effects are NOT
	// reversed, so quantities consumed through the deleted ledger stay
	// consumed. Returns the customer and how many entries were removed.
	DeleteCustomer(ctx context.Context, id string) (Customer, int, error)

	// ListCustomers returns customers matching the filter, each annotated
	// with totals computed over their complete ledger (the filter narrows
	// the customer list, never the totals).
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerWithTotals, error)
}

// CustomerFilter narrows and orders the customer list.
type CustomerFilter struct {
	Name     string // case-insensitive substring
	Phone    string // case-insensitive substring
	SortBy   string // name, phone, address, date
	SortDesc bool
}

// CustomerWithTotals is the customer list read model.
type CustomerWithTotals struct {
	Customer
	Totals
}

type customerService struct {
	store  docstore.Store
	ledger LedgerService
}

func NewCustomerService(store docstore.Store, ledger LedgerService) CustomerService {
	return &customerService{store: store, ledger: ledger}
}

func (s *customerService) AddCustomer(ctx context.Context, c Customer) (Customer, error) {
	if c.Name == "" {
		return Customer{}, &ValidationError{Field: "name", Reason: "required"}
	}
	c.CreatedAt = time.Now()
	doc, err := s.store.Insert(ctx, docstore.Customers, c.toDocument())
	if err != nil {
		return Customer{}, classify("customer insert", err)
	}
	c.ID = doc.ID()
	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (Customer, error) {
	doc, err := s.store.Get(ctx, docstore.Customers, id)
	if err != nil {
		return Customer{}, classify("customer fetch", err)
	}
	return customerFromDocument(doc), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (bool, error) {
	if patch.Name != nil && *patch.Name == "" {
		return false, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	updated, err := s.store.Update(ctx, docstore.Customers, id, patch.toDocument())
	if err != nil {
		return false, classify("customer update", err)
	}
	if !updated {
		return false, ErrNotFound
	}
	return true, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) (Customer, int, error) {
	doc, err := s.store.Get(ctx, docstore.Customers, id)
	if err != nil {
		return Customer{}, 0, classify("customer fetch", err)
	}
	c := customerFromDocument(doc)

	if _, err := s.store.Remove(ctx, docstore.Customers, id); err != nil {
		return Customer{}, 0, classify("customer delete", err)
	}
	removed, err := s.store.RemoveWhere(ctx, docstore.Ledger, "customerId", id)
	if err != nil {
		return c, 0, classify("customer ledger purge", err)
	}
	return c, removed, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerWithTotals, error) {
	q := docstore.Query{SortBy: "name"}
	if filter.Name != "" || filter.Phone != "" {
		q.Contains = map[string]string{}
		if filter.Name != "" {
			q.Contains["name"] = filter.Name
		}
		if filter.Phone != "" {
			q.Contains["phone"] = filter.Phone
		}
	}
	if filter.SortBy != "" {
		q.SortBy = customerSortField(filter.SortBy)
		q.SortDesc = filter.SortDesc
	}

	docs, err := s.store.Find(ctx, docstore.Customers, q)
	if err != nil {
		return nil, classify("customer list", err)
	}

	out := make([]CustomerWithTotals, 0, len(docs))
	for _, d := range docs {
		c := customerFromDocument(d)
		totals, err := s.ledger.CustomerTotals(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CustomerWithTotals{Customer: c, Totals: totals})
	}
	return out, nil
}

func customerSortField(field string) string {
	switch field {
	case "phone", "address":
		return field
	case "date", "createdAt":
		return "createdAt"
	default:
		return "name"
	}
}
