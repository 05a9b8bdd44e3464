// Package docstore is the persistence layer: six independent collections of
// JSON-shaped documents with insert, predicate find, partial update, and
// remove. It enforces no cross-collection integrity; that belongs to the
// services in internal/core.
package docstore

import (
	"context"
	"errors"
)

// Collection names. The store itself is collection-agnostic; these are the
// six collections the application uses.
const (
	Stocks            = "stocks"
	Categories        = "categories"
	Customers         = "customers"
	Ledger            = "ledger"
	Expenses          = "expenses"
	ExpenseCategories = "expenseCategories"
)

// AllCollections lists every collection, in backup/export order.
var AllCollections = []string{Stocks, Categories, Customers, Ledger, Expenses, ExpenseCategories}

// ErrNoDocument is returned by Get when no document has the requested id.
var ErrNoDocument = errors.New("document not found")

// Document is a JSON-shaped record. The store assigns and returns the
// identifier under the "_id" key. Monetary values are stored as strings,
// dates as "2006-01-02" strings, timestamps as RFC 3339 strings.
type Document map[string]any

// ID returns the document identifier, or empty string.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Query is an explicit, caller-owned predicate + sort. Zero value matches
// every document in insertion order.
type Query struct {
	// Equals matches documents whose field equals the given string exactly.
	Equals map[string]string
	// Contains matches documents whose string field contains the given
	// substring, case-insensitively.
	Contains map[string]string
	// DateFrom/DateTo bound the "date" field inclusively. Empty means
	// unbounded. Dates compare lexicographically ("2006-01-02" form).
	DateFrom string
	DateTo   string
	// SortBy orders results by the named field; empty keeps insertion order.
	// Ties always preserve insertion order (stable).
	SortBy      string
	SortDesc    bool
	SortNumeric bool
}

// Store is the contract between the domain services and persistence.
// Mutations are independent operations: there is no multi-document
// transaction, so a sequence of calls can be interrupted between steps.
type Store interface {
	// Insert persists doc and returns it with its assigned "_id".
	Insert(ctx context.Context, collection string, doc Document) (Document, error)

	// Find returns every document matching q.
	Find(ctx context.Context, collection string, q Query) ([]Document, error)

	// Get returns the document with the given id, or ErrNoDocument.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Update merges patch onto the identified document, field by field.
	// Returns false when no document matched.
	Update(ctx context.Context, collection, id string, patch Document) (bool, error)

	// Remove deletes the identified document. Returns false when absent.
	Remove(ctx context.Context, collection, id string) (bool, error)

	// RemoveWhere deletes every document whose field equals value and
	// returns the number removed.
	RemoveWhere(ctx context.Context, collection, field, value string) (int, error)

	// ReplaceAll atomically-per-collection swaps the collection contents
	// for docs. Used by restore.
	ReplaceAll(ctx context.Context, collection string, docs []Document) error
}
