package core

import (
	"context"
	"strings"

	"ledgerbook/internal/docstore"
)

// Default category names seeded on first run.
var (
	defaultStockCategories   = []string{"General"}
	defaultExpenseCategories = []string{"Shop Expense", "Car Expense", "Home Expense", "Other Expense"}
)

// CategoryService manages the two category name lists: one for stock items,
// one for expenses. Categories are referenced by name, so renames and
// deletions do not touch records already carrying the old name.
type CategoryService interface {
	// EnsureDefaults seeds the built-in category names into any collection
	// that is still empty. Safe to call on every startup.
	EnsureDefaults(ctx context.Context) error

	ListStockCategories(ctx context.Context) ([]Category, error)
	AddStockCategory(ctx context.Context, name string) (Category, error)
	DeleteStockCategory(ctx context.Context, id string) (bool, error)

	ListExpenseCategories(ctx context.Context) ([]Category, error)
	AddExpenseCategory(ctx context.Context, name string) (Category, error)
	DeleteExpenseCategory(ctx context.Context, id string) (bool, error)
}

type categoryService struct {
	store docstore.Store
}

func NewCategoryService(store docstore.Store) CategoryService {
	return &categoryService{store: store}
}

func (s *categoryService) EnsureDefaults(ctx context.Context) error {
	seed := []struct {
		collection string
		names      []string
	}{
		{docstore.Categories, defaultStockCategories},
		{docstore.ExpenseCategories, defaultExpenseCategories},
	}
	for _, g := range seed {
		docs, err := s.store.Find(ctx, g.collection, docstore.Query{})
		if err != nil {
			return classify("category seed", err)
		}
		if len(docs) > 0 {
			continue
		}
		for _, name := range g.names {
			if _, err := s.store.Insert(ctx, g.collection, docstore.Document{"name": name}); err != nil {
				return classify("category seed", err)
			}
		}
	}
	return nil
}

func (s *categoryService) ListStockCategories(ctx context.Context) ([]Category, error) {
	return s.list(ctx, docstore.Categories)
}

func (s *categoryService) AddStockCategory(ctx context.Context, name string) (Category, error) {
	return s.add(ctx, docstore.Categories, name)
}

func (s *categoryService) DeleteStockCategory(ctx context.Context, id string) (bool, error) {
	return s.remove(ctx, docstore.Categories, id)
}

func (s *categoryService) ListExpenseCategories(ctx context.Context) ([]Category, error) {
	return s.list(ctx, docstore.ExpenseCategories)
}

func (s *categoryService) AddExpenseCategory(ctx context.Context, name string) (Category, error) {
	return s.add(ctx, docstore.ExpenseCategories, name)
}

func (s *categoryService) DeleteExpenseCategory(ctx context.Context, id string) (bool, error) {
	return s.remove(ctx, docstore.ExpenseCategories, id)
}

func (s *categoryService) list(ctx context.Context, collection string) ([]Category, error) {
	docs, err := s.store.Find(ctx, collection, docstore.Query{SortBy: "name"})
	if err != nil {
		return nil, classify("category list", err)
	}
	out := make([]Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, categoryFromDocument(d))
	}
	return out, nil
}

func (s *categoryService) add(ctx context.Context, collection, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, &ValidationError{Field: "name", Reason: "required"}
	}
	// Names are unique case-insensitively within a collection.
	existing, err := s.list(ctx, collection)
	if err != nil {
		return Category{}, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return Category{}, &ValidationError{Field: "name", Reason: "already exists"}
		}
	}
	doc, err := s.store.Insert(ctx, collection, docstore.Document{"name": name})
	if err != nil {
		return Category{}, classify("category insert", err)
	}
	return Category{ID: doc.ID(), Name: name}, nil
}

func (s *categoryService) remove(ctx context.Context, collection, id string) (bool, error) {
	existed, err := s.store.Remove(ctx, collection, id)
	if err != nil {
		return false, classify("category delete", err)
	}
	if !existed {
		return false, ErrNotFound
	}
	return true, nil
}
