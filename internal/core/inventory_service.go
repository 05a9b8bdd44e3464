package core

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/docstore"
)

// StockService owns the stocks collection: lot records, their quantities,
// and the quantity deltas the ledger engine applies as side effects.
type StockService interface {
	AddStock(ctx context.Context, item StockItem) (StockItem, error)
	GetStock(ctx context.Context, id string) (StockItem, error)
	UpdateStock(ctx context.Context, id string, patch StockPatch) (bool, error)
	// DeleteStock removes a lot. Ledger entries referencing it are left in
	// place; their later reversals against the deleted id become no-ops.
	DeleteStock(ctx context.Context, id string) (bool, error)
	ListStock(ctx context.Context, filter StockFilter) ([]StockItem, error)

	// AdjustQuantity reads the lot's current quantity and writes
	// current+delta. A stockID that no longer resolves is ignored.
	//
	// The read and the write are separate storage calls with no lock
	// between them; two concurrent adjustments of the same lot can lose
	// one update. Accepted for the single-operator usage model.
	AdjustQuantity(ctx context.Context, stockID string, delta int64) error

	// AvailableQuantity sums Quantity across every lot sharing the name.
	AvailableQuantity(ctx context.Context, name string) (int64, error)

	// Summary aggregates lots into named pools.
	Summary(ctx context.Context, filter StockFilter) ([]StockPool, error)

	// AvailableProducts returns the pools with positive aggregate quantity,
	// eligible for new ledger entries.
	AvailableProducts(ctx context.Context) ([]Product, error)
}

type stockService struct {
	store docstore.Store
}

func NewStockService(store docstore.Store) StockService {
	return &stockService{store: store}
}

func (s *stockService) AddStock(ctx context.Context, item StockItem) (StockItem, error) {
	if item.Name == "" {
		return StockItem{}, &ValidationError{Field: "name", Reason: "required"}
	}
	if item.Category == "" {
		return StockItem{}, &ValidationError{Field: "category", Reason: "required"}
	}
	if item.Quantity <= 0 {
		return StockItem{}, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if item.Price.IsNegative() {
		return StockItem{}, &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if _, err := time.Parse(dateLayout, item.Date); err != nil {
		return StockItem{}, &ValidationError{Field: "date", Reason: "must be formatted 2006-01-02"}
	}
	item.AddedOn = time.Now()

	doc, err := s.store.Insert(ctx, docstore.Stocks, item.toDocument())
	if err != nil {
		return StockItem{}, classify("stock insert", err)
	}
	item.ID = doc.ID()
	return item, nil
}

func (s *stockService) GetStock(ctx context.Context, id string) (StockItem, error) {
	doc, err := s.store.Get(ctx, docstore.Stocks, id)
	if err != nil {
		return StockItem{}, classify("stock fetch", err)
	}
	return stockFromDocument(doc), nil
}

func (s *stockService) UpdateStock(ctx context.Context, id string, patch StockPatch) (bool, error) {
	if patch.Name != nil && *patch.Name == "" {
		return false, &ValidationError{Field: "name", Reason: "cannot be cleared"}
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return false, &ValidationError{Field: "quantity", Reason: "cannot be set negative"}
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return false, &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if patch.Date != nil {
		if _, err := time.Parse(dateLayout, *patch.Date); err != nil {
			return false, &ValidationError{Field: "date", Reason: "must be formatted 2006-01-02"}
		}
	}
	ok, err := s.store.Update(ctx, docstore.Stocks, id, patch.toDocument())
	if err != nil {
		return false, classify("stock update", err)
	}
	return ok, nil
}

func (s *stockService) DeleteStock(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Remove(ctx, docstore.Stocks, id)
	if err != nil {
		return false, classify("stock delete", err)
	}
	return ok, nil
}

func (s *stockService) ListStock(ctx context.Context, filter StockFilter) ([]StockItem, error) {
	docs, err := s.store.Find(ctx, docstore.Stocks, stockQuery(filter))
	if err != nil {
		return nil, classify("stock list", err)
	}
	items := make([]StockItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, stockFromDocument(d))
	}
	return items, nil
}

func stockQuery(filter StockFilter) docstore.Query {
	q := docstore.Query{
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
		SortBy:   filter.SortBy,
		SortDesc: filter.SortDesc,
	}
	if filter.Name != "" {
		q.Contains = map[string]string{"name": filter.Name}
	}
	if filter.Category != "" {
		q.Equals = map[string]string{"category": filter.Category}
	}
	if q.SortBy == "" {
		q.SortBy, q.SortDesc = "date", true
	}
	q.SortNumeric = numericSortField(q.SortBy)
	return q
}

func (s *stockService) AdjustQuantity(ctx context.Context, stockID string, delta int64) error {
	if delta == 0 {
		return nil
	}
	doc, err := s.store.Get(ctx, docstore.Stocks, stockID)
	if errors.Is(err, docstore.ErrNoDocument) {
		// The referenced lot was deleted after the entry was written.
		log.Printf("stock adjustment skipped: lot %s no longer exists (delta %+d)", stockID, delta)
		return nil
	}
	if err != nil {
		return classify("stock adjustment read", err)
	}
	current := docInt64(doc, "quantity")
	if _, err := s.store.Update(ctx, docstore.Stocks, stockID, docstore.Document{"quantity": current + delta}); err != nil {
		return classify("stock adjustment write", err)
	}
	return nil
}

func (s *stockService) AvailableQuantity(ctx context.Context, name string) (int64, error) {
	docs, err := s.store.Find(ctx, docstore.Stocks, docstore.Query{
		Equals: map[string]string{"name": name},
	})
	if err != nil {
		return 0, classify("stock availability", err)
	}
	var total int64
	for _, d := range docs {
		total += docInt64(d, "quantity")
	}
	return total, nil
}

func (s *stockService) Summary(ctx context.Context, filter StockFilter) ([]StockPool, error) {
	items, err := s.ListStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	return poolStock(items), nil
}

// poolStock groups lots by name, preserving first-seen order.
func poolStock(items []StockItem) []StockPool {
	index := make(map[string]int)
	var pools []StockPool
	for _, item := range items {
		i, ok := index[item.Name]
		if !ok {
			i = len(pools)
			index[item.Name] = i
			pools = append(pools, StockPool{Name: item.Name, Category: item.Category})
		}
		pools[i].TotalQuantity += item.Quantity
		pools[i].TotalValue = pools[i].TotalValue.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	for i := range pools {
		if pools[i].TotalQuantity != 0 {
			pools[i].AveragePrice = pools[i].TotalValue.Div(decimal.NewFromInt(pools[i].TotalQuantity))
		}
	}
	return pools
}

func (s *stockService) AvailableProducts(ctx context.Context) ([]Product, error) {
	docs, err := s.store.Find(ctx, docstore.Stocks, docstore.Query{})
	if err != nil {
		return nil, classify("stock list", err)
	}
	index := make(map[string]int)
	var products []Product
	for _, d := range docs {
		item := stockFromDocument(d)
		i, ok := index[item.Name]
		if !ok {
			i = len(products)
			index[item.Name] = i
			products = append(products, Product{ID: item.ID, Name: item.Name, Category: item.Category})
		}
		products[i].Available += item.Quantity
	}
	eligible := products[:0]
	for _, p := range products {
		if p.Available > 0 {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

// numericSortField reports whether a sort key holds numbers rather than text.
func numericSortField(field string) bool {
	switch field {
	case "quantity", "price", "amount", "productQuantity":
		return true
	}
	return false
}
