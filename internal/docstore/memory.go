package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store used by tests. Documents are kept in
// insertion order per collection.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := doc.Clone()
	if stored.ID() == "" {
		stored["_id"] = uuid.NewString()
	}
	m.collections[collection] = append(m.collections[collection], stored)
	return stored.Clone(), nil
}

func (m *MemoryStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Document
	for _, doc := range m.collections[collection] {
		if matches(doc, q) {
			out = append(out, doc.Clone())
		}
	}
	sortDocs(out, q)
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[collection] {
		if doc.ID() == id {
			return doc.Clone(), nil
		}
	}
	return nil, ErrNoDocument
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, patch Document) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[collection] {
		if doc.ID() != id {
			continue
		}
		for k, v := range patch {
			if k == "_id" {
				continue
			}
			doc[k] = v
		}
		return true, nil
	}
	return false, nil
}

func (m *MemoryStore) Remove(ctx context.Context, collection, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	for i, doc := range docs {
		if doc.ID() == id {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) RemoveWhere(ctx context.Context, collection, field, value string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []Document
	removed := 0
	for _, doc := range m.collections[collection] {
		if fieldString(doc, field) == value {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	m.collections[collection] = kept
	return removed, nil
}

func (m *MemoryStore) ReplaceAll(ctx context.Context, collection string, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replacement := make([]Document, 0, len(docs))
	for _, doc := range docs {
		stored := doc.Clone()
		if stored.ID() == "" {
			stored["_id"] = uuid.NewString()
		}
		replacement = append(replacement, stored)
	}
	m.collections[collection] = replacement
	return nil
}

// matches applies the Query predicate to a single document.
func matches(doc Document, q Query) bool {
	for field, want := range q.Equals {
		if fieldString(doc, field) != want {
			return false
		}
	}
	for field, want := range q.Contains {
		have := strings.ToLower(fieldString(doc, field))
		if !strings.Contains(have, strings.ToLower(want)) {
			return false
		}
	}
	if q.DateFrom != "" || q.DateTo != "" {
		date := fieldString(doc, "date")
		if q.DateFrom != "" && date < q.DateFrom {
			return false
		}
		if q.DateTo != "" && date > q.DateTo {
			return false
		}
	}
	return true
}

// sortDocs orders docs by q.SortBy. Stable, so equal keys keep insertion order.
func sortDocs(docs []Document, q Query) {
	if q.SortBy == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		less := compareField(docs[i], docs[j], q.SortBy, q.SortNumeric)
		if q.SortDesc {
			return less > 0
		}
		return less < 0
	})
}

func compareField(a, b Document, field string, numeric bool) int {
	av, bv := fieldString(a, field), fieldString(b, field)
	if numeric {
		ad, aerr := decimal.NewFromString(av)
		bd, berr := decimal.NewFromString(bv)
		if aerr == nil && berr == nil {
			return ad.Cmp(bd)
		}
	}
	return strings.Compare(av, bv)
}

// fieldString renders a document field as a comparable string.
func fieldString(doc Document, field string) string {
	v, ok := doc[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	case int:
		return decimal.NewFromInt(int64(t)).String()
	case int64:
		return decimal.NewFromInt(t).String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
