package core

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/docstore"
)

// EntryType is the direction of a ledger entry or expense record.
// For ledger entries, debit increases what the customer owes and decreases
// stock when tied to a product; credit is the opposite on both counts.
// For expenses, debit is an expense and credit is income.
type EntryType string

const (
	Debit  EntryType = "debit"
	Credit EntryType = "credit"
)

func (t EntryType) valid() bool { return t == Debit || t == Credit }

const dateLayout = "2006-01-02"

// StockItem is one dated lot of stock. Items sharing a name form a pool;
// availability is the pool's aggregate quantity.
type StockItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"` // referenced by name, not id
	Color    string          `json:"color,omitempty"`
	Quantity int64           `json:"quantity"` // may go negative, see LedgerService
	Price    decimal.Decimal `json:"price"`
	Date     string          `json:"date"` // 2006-01-02
	AddedOn  time.Time       `json:"addedOn"`
}

func (s StockItem) toDocument() docstore.Document {
	return docstore.Document{
		"name":     s.Name,
		"category": s.Category,
		"color":    s.Color,
		"quantity": s.Quantity,
		"price":    s.Price.String(),
		"date":     s.Date,
		"addedOn":  s.AddedOn.UTC().Format(time.RFC3339Nano),
	}
}

func stockFromDocument(d docstore.Document) StockItem {
	return StockItem{
		ID:       d.ID(),
		Name:     docString(d, "name"),
		Category: docString(d, "category"),
		Color:    docString(d, "color"),
		Quantity: docInt64(d, "quantity"),
		Price:    docDecimal(d, "price"),
		Date:     docString(d, "date"),
		AddedOn:  docTime(d, "addedOn"),
	}
}

// StockPatch carries the stock item fields that may be changed. Nil fields
// are left untouched by the merge.
type StockPatch struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Color    *string          `json:"color,omitempty"`
	Quantity *int64           `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Date     *string          `json:"date,omitempty"`
}

func (p StockPatch) toDocument() docstore.Document {
	d := docstore.Document{}
	if p.Name != nil {
		d["name"] = *p.Name
	}
	if p.Category != nil {
		d["category"] = *p.Category
	}
	if p.Color != nil {
		d["color"] = *p.Color
	}
	if p.Quantity != nil {
		d["quantity"] = *p.Quantity
	}
	if p.Price != nil {
		d["price"] = p.Price.String()
	}
	if p.Date != nil {
		d["date"] = *p.Date
	}
	return d
}

// Customer is a directory record; balances are derived from the ledger.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Customer) toDocument() docstore.Document {
	return docstore.Document{
		"name":      c.Name,
		"phone":     c.Phone,
		"email":     c.Email,
		"address":   c.Address,
		"createdAt": c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func customerFromDocument(d docstore.Document) Customer {
	return Customer{
		ID:        d.ID(),
		Name:      docString(d, "name"),
		Phone:     docString(d, "phone"),
		Email:     docString(d, "email"),
		Address:   docString(d, "address"),
		CreatedAt: docTime(d, "createdAt"),
	}
}

type CustomerPatch struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (p CustomerPatch) toDocument() docstore.Document {
	d := docstore.Document{}
	if p.Name != nil {
		d["name"] = *p.Name
	}
	if p.Phone != nil {
		d["phone"] = *p.Phone
	}
	if p.Email != nil {
		d["email"] = *p.Email
	}
	if p.Address != nil {
		d["address"] = *p.Address
	}
	return d
}

// LedgerEntry is a dated debit/credit record against one customer,
// optionally tied to a stock movement. ProductName is a denormalized
// snapshot taken at entry time; the stock item may be renamed or deleted
// afterwards.
type LedgerEntry struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Type            EntryType       `json:"type"`
	Date            string          `json:"date"`
	ProductID       string          `json:"productId,omitempty"`
	ProductName     string          `json:"productName,omitempty"`
	ProductQuantity int64           `json:"productQuantity,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`

	// Balance is the running balance up to and including this entry, in
	// chronological order. Stamped by LedgerView; not persisted.
	Balance decimal.Decimal `json:"balance"`
}

// stockEffect is the quantity delta this entry applies to its stock item:
// debit moves goods out (negative), credit moves goods back in (positive).
// Zero when the entry is not tied to a product.
func (e LedgerEntry) stockEffect() int64 {
	if e.ProductID == "" || e.ProductQuantity == 0 {
		return 0
	}
	if e.Type == Debit {
		return -e.ProductQuantity
	}
	return e.ProductQuantity
}

func (e LedgerEntry) toDocument() docstore.Document {
	return docstore.Document{
		"customerId":      e.CustomerID,
		"title":           e.Title,
		"description":     e.Description,
		"reference":       e.Reference,
		"amount":          e.Amount.String(),
		"type":            string(e.Type),
		"date":            e.Date,
		"productId":       e.ProductID,
		"productName":     e.ProductName,
		"productQuantity": e.ProductQuantity,
		"createdAt":       e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func entryFromDocument(d docstore.Document) LedgerEntry {
	return LedgerEntry{
		ID:              d.ID(),
		CustomerID:      docString(d, "customerId"),
		Title:           docString(d, "title"),
		Description:     docString(d, "description"),
		Reference:       docString(d, "reference"),
		Amount:          docDecimal(d, "amount"),
		Type:            EntryType(docString(d, "type")),
		Date:            docString(d, "date"),
		ProductID:       docString(d, "productId"),
		ProductName:     docString(d, "productName"),
		ProductQuantity: docInt64(d, "productQuantity"),
		CreatedAt:       docTime(d, "createdAt"),
	}
}

// LedgerPatch carries the entry fields that may be changed. Setting
// ProductID to the empty string detaches the entry from stock.
type LedgerPatch struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Type            *EntryType       `json:"type,omitempty"`
	Date            *string          `json:"date,omitempty"`
	ProductID       *string          `json:"productId,omitempty"`
	ProductName     *string          `json:"productName,omitempty"`
	ProductQuantity *int64           `json:"productQuantity,omitempty"`
}

func (p LedgerPatch) toDocument() docstore.Document {
	d := docstore.Document{}
	if p.Title != nil {
		d["title"] = *p.Title
	}
	if p.Description != nil {
		d["description"] = *p.Description
	}
	if p.Reference != nil {
		d["reference"] = *p.Reference
	}
	if p.Amount != nil {
		d["amount"] = p.Amount.String()
	}
	if p.Type != nil {
		d["type"] = string(*p.Type)
	}
	if p.Date != nil {
		d["date"] = *p.Date
	}
	if p.ProductID != nil {
		d["productId"] = *p.ProductID
	}
	if p.ProductName != nil {
		d["productName"] = *p.ProductName
	}
	if p.ProductQuantity != nil {
		d["productQuantity"] = *p.ProductQuantity
	}
	return d
}

// apply returns e with the patch merged on top. Fields absent from the
// patch retain their original values.
func (p LedgerPatch) apply(e LedgerEntry) LedgerEntry {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Reference != nil {
		e.Reference = *p.Reference
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.ProductID != nil {
		e.ProductID = *p.ProductID
	}
	if p.ProductName != nil {
		e.ProductName = *p.ProductName
	}
	if p.ProductQuantity != nil {
		e.ProductQuantity = *p.ProductQuantity
	}
	return e
}

// Expense is an expense (debit) or income (credit) record, independent of
// the customer ledger.
type Expense struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        EntryType       `json:"type"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (e Expense) toDocument() docstore.Document {
	return docstore.Document{
		"category":    e.Category,
		"title":       e.Title,
		"description": e.Description,
		"amount":      e.Amount.String(),
		"type":        string(e.Type),
		"date":        e.Date,
		"createdAt":   e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func expenseFromDocument(d docstore.Document) Expense {
	return Expense{
		ID:          d.ID(),
		Category:    docString(d, "category"),
		Title:       docString(d, "title"),
		Description: docString(d, "description"),
		Amount:      docDecimal(d, "amount"),
		Type:        EntryType(docString(d, "type")),
		Date:        docString(d, "date"),
		CreatedAt:   docTime(d, "createdAt"),
	}
}

type ExpensePatch struct {
	Category    *string          `json:"category,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *EntryType       `json:"type,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

func (p ExpensePatch) toDocument() docstore.Document {
	d := docstore.Document{}
	if p.Category != nil {
		d["category"] = *p.Category
	}
	if p.Title != nil {
		d["title"] = *p.Title
	}
	if p.Description != nil {
		d["description"] = *p.Description
	}
	if p.Amount != nil {
		d["amount"] = p.Amount.String()
	}
	if p.Type != nil {
		d["type"] = string(*p.Type)
	}
	if p.Date != nil {
		d["date"] = *p.Date
	}
	return d
}

// Category is a named stock or expense category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func categoryFromDocument(d docstore.Document) Category {
	return Category{ID: d.ID(), Name: docString(d, "name")}
}

// ── document field helpers ────────────────────────────────────────────────────

func docString(d docstore.Document, key string) string {
	s, _ := d[key].(string)
	return s
}

// docInt64 reads an integer field. Values arrive as int64 from the memory
// store and as float64 after a jsonb round trip.
func docInt64(d docstore.Document, key string) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// docDecimal reads an amount field stored as a string (preferred) or, for
// documents restored from external snapshots, a JSON number.
func docDecimal(d docstore.Document, key string) decimal.Decimal {
	switch v := d[key].(type) {
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return dec
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}
}

func docTime(d docstore.Document, key string) time.Time {
	s, _ := d[key].(string)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
