package core

import "github.com/shopspring/decimal"

// StockFilter narrows and orders a stock listing. It is owned by the caller
// and threaded through each query call; there is no process-wide list state.
type StockFilter struct {
	Name     string // case-insensitive substring
	Category string // exact match
	DateFrom string // inclusive, 2006-01-02
	DateTo   string
	SortBy   string // date, name, category, color, quantity, price
	SortDesc bool
}

// StockPool is the aggregate view of all lots sharing a name. Stock is
// entered in date-stamped lots but sold as a named pool.
type StockPool struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	TotalQuantity int64           `json:"totalQuantity"`
	AveragePrice  decimal.Decimal `json:"averagePrice"` // TotalValue / TotalQuantity
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// Product is a purchasable pool entry for the ledger entry form: pools with
// positive aggregate quantity, addressed by their first lot's id.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Available int64  `json:"available"`
}
