package domain

import "github.com/shopspring/decimal"

// ProductStatusActive is the catalog status of sellable products.
const ProductStatusActive = "ACTIVE"

// Product is a catalog entry as seen by the cart. The cart never mutates it.
type Product struct {
	ID                   int64           `json:"id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	BasePrice            decimal.Decimal `json:"base_price"`
	RequiresPrescription bool            `json:"requires_prescription"`
	IsControlled         bool            `json:"is_controlled"`
	Status               string          `json:"status"`
}

// Active reports whether the product may be sold. An empty status is treated
// as active since older catalog responses omit it.
func (p Product) Active() bool {
	return p.Status == "" || p.Status == ProductStatusActive
}
