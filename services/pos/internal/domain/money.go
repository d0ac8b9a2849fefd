package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places money is presented and submitted with.
const MoneyPlaces = 2

// MoneySummary is derived from the cart on every read.
type MoneySummary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// Rounded returns the summary rounded half-up to two places. The total is
// derived from the rounded parts so total = subtotal + tax - discount holds
// on the presented figures.
func (m MoneySummary) Rounded() MoneySummary {
	r := MoneySummary{
		Subtotal:  m.Subtotal.Round(MoneyPlaces),
		TaxAmount: m.TaxAmount.Round(MoneyPlaces),
		Discount:  m.Discount.Round(MoneyPlaces),
	}
	r.Total = r.Subtotal.Add(r.TaxAmount).Sub(r.Discount)
	return r
}

// IsMoneyAmount reports whether d has no more than MoneyPlaces decimals.
func IsMoneyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}
