// Package pricing derives the money summary of a cart.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// DefaultTaxRate is Ecuador's IVA.
var DefaultTaxRate = decimal.RequireFromString("0.12")

// Calculator computes subtotal, tax and total at full precision.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator returns a calculator for taxRate, a fraction such as 0.12.
func NewCalculator(taxRate decimal.Decimal) (*Calculator, error) {
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must not be negative, got %s", taxRate)
	}
	return &Calculator{taxRate: taxRate}, nil
}

// TaxRate returns the configured rate.
func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Summarize prices lines with the products' current base prices. An empty
// cart yields zeros and ignores the discount. A negative discount, one with
// fractions of a cent, or one that would make the total negative fails with
// ErrInvalidDiscount.
func (c *Calculator) Summarize(lines []domain.CartLine, discount decimal.Decimal) (domain.MoneySummary, error) {
	if len(lines) == 0 {
		return domain.MoneySummary{
			Subtotal:  decimal.Zero,
			TaxAmount: decimal.Zero,
			Discount:  decimal.Zero,
			Total:     decimal.Zero,
		}, nil
	}
	if discount.IsNegative() {
		return domain.MoneySummary{}, domain.ErrInvalidDiscount.WithMessage("discount must not be negative")
	}
	if !domain.IsMoneyAmount(discount) {
		return domain.MoneySummary{}, domain.ErrInvalidDiscount.WithMessage(
			"discount %s has more than %d decimal places", discount, domain.MoneyPlaces)
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	tax := subtotal.Mul(c.taxRate)
	summary := domain.MoneySummary{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Discount:  discount,
		Total:     subtotal.Add(tax).Sub(discount),
	}
	if summary.Total.IsNegative() || summary.Rounded().Total.IsNegative() {
		return domain.MoneySummary{}, domain.ErrInvalidDiscount.WithMessage(
			"discount %s exceeds the amount due %s", discount.StringFixed(domain.MoneyPlaces), subtotal.Add(tax).StringFixed(domain.MoneyPlaces))
	}
	return summary, nil
}
