package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine is a line snapshot inside a SaleSubmission.
type SaleLine struct {
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	PrescriptionID *int64          `json:"prescription_id,omitempty"`
}

// SaleSubmission is the immutable snapshot sent to the sales service. Money
// values are already rounded to two places.
type SaleSubmission struct {
	CustomerID    int64         `json:"customer_id"`
	BranchID      int64         `json:"branch_id"`
	Summary       MoneySummary  `json:"summary"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CashierName   string        `json:"cashier_name"`
	Notes         string        `json:"notes,omitempty"`
	Lines         []SaleLine    `json:"lines"`
}

// NewSaleSubmission snapshots the session's cart. summary must already be
// rounded; line subtotals are rounded here.
func NewSaleSubmission(customerID, branchID int64, lines []CartLine, summary MoneySummary, method PaymentMethod, cashier string) SaleSubmission {
	out := make([]SaleLine, 0, len(lines))
	for _, l := range lines {
		var rx *int64
		if l.PrescriptionID != nil {
			id := *l.PrescriptionID
			rx = &id
		}
		out = append(out, SaleLine{
			ProductID:      l.Product.ID,
			ProductName:    l.Product.Name,
			Quantity:       l.Quantity,
			UnitPrice:      l.Product.BasePrice.Round(MoneyPlaces),
			Subtotal:       l.Subtotal().Round(MoneyPlaces),
			PrescriptionID: rx,
		})
	}
	if method == "" {
		method = DefaultPaymentMethod
	}
	return SaleSubmission{
		CustomerID:    customerID,
		BranchID:      branchID,
		Summary:       summary,
		PaymentMethod: method,
		CashierName:   cashier,
		Lines:         out,
	}
}

// Sale is a sale as recorded by the sales service.
type Sale struct {
	ID            int64           `json:"id"`
	SaleNumber    string          `json:"sale_number"`
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	BranchID      int64           `json:"branch_id"`
	SaleDate      time.Time       `json:"sale_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        string          `json:"status"`
	CashierName   string          `json:"cashier_name,omitempty"`
	Items         []SaleItem      `json:"items,omitempty"`
}

// SaleItem is a line of a recorded sale.
type SaleItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
