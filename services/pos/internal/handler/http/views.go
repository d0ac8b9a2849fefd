package http

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/service"
)

// Money travels as a string with exactly two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyPlaces)
}

const dateLayout = "2006-01-02"

// --- Response views ---

type summaryView struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type lineView struct {
	ProductID            int64  `json:"product_id"`
	Code                 string `json:"code,omitempty"`
	Name                 string `json:"name"`
	UnitPrice            string `json:"unit_price"`
	Quantity             int    `json:"quantity"`
	Subtotal             string `json:"subtotal"`
	RequiresPrescription bool   `json:"requires_prescription"`
	IsControlled         bool   `json:"is_controlled"`
	PrescriptionID       *int64 `json:"prescription_id,omitempty"`
}

type productView struct {
	ID                   int64  `json:"id"`
	Code                 string `json:"code"`
	Name                 string `json:"name"`
	BasePrice            string `json:"base_price"`
	RequiresPrescription bool   `json:"requires_prescription"`
	IsControlled         bool   `json:"is_controlled"`
}

type branchView struct {
	ID      int64  `json:"id"`
	Code    string `json:"code,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Status  string `json:"status,omitempty"`
}

type customerView struct {
	ID                   int64  `json:"id"`
	IdentificationNumber string `json:"identification_number"`
	IdentificationType   string `json:"identification_type,omitempty"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	FullName             string `json:"full_name"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Address              string `json:"address,omitempty"`
	City                 string `json:"city,omitempty"`
	Active               bool   `json:"active"`
}

type prescriptionView struct {
	ID                 int64  `json:"id"`
	PrescriptionNumber string `json:"prescription_number,omitempty"`
	CustomerID         int64  `json:"customer_id"`
	DoctorName         string `json:"doctor_name"`
	DoctorLicense      string `json:"doctor_license,omitempty"`
	DoctorSpecialty    string `json:"doctor_specialty,omitempty"`
	IssueDate          string `json:"issue_date"`
	ExpirationDate     string `json:"expiration_date"`
	Diagnosis          string `json:"diagnosis,omitempty"`
	Status             string `json:"status"`
}

type saleItemView struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

type saleView struct {
	ID            int64          `json:"id"`
	SaleNumber    string         `json:"sale_number"`
	CustomerID    int64          `json:"customer_id"`
	CustomerName  string         `json:"customer_name,omitempty"`
	BranchID      int64          `json:"branch_id"`
	SaleDate      *time.Time     `json:"sale_date,omitempty"`
	Subtotal      string         `json:"subtotal"`
	Tax           string         `json:"tax"`
	Discount      string         `json:"discount"`
	Total         string         `json:"total"`
	PaymentMethod string         `json:"payment_method"`
	Status        string         `json:"status,omitempty"`
	CashierName   string         `json:"cashier_name,omitempty"`
	Items         []saleItemView `json:"items,omitempty"`
}

type errorView struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type sessionView struct {
	ID            string             `json:"id"`
	CashierName   string             `json:"cashier_name"`
	BranchID      int64              `json:"branch_id,omitempty"`
	Customer      *customerView      `json:"customer,omitempty"`
	Prescriptions []prescriptionView `json:"prescriptions"`
	Items         []lineView         `json:"items"`
	ItemCount     int                `json:"item_count"`
	TaxRate       string             `json:"tax_rate"`
	Summary       summaryView        `json:"summary"`
	SummaryError  *errorView         `json:"summary_error,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	State         string             `json:"state"`
	LastSale      *saleView          `json:"last_sale,omitempty"`
	LastError     *errorView         `json:"last_error,omitempty"`
	RecentSales   []saleView         `json:"recent_sales"`
}

type checkoutView struct {
	Sale    saleView    `json:"sale"`
	Session sessionView `json:"session"`
}

type dashboardView struct {
	Sales struct {
		TotalRevenue    string `json:"total_revenue"`
		TotalSales      int64  `json:"total_sales"`
		AverageTicket   string `json:"average_ticket"`
		UniqueCustomers int64  `json:"unique_customers"`
	} `json:"sales"`
	Inventory struct {
		TotalProducts       int64  `json:"total_products"`
		LowStockProducts    int64  `json:"low_stock_products"`
		ExpiringSoon        int64  `json:"expiring_soon"`
		TotalInventoryValue string `json:"total_inventory_value"`
	} `json:"inventory"`
}

// --- Mapping ---

func newSummaryView(m domain.MoneySummary) summaryView {
	return summaryView{
		Subtotal: money(m.Subtotal),
		Tax:      money(m.TaxAmount),
		Discount: money(m.Discount),
		Total:    money(m.Total),
	}
}

func newProductView(p domain.Product) productView {
	return productView{
		ID:                   p.ID,
		Code:                 p.Code,
		Name:                 p.Name,
		BasePrice:            money(p.BasePrice),
		RequiresPrescription: p.RequiresPrescription,
		IsControlled:         p.IsControlled,
	}
}

func newLineView(l domain.CartLine) lineView {
	return lineView{
		ProductID:            l.Product.ID,
		Code:                 l.Product.Code,
		Name:                 l.Product.Name,
		UnitPrice:            money(l.Product.BasePrice),
		Quantity:             l.Quantity,
		Subtotal:             money(l.Subtotal()),
		RequiresPrescription: l.Product.RequiresPrescription,
		IsControlled:         l.Product.IsControlled,
		PrescriptionID:       l.PrescriptionID,
	}
}

func newCustomerView(c *domain.Customer) *customerView {
	if c == nil {
		return nil
	}
	return &customerView{
		ID:                   c.ID,
		IdentificationNumber: c.IdentificationNumber,
		IdentificationType:   c.IdentificationType,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		FullName:             c.FullName(),
		Email:                c.Email,
		Phone:                c.Phone,
		Address:              c.Address,
		City:                 c.City,
		Active:               c.Active,
	}
}

func newPrescriptionView(p domain.Prescription) prescriptionView {
	return prescriptionView{
		ID:                 p.ID,
		PrescriptionNumber: p.PrescriptionNumber,
		CustomerID:         p.CustomerID,
		DoctorName:         p.DoctorName,
		DoctorLicense:      p.DoctorLicense,
		DoctorSpecialty:    p.DoctorSpecialty,
		IssueDate:          p.IssueDate.Format(dateLayout),
		ExpirationDate:     p.ExpirationDate.Format(dateLayout),
		Diagnosis:          p.Diagnosis,
		Status:             p.Status,
	}
}

func newPrescriptionViews(ps []domain.Prescription) []prescriptionView {
	out := make([]prescriptionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPrescriptionView(p))
	}
	return out
}

func newSaleView(s domain.Sale) saleView {
	v := saleView{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		BranchID:      s.BranchID,
		Subtotal:      money(s.Subtotal),
		Tax:           money(s.Tax),
		Discount:      money(s.Discount),
		Total:         money(s.Total),
		PaymentMethod: string(s.PaymentMethod),
		Status:        s.Status,
		CashierName:   s.CashierName,
	}
	if !s.SaleDate.IsZero() {
		d := s.SaleDate
		v.SaleDate = &d
	}
	for _, it := range s.Items {
		v.Items = append(v.Items, saleItemView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   money(it.UnitPrice),
			Subtotal:    money(it.Subtotal),
		})
	}
	return v
}

func newSaleViews(sales []domain.Sale) []saleView {
	out := make([]saleView, 0, len(sales))
	for _, s := range sales {
		out = append(out, newSaleView(s))
	}
	return out
}

func newErrorView(err error) *errorView {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &errorView{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}
	}
	return &errorView{Code: "INTERNAL_ERROR", Message: err.Error()}
}

func newSessionView(snap service.Snapshot) sessionView {
	v := sessionView{
		ID:            snap.ID,
		CashierName:   snap.CashierName,
		BranchID:      snap.BranchID,
		Customer:      newCustomerView(snap.Customer),
		Prescriptions: newPrescriptionViews(snap.Prescriptions),
		Items:         make([]lineView, 0, len(snap.Lines)),
		ItemCount:     snap.ItemCount,
		TaxRate:       snap.TaxRate.String(),
		Summary:       newSummaryView(snap.Summary),
		SummaryError:  newErrorView(snap.SummaryErr),
		PaymentMethod: string(snap.PaymentMethod),
		State:         string(snap.State),
		LastError:     newErrorView(snap.LastError),
		RecentSales:   newSaleViews(snap.RecentSales),
	}
	for _, l := range snap.Lines {
		v.Items = append(v.Items, newLineView(l))
	}
	if snap.LastSale != nil {
		sale := newSaleView(*snap.LastSale)
		v.LastSale = &sale
	}
	return v
}

func newDashboardView(d *domain.Dashboard) dashboardView {
	var v dashboardView
	v.Sales.TotalRevenue = money(d.Sales.TotalRevenue)
	v.Sales.TotalSales = d.Sales.TotalSales
	v.Sales.AverageTicket = money(d.Sales.AverageTicket)
	v.Sales.UniqueCustomers = d.Sales.UniqueCustomers
	v.Inventory.TotalProducts = d.Inventory.TotalProducts
	v.Inventory.LowStockProducts = d.Inventory.LowStockProducts
	v.Inventory.ExpiringSoon = d.Inventory.ExpiringSoon
	v.Inventory.TotalInventoryValue = money(d.Inventory.TotalInventoryValue)
	return v
}
