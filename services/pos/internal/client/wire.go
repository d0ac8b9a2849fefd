package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// timestamp accepts the zone-less date-times the backends emit.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// date is a calendar date sent as "2006-01-02".
type date struct {
	time.Time
}

func (d date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *date) UnmarshalJSON(b []byte) error {
	var ts timestamp
	if err := ts.UnmarshalJSON(b); err != nil {
		return err
	}
	d.Time = ts.Time
	return nil
}

// money renders a decimal as a plain JSON number with two places.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.MoneyPlaces))
}

type productWire struct {
	ID                   int64           `json:"id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	BasePrice            decimal.Decimal `json:"basePrice"`
	RequiresPrescription bool            `json:"requiresPrescription"`
	IsControlled         bool            `json:"isControlled"`
	Status               string          `json:"status"`
}

func (w productWire) toDomain() *domain.Product {
	return &domain.Product{
		ID:                   w.ID,
		Code:                 w.Code,
		Name:                 w.Name,
		BasePrice:            w.BasePrice,
		RequiresPrescription: w.RequiresPrescription,
		IsControlled:         w.IsControlled,
		Status:               strings.ToUpper(w.Status),
	}
}

type branchWire struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Province string `json:"province"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
	Active   *bool  `json:"active"`
}

// toDomain prefers the status enum and falls back to the boolean flag older
// inventory responses carry.
func (w branchWire) toDomain() domain.Branch {
	status := strings.ToUpper(w.Status)
	if status == "" && w.Active != nil {
		status = "INACTIVE"
		if *w.Active {
			status = domain.BranchStatusActive
		}
	}
	return domain.Branch{
		ID:      w.ID,
		Code:    w.Code,
		Name:    w.Name,
		Address: w.Address,
		City:    w.City,
		Phone:   w.Phone,
		Status:  status,
	}
}

type stockWire struct {
	ID           int64  `json:"id"`
	BranchID     int64  `json:"branchId"`
	BranchName   string `json:"branchName"`
	ProductID    int64  `json:"productId"`
	Quantity     int    `json:"quantity"`
	MinimumStock int    `json:"minimumStock"`
}

type customerWire struct {
	ID                   int64  `json:"id"`
	IdentificationNumber string `json:"identificationNumber"`
	IdentificationType   string `json:"identificationType"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	City                 string `json:"city"`
	Active               *bool  `json:"active"`
}

func (w customerWire) toDomain() *domain.Customer {
	active := true
	if w.Active != nil {
		active = *w.Active
	}
	return &domain.Customer{
		ID:                   w.ID,
		IdentificationNumber: w.IdentificationNumber,
		IdentificationType:   w.IdentificationType,
		FirstName:            w.FirstName,
		LastName:             w.LastName,
		Email:                w.Email,
		Phone:                w.Phone,
		Address:              w.Address,
		City:                 w.City,
		Active:               active,
	}
}

type customerRequest struct {
	IdentificationNumber string `json:"identificationNumber"`
	IdentificationType   string `json:"identificationType"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Address              string `json:"address,omitempty"`
	City                 string `json:"city,omitempty"`
	BirthDate            *date  `json:"birthDate,omitempty"`
}

func newCustomerRequest(c domain.NewCustomer) customerRequest {
	req := customerRequest{
		IdentificationNumber: c.IdentificationNumber,
		IdentificationType:   c.IdentificationType,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		Email:                c.Email,
		Phone:                c.Phone,
		Address:              c.Address,
		City:                 c.City,
	}
	if c.BirthDate != nil {
		req.BirthDate = &date{*c.BirthDate}
	}
	return req
}

type prescriptionWire struct {
	ID                 int64  `json:"id"`
	PrescriptionNumber string `json:"prescriptionNumber"`
	CustomerID         int64  `json:"customerId"`
	DoctorName         string `json:"doctorName"`
	DoctorLicense      string `json:"doctorLicense"`
	DoctorSpecialty    string `json:"doctorSpecialty"`
	IssueDate          date   `json:"issueDate"`
	ExpirationDate     date   `json:"expirationDate"`
	Diagnosis          string `json:"diagnosis"`
	Notes              string `json:"notes"`
	Status             string `json:"status"`
}

func (w prescriptionWire) toDomain() domain.Prescription {
	return domain.Prescription{
		ID:                 w.ID,
		PrescriptionNumber: w.PrescriptionNumber,
		CustomerID:         w.CustomerID,
		DoctorName:         w.DoctorName,
		DoctorLicense:      w.DoctorLicense,
		DoctorSpecialty:    w.DoctorSpecialty,
		IssueDate:          w.IssueDate.Time,
		ExpirationDate:     w.ExpirationDate.Time,
		Diagnosis:          w.Diagnosis,
		Notes:              w.Notes,
		Status:             strings.ToUpper(w.Status),
	}
}

type prescriptionRequest struct {
	CustomerID      int64  `json:"customerId"`
	DoctorName      string `json:"doctorName"`
	DoctorLicense   string `json:"doctorLicense,omitempty"`
	DoctorSpecialty string `json:"doctorSpecialty,omitempty"`
	IssueDate       date   `json:"issueDate"`
	ExpirationDate  date   `json:"expirationDate"`
	Diagnosis       string `json:"diagnosis,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Status          string `json:"status"`
}

type saleItemRequest struct {
	ProductID      int64       `json:"productId"`
	Quantity       int         `json:"quantity"`
	UnitPrice      json.Number `json:"unitPrice"`
	Subtotal       json.Number `json:"subtotal"`
	PrescriptionID *int64      `json:"prescriptionId,omitempty"`
}

type saleRequest struct {
	CustomerID    int64             `json:"customerId"`
	BranchID      int64             `json:"branchId"`
	Items         []saleItemRequest `json:"items"`
	Subtotal      json.Number       `json:"subtotal"`
	Tax           json.Number       `json:"tax"`
	Discount      json.Number       `json:"discount"`
	Total         json.Number       `json:"total"`
	PaymentMethod string            `json:"paymentMethod"`
	CashierName   string            `json:"cashierName"`
	Notes         string            `json:"notes,omitempty"`
}

func newSaleRequest(sub domain.SaleSubmission) saleRequest {
	items := make([]saleItemRequest, 0, len(sub.Lines))
	for _, l := range sub.Lines {
		items = append(items, saleItemRequest{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPrice:      money(l.UnitPrice),
			Subtotal:       money(l.Subtotal),
			PrescriptionID: l.PrescriptionID,
		})
	}
	return saleRequest{
		CustomerID:    sub.CustomerID,
		BranchID:      sub.BranchID,
		Items:         items,
		Subtotal:      money(sub.Summary.Subtotal),
		Tax:           money(sub.Summary.TaxAmount),
		Discount:      money(sub.Summary.Discount),
		Total:         money(sub.Summary.Total),
		PaymentMethod: string(sub.PaymentMethod),
		CashierName:   sub.CashierName,
		Notes:         sub.Notes,
	}
}

type saleItemWire struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type saleWire struct {
	ID            int64           `json:"id"`
	SaleNumber    string          `json:"saleNumber"`
	CustomerID    int64           `json:"customerId"`
	Customer      *customerWire   `json:"customer"`
	BranchID      int64           `json:"branchId"`
	SaleDate      timestamp       `json:"saleDate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	CashierName   string          `json:"cashierName"`
	Items         []saleItemWire  `json:"items"`
}

func (w saleWire) toDomain() domain.Sale {
	s := domain.Sale{
		ID:            w.ID,
		SaleNumber:    w.SaleNumber,
		CustomerID:    w.CustomerID,
		BranchID:      w.BranchID,
		SaleDate:      w.SaleDate.Time,
		Subtotal:      w.Subtotal,
		Tax:           w.Tax,
		Discount:      w.Discount,
		Total:         w.Total,
		PaymentMethod: domain.PaymentMethod(w.PaymentMethod),
		Status:        w.Status,
		CashierName:   w.CashierName,
	}
	if w.Customer != nil {
		if s.CustomerID == 0 {
			s.CustomerID = w.Customer.ID
		}
		s.CustomerName = w.Customer.toDomain().FullName()
	}
	for _, it := range w.Items {
		s.Items = append(s.Items, domain.SaleItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return s
}

type dashboardWire struct {
	SalesMetrics struct {
		TotalRevenue    decimal.Decimal `json:"totalRevenue"`
		TotalSales      int64           `json:"totalSales"`
		AverageTicket   decimal.Decimal `json:"averageTicket"`
		UniqueCustomers int64           `json:"uniqueCustomers"`
	} `json:"salesMetrics"`
	InventoryMetrics struct {
		TotalProducts       int64           `json:"totalProducts"`
		LowStockProducts    int64           `json:"lowStockProducts"`
		ExpiringSoon        int64           `json:"expiringSoon"`
		TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	} `json:"inventoryMetrics"`
}

func (w dashboardWire) toDomain() *domain.Dashboard {
	return &domain.Dashboard{
		Sales: domain.SalesMetrics{
			TotalRevenue:    w.SalesMetrics.TotalRevenue,
			TotalSales:      w.SalesMetrics.TotalSales,
			AverageTicket:   w.SalesMetrics.AverageTicket,
			UniqueCustomers: w.SalesMetrics.UniqueCustomers,
		},
		Inventory: domain.InventoryMetrics{
			TotalProducts:       w.InventoryMetrics.TotalProducts,
			LowStockProducts:    w.InventoryMetrics.LowStockProducts,
			ExpiringSoon:        w.InventoryMetrics.ExpiringSoon,
			TotalInventoryValue: w.InventoryMetrics.TotalInventoryValue,
		},
	}
}
