package http

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/pagination"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// ============================================================================
// In-memory backends
// ============================================================================

type fakeCatalog struct {
	products map[int64]*domain.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	cpy := *p
	return &cpy, nil
}

func (f *fakeCatalog) SearchProducts(_ context.Context, query string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(p.Code), strings.ToLower(query)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeBranches struct {
	branches []domain.Branch
}

func (f *fakeBranches) ListBranches(_ context.Context) ([]domain.Branch, error) {
	return f.branches, nil
}

type fakeStock struct {
	quantities map[int64]int
}

func (f *fakeStock) GetStock(_ context.Context, branchID, productID int64) (*domain.StockSnapshot, error) {
	return &domain.StockSnapshot{BranchID: branchID, ProductID: productID, Quantity: f.quantities[productID]}, nil
}

type fakeSales struct {
	mu          sync.Mutex
	submissions []domain.SaleSubmission
	err         error
}

func (f *fakeSales) CreateSale(_ context.Context, sub domain.SaleSubmission) (*domain.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, sub)
	if f.err != nil {
		return nil, f.err
	}
	n := int64(1000 + len(f.submissions))
	return &domain.Sale{
		ID:            n,
		SaleNumber:    "VTA-" + strconv.FormatInt(n, 10),
		CustomerID:    sub.CustomerID,
		BranchID:      sub.BranchID,
		SaleDate:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Subtotal:      sub.Summary.Subtotal,
		Tax:           sub.Summary.TaxAmount,
		Discount:      sub.Summary.Discount,
		Total:         sub.Summary.Total,
		PaymentMethod: sub.PaymentMethod,
		Status:        "COMPLETADA",
	}, nil
}

func (f *fakeSales) ListSales(_ context.Context, params pagination.Params) ([]domain.Sale, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Sale
	for i := len(f.submissions) - 1; i >= 0; i-- {
		sub := f.submissions[i]
		out = append(out, domain.Sale{ID: int64(1001 + i), Total: sub.Summary.Total, PaymentMethod: sub.PaymentMethod})
	}
	return out, len(out), nil
}

func (f *fakeSales) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

type fakeCustomers struct {
	customers map[int64]*domain.Customer
	created   []domain.NewCustomer
}

func (f *fakeCustomers) Get(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, apperrors.NotFound("customer", strconv.FormatInt(id, 10))
	}
	return c, nil
}

func (f *fakeCustomers) SearchByIdentification(_ context.Context, identification string) (*domain.Customer, error) {
	for _, c := range f.customers {
		if c.IdentificationNumber == identification {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomers) Create(_ context.Context, in domain.NewCustomer) (*domain.Customer, error) {
	f.created = append(f.created, in)
	return &domain.Customer{
		ID:                   int64(500 + len(f.created)),
		IdentificationNumber: in.IdentificationNumber,
		IdentificationType:   in.IdentificationType,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		Active:               true,
	}, nil
}

type fakePrescriptions struct {
	byCustomer map[int64][]domain.Prescription
	nextID     int64
}

func (f *fakePrescriptions) ListByCustomer(_ context.Context, customerID int64) ([]domain.Prescription, error) {
	return f.byCustomer[customerID], nil
}

func (f *fakePrescriptions) Create(_ context.Context, in domain.NewPrescription) (*domain.Prescription, error) {
	f.nextID++
	p := domain.Prescription{
		ID:             f.nextID,
		CustomerID:     in.CustomerID,
		DoctorName:     in.DoctorName,
		IssueDate:      in.IssueDate,
		ExpirationDate: in.ExpirationDate,
		Status:         domain.PrescriptionActive,
	}
	f.byCustomer[in.CustomerID] = append(f.byCustomer[in.CustomerID], p)
	return &p, nil
}

type fakeReporting struct {
	calls int
}

func (f *fakeReporting) Dashboard(_ context.Context) (*domain.Dashboard, error) {
	f.calls++
	return &domain.Dashboard{
		Sales: domain.SalesMetrics{TotalRevenue: decimal.RequireFromString("1520.4"), TotalSales: 37},
	}, nil
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(id int64, price string, rx bool) *domain.Product {
	return &domain.Product{
		ID:                   id,
		Code:                 "P-" + strconv.FormatInt(id, 10),
		Name:                 "Producto " + strconv.FormatInt(id, 10),
		BasePrice:            decimal.RequireFromString(price),
		RequiresPrescription: rx,
		Status:               "ACTIVE",
	}
}
