package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/pagination"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/pricing"
)

// --- Mock Gateways ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalog) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockBranches struct {
	mock.Mock
}

func (m *mockBranches) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Branch), args.Error(1)
}

type mockStock struct {
	mock.Mock
}

func (m *mockStock) GetStock(ctx context.Context, branchID, productID int64) (*domain.StockSnapshot, error) {
	args := m.Called(ctx, branchID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockSnapshot), args.Error(1)
}

type mockSales struct {
	mock.Mock
}

func (m *mockSales) CreateSale(ctx context.Context, sub domain.SaleSubmission) (*domain.Sale, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *mockSales) ListSales(ctx context.Context, params pagination.Params) ([]domain.Sale, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Sale), args.Int(1), args.Error(2)
}

type mockCustomers struct {
	mock.Mock
}

func (m *mockCustomers) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomers) SearchByIdentification(ctx context.Context, identification string) (*domain.Customer, error) {
	args := m.Called(ctx, identification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomers) Create(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type mockPrescriptions struct {
	mock.Mock
}

func (m *mockPrescriptions) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Prescription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prescription), args.Error(1)
}

func (m *mockPrescriptions) Create(ctx context.Context, p domain.NewPrescription) (*domain.Prescription, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prescription), args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishSaleCompleted(ctx context.Context, sessionID string, sale *domain.Sale, sub domain.SaleSubmission) error {
	args := m.Called(ctx, sessionID, sale, sub)
	return args.Error(0)
}

func (m *mockEvents) PublishSaleFailed(ctx context.Context, sessionID string, sub domain.SaleSubmission, cause error) error {
	args := m.Called(ctx, sessionID, sub, cause)
	return args.Error(0)
}

type mockReporting struct {
	mock.Mock
}

func (m *mockReporting) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

type mockDashboardCache struct {
	mock.Mock
}

func (m *mockDashboardCache) Get(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *mockDashboardCache) Set(ctx context.Context, d *domain.Dashboard) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// --- Test Helpers ---

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestCalculator() *pricing.Calculator {
	c, err := pricing.NewCalculator(pricing.DefaultTaxRate)
	if err != nil {
		panic(err)
	}
	return c
}

func newTestSession() *domain.Session {
	return domain.NewSession("session-1", "Ana Cajera", testNow)
}

// readySession has a branch and a customer selected.
func readySession() *domain.Session {
	s := newTestSession()
	s.BranchID = 7
	s.Customer = &domain.Customer{ID: 42, FirstName: "Juan", LastName: "Pérez"}
	return s
}

func testProduct(id int64, price string, rx bool) *domain.Product {
	return &domain.Product{
		ID:                   id,
		Code:                 "P-" + price,
		Name:                 "Producto",
		BasePrice:            dec(price),
		RequiresPrescription: rx,
		Status:               domain.ProductStatusActive,
	}
}

func stock(branchID, productID int64, qty int) *domain.StockSnapshot {
	return &domain.StockSnapshot{BranchID: branchID, ProductID: productID, Quantity: qty}
}
