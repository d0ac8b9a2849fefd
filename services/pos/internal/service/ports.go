package service

import (
	"context"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/pagination"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// CatalogGateway reads products from the catalog service. SearchProducts
// with an empty query lists the whole catalog.
type CatalogGateway interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

// BranchGateway lists branches from the inventory service.
type BranchGateway interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
}

// StockGateway reads branch stock from the inventory service.
type StockGateway interface {
	GetStock(ctx context.Context, branchID, productID int64) (*domain.StockSnapshot, error)
}

// PrescriptionGateway reads and registers prescriptions in the sales service.
type PrescriptionGateway interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Prescription, error)
	Create(ctx context.Context, p domain.NewPrescription) (*domain.Prescription, error)
}

// SalesGateway records sales in the sales service.
type SalesGateway interface {
	CreateSale(ctx context.Context, sub domain.SaleSubmission) (*domain.Sale, error)
	ListSales(ctx context.Context, params pagination.Params) ([]domain.Sale, int, error)
}

// CustomerGateway reads and registers customers in the sales service.
// SearchByIdentification returns nil, nil when nobody matches.
type CustomerGateway interface {
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	SearchByIdentification(ctx context.Context, identification string) (*domain.Customer, error)
	Create(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error)
}

// ReportingGateway reads aggregated metrics from the reporting service.
type ReportingGateway interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
}

// DashboardCache stores the last dashboard. Get returns nil, nil on a miss.
type DashboardCache interface {
	Get(ctx context.Context) (*domain.Dashboard, error)
	Set(ctx context.Context, d *domain.Dashboard) error
}

// EventPublisher announces checkout outcomes.
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, sessionID string, sale *domain.Sale, sub domain.SaleSubmission) error
	PublishSaleFailed(ctx context.Context, sessionID string, sub domain.SaleSubmission, cause error) error
}
