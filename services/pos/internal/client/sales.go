package client

import (
	"context"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/pagination"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// SalesClient records and lists sales.
type SalesClient struct {
	base
}

// NewSalesClient creates a sales adapter rooted at baseURL. doer must not
// retry: a retried POST could record the sale twice.
func NewSalesClient(doer HTTPDoer, baseURL string) *SalesClient {
	return &SalesClient{base: newBase(doer, baseURL, "sales", Bare)}
}

// CreateSale posts a submission. The request is sent exactly once.
func (c *SalesClient) CreateSale(ctx context.Context, sub domain.SaleSubmission) (*domain.Sale, error) {
	w, err := postJSON[saleWire](ctx, c.base, "/api/sales", newSaleRequest(sub))
	if err != nil {
		return nil, err
	}
	if w.ID == 0 {
		return nil, noPayload(c.service)
	}
	sale := w.toDomain()
	return &sale, nil
}

// ListSales fetches a page of sales, newest first.
func (c *SalesClient) ListSales(ctx context.Context, params pagination.Params) ([]domain.Sale, int, error) {
	q := params.DownstreamQuery()
	q.Set("sort", "saleDate,desc")

	page, err := getJSON[Page[saleWire]](ctx, c.base, "/api/sales", q)
	if err != nil {
		return nil, 0, err
	}
	sales := make([]domain.Sale, 0, len(page.Content))
	for _, w := range page.Content {
		sales = append(sales, w.toDomain())
	}
	return sales, page.TotalElements, nil
}
