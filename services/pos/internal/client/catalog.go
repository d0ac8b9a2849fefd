package client

import (
	"context"
	"net/url"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// CatalogClient reads products from the catalog service.
type CatalogClient struct {
	base
}

// NewCatalogClient creates a catalog adapter rooted at baseURL.
func NewCatalogClient(doer HTTPDoer, baseURL string) *CatalogClient {
	return &CatalogClient{base: newBase(doer, baseURL, "catalog", Enveloped)}
}

// GetProduct fetches one product by id.
func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	w, err := getJSON[productWire](ctx, c.base, idPath("/api/products/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// SearchProducts lists the products whose name, code, barcode or active
// ingredient contains query. An empty query lists the whole catalog.
func (c *CatalogClient) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	path, q := "/api/products", url.Values(nil)
	if query != "" {
		path, q = "/api/products/search", url.Values{"keyword": {query}}
	}

	ws, err := getJSON[[]productWire](ctx, c.base, path, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, *w.toDomain())
	}
	return out, nil
}
