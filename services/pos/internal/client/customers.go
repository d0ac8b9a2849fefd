package client

import (
	"context"
	"errors"
	"net/url"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// CustomerClient reads and registers customers.
type CustomerClient struct {
	base
}

// NewCustomerClient creates a customer adapter rooted at the sales service.
func NewCustomerClient(doer HTTPDoer, baseURL string) *CustomerClient {
	return &CustomerClient{base: newBase(doer, baseURL, "sales", Bare)}
}

// Get fetches one customer.
func (c *CustomerClient) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	w, err := getJSON[customerWire](ctx, c.base, idPath("/api/customers/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// SearchByIdentification looks a customer up by CI. It returns nil, nil when
// the sales service answers 404.
func (c *CustomerClient) SearchByIdentification(ctx context.Context, identification string) (*domain.Customer, error) {
	q := url.Values{}
	q.Set("identification", identification)

	w, err := getJSON[customerWire](ctx, c.base, "/api/customers/search", q)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// Create registers a customer.
func (c *CustomerClient) Create(ctx context.Context, in domain.NewCustomer) (*domain.Customer, error) {
	w, err := postJSON[customerWire](ctx, c.base, "/api/customers", newCustomerRequest(in))
	if err != nil {
		return nil, err
	}
	if w.ID == 0 {
		return nil, noPayload(c.service)
	}
	return w.toDomain(), nil
}
