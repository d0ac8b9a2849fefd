package client

import (
	"context"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// ReportingClient reads the reporting dashboard.
type ReportingClient struct {
	base
}

// NewReportingClient creates a reporting adapter rooted at baseURL.
func NewReportingClient(doer HTTPDoer, baseURL string) *ReportingClient {
	return &ReportingClient{base: newBase(doer, baseURL, "reporting", Bare)}
}

// Dashboard fetches the headline metrics.
func (c *ReportingClient) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	w, err := getJSON[dashboardWire](ctx, c.base, "/api/reports/dashboard", nil)
	if err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}
