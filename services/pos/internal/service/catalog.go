package service

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// maxQueryLength bounds product search terms forwarded to the catalog.
const maxQueryLength = 100

// CatalogService lists what the POS can sell and the branches it sells from.
type CatalogService struct {
	catalog  CatalogGateway
	branches BranchGateway
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalog CatalogGateway, branches BranchGateway, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog:  catalog,
		branches: branches,
		logger:   logger,
	}
}

// SearchProducts returns the active products matching query. An empty query
// lists every active product.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if len(query) > maxQueryLength {
		return nil, apperrors.InvalidInput("search query is too long")
	}

	products, err := s.catalog.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Active() {
			active = append(active, p)
		}
	}

	s.logger.DebugContext(ctx, "products searched",
		slog.String("query", query),
		slog.Int("found", len(products)),
		slog.Int("active", len(active)),
	)
	return active, nil
}

// ListBranches returns the branches open for sales.
func (s *CatalogService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	branches, err := s.branches.ListBranches(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Branch, 0, len(branches))
	for _, b := range branches {
		if b.Active() {
			active = append(active, b)
		}
	}
	return active, nil
}
